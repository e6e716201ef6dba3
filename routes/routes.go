package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"kennel-backend/controllers"
	"kennel-backend/middleware"
)

func parseCorsOrigins() []string {
	raw := strings.TrimSpace(os.Getenv("CORS_ORIGINS"))
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// SetupRouter wires controller instances onto the route tree.
func SetupRouter(
	rc *controllers.ReservationController,
	wc *controllers.WaitlistController,
	cc *controllers.CapacityController,
	sc *controllers.SettingsController,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	origins := parseCorsOrigins()
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/auth/login", controllers.Login)

		// Public, owner-facing confirm; the token is the credential.
		api.POST("/reservations/:id/confirm", rc.ConfirmReservation)

		staff := api.Group("")
		staff.Use(middleware.RequireAuth())
		{
			reservations := staff.Group("/reservations")
			{
				reservations.GET("", rc.GetReservations)
				reservations.POST("", rc.CreateReservation)
				reservations.GET("/:id", rc.GetReservation)
				reservations.POST("/:id/accept", rc.AcceptReservation)
				reservations.POST("/:id/checkin", rc.CheckInReservation)
				reservations.POST("/:id/checkout", rc.CheckOutReservation)
				reservations.POST("/:id/cancel", rc.CancelReservation)
			}

			waitlist := staff.Group("/waitlist")
			{
				waitlist.POST("", wc.CreateWaitlistEntry)
				waitlist.GET("", wc.GetWaitlistEntries)
				waitlist.GET("/:id", wc.GetWaitlistEntry)

				manager := waitlist.Group("")
				manager.Use(middleware.RequireManager())
				{
					manager.PATCH("/:id", wc.UpdateWaitlistEntry)
					manager.POST("/:id/offer", wc.OfferWaitlistEntry)
					manager.POST("/:id/promote", wc.PromoteWaitlistEntry)
					manager.POST("/sweep", wc.SweepWaitlist)
				}
			}

			staff.GET("/capacity-rules", cc.GetCapacityRules)
			staff.GET("/capacity/check", cc.CheckCapacity)
			staff.PUT("/capacity-rules", middleware.RequireManager(), cc.UpsertCapacityRule)

			staff.GET("/settings/account", sc.GetAccountSettings)
			staff.PUT("/settings/account", middleware.RequireManager(), sc.UpdateAccountSettings)
		}
	}

	return r
}
