package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"kennel-backend/config"
	"kennel-backend/controllers"
	"kennel-backend/routes"
	"kennel-backend/services"
)

func sweepInterval() time.Duration {
	raw := os.Getenv("SWEEP_INTERVAL_MINUTES")
	if raw == "" {
		return 5 * time.Minute
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes <= 0 {
		log.Printf("⚠️  invalid SWEEP_INTERVAL_MINUTES %q; using 5", raw)
		return 5 * time.Minute
	}
	return time.Duration(minutes) * time.Minute
}

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env not found or couldn't load it; continuing with environment variables")
	}

	// Connect database (config.ConnectDatabase should set config.DB)
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("❌ Database connect failed: %v", err)
	}
	db := config.DB
	if db == nil {
		log.Fatal("❌ config.DB is nil after ConnectDatabase()")
	}
	log.Println("✅ Database connection established and migrations applied.")

	// Initialize services
	capacityService := services.NewCapacityService(db)
	settingsService := services.NewSettingsService(db)
	reservationService := services.NewReservationService(db, capacityService)
	waitlistService := services.NewWaitlistService(db, capacityService, settingsService)
	offerService := services.NewOfferService(db, settingsService, services.SMTPNotifier{})

	// Initialize controllers
	reservationController := controllers.NewReservationController(reservationService, offerService)
	waitlistController := controllers.NewWaitlistController(waitlistService, offerService)
	capacityController := controllers.NewCapacityController(capacityService)
	settingsController := controllers.NewSettingsController(settingsService)

	// Build router
	router := routes.SetupRouter(reservationController, waitlistController, capacityController, settingsController)

	// Periodic expiry sweep. The sweep is idempotent and safe to run
	// alongside confirms, so a plain ticker is all the scheduling needed.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go func() {
		interval := sweepInterval()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		log.Printf("🧹 Expiry sweeper running every %s", interval)
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				count, err := offerService.ExpireOffers(time.Now().UTC())
				if err != nil {
					log.Printf("⚠️  sweep failed: %v", err)
					continue
				}
				if count > 0 {
					log.Printf("🧹 sweep expired %d offer(s)", count)
				}
			}
		}
	}()

	// Port from env (prefer), fallback to 8080
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := ":" + port

	srv := &http.Server{
		Addr:    addr,
		Handler: router,
		// useful timeouts
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe(): %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with timeout
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("⚠️  Shutdown signal received, shutting down server...")

	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
