// controllers/auth_controller.go
package controllers

import (
	"net/http"
	"strings"
	"time"

	"kennel-backend/config"
	"kennel-backend/models"
	"kennel-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// IssueStaffToken signs a short-lived JWT carrying the staff id and role.
func IssueStaffToken(staff *models.Staff, ttl time.Duration) (string, error) {
	secret := utils.EnvOrDefault("JWT_SECRET", "dev-secret-change-me")

	claims := jwt.MapClaims{
		"sub":  staff.ID,
		"name": staff.FullName,
		"role": staff.Role,
		"exp":  time.Now().Add(ttl).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func Login(c *gin.Context) {
	var payload loginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		apiError(c, http.StatusBadRequest, "error.invalidPayload", "invalid payload")
		return
	}

	username := strings.TrimSpace(payload.Username)
	password := payload.Password
	if username == "" || password == "" {
		apiError(c, http.StatusBadRequest, "error.invalidPayload", "username and password required")
		return
	}

	var staff models.Staff
	if err := config.DB.Where("username = ?", username).First(&staff).Error; err != nil {
		apiError(c, http.StatusUnauthorized, "error.invalidCredentials", "invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(staff.Password), []byte(password)); err != nil {
		apiError(c, http.StatusUnauthorized, "error.invalidCredentials", "invalid credentials")
		return
	}

	signed, err := IssueStaffToken(&staff, 12*time.Hour)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "error.internal", "failed to sign token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data": gin.H{
			"token": signed,
			"staff": gin.H{
				"id":        staff.ID,
				"full_name": staff.FullName,
				"role":      staff.Role,
			},
		},
	})
}
