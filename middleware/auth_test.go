package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kennel-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func signTestToken(t *testing.T, role string, ttl time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":  float64(12),
		"role": role,
		"exp":  time.Now().Add(ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte("dev-secret-change-me"))
	require.NoError(t, err)
	return signed
}

func authTestRouter() *gin.Engine {
	r := gin.New()
	staff := r.Group("", RequireAuth())
	staff.GET("/whoami", func(c *gin.Context) {
		role, _ := c.Get(ContextRole)
		c.JSON(http.StatusOK, gin.H{"role": role})
	})
	staff.POST("/managers-only", RequireManager(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	t.Setenv("JWT_SECRET", "dev-secret-change-me")
	r := authTestRouter()

	// no header
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// garbage token
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer nope")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// expired token
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, models.RoleManager, -time.Hour))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// valid token
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, models.RoleReceptionist, time.Hour))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), models.RoleReceptionist)
}

func TestRequireManager(t *testing.T) {
	t.Setenv("JWT_SECRET", "dev-secret-change-me")
	r := authTestRouter()

	// receptionist is authenticated but not authorized
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/managers-only", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, models.RoleReceptionist, time.Hour))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// manager passes
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/managers-only", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, models.RoleManager, time.Hour))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
