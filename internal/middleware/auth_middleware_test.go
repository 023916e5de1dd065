package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayease/pg-management-backend/internal/models"
	"github.com/stayease/pg-management-backend/pkg/jwt"
)

func setupRouter(jwtService *jwt.Service, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	handlers := []gin.HandlerFunc{AuthMiddleware(jwtService)}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRole(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		userCtx, _ := GetUserContext(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userCtx.UserID, "role": userCtx.Role})
	})

	router.GET("/protected", handlers...)
	return router
}

func doRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware(t *testing.T) {
	jwtService := jwt.NewService("test-secret", time.Hour)

	t.Run("Missing Header", func(t *testing.T) {
		rec := doRequest(setupRouter(jwtService), "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Malformed Header", func(t *testing.T) {
		rec := doRequest(setupRouter(jwtService), "Token abc")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Invalid Token", func(t *testing.T) {
		rec := doRequest(setupRouter(jwtService), "Bearer not.a.token")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Valid Token", func(t *testing.T) {
		token, err := jwtService.GenerateToken(uuid.New(), models.RolePgAdmin)
		require.NoError(t, err)

		rec := doRequest(setupRouter(jwtService), "Bearer "+token)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Wrong Secret", func(t *testing.T) {
		other := jwt.NewService("other-secret", time.Hour)
		token, err := other.GenerateToken(uuid.New(), models.RolePgAdmin)
		require.NoError(t, err)

		rec := doRequest(setupRouter(jwtService), "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	jwtService := jwt.NewService("test-secret", time.Hour)

	t.Run("Role Allowed", func(t *testing.T) {
		token, err := jwtService.GenerateToken(uuid.New(), models.RolePgAdmin)
		require.NoError(t, err)

		rec := doRequest(setupRouter(jwtService, models.RolePgAdmin), "Bearer "+token)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Role Denied", func(t *testing.T) {
		token, err := jwtService.GenerateToken(uuid.New(), models.RolePgResident)
		require.NoError(t, err)

		rec := doRequest(setupRouter(jwtService, models.RolePgAdmin), "Bearer "+token)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
