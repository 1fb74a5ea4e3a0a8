package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radblog/internal/config"
	"radblog/internal/models"
)

func roleTestRouter(cfg *config.AppConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }

	router.GET("/admin", Auth(cfg), RequireRole(models.RoleAdmin), ok)
	router.GET("/mine", Auth(cfg), RequireRole(models.RoleUser), ok)
	router.POST("/publish", Auth(cfg), RequirePublisher(), ok)
	// deliberately wired without the auth gate
	router.GET("/broken", RequireRole(models.RoleUser), ok)

	return router
}

func TestRoleGate(t *testing.T) {
	cfg := testAuthConfig()
	router := roleTestRouter(cfg)

	tests := []struct {
		name       string
		method     string
		path       string
		roles      []models.Role
		wantStatus int
		wantCode   string
	}{
		{name: "user denied admin route", method: http.MethodGet, path: "/admin", roles: []models.Role{models.RoleUser}, wantStatus: http.StatusForbidden, wantCode: "FORBIDDEN"},
		{name: "admin allowed", method: http.MethodGet, path: "/admin", roles: []models.Role{models.RoleAdmin}, wantStatus: http.StatusNoContent},
		{name: "user allowed own posts", method: http.MethodGet, path: "/mine", roles: []models.Role{models.RoleUser}, wantStatus: http.StatusNoContent},
		{name: "plain user cannot publish", method: http.MethodPost, path: "/publish", roles: []models.Role{models.RoleUser}, wantStatus: http.StatusForbidden, wantCode: "FORBIDDEN"},
		{name: "author can publish", method: http.MethodPost, path: "/publish", roles: []models.Role{models.RoleUser, models.RoleAuthor}, wantStatus: http.StatusNoContent},
		{name: "admin can publish", method: http.MethodPost, path: "/publish", roles: []models.Role{models.RoleAdmin}, wantStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("Authorization", "Bearer "+issueToken(t, cfg, tt.roles...))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				var body map[string]any
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tt.wantCode, body["code"])
			}
		})
	}
}

func TestRoleGateWithoutAuthGateIsServerError(t *testing.T) {
	router := roleTestRouter(testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/broken", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "MISCONFIGURED_ROUTE", body["code"])
}
