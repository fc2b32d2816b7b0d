package http

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmorren/selah/internal/access"
	"github.com/tmorren/selah/internal/database"
	"github.com/tmorren/selah/internal/database/users"
	"github.com/tmorren/selah/internal/entities"
)

func setupAdminTest(t *testing.T) (*gin.Engine, *entities.User, *entities.User, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_admin_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	userRepo := users.NewRepository(db.DB)
	admin, err := userRepo.Create("11111111-1111-1111-1111-111111111111", "admin@example.com", "Admin")
	require.NoError(t, err)
	require.NoError(t, userRepo.SetAdmin(admin.ID, true))

	reader, err := userRepo.Create("22222222-2222-2222-2222-222222222222", "reader@example.com", "Reader")
	require.NoError(t, err)

	controller := NewAdminController(access.NewGuard(db.DB))

	router := gin.New()
	authed := router.Group("/api")
	authed.Use(TokenAuthMiddleware(userRepo))
	adminGroup := authed.Group("/admin")
	adminGroup.Use(controller.RequireAdmin())
	adminGroup.GET("/stats", controller.UserStats)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return router, admin, reader, cleanup
}

func TestAdminController_UserStats(t *testing.T) {
	router, admin, _, cleanup := setupAdminTest(t)
	defer cleanup()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest("GET", "/api/admin/stats", admin.Token))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"users"`)
}

func TestAdminController_UserStats_NonAdmin(t *testing.T) {
	router, _, reader, cleanup := setupAdminTest(t)
	defer cleanup()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest("GET", "/api/admin/stats", reader.Token))

	assert.Equal(t, http.StatusForbidden, w.Code)
}
