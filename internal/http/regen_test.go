package http

import (
	"bytes"
	"encoding/json"
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
	"github.com/tmorren/selah/internal/database/images"
	"github.com/tmorren/selah/internal/database/regen"
	"github.com/tmorren/selah/internal/database/spreads"
	"github.com/tmorren/selah/internal/database/users"
	"github.com/tmorren/selah/internal/entities"
)

type regenTestEnv struct {
	router     *gin.Engine
	db         *database.Database
	user       *entities.User
	other      *entities.User
	admin      *entities.User
	spread     *entities.Spread
	regenRepo  *regen.Repository
	selections *images.Repository
}

func setupRegenTest(t *testing.T) (*regenTestEnv, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_http_regen_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	userRepo := users.NewRepository(db.DB)
	user, err := userRepo.Create("11111111-1111-1111-1111-111111111111", "reader@example.com", "Reader")
	require.NoError(t, err)
	other, err := userRepo.Create("22222222-2222-2222-2222-222222222222", "other@example.com", "Other")
	require.NoError(t, err)
	admin, err := userRepo.Create("33333333-3333-3333-3333-333333333333", "admin@example.com", "Admin")
	require.NoError(t, err)
	require.NoError(t, userRepo.SetAdmin(admin.ID, true))

	spread, _, err := db.SeedSpread(database.SeedEntry{
		BookCode: "GEN", Seq: 1, Chapter: 1, VerseFrom: 1, VerseTo: 5,
	})
	require.NoError(t, err)

	spreadRepo := spreads.NewRepository(db.DB)
	regenRepo := regen.NewRepository(db.DB)
	selectionRepo := images.NewRepository(db.DB)
	guard := access.NewGuard(db.DB)

	// Existing slot-1 artwork the regeneration replaces
	require.NoError(t, spreadRepo.SetImage(spread.ID, 1, "https://img/original.png"))

	// No embedded task queue: requests stay processing until a worker reports
	controller := NewRegenController(regenRepo, spreadRepo, guard, nil)

	router := gin.New()
	authed := router.Group("/api")
	authed.Use(TokenAuthMiddleware(userRepo))
	authed.POST("/spreads/:code/regen/:slot", controller.TriggerRegen)
	authed.GET("/spreads/:code/regen", controller.ListForSpread)
	authed.GET("/regen/:id", controller.GetRegen)
	authed.POST("/regen/:id/select", controller.SelectCandidate)

	adminGroup := authed.Group("/admin")
	adminGroup.Use(NewAdminController(guard).RequireAdmin())
	adminGroup.POST("/spreads/:code/regen/:slot", controller.TriggerOperatorRegen)

	env := &regenTestEnv{
		router:     router,
		db:         db,
		user:       user,
		other:      other,
		admin:      admin,
		spread:     spread,
		regenRepo:  regenRepo,
		selections: selectionRepo,
	}
	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return env, cleanup
}

func selectRequest(id string, candidate int, token string) *http.Request {
	body, _ := json.Marshal(map[string]int{"candidate": candidate})
	req, _ := http.NewRequest("POST", "/api/regen/"+id+"/select", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestRegenController_TriggerRegen(t *testing.T) {
	env, cleanup := setupRegenTest(t)
	defer cleanup()

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, authedRequest("POST", "/api/spreads/GEN-001/regen/1", env.user.Token))

	assert.Equal(t, http.StatusAccepted, w.Code)

	active, err := env.regenRepo.HasActive(env.spread.ID, 1)
	require.NoError(t, err)
	assert.True(t, active)
}

func TestRegenController_TriggerRegen_Conflict(t *testing.T) {
	env, cleanup := setupRegenTest(t)
	defer cleanup()

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, authedRequest("POST", "/api/spreads/GEN-001/regen/1", env.user.Token))
	require.Equal(t, http.StatusAccepted, w.Code)

	// Second request for the same slot while the first is active
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, authedRequest("POST", "/api/spreads/GEN-001/regen/1", env.user.Token))
	assert.Equal(t, http.StatusConflict, w.Code)

	// A different slot is fine
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, authedRequest("POST", "/api/spreads/GEN-001/regen/2", env.user.Token))
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestRegenController_TriggerRegen_BadInput(t *testing.T) {
	env, cleanup := setupRegenTest(t)
	defer cleanup()

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, authedRequest("POST", "/api/spreads/GEN-001/regen/9", env.user.Token))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, authedRequest("POST", "/api/spreads/REV-999/regen/1", env.user.Token))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegenController_TriggerOperatorRegen(t *testing.T) {
	env, cleanup := setupRegenTest(t)
	defer cleanup()

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, authedRequest("POST", "/api/admin/spreads/GEN-001/regen/1", env.admin.Token))
	assert.Equal(t, http.StatusAccepted, w.Code)

	requests, err := env.regenRepo.ListForSpread(env.spread.ID)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, uint(0), requests[0].RequestedBy)
}

func TestRegenController_TriggerOperatorRegen_NonAdmin(t *testing.T) {
	env, cleanup := setupRegenTest(t)
	defer cleanup()

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, authedRequest("POST", "/api/admin/spreads/GEN-001/regen/1", env.user.Token))
	assert.Equal(t, http.StatusForbidden, w.Code)

	requests, err := env.regenRepo.ListForSpread(env.spread.ID)
	require.NoError(t, err)
	assert.Empty(t, requests)
}

func TestRegenController_SelectCandidate(t *testing.T) {
	env, cleanup := setupRegenTest(t)
	defer cleanup()

	request, err := env.regenRepo.Create(env.spread.ID, 1, env.user.ID)
	require.NoError(t, err)
	require.NoError(t, env.regenRepo.MarkReady(request.ID, []string{
		"https://img/cand-a.png", "https://img/cand-b.png",
	}))

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, selectRequest(request.ID, 2, env.user.Token))
	assert.Equal(t, http.StatusOK, w.Code)

	// The chosen candidate replaced the slot-1 artwork
	spreadRepo := spreads.NewRepository(env.db.DB)
	loaded, err := spreadRepo.GetByID(env.spread.ID)
	require.NoError(t, err)
	require.NotEmpty(t, loaded.Images)
	assert.Equal(t, "https://img/cand-b.png", loaded.Images[0].URL)

	// The caller's primary selection moved to the regenerated slot
	slot, err := env.selections.Get(env.user.ID, "GEN-001")
	require.NoError(t, err)
	assert.Equal(t, 1, slot)

	// The request is terminal
	completed, err := env.regenRepo.Get(request.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.RegenStatusCompleted, completed.Status)
}

func TestRegenController_SelectCandidate_NotReady(t *testing.T) {
	env, cleanup := setupRegenTest(t)
	defer cleanup()

	request, err := env.regenRepo.Create(env.spread.ID, 1, env.user.ID)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, selectRequest(request.ID, 1, env.user.Token))

	// Still processing: no candidates to choose from
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegenController_SelectCandidate_OtherUsersRequest(t *testing.T) {
	env, cleanup := setupRegenTest(t)
	defer cleanup()

	request, err := env.regenRepo.Create(env.spread.ID, 1, env.user.ID)
	require.NoError(t, err)
	require.NoError(t, env.regenRepo.MarkReady(request.ID, []string{"https://img/cand-a.png"}))

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, selectRequest(request.ID, 1, env.other.Token))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Admin access is read-only across users: no completion either
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, selectRequest(request.ID, 1, env.admin.Token))
	assert.Equal(t, http.StatusForbidden, w.Code)

	loaded, err := env.regenRepo.Get(request.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.RegenStatusReady, loaded.Status)
}

func TestRegenController_SelectCandidate_OperatorRequestNeedsAdmin(t *testing.T) {
	env, cleanup := setupRegenTest(t)
	defer cleanup()

	request, err := env.regenRepo.Create(env.spread.ID, 1, 0)
	require.NoError(t, err)
	require.NoError(t, env.regenRepo.MarkReady(request.ID, []string{"https://img/cand-a.png"}))

	// A regular user may not complete an operator request
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, selectRequest(request.ID, 1, env.user.Token))
	assert.Equal(t, http.StatusForbidden, w.Code)

	loaded, err := env.regenRepo.Get(request.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.RegenStatusReady, loaded.Status)

	// An admin may; completion moves the spread-level default
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, selectRequest(request.ID, 1, env.admin.Token))
	assert.Equal(t, http.StatusOK, w.Code)

	spreadRepo := spreads.NewRepository(env.db.DB)
	reloaded, err := spreadRepo.GetByID(env.spread.ID)
	require.NoError(t, err)
	require.NotEmpty(t, reloaded.Images)
	assert.Equal(t, "https://img/cand-a.png", reloaded.Images[0].URL)
	assert.True(t, reloaded.Images[0].IsPrimary)
}

func TestRegenController_GetRegen(t *testing.T) {
	env, cleanup := setupRegenTest(t)
	defer cleanup()

	request, err := env.regenRepo.Create(env.spread.ID, 3, env.user.ID)
	require.NoError(t, err)
	require.NoError(t, env.regenRepo.MarkReady(request.ID, []string{"https://img/one.png"}))

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, authedRequest("GET", "/api/regen/"+request.ID, env.user.Token))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://img/one.png")

	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, authedRequest("GET", "/api/regen/no-such-id", env.user.Token))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegenController_GetRegen_Ownership(t *testing.T) {
	env, cleanup := setupRegenTest(t)
	defer cleanup()

	request, err := env.regenRepo.Create(env.spread.ID, 1, env.user.ID)
	require.NoError(t, err)

	// Another user may not view it
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, authedRequest("GET", "/api/regen/"+request.ID, env.other.Token))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Admins read across users
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, authedRequest("GET", "/api/regen/"+request.ID, env.admin.Token))
	assert.Equal(t, http.StatusOK, w.Code)
}
