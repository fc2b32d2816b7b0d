package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tmorren/selah/internal/access"
	"github.com/tmorren/selah/internal/database/regen"
	"github.com/tmorren/selah/internal/database/spreads"
	"github.com/tmorren/selah/internal/entities"
	"github.com/tmorren/selah/internal/tasks"
)

// RegenStore defines database operations for regeneration requests.
type RegenStore interface {
	Create(spreadID uint, slot int, requestedBy uint) (*entities.RegenRequest, error)
	Get(id string) (*entities.RegenRequest, error)
	HasActive(spreadID uint, slot int) (bool, error)
	CompleteSelection(id string, chosenSlot int, selectFor uint) (string, error)
	ListForSpread(spreadID uint) ([]entities.RegenRequest, error)
}

// SpreadResolver looks up the spread a regeneration request targets.
type SpreadResolver interface {
	GetByCode(code string) (*entities.Spread, error)
}

// RegenAccess decides who may view or complete a request.
type RegenAccess interface {
	IsAdmin(userID uint) (bool, error)
	AuthorizeRead(callerID, ownerID uint) error
	AuthorizeWrite(callerID, ownerID uint) error
}

type RegenController struct {
	store      RegenStore
	spreads    SpreadResolver
	guard      RegenAccess
	taskClient *tasks.Client // nil when an external worker drains requests
}

func NewRegenController(store RegenStore, spreadStore SpreadResolver, guard RegenAccess, taskClient *tasks.Client) *RegenController {
	return &RegenController{
		store:      store,
		spreads:    spreadStore,
		guard:      guard,
		taskClient: taskClient,
	}
}

// TriggerRegen opens a regeneration request for a (spread, slot) pair. The
// store never dedupes concurrent requests; this endpoint is the client-side
// check that refuses a new request while one is still active.
// POST /api/spreads/:code/regen/:slot
func (rc *RegenController) TriggerRegen(c *gin.Context) {
	rc.trigger(c, CurrentUser(c).ID)
}

// TriggerOperatorRegen opens an operator request: completion moves the
// spread-level default image instead of a user's selection. Registered
// behind the admin gate.
// POST /api/admin/spreads/:code/regen/:slot
func (rc *RegenController) TriggerOperatorRegen(c *gin.Context) {
	rc.trigger(c, 0)
}

func (rc *RegenController) trigger(c *gin.Context, requestedBy uint) {
	code := c.Param("code")
	slot, ok := parseSlotParam(c, "slot")
	if !ok {
		return
	}

	spread, err := rc.spreads.GetByCode(code)
	if err != nil {
		if errors.Is(err, spreads.ErrSpreadNotFound) {
			respondNotFound(c, "spread")
			return
		}
		respondInternalError(c, err, "trigger regeneration")
		return
	}

	active, err := rc.store.HasActive(spread.ID, slot)
	if err != nil {
		respondInternalError(c, err, "trigger regeneration")
		return
	}
	if active {
		respondConflict(c, "a regeneration request is already active for this slot")
		return
	}

	request, err := rc.store.Create(spread.ID, slot, requestedBy)
	if err != nil {
		if errors.Is(err, regen.ErrInvalidSlot) {
			respondBadRequest(c, err.Error())
			return
		}
		respondInternalError(c, err, "trigger regeneration")
		return
	}

	if rc.taskClient != nil {
		task := tasks.RegenImagesTask{RequestID: request.ID, SpreadID: spread.ID}
		if _, err := rc.taskClient.Add(task).Save(); err != nil {
			respondInternalError(c, err, "enqueue regeneration")
			return
		}
	}

	respondAccepted(c, "regeneration started", request)
}

// GetRegen returns one request, including candidate URLs once ready.
// User-triggered requests are visible to their owner and to admins;
// operator requests are visible to any authenticated caller.
// GET /api/regen/:id
func (rc *RegenController) GetRegen(c *gin.Context) {
	user := CurrentUser(c)

	request, err := rc.store.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, regen.ErrRequestNotFound) {
			respondNotFound(c, "regeneration request")
			return
		}
		respondInternalError(c, err, "get regeneration")
		return
	}

	if request.RequestedBy != 0 {
		if err := rc.guard.AuthorizeRead(user.ID, request.RequestedBy); err != nil {
			if errors.Is(err, access.ErrForbidden) {
				respondForbidden(c, "request belongs to another user")
				return
			}
			respondInternalError(c, err, "get regeneration")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"request":    request,
		"candidates": request.Candidates(),
	})
}

type selectCandidateRequest struct {
	Candidate int `json:"candidate" binding:"required"`
}

// SelectCandidate completes a ready request with the chosen candidate. The
// chosen image lands in the spread's regenerated slot; for a user-triggered
// request the owner's primary-image selection moves to that slot, for an
// operator request the spread default does. Only the owner completes a user
// request (admin access is read-only across users); only admins complete
// operator requests.
// POST /api/regen/:id/select
func (rc *RegenController) SelectCandidate(c *gin.Context) {
	user := CurrentUser(c)

	var body selectCandidateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadRequest(c, "candidate is required")
		return
	}

	request, err := rc.store.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, regen.ErrRequestNotFound) {
			respondNotFound(c, "regeneration request")
			return
		}
		respondInternalError(c, err, "select candidate")
		return
	}

	if request.RequestedBy == 0 {
		isAdmin, err := rc.guard.IsAdmin(user.ID)
		if err != nil {
			respondInternalError(c, err, "select candidate")
			return
		}
		if !isAdmin {
			respondForbidden(c, "operator requests require admin access")
			return
		}
	} else if err := rc.guard.AuthorizeWrite(user.ID, request.RequestedBy); err != nil {
		switch {
		case errors.Is(err, access.ErrForbidden):
			respondForbidden(c, "request belongs to another user")
		case errors.Is(err, access.ErrAdminReadOnly):
			respondForbidden(c, "admin access is read-only across users")
		default:
			respondInternalError(c, err, "select candidate")
		}
		return
	}

	if _, err := rc.store.CompleteSelection(request.ID, body.Candidate, request.RequestedBy); err != nil {
		switch {
		case errors.Is(err, regen.ErrNoCandidate):
			respondBadRequest(c, err.Error())
		case errors.Is(err, regen.ErrInvalidTransition):
			respondConflict(c, "request is not ready for selection")
		default:
			respondInternalError(c, err, "select candidate")
		}
		return
	}

	respondSuccess(c, "candidate selected")
}

// ListForSpread returns a spread's regeneration history.
// GET /api/spreads/:code/regen
func (rc *RegenController) ListForSpread(c *gin.Context) {
	spread, err := rc.spreads.GetByCode(c.Param("code"))
	if err != nil {
		if errors.Is(err, spreads.ErrSpreadNotFound) {
			respondNotFound(c, "spread")
			return
		}
		respondInternalError(c, err, "list regenerations")
		return
	}

	requests, err := rc.store.ListForSpread(spread.ID)
	if err != nil {
		respondInternalError(c, err, "list regenerations")
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}
