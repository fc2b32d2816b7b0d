package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tmorren/selah/internal/database/images"
	"github.com/tmorren/selah/internal/entities"
)

// ImageSelectionStore defines database operations for per-user primary
// image selection.
type ImageSelectionStore interface {
	Select(userID uint, spreadCode string, slot int) error
	Clear(userID uint, spreadCode string) error
	Get(userID uint, spreadCode string) (int, error)
	List(userID uint) ([]entities.ImageSelection, error)
}

type ImagesController struct {
	store ImageSelectionStore
}

func NewImagesController(store ImageSelectionStore) *ImagesController {
	return &ImagesController{store: store}
}

// SelectImage sets the caller's primary-image slot for a spread.
// PUT /api/spreads/:code/image/:slot
func (ic *ImagesController) SelectImage(c *gin.Context) {
	user := CurrentUser(c)
	code := c.Param("code")
	slot, ok := parseSlotParam(c, "slot")
	if !ok {
		return
	}

	if err := ic.store.Select(user.ID, code, slot); err != nil {
		if errors.Is(err, images.ErrInvalidSlot) {
			respondBadRequest(c, err.Error())
			return
		}
		respondInternalError(c, err, "select image")
		return
	}

	respondSuccess(c, "image selected")
}

// ClearSelection removes the caller's override, falling back to the spread
// default.
// DELETE /api/spreads/:code/image
func (ic *ImagesController) ClearSelection(c *gin.Context) {
	user := CurrentUser(c)
	code := c.Param("code")

	if err := ic.store.Clear(user.ID, code); err != nil {
		respondInternalError(c, err, "clear image selection")
		return
	}

	respondSuccess(c, "selection cleared")
}

// GetSelection returns the caller's selected slot (0 when none).
// GET /api/spreads/:code/image
func (ic *ImagesController) GetSelection(c *gin.Context) {
	user := CurrentUser(c)
	code := c.Param("code")

	slot, err := ic.store.Get(user.ID, code)
	if err != nil {
		respondInternalError(c, err, "get image selection")
		return
	}

	c.JSON(http.StatusOK, gin.H{"slot": slot})
}

// ListSelections returns all of the caller's overrides.
// GET /api/selections
func (ic *ImagesController) ListSelections(c *gin.Context) {
	user := CurrentUser(c)

	selections, err := ic.store.List(user.ID)
	if err != nil {
		respondInternalError(c, err, "list image selections")
		return
	}

	c.JSON(http.StatusOK, gin.H{"selections": selections})
}
