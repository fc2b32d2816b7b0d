package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tmorren/selah/internal/entities"
)

// LibraryStore defines database operations for offline-library management.
type LibraryStore interface {
	Add(userID uint, spreadCode string) error
	Remove(userID uint, spreadCode string) error
	List(userID uint, limit, offset int) ([]entities.LibraryEntry, int64, error)
}

type LibraryController struct {
	store LibraryStore
}

func NewLibraryController(store LibraryStore) *LibraryController {
	return &LibraryController{store: store}
}

// AddToLibrary puts a spread into the caller's offline library.
// POST /api/spreads/:code/library
func (lc *LibraryController) AddToLibrary(c *gin.Context) {
	user := CurrentUser(c)
	code := c.Param("code")

	if err := lc.store.Add(user.ID, code); err != nil {
		respondInternalError(c, err, "add to library")
		return
	}

	respondSuccess(c, "added to library")
}

// RemoveFromLibrary drops a spread from the caller's offline library.
// DELETE /api/spreads/:code/library
func (lc *LibraryController) RemoveFromLibrary(c *gin.Context) {
	user := CurrentUser(c)
	code := c.Param("code")

	if err := lc.store.Remove(user.ID, code); err != nil {
		respondInternalError(c, err, "remove from library")
		return
	}

	respondSuccess(c, "removed from library")
}

// ListLibrary returns the caller's library, most recently added first.
// GET /api/library
func (lc *LibraryController) ListLibrary(c *gin.Context) {
	user := CurrentUser(c)
	limit, offset := parsePagination(c, 50, 100)

	entries, total, err := lc.store.List(user.ID, limit, offset)
	if err != nil {
		respondInternalError(c, err, "list library")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}
