package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tmorren/selah/internal/entities"
)

// ReadMarksStore defines database operations for read-status management.
type ReadMarksStore interface {
	MarkRead(userID uint, spreadCode string) error
	MarkUnread(userID uint, spreadCode string) error
	List(userID uint, limit, offset int) ([]entities.ReadMark, int64, error)
	Count(userID uint) (int64, error)
}

type ReadMarksController struct {
	store ReadMarksStore
}

func NewReadMarksController(store ReadMarksStore) *ReadMarksController {
	return &ReadMarksController{store: store}
}

// MarkRead records that the caller read a spread.
// POST /api/spreads/:code/read
func (rc *ReadMarksController) MarkRead(c *gin.Context) {
	user := CurrentUser(c)
	code := c.Param("code")

	if err := rc.store.MarkRead(user.ID, code); err != nil {
		respondInternalError(c, err, "mark read")
		return
	}

	respondSuccess(c, "marked read")
}

// MarkUnread removes the caller's read mark for a spread.
// DELETE /api/spreads/:code/read
func (rc *ReadMarksController) MarkUnread(c *gin.Context) {
	user := CurrentUser(c)
	code := c.Param("code")

	if err := rc.store.MarkUnread(user.ID, code); err != nil {
		respondInternalError(c, err, "mark unread")
		return
	}

	respondSuccess(c, "marked unread")
}

// ListReadMarks returns the caller's read history, most recent first.
// GET /api/readmarks
func (rc *ReadMarksController) ListReadMarks(c *gin.Context) {
	user := CurrentUser(c)
	limit, offset := parsePagination(c, 50, 100)

	marks, total, err := rc.store.List(user.ID, limit, offset)
	if err != nil {
		respondInternalError(c, err, "list read marks")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"read_marks": marks,
		"total":      total,
		"limit":      limit,
		"offset":     offset,
	})
}

// GetReadCount returns how many spreads the caller has read.
// GET /api/readmarks/count
func (rc *ReadMarksController) GetReadCount(c *gin.Context) {
	user := CurrentUser(c)

	count, err := rc.store.Count(user.ID)
	if err != nil {
		respondInternalError(c, err, "read count")
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}
