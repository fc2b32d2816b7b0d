package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tmorren/selah/internal/database/pipeline"
	"github.com/tmorren/selah/internal/entities"
)

// PipelineStore defines the pipeline queries the views controller needs.
type PipelineStore interface {
	NextWorkItems(batch int) ([]pipeline.WorkItem, error)
	ErrorSet() ([]pipeline.ErrorItem, error)
	Stats() (map[entities.StageState]int64, error)
}

// CompletedStore defines the completed-spreads query.
type CompletedStore interface {
	ListCompleted(limit, offset int) ([]entities.Spread, int64, error)
}

// ViewsController serves the three read projections: pending work for the
// generation worker, completed spreads for the reader application, and the
// error set for operator triage.
type ViewsController struct {
	pipeline  PipelineStore
	completed CompletedStore
	batchSize int
}

func NewViewsController(pipelineStore PipelineStore, completedStore CompletedStore, batchSize int) *ViewsController {
	return &ViewsController{
		pipeline:  pipelineStore,
		completed: completedStore,
		batchSize: batchSize,
	}
}

// Pending returns the bounded, canonically ordered pending-work view.
// GET /api/views/pending
func (vc *ViewsController) Pending(c *gin.Context) {
	batch := vc.batchSize
	if batchStr := c.Query("batch"); batchStr != "" {
		if b, err := strconv.Atoi(batchStr); err == nil && b > 0 && b <= vc.batchSize {
			batch = b
		}
	}

	items, err := vc.pipeline.NextWorkItems(batch)
	if err != nil {
		respondInternalError(c, err, "pending view")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"batch": batch,
	})
}

// Completed returns publishable spreads, canonical order.
// GET /api/views/completed
func (vc *ViewsController) Completed(c *gin.Context) {
	limit, offset := parsePagination(c, 50, 200)

	result, total, err := vc.completed.ListCompleted(limit, offset)
	if err != nil {
		respondInternalError(c, err, "completed view")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"spreads": result,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// Errors returns the triage view.
// GET /api/views/errors
func (vc *ViewsController) Errors(c *gin.Context) {
	items, err := vc.pipeline.ErrorSet()
	if err != nil {
		respondInternalError(c, err, "error view")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": len(items),
	})
}

// Stats returns stage counts per state.
// GET /api/views/stats
func (vc *ViewsController) Stats(c *gin.Context) {
	stats, err := vc.pipeline.Stats()
	if err != nil {
		respondInternalError(c, err, "pipeline stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{"stages": stats})
}
