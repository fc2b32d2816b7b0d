package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tmorren/selah/internal/database/spreads"
	"github.com/tmorren/selah/internal/entities"
)

// SpreadStore defines spread lookups for the reader application.
type SpreadStore interface {
	GetByCode(code string) (*entities.Spread, error)
	Count() (int64, error)
}

type SpreadsController struct {
	store SpreadStore
}

func NewSpreadsController(store SpreadStore) *SpreadsController {
	return &SpreadsController{store: store}
}

// GetSpread returns one spread with stages and images.
// GET /api/spreads/:code
func (sc *SpreadsController) GetSpread(c *gin.Context) {
	code := c.Param("code")

	spread, err := sc.store.GetByCode(code)
	if err != nil {
		if errors.Is(err, spreads.ErrSpreadNotFound) {
			respondNotFound(c, "spread")
			return
		}
		respondInternalError(c, err, "get spread")
		return
	}

	c.JSON(http.StatusOK, spread)
}

// GetCatalogSize returns the total number of catalogued spreads.
// GET /api/spreads/count
func (sc *SpreadsController) GetCatalogSize(c *gin.Context) {
	count, err := sc.store.Count()
	if err != nil {
		respondInternalError(c, err, "catalog size")
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}
