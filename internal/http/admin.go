package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tmorren/selah/internal/access"
)

type AdminController struct {
	guard *access.Guard
}

func NewAdminController(guard *access.Guard) *AdminController {
	return &AdminController{guard: guard}
}

// RequireAdmin blocks non-admin callers. Applied to the /api/admin group.
func (ac *AdminController) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		isAdmin, err := ac.guard.IsAdmin(user.ID)
		if err != nil {
			respondInternalError(c, err, "admin check")
			c.Abort()
			return
		}
		if !isAdmin {
			respondForbidden(c, "admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// UserStats returns per-user aggregate counts across all accounts.
// GET /api/admin/stats
func (ac *AdminController) UserStats(c *gin.Context) {
	user := CurrentUser(c)

	stats, err := ac.guard.AggregateStats(user.ID)
	if err != nil {
		if errors.Is(err, access.ErrForbidden) {
			respondForbidden(c, "admin access required")
			return
		}
		respondInternalError(c, err, "aggregate stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": stats})
}
