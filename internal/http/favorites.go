package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tmorren/selah/internal/entities"
)

// FavoritesStore defines database operations for favorites management.
type FavoritesStore interface {
	Add(userID uint, spreadCode string) error
	Remove(userID uint, spreadCode string) error
	List(userID uint, limit, offset int) ([]entities.Favorite, int64, error)
	Count(userID uint) (int64, error)
}

type FavoritesController struct {
	store FavoritesStore
}

func NewFavoritesController(store FavoritesStore) *FavoritesController {
	return &FavoritesController{store: store}
}

// AddFavorite marks a spread as favorite for the caller.
// POST /api/spreads/:code/favorite
func (fc *FavoritesController) AddFavorite(c *gin.Context) {
	user := CurrentUser(c)
	code := c.Param("code")

	if err := fc.store.Add(user.ID, code); err != nil {
		respondInternalError(c, err, "add favorite")
		return
	}

	respondSuccess(c, "favorite added")
}

// RemoveFavorite removes the caller's favorite for a spread.
// DELETE /api/spreads/:code/favorite
func (fc *FavoritesController) RemoveFavorite(c *gin.Context) {
	user := CurrentUser(c)
	code := c.Param("code")

	if err := fc.store.Remove(user.ID, code); err != nil {
		respondInternalError(c, err, "remove favorite")
		return
	}

	respondSuccess(c, "favorite removed")
}

// ListFavorites returns the caller's favorites with pagination.
// GET /api/favorites
func (fc *FavoritesController) ListFavorites(c *gin.Context) {
	user := CurrentUser(c)
	limit, offset := parsePagination(c, 50, 100)

	favorites, total, err := fc.store.List(user.ID, limit, offset)
	if err != nil {
		respondInternalError(c, err, "list favorites")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"favorites": favorites,
		"total":     total,
		"limit":     limit,
		"offset":    offset,
	})
}

// GetFavoriteCount returns the caller's favorite count.
// GET /api/favorites/count
func (fc *FavoritesController) GetFavoriteCount(c *gin.Context) {
	user := CurrentUser(c)

	count, err := fc.store.Count(user.ID)
	if err != nil {
		respondInternalError(c, err, "favorite count")
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}
