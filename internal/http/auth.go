package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tmorren/selah/internal/entities"
)

const contextKeyUser = "selah_user"

// UserStore resolves API tokens to accounts.
type UserStore interface {
	GetByToken(token string) (*entities.User, error)
}

// TokenAuthMiddleware authenticates requests via Bearer token. Routes
// behind it always see a caller identity; unauthenticated requests are
// rejected at the boundary.
func TokenAuthMiddleware(store UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "missing bearer token"})
			return
		}

		user, err := store.GetByToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid token"})
			return
		}

		c.Set(contextKeyUser, user)
		c.Next()
	}
}

// CurrentUser returns the authenticated caller, or nil outside the
// token-auth middleware.
func CurrentUser(c *gin.Context) *entities.User {
	value, ok := c.Get(contextKeyUser)
	if !ok {
		return nil
	}
	user, ok := value.(*entities.User)
	if !ok {
		return nil
	}
	return user
}
