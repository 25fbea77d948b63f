package middlewares

import (
	"errors"
	"net/http"

	"github.com/geocoder89/todohub/internal/auth"
	"github.com/geocoder89/todohub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

func (m *AuthMiddleware) RequireRole(required user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var identity *auth.Identity
		if id, ok := IdentityFromContext(c); ok {
			identity = &id
		}

		err := auth.RequireRole(identity, required)

		switch {
		case err == nil:
			c.Next()
		case errors.Is(err, auth.ErrForbidden):
			abortWithError(c, http.StatusForbidden, "forbidden", "Insufficient role.")
		default:
			abortUnauthorized(c)
		}
	}
}
