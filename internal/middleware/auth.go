package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"radblog/internal/config"
	apperrors "radblog/internal/errors"
	"radblog/internal/models"
	"radblog/internal/security"
)

const identityKey = "identity"

// Auth extracts and verifies the bearer access token, attaching the resolved
// identity to the request context. Verification is stateless: the token
// carries the role set, so no store lookup happens here and no refresh is
// attempted implicitly.
func Auth(cfg *config.AppConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			abortWithError(c, apperrors.ErrUnauthenticated)
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := security.ParseAccessToken(tokenStr, cfg.Security.JWTAccessSecret)
		if err != nil {
			abortWithError(c, apperrors.ErrUnauthenticated)
			return
		}

		c.Set(identityKey, claims.Identity())
		c.Next()
	}
}

// CurrentIdentity returns the identity the Auth middleware attached.
func CurrentIdentity(c *gin.Context) (models.Identity, bool) {
	val, exists := c.Get(identityKey)
	if !exists {
		return models.Identity{}, false
	}
	identity, ok := val.(models.Identity)
	return identity, ok
}

func abortWithError(c *gin.Context, err error) {
	httpErr := apperrors.MapErrorToHTTP(err)
	c.AbortWithStatusJSON(httpErr.StatusCode, httpErr.ToErrorResponse())
}
