package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-results-api/internal/models"
	appErrors "github.com/noah-isme/school-results-api/pkg/errors"
	"github.com/noah-isme/school-results-api/pkg/logger"
	"github.com/noah-isme/school-results-api/pkg/response"
)

// ContextSessionKey is the gin context key storing validated session claims.
const ContextSessionKey = "adminSession"

// SessionValidator checks a raw session token.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*models.SessionClaims, error)
}

// Session protects admin routes. The token is read from the session cookie and
// falls back to a Bearer Authorization header.
func Session(validator SessionValidator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c, cookieName)
		if token == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required"))
			c.Abort()
			return
		}

		claims, err := validator.Validate(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextSessionKey, claims)
		c.Set(logger.ContextActorKey, claims.Name)
		c.Next()
	}
}

// SessionToken extracts the raw token from the cookie or the Authorization header.
func SessionToken(c *gin.Context, cookieName string) string {
	if cookieName != "" {
		if v, err := c.Cookie(cookieName); err == nil && v != "" {
			return v
		}
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// SessionClaims returns the claims stored by Session.
func SessionClaims(c *gin.Context) (*models.SessionClaims, bool) {
	v, ok := c.Get(ContextSessionKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*models.SessionClaims)
	return claims, ok
}
