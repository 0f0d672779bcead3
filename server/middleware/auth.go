package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qubeio/microbees/authctx"
	"github.com/qubeio/microbees/logger"
	"github.com/qubeio/microbees/model"
	"github.com/qubeio/microbees/token"
)

const bearerPrefix = "Bearer "

// SubjectLookup resolves a subject id within a tenant's namespace.
// Implemented by the user directory.
type SubjectLookup interface {
	FindByID(ctx context.Context, tenantID, id string) (*model.User, error)
}

// Auth returns the authentication gate. Requests without a bearer token pass
// through unauthenticated; the route group decides whether that is
// acceptable. When a token is present it must verify, its tenant claim must
// resolve, and its subject must exist in that tenant — any failure along the
// way is collapsed into one opaque 401 so callers cannot distinguish which
// tenants or subjects exist.
//
// Tenant resolution uses only the token claim, never a request parameter: a
// token for tenant A can never act against tenant B.
func Auth(codec *token.Codec, lookup SubjectLookup, log *logger.Logger) gin.HandlerFunc {
	log = log.WithComponent("authgate")
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			c.Next()
			return
		}

		identity, err := codec.Verify(strings.TrimPrefix(header, bearerPrefix))
		if err != nil {
			reject(c, log, err)
			return
		}

		if _, err := lookup.FindByID(c.Request.Context(), identity.TenantID, identity.Subject); err != nil {
			reject(c, log, err)
			return
		}

		c.Request = c.Request.WithContext(authctx.Set(c.Request.Context(), authctx.Identity{
			UserID:   identity.Subject,
			TenantID: identity.TenantID,
		}))
		c.Next()
	}
}

// reject writes the single opaque 401 and short-circuits the pipeline.
func reject(c *gin.Context, log *logger.Logger, err error) {
	log.Warn("Rejected bearer token", map[string]interface{}{
		logger.FieldError: err.Error(),
		"path":            c.Request.URL.Path,
	})
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": "Invalid token",
	})
}

// RequireAuth rejects requests that reached the handler without an
// authenticated identity. Applied to protected route groups after Auth.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authctx.Get(c.Request.Context()); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid token",
			})
			return
		}
		c.Next()
	}
}
