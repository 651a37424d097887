package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/luct-reporting-api/internal/models"
	"github.com/noah-isme/luct-reporting-api/internal/policy"
	appErrors "github.com/noah-isme/luct-reporting-api/pkg/errors"
	"github.com/noah-isme/luct-reporting-api/pkg/response"
)

const contextScopeKey = "scope"

// Authorize admits the caller when its role holds capability and stores the
// resolved scope for the handler.
func Authorize(capability policy.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			return
		}
		scope, ok := policy.Resolve(capability, claims)
		if !ok {
			response.Error(c, appErrors.ErrForbidden)
			return
		}
		c.Set(contextScopeKey, scope)
		c.Next()
	}
}

// Scope returns the scope stored by Authorize. Routes without a capability
// check get an own scope for the caller.
func Scope(c *gin.Context) models.Scope {
	if value, exists := c.Get(contextScopeKey); exists {
		if scope, ok := value.(models.Scope); ok {
			return scope
		}
	}
	if claims := Claims(c); claims != nil {
		return models.OwnScope(claims.ID)
	}
	return models.Scope{Kind: models.ScopeOwn}
}
