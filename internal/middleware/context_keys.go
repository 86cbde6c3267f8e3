package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/core/domain"
)

const callerKey = contextKey("caller")

// GetCallerFromContext retrieves the authenticated caller from the Gin
// context. It returns the caller and a boolean indicating if it was found.
func GetCallerFromContext(c *gin.Context) (domain.Caller, bool) {
	callerVal, exists := c.Get(string(callerKey))
	if !exists {
		return domain.Caller{}, false
	}

	caller, ok := callerVal.(domain.Caller)
	if !ok {
		// Should not happen if the auth middleware sets it correctly.
		return domain.Caller{}, false
	}
	return caller, true
}

// setCaller stores the authenticated caller in the Gin context.
func setCaller(c *gin.Context, caller domain.Caller) {
	c.Set(string(callerKey), caller)
}
