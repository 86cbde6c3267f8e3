package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kristinaglagolevva-alt/billing_ops_app/internal/utils"
)

// pathsToSkip contains paths that should not be tracked.
var pathsToSkip = map[string]bool{
	"/health": true,
}

// PosthogMiddleware creates a Gin middleware handler that tracks API events.
func PosthogMiddleware(posthogClient *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if posthogClient == nil || !posthogClient.IsInitialized() || pathsToSkip[c.Request.URL.Path] {
			c.Next()
			return
		}

		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		caller, exists := GetCallerFromContext(c)
		if !exists {
			return
		}

		// "/api/v1/documents" -> "api_v1_documents"
		event := strings.ReplaceAll(strings.Trim(c.FullPath(), "/"), "/", "_")
		if event == "" {
			return
		}
		posthogClient.Enqueue(caller.UserID, event, map[string]any{
			"method":    c.Request.Method,
			"status":    c.Writer.Status(),
			"workspace": caller.WorkspaceID,
		})
	}
}
