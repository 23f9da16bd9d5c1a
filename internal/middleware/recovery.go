package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/randwise/api/internal/logger"
)

// Recovery turns a panic in a handler into a 500 response in the standard
// error envelope. The calculator, session and query are logged with the
// stack so a panicking deep link can be replayed.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}

			requestID := GetRequestID(c)
			requestLogger := GetLogger(c)
			if requestLogger == nil {
				requestLogger = log
			}

			fields := map[string]interface{}{
				"request_id": requestID,
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
				"stack":      string(debug.Stack()),
			}
			if name := c.Param("name"); name != "" {
				fields["calculator"] = name
			}
			if sessionID := GetSessionID(c); sessionID != "" {
				fields["session_id"] = sessionID
			}
			if c.Request.URL.RawQuery != "" {
				fields["query"] = c.Request.URL.RawQuery
			}
			requestLogger.Error("Panic recovered", fmt.Errorf("panic: %v", recovered), fields)

			c.Header("Cache-Control", "no-store")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{
					"code":       "INTERNAL_SERVER_ERROR",
					"message":    "An unexpected error occurred",
					"request_id": requestID,
				},
			})
		}()

		c.Next()
	}
}
