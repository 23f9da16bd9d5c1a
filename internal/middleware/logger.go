package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/randwise/api/internal/logger"
)

const loggerKey = "logger"

// Logger stores a request-scoped logger in the context and writes one access
// line per request once the handler chain has run.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestLogger := log.WithRequestID(GetRequestID(c))
		c.Set(loggerKey, requestLogger)

		c.Next()

		status := c.Writer.Status()
		fields := accessFields(c, status, time.Since(start))

		switch {
		case status >= http.StatusInternalServerError:
			requestLogger.Error("Request completed with server error", nil, fields)
		case status >= http.StatusBadRequest:
			requestLogger.Warn("Request completed with client error", fields)
		default:
			requestLogger.Info("Request completed", fields)
		}
	}
}

// accessFields describes a finished request. The raw query is kept because a
// calculator deep link is the request's whole input.
func accessFields(c *gin.Context, status int, elapsed time.Duration) map[string]interface{} {
	fields := map[string]interface{}{
		"method":      c.Request.Method,
		"path":        c.Request.URL.Path,
		"status":      status,
		"duration_ms": elapsed.Milliseconds(),
		"ip":          c.ClientIP(),
		"user_agent":  c.Request.UserAgent(),
	}
	if raw := c.Request.URL.RawQuery; raw != "" {
		fields["query"] = raw
	}
	if name := c.Param("name"); name != "" {
		fields["calculator"] = name
	}
	// Session runs on the state group, after this middleware has started.
	if sessionID := GetSessionID(c); sessionID != "" {
		fields["session_id"] = sessionID
	}
	if status >= http.StatusBadRequest && len(c.Errors) > 0 {
		fields["errors"] = c.Errors.String()
	}
	return fields
}

// GetLogger returns the request-scoped logger, or nil outside Logger.
func GetLogger(c *gin.Context) *logger.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if l, ok := v.(*logger.Logger); ok {
			return l
		}
	}
	return nil
}
