package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDKey is the context key for the request ID
	RequestIDKey = "request_id"
	// RequestIDHeader is the HTTP header name for the request ID
	RequestIDHeader = "X-Request-ID"

	// SessionIDKey is the context key for the calculator session ID
	SessionIDKey = "session_id"
	// SessionIDHeader carries the browser session that owns calculator state
	SessionIDHeader = "X-Session-ID"

	maxInboundIDLength = 128
)

// RequestID tags each request with an ID, reusing one set by an upstream
// proxy, and echoes it on the response.
func RequestID() gin.HandlerFunc {
	return propagateID(RequestIDHeader, RequestIDKey)
}

// Session reads the caller's session ID, minting one when the header is
// absent, and echoes it on the response so the client can keep it.
// Only the header's shape is checked here; the state service rejects IDs
// that are not UUIDs.
func Session() gin.HandlerFunc {
	return propagateID(SessionIDHeader, SessionIDKey)
}

func propagateID(header, key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(header)
		if !usableID(id) {
			id = uuid.NewString()
		}

		c.Set(key, id)
		c.Writer.Header().Set(header, id)

		c.Next()
	}
}

// usableID rejects empty, oversized and non-printable header values so they
// never reach logs or response headers.
func usableID(id string) bool {
	if id == "" || len(id) > maxInboundIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

// GetRequestID retrieves the request ID from the Gin context.
// Returns an empty string if not found.
func GetRequestID(c *gin.Context) string {
	return getString(c, RequestIDKey)
}

// GetSessionID retrieves the session ID from the Gin context.
// Returns an empty string if not found.
func GetSessionID(c *gin.Context) string {
	return getString(c, SessionIDKey)
}

func getString(c *gin.Context, key string) string {
	if v, exists := c.Get(key); exists {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
