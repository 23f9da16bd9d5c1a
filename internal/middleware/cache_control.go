package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// CacheControl marks responses as publicly cacheable for maxAge, after which
// shared caches may serve the stale copy for up to staleWhileRevalidate while
// they refetch. Error responses written through the errors package replace
// the header with no-store.
func CacheControl(maxAge, staleWhileRevalidate time.Duration) gin.HandlerFunc {
	value := fmt.Sprintf("public, max-age=%d, s-maxage=%d, stale-while-revalidate=%d",
		int(maxAge.Seconds()), int(maxAge.Seconds()), int(staleWhileRevalidate.Seconds()))

	return func(c *gin.Context) {
		c.Header("Cache-Control", value)
		c.Next()
	}
}
