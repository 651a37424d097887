package middleware

import "github.com/gin-gonic/gin"

const (
	// CacheHeader reports whether a cached payload was served.
	CacheHeader = "X-Cache"
	cacheHitKey = "cache_hit"
)

// SetCacheHit records the cache outcome on the context and the response headers.
// It must run before the body is written.
func SetCacheHit(c *gin.Context, hit bool) {
	c.Set(cacheHitKey, hit)
	if hit {
		c.Header(CacheHeader, "HIT")
		return
	}
	c.Header(CacheHeader, "MISS")
}

// CacheHit reports the outcome recorded by SetCacheHit.
func CacheHit(c *gin.Context) bool {
	return c.GetBool(cacheHitKey)
}
