package mw

import (
	"bytes"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

type cachedResponse struct {
	status  int
	headers http.Header
	body    []byte
}

type bodyCacheWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyCacheWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w bodyCacheWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// ResponseCache holds cached GET responses. Every successful write bumps the
// generation, which is part of each key, so a response computed before a write
// can never be served after it.
type ResponseCache struct {
	store      *cache.Cache
	generation atomic.Uint64
}

// NewResponseCache creates a ResponseCache whose entries live for ttl.
func NewResponseCache(ttl time.Duration) *ResponseCache {
	return &ResponseCache{store: cache.New(ttl, 2*ttl)}
}

func (rc *ResponseCache) key(generation uint64, uri string) string {
	return strconv.FormatUint(generation, 10) + "|" + uri
}

// Invalidate starts a new generation and drops every stored response.
func (rc *ResponseCache) Invalidate() {
	rc.generation.Add(1)
	rc.store.Flush()
}

// Cache is a middleware for in-memory caching of GET requests.
// Entries are keyed by generation and request URI.
func Cache(rc *ResponseCache, duration time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		generation := rc.generation.Load()
		key := rc.key(generation, c.Request.RequestURI)
		if resp, found := rc.store.Get(key); found {
			cached := resp.(cachedResponse)
			for k, v := range cached.headers {
				c.Writer.Header()[k] = v
			}
			c.Writer.Header().Set("X-Cache", "HIT")
			c.Writer.WriteHeader(cached.status)
			c.Writer.Write(cached.body)
			c.Abort()
			return
		}

		blw := &bodyCacheWriter{body: bytes.NewBuffer(nil), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		// Only cache successful responses, and only if no write landed meanwhile.
		if blw.Status() >= 200 && blw.Status() < 300 && rc.generation.Load() == generation {
			response := cachedResponse{
				status:  blw.Status(),
				headers: blw.Header().Clone(),
				body:    blw.body.Bytes(),
			}
			rc.store.Set(key, response, duration)
		}
	}
}

// InvalidateOnWrite invalidates the response cache after every successful
// non-GET request, so lists and the calendar never outlive a mutation.
func InvalidateOnWrite(rc *ResponseCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method == http.MethodGet {
			return
		}
		if status := c.Writer.Status(); status >= 200 && status < 300 {
			rc.Invalidate()
		}
	}
}
