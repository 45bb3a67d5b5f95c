package mw

import (
	"bytes"
	"net/http"
	"strings"
	"sync"
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

// ResponseCache keeps successful GET responses per user. Any successful
// write by a user drops everything cached for that user, so a reload after
// a check-in always sees the new state.
type ResponseCache struct {
	store *cache.Cache
	ttl   time.Duration

	// generations counts invalidations per user. A GET only stores its
	// response if no invalidation happened while it was being served.
	mu          sync.Mutex
	generations map[string]uint64
}

// NewResponseCache creates a cache whose entries live for ttl.
func NewResponseCache(ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		store:       cache.New(ttl, 2*ttl),
		ttl:         ttl,
		generations: make(map[string]uint64),
	}
}

// Middleware must run after RequireUser; requests without a user pass
// through uncached.
func (rc *ResponseCache) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(ContextUserID)
		if userID == "" {
			c.Next()
			return
		}

		if c.Request.Method != http.MethodGet {
			c.Next()
			if status := c.Writer.Status(); status >= 200 && status < 300 {
				rc.Invalidate(userID)
			}
			return
		}

		key := userPrefix(userID) + c.Request.RequestURI
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

		generation := rc.generation(userID)
		blw := &bodyCacheWriter{body: bytes.NewBuffer(nil), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		// Only cache successful responses
		if blw.Status() >= 200 && blw.Status() < 300 {
			response := cachedResponse{
				status:  blw.Status(),
				headers: blw.Header().Clone(),
				body:    blw.body.Bytes(),
			}
			rc.mu.Lock()
			if rc.generations[userID] == generation {
				rc.store.Set(key, response, rc.ttl)
			}
			rc.mu.Unlock()
		}
	}
}

// Invalidate drops every cached response of the user. Responses still being
// served for that user will not be stored.
func (rc *ResponseCache) Invalidate(userID string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.generations[userID]++
	prefix := userPrefix(userID)
	for key := range rc.store.Items() {
		if strings.HasPrefix(key, prefix) {
			rc.store.Delete(key)
		}
	}
}

func (rc *ResponseCache) generation(userID string) uint64 {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.generations[userID]
}

func userPrefix(userID string) string {
	return userID + "|"
}
