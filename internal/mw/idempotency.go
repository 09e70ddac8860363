package mw

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

// IdempotencyHeader names the client-chosen key for a retried write.
const IdempotencyHeader = "Idempotency-Key"

type cachedResponse struct {
	pending bool
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

// Idempotency replays the stored response when a write is retried with the
// same Idempotency-Key by the same caller. A retry that arrives while the
// first attempt is still running gets 409. Server errors are not stored so
// the client may retry them.
func Idempotency(store *cache.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" || c.Request.Method == http.MethodGet {
			c.Next()
			return
		}
		if uid, ok := UserID(c); ok {
			key = formatUser(uid) + "|" + key
		}
		key = c.Request.Method + " " + c.FullPath() + "|" + key

		if err := store.Add(key, cachedResponse{pending: true}, ttl); err != nil {
			resp, found := store.Get(key)
			if !found {
				// Expired between Add and Get; treat as in flight.
				c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "request with this idempotency key is in progress"})
				return
			}
			cached := resp.(cachedResponse)
			if cached.pending {
				c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "request with this idempotency key is in progress"})
				return
			}
			for k, v := range cached.headers {
				c.Writer.Header()[k] = v
			}
			c.Writer.Header().Set("Idempotent-Replayed", "true")
			c.Writer.WriteHeader(cached.status)
			c.Writer.Write(cached.body)
			c.Abort()
			return
		}

		blw := &bodyCacheWriter{body: bytes.NewBuffer(nil), ResponseWriter: c.Writer}
		c.Writer = blw

		stored := false
		defer func() {
			// A panicking handler must not leave the key in progress.
			if !stored {
				store.Delete(key)
			}
		}()

		c.Next()

		if blw.Status() >= http.StatusInternalServerError {
			return
		}
		store.Set(key, cachedResponse{
			status:  blw.Status(),
			headers: blw.Header().Clone(),
			body:    blw.body.Bytes(),
		}, ttl)
		stored = true
	}
}
