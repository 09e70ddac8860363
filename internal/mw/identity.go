package mw

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// UserHeader carries the caller's user ID, set by the front-desk gateway.
const UserHeader = "X-User-ID"

const userKey = "user_id"

// Identity reads the caller's user ID into the context. A malformed header is
// rejected; a missing one is allowed through.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(UserHeader)
		if raw == "" {
			c.Next()
			return
		}
		uid, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || uid <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "X-User-ID must be a positive integer"})
			return
		}
		c.Set(userKey, uid)
		c.Next()
	}
}

// RequireUser rejects requests without an identity.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := UserID(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "X-User-ID header is required"})
			return
		}
		c.Next()
	}
}

// UserID returns the identity set by Identity.
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return 0, false
	}
	uid, ok := v.(int64)
	return uid, ok
}

func formatUser(uid int64) string {
	return strconv.FormatInt(uid, 10)
}
