// file: internal/server/middleware/basicauth.go
// version: 2.0.0
// guid: a1b2c3d4-e5f6-7a8b-9c0d-1e2f3a4b5c6d

package middleware

import (
	"crypto/subtle"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/jdfalk/library-catalog/internal/config"
)

const basicAuthRealm = `Basic realm="Library Catalog"`

// BasicAuth returns a Gin middleware that enforces HTTP Basic Authentication
// when the published config enables it. Settings are read per
// request so a reloaded config takes effect immediately. The configured
// password may be plaintext or a bcrypt hash.
func BasicAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg := config.Current()
		if !cfg.BasicAuthEnabled {
			c.Next()
			return
		}

		// Exempt health endpoint
		if c.Request.URL.Path == "/api/v1/health" {
			c.Next()
			return
		}

		user, pass, ok := c.Request.BasicAuth()
		if !ok {
			unauthorized(c)
			return
		}

		userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(cfg.BasicAuthUsername)) == 1
		passMatch := passwordMatches(pass, cfg.BasicAuthPassword)

		if !userMatch || !passMatch {
			log.Printf("[WARN] basic auth failed for user %q from %s", user, c.ClientIP())
			unauthorized(c)
			return
		}

		c.Next()
	}
}

// passwordMatches compares against a bcrypt hash when expected looks like
// one, and in constant time otherwise.
func passwordMatches(given, expected string) bool {
	if isBcryptHash(expected) {
		return bcrypt.CompareHashAndPassword([]byte(expected), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(given), []byte(expected)) == 1
}

func isBcryptHash(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}

func unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", basicAuthRealm)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":  "authentication required",
		"code":   "UNAUTHORIZED",
		"status": http.StatusUnauthorized,
	})
}
