// file: internal/server/middleware/basicauth_test.go
// version: 2.0.0
// guid: b2c3d4e5-f6a7-8b9c-0d1e-2f3a4b5c6d7e

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/jdfalk/library-catalog/internal/config"
)

func setupBasicAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(BasicAuth())
	r.GET("/api/v1/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/api/v1/cache/stats", func(c *gin.Context) {
		c.String(http.StatusOK, "stats")
	})
	return r
}

func enableBasicAuth(t *testing.T, password string) {
	t.Helper()
	saved := config.Current()
	t.Cleanup(func() { config.Publish(saved) })
	config.Publish(config.Config{
		BasicAuthEnabled:  true,
		BasicAuthUsername: "admin",
		BasicAuthPassword: password,
	})
}

func TestBasicAuth_Disabled(t *testing.T) {
	saved := config.Current()
	t.Cleanup(func() { config.Publish(saved) })
	config.Publish(config.Config{BasicAuthEnabled: false})

	r := setupBasicAuthRouter()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/cache/stats", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200 when basic auth disabled, got %d", w.Code)
	}
}

func TestBasicAuth_NoCredentials(t *testing.T) {
	enableBasicAuth(t, "secret")

	r := setupBasicAuthRouter()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/cache/stats", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without credentials, got %d", w.Code)
	}
	if w.Header().Get("WWW-Authenticate") == "" {
		t.Error("expected WWW-Authenticate header")
	}
}

func TestBasicAuth_WrongCredentials(t *testing.T) {
	enableBasicAuth(t, "secret")

	r := setupBasicAuthRouter()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/cache/stats", nil)
	req.SetBasicAuth("admin", "wrong")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with wrong password, got %d", w.Code)
	}
}

func TestBasicAuth_CorrectCredentials(t *testing.T) {
	enableBasicAuth(t, "secret")

	r := setupBasicAuthRouter()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/cache/stats", nil)
	req.SetBasicAuth("admin", "secret")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200 with correct credentials, got %d", w.Code)
	}
}

func TestBasicAuth_BcryptHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	enableBasicAuth(t, string(hash))

	r := setupBasicAuthRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/cache/stats", nil)
	req.SetBasicAuth("admin", "s3cret")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 with password matching hash, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/v1/cache/stats", nil)
	req.SetBasicAuth("admin", string(hash))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("sending the hash itself must not authenticate, got %d", w.Code)
	}
}

func TestBasicAuth_HealthExempt(t *testing.T) {
	enableBasicAuth(t, "secret")

	r := setupBasicAuthRouter()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/health", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for health endpoint without auth, got %d", w.Code)
	}
}

func TestIsBcryptHash(t *testing.T) {
	if isBcryptHash("secret") {
		t.Error("plaintext detected as hash")
	}
	hash, _ := bcrypt.GenerateFromPassword([]byte("x"), bcrypt.MinCost)
	if !isBcryptHash(string(hash)) {
		t.Error("bcrypt hash not detected")
	}
}
