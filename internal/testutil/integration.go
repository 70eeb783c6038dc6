// file: internal/testutil/integration.go
// version: 2.0.0
// guid: a1b2c3d4-e5f6-7890-abcd-ef1234567890

package testutil

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/jdfalk/library-catalog/internal/config"
)

// IntegrationEnv holds all resources for an integration test.
type IntegrationEnv struct {
	GoogleBooks *httptest.Server
	OpenLibrary *httptest.Server
	CacheDir    string
	TempDir     string
	T           *testing.T
}

// SetupIntegration starts fake Google Books and Open Library servers that
// know about the Hobbit fixture, creates a temp cache directory, and points
// config.AppConfig at all of them. The same config is published for request
// handlers. The previous configs are restored on cleanup.
func SetupIntegration(t *testing.T) *IntegrationEnv {
	t.Helper()

	gin.SetMode(gin.TestMode)

	tmpBase := t.TempDir()
	cacheDir := filepath.Join(tmpBase, "cache")
	require.NoError(t, os.MkdirAll(cacheDir, 0755))

	gb := MockGoogleBooksServer(t, map[string]string{
		HobbitISBN: GoogleBooksHobbitISBNResponse,
		"intitle":  GoogleBooksHobbitTitleResponse,
	})
	ol := MockOpenLibraryServer(t, map[string]string{
		HobbitISBN: OpenLibraryHobbitResponse,
	})

	prev := config.AppConfig
	prevPublished := config.Current()
	config.AppConfig = config.Config{
		CacheBackend:       "pebble",
		CachePath:          filepath.Join(cacheDir, "cache.pebble"),
		CacheTTL:           7 * 24 * time.Hour,
		MaxRetries:         0,
		BaseDelay:          time.Millisecond,
		MaxDelay:           time.Millisecond,
		FetchTimeout:       2 * time.Second,
		GoogleBooksBaseURL: gb.URL,
		OpenLibraryBaseURL: ol.URL,
		RateLimitPerMinute: 1000,
		RateLimitBurst:     1000,
		LogLevel:           "debug",
	}
	config.Publish(config.AppConfig)

	t.Cleanup(func() {
		gb.Close()
		ol.Close()
		config.AppConfig = prev
		config.Publish(prevPublished)
	})

	return &IntegrationEnv{
		GoogleBooks: gb,
		OpenLibrary: ol,
		CacheDir:    cacheDir,
		TempDir:     tmpBase,
		T:           t,
	}
}

// WriteFile writes content under the environment's temp dir and returns
// the full path.
func (env *IntegrationEnv) WriteFile(name, content string) string {
	env.T.Helper()
	path := filepath.Join(env.TempDir, name)
	require.NoError(env.T, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(env.T, os.WriteFile(path, []byte(content), 0644))
	return path
}
