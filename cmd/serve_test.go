// file: cmd/serve_test.go
// version: 1.0.0
// guid: 3f1c7a52-9d4e-4b8a-a6c1-2e7f0b9d5c48

package cmd

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdfalk/library-catalog/internal/config"
	"github.com/jdfalk/library-catalog/internal/server/middleware"
)

const authConfig = "cache:\n  backend: memory\nbasic_auth_enabled: true\nbasic_auth_username: admin\nbasic_auth_password: hunter2\n"

// writeWatchedConfig writes content to a config file viper reads from, with
// HOME pointed at a temp dir so no user config file leaks in.
func writeWatchedConfig(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())
}

func setupReloadTest(t *testing.T) string {
	t.Helper()
	restoreGlobals(t)
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	viper.Reset()
	config.AppConfig = config.Config{}
	config.Publish(config.Config{})
	return filepath.Join(dir, "catalog.yaml")
}

func TestReloadConfigPublishesValidConfig(t *testing.T) {
	path := setupReloadTest(t)
	writeWatchedConfig(t, path, authConfig)

	reloadConfig(path)

	got := config.Current()
	assert.True(t, got.BasicAuthEnabled)
	assert.Equal(t, "admin", got.BasicAuthUsername)
	assert.Equal(t, "hunter2", got.BasicAuthPassword)
	assert.Equal(t, "memory", got.CacheBackend)
}

func TestReloadConfigKeepsPreviousOnInvalidChange(t *testing.T) {
	path := setupReloadTest(t)
	writeWatchedConfig(t, path, authConfig)
	reloadConfig(path)

	// Basic auth without a password fails validation.
	writeWatchedConfig(t, path, "cache:\n  backend: memory\nbasic_auth_enabled: true\nbasic_auth_username: admin\n")
	reloadConfig(path)

	got := config.Current()
	assert.True(t, got.BasicAuthEnabled)
	assert.Equal(t, "hunter2", got.BasicAuthPassword)
	assert.Empty(t, config.AppConfig.BasicAuthPassword, "reload does not write the startup config")
}

// Run with -race: reloads happen on the watcher goroutine while requests
// read the published config.
func TestReloadConfigWhileServingRequests(t *testing.T) {
	path := setupReloadTest(t)
	writeWatchedConfig(t, path, authConfig)
	reloadConfig(path)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.BasicAuth())
	r.GET("/api/v1/cache/stats", func(c *gin.Context) {
		c.String(http.StatusOK, "stats")
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			reloadConfig(path)
		}
	}()

	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cache/stats", nil)
		req.SetBasicAuth("admin", "hunter2")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
	wg.Wait()
}
