// file: internal/server/middleware/request_size_test.go
// version: 2.0.0
// guid: 8f5ed221-2f04-49aa-86f7-f63fa1732b2d

package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMethodHasBody(t *testing.T) {
	t.Parallel()

	assert.True(t, methodHasBody(http.MethodPost))
	assert.True(t, methodHasBody(http.MethodPut))
	assert.True(t, methodHasBody(http.MethodPatch))
	assert.False(t, methodHasBody(http.MethodGet))
	assert.False(t, methodHasBody(http.MethodDelete))
}

func TestMaxRequestBodySize_Middleware(t *testing.T) {
	t.Parallel()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(MaxRequestBodySize(8))
	router.POST("/api/v1/metadata/resolve", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/api/v1/metadata/search", func(c *gin.Context) { c.Status(http.StatusOK) })

	over := httptest.NewRequest(http.MethodPost, "/api/v1/metadata/resolve", bytes.NewReader(bytes.Repeat([]byte("a"), 9)))
	overResp := httptest.NewRecorder()
	router.ServeHTTP(overResp, over)
	assert.Equal(t, http.StatusRequestEntityTooLarge, overResp.Code)
	assert.Contains(t, overResp.Body.String(), "PAYLOAD_TOO_LARGE")

	within := httptest.NewRequest(http.MethodPost, "/api/v1/metadata/resolve", bytes.NewReader(bytes.Repeat([]byte("a"), 8)))
	withinResp := httptest.NewRecorder()
	router.ServeHTTP(withinResp, within)
	assert.Equal(t, http.StatusOK, withinResp.Code)

	// Methods without request bodies should pass untouched.
	getReq := httptest.NewRequest(http.MethodGet, "/api/v1/metadata/search", nil)
	getResp := httptest.NewRecorder()
	router.ServeHTTP(getResp, getReq)
	assert.Equal(t, http.StatusOK, getResp.Code)
}

func TestMaxRequestBodySize_DefaultLimit(t *testing.T) {
	t.Parallel()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(MaxRequestBodySize(0))
	router.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/x", bytes.NewReader(bytes.Repeat([]byte("a"), int(DefaultBodyLimit)+1)))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
}
