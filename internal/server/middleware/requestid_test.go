// file: internal/server/middleware/requestid_test.go
// version: 1.0.0
// guid: 5822b4c9-4339-438f-aade-e9dcae89ad6a

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	ulid "github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/id", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/id", nil))
	id := resp.Header().Get(RequestIDHeader)
	assert.Equal(t, id, resp.Body.String())
	_, err := ulid.ParseStrict(id)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(RequestIDHeader, "client-supplied")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, "client-supplied", resp.Body.String())
}
