// file: internal/server/handlers.go
// version: 1.0.0
// guid: 082d7db0-685a-46ae-b118-c4adef2343bf

package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jdfalk/library-catalog/internal/config"
	"github.com/jdfalk/library-catalog/internal/isbn"
)

// ResolveRequest is the body of POST /api/v1/metadata/resolve.
type ResolveRequest struct {
	Identifier string `json:"identifier" binding:"required"`
}

// NormalizeResponse is returned by GET /api/v1/isbn/normalize.
type NormalizeResponse struct {
	Raw        string `json:"raw"`
	Normalized string `json:"normalized"`
	Valid      bool   `json:"valid"`
}

// ClearResponse reports how many cache entries a maintenance call removed.
type ClearResponse struct {
	Removed int `json:"removed"`
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"timestamp":     time.Now().Unix(),
		"version":       Version,
		"cache_backend": config.Current().CacheBackend,
		"sources":       s.resolver.Sources(),
	})
}

func (s *Server) normalizeIdentifier(c *gin.Context) {
	raw, ok := c.GetQuery("raw")
	if !ok {
		RespondWithValidationError(c, "raw", "query parameter is required")
		return
	}
	RespondWithOK(c, NormalizeResponse{
		Raw:        raw,
		Normalized: isbn.Normalize(raw),
		Valid:      isbn.IsValid(raw),
	})
}

func (s *Server) resolveMetadata(c *gin.Context) {
	var req ResolveRequest
	if HandleBindError(c, c.ShouldBindJSON(&req)) {
		return
	}

	ol := operationLogger(c, "resolveMetadata")
	ol.SetResourceID(req.Identifier)
	ol.LogStart()

	meta := s.resolver.Resolve(c.Request.Context(), req.Identifier)
	if meta == nil {
		ol.LogMiss(http.StatusNotFound)
		RespondWithMetadataUnavailable(c, req.Identifier)
		return
	}

	ol.AddDetail("source", meta.Source)
	ol.LogSuccess(http.StatusOK)
	RespondWithOK(c, meta)
}

func (s *Server) searchMetadata(c *gin.Context) {
	title := strings.TrimSpace(c.Query("title"))
	if title == "" {
		RespondWithValidationError(c, "title", "query parameter is required")
		return
	}

	ol := operationLogger(c, "searchMetadata")
	ol.AddDetail("title", title)
	ol.LogStart()

	meta := s.resolver.SearchByTitle(c.Request.Context(), title)
	if meta == nil {
		ol.LogMiss(http.StatusNotFound)
		RespondWithMetadataUnavailable(c, title)
		return
	}

	ol.SetResourceID(meta.Identifier)
	ol.LogSuccess(http.StatusOK)
	RespondWithOK(c, meta)
}

func (s *Server) cacheStats(c *gin.Context) {
	RespondWithOK(c, s.store.Stats(c.Request.Context()))
}

func (s *Server) clearExpired(c *gin.Context) {
	ttl, ok := ParseQueryDuration(c, "ttl", config.Current().CacheTTL)
	if !ok {
		RespondWithValidationError(c, "ttl", "must be a non-negative duration such as 168h")
		return
	}
	removed := s.store.ClearExpired(c.Request.Context(), ttl)
	RespondWithOK(c, ClearResponse{Removed: removed})
}

func (s *Server) clearAll(c *gin.Context) {
	removed := s.store.ClearAll(c.Request.Context())
	RespondWithOK(c, ClearResponse{Removed: removed})
}
