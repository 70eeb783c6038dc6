// file: internal/server/logger.go
// version: 2.0.0
// guid: 1d2e3f4a-5b6c-7d8e-9f0a-1b2c3d4e5f6a

package server

import (
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jdfalk/library-catalog/internal/server/middleware"
)

// OperationLogger tracks the lifecycle of a handler operation
type OperationLogger struct {
	handler    string
	method     string
	path       string
	startTime  time.Time
	requestID  string
	resourceID string
	details    map[string]any
}

// NewOperationLogger creates a new operation logger
func NewOperationLogger(handler, method, path, requestID string) *OperationLogger {
	return &OperationLogger{
		handler:   handler,
		method:    method,
		path:      path,
		startTime: time.Now(),
		requestID: requestID,
		details:   make(map[string]any),
	}
}

// operationLogger builds an OperationLogger from the gin request.
func operationLogger(c *gin.Context, handler string) *OperationLogger {
	return NewOperationLogger(handler, c.Request.Method, c.FullPath(), middleware.GetRequestID(c))
}

// SetResourceID sets the resource ID being operated on
func (ol *OperationLogger) SetResourceID(id string) {
	ol.resourceID = id
}

// AddDetail adds a contextual detail to the operation log
func (ol *OperationLogger) AddDetail(key string, value any) {
	ol.details[key] = value
}

func (ol *OperationLogger) suffix() string {
	s := ""
	if ol.resourceID != "" {
		s = fmt.Sprintf(" (resource: %s)", ol.resourceID)
	}
	if len(ol.details) > 0 {
		s = fmt.Sprintf("%s %v", s, ol.details)
	}
	return s
}

// LogStart logs the start of the operation
func (ol *OperationLogger) LogStart() {
	log.Printf("[DEBUG] [START] %s %s%s [request-id: %s]", ol.method, ol.path, ol.suffix(), ol.requestID)
}

// LogSuccess logs the successful completion of the operation
func (ol *OperationLogger) LogSuccess(statusCode int) {
	log.Printf("[INFO] [SUCCESS] %s %s (%d) in %v%s [request-id: %s]",
		ol.method, ol.path, statusCode, time.Since(ol.startTime), ol.suffix(), ol.requestID)
}

// LogMiss logs an operation that completed without a result
func (ol *OperationLogger) LogMiss(statusCode int) {
	log.Printf("[INFO] [MISS] %s %s (%d) in %v%s [request-id: %s]",
		ol.method, ol.path, statusCode, time.Since(ol.startTime), ol.suffix(), ol.requestID)
}

// RequestLogger provides request-level logging
type RequestLogger struct {
	requestID string
	clientIP  string
	userAgent string
	method    string
	path      string
	startTime time.Time
}

// NewRequestLogger creates a new request logger
func NewRequestLogger(requestID, clientIP, userAgent, method, path string) *RequestLogger {
	return &RequestLogger{
		requestID: requestID,
		clientIP:  clientIP,
		userAgent: userAgent,
		method:    method,
		path:      path,
		startTime: time.Now(),
	}
}

// LogRequest logs the received request
func (rl *RequestLogger) LogRequest() {
	log.Printf("[DEBUG] [REQUEST] %s %s from %s [request-id: %s] [agent: %s]",
		rl.method, rl.path, rl.clientIP, rl.requestID, rl.userAgent)
}

// LogResponse logs the response sent
func (rl *RequestLogger) LogResponse(statusCode int, responseSize int) {
	log.Printf("[INFO] [RESPONSE] %s %s -> %d (%d bytes) in %v [request-id: %s]",
		rl.method, rl.path, statusCode, responseSize, time.Since(rl.startTime), rl.requestID)
}

// RequestLogging logs every request and its response. It must run after
// middleware.RequestID.
func RequestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		rl := NewRequestLogger(middleware.GetRequestID(c), c.ClientIP(), c.Request.UserAgent(),
			c.Request.Method, c.Request.URL.Path)
		rl.LogRequest()
		c.Next()
		rl.LogResponse(c.Writer.Status(), c.Writer.Size())
	}
}
