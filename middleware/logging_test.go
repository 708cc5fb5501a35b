package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"reelfake-backend/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLoggerWritesAccessLine(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger.Set(zap.New(core))
	defer logger.Set(zap.NewNop())

	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/api/movies", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{}) })
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/movies?page=2", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", nil))

	if w.Header().Get(RequestIDHeader) == "" {
		t.Error("expected a request id header")
	}
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 access line, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["path"] != "/api/movies" || fields["query"] != "page=2" {
		t.Errorf("unexpected fields: %v", fields)
	}
	if fields["status"] != int64(http.StatusOK) {
		t.Errorf("expected status 200, got %v", fields["status"])
	}
}

func TestRequestLoggerKeepsIncomingRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("expected request id abc-123, got %q", got)
	}
}
