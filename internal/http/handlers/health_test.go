package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/geocoder89/todohub/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]handlers.Check
		wantStatus int
	}{
		{name: "no checks", checks: nil, wantStatus: http.StatusOK},
		{name: "nil check skipped", checks: map[string]handlers.Check{"redis": nil}, wantStatus: http.StatusOK},
		{
			name: "all healthy",
			checks: map[string]handlers.Check{
				"postgres": func(context.Context) error { return nil },
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "dependency down",
			checks: map[string]handlers.Check{
				"postgres": func(context.Context) error { return nil },
				"redis":    func(context.Context) error { return errors.New("dial tcp: refused") },
			},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handlers.NewHealthHandler(tt.checks)

			r := gin.New()
			r.GET("/healthz", h.Healthz)
			r.GET("/readyz", h.Readyz)

			if w := doRequest(r, http.MethodGet, "/healthz", "", nil); w.Code != http.StatusOK {
				t.Fatalf("healthz must always be 200, got %d", w.Code)
			}
			if w := doRequest(r, http.MethodGet, "/readyz", "", nil); w.Code != tt.wantStatus {
				t.Fatalf("readyz: got %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestReadyz_FailsWhileShuttingDown(t *testing.T) {
	h := handlers.NewHealthHandler(nil)

	r := gin.New()
	r.GET("/readyz", h.Readyz)

	if w := doRequest(r, http.MethodGet, "/readyz", "", nil); w.Code != http.StatusOK {
		t.Fatalf("got %d, want 200 before shutdown", w.Code)
	}

	h.SetShuttingDown()

	if w := doRequest(r, http.MethodGet, "/readyz", "", nil); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("got %d, want 503 while shutting down", w.Code)
	}
}

func TestDocs(t *testing.T) {
	r := gin.New()
	r.GET("/docs", handlers.SwaggerUI)
	r.GET("/docs/openapi.yaml", handlers.OpenAPISpec)

	ui := doRequest(r, http.MethodGet, "/docs", "", nil)
	if ui.Code != http.StatusOK || !strings.Contains(ui.Body.String(), "/docs/openapi.yaml") {
		t.Fatalf("unexpected docs page: %d", ui.Code)
	}

	doc := doRequest(r, http.MethodGet, "/docs/openapi.yaml", "", nil)
	if doc.Code != http.StatusOK || !strings.Contains(doc.Body.String(), "/auth/token") {
		t.Fatalf("unexpected openapi document: %d", doc.Code)
	}
}
