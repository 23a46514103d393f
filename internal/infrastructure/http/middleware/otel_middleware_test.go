package middleware_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mrops-br/products-webapp/internal/infrastructure/http/middleware"
)

func TestRoutePatternFallsBackToPath(t *testing.T) {
	c := qt.New(t)

	r := httptest.NewRequest(http.MethodGet, "/products/7", nil)
	c.Assert(middleware.RoutePattern(r), qt.Equals, "/products/7")
}

func TestStructuredLogger(t *testing.T) {
	c := qt.New(t)

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(middleware.StructuredLogger(logger))
	router.Get("/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/7", nil))
	c.Assert(rec.Code, qt.Equals, http.StatusNotFound)

	var record map[string]any
	c.Assert(json.Unmarshal(buf.Bytes(), &record), qt.IsNil)
	c.Assert(record["level"], qt.Equals, "WARN")
	c.Assert(record["http.route"], qt.Equals, "/products/{id}")
	c.Assert(record["http.response.status_code"], qt.Equals, float64(404))
	c.Assert(record["request_id"], qt.Not(qt.Equals), nil)
}
