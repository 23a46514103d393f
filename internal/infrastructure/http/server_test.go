package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/go-extras/go-kit/must"

	"github.com/mrops-br/products-webapp/internal/app/dto"
	"github.com/mrops-br/products-webapp/internal/app/seed"
	"github.com/mrops-br/products-webapp/internal/app/service"
	"github.com/mrops-br/products-webapp/internal/infrastructure/config"
	httpserver "github.com/mrops-br/products-webapp/internal/infrastructure/http"
	"github.com/mrops-br/products-webapp/internal/infrastructure/http/handler"
	"github.com/mrops-br/products-webapp/internal/infrastructure/http/response"
	"github.com/mrops-br/products-webapp/internal/infrastructure/repository/memory"
	"github.com/mrops-br/products-webapp/internal/infrastructure/telemetry"
)

func newTestServer(t *testing.T, ready httpserver.ReadinessCheck) *httptest.Server {
	t.Helper()
	ctx := context.Background()

	telem := must.Must(telemetry.NewNoOpTelemetry(ctx, &config.OTLPConfig{ServiceName: "products-api", Environment: "test"}, slog.LevelError))
	t.Cleanup(func() { _ = telem.Shutdown(context.Background()) })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracer := telem.TracerProvider.Tracer("test")
	meter := telem.MeterProvider.Meter("test")

	repo := memory.NewProductRepository(tracer, logger)
	qt.New(t).Assert(seed.NewInitializer(repo, tracer, meter, logger).Initialize(ctx), qt.IsNil)

	if ready == nil {
		ready = func(ctx context.Context) error {
			_, err := repo.Count(ctx)
			return err
		}
	}

	productHandler := handler.NewProductHandler(service.NewProductService(repo, tracer, meter, logger), logger)
	server := httpserver.NewServer(&config.ServerConfig{Host: "127.0.0.1", Port: "0"}, productHandler, ready, logger, telem)

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func decode[T any](c *qt.C, resp *http.Response) T {
	defer resp.Body.Close()
	var v T
	c.Assert(json.NewDecoder(resp.Body).Decode(&v), qt.IsNil)
	return v
}

func TestListSeededProducts(t *testing.T) {
	c := qt.New(t)
	ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/products")
	c.Assert(err, qt.IsNil)
	c.Assert(resp.StatusCode, qt.Equals, http.StatusOK)
	c.Assert(resp.Header.Get("Content-Type"), qt.Equals, "application/json")

	products := decode[[]dto.ProductResponse](c, resp)
	c.Assert(products, qt.DeepEquals, []dto.ProductResponse{
		{ID: 1, Name: "XBOX", Color: "Black"},
		{ID: 2, Name: "PS5", Color: "White"},
	})
}

func TestGetProduct(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		status    int
		errorType string
	}{
		{name: "existing", path: "/products/2", status: http.StatusOK},
		{name: "missing", path: "/products/99", status: http.StatusNotFound, errorType: "not_found"},
		{name: "not a number", path: "/products/abc", status: http.StatusBadRequest, errorType: "bad_request"},
		{name: "zero", path: "/products/0", status: http.StatusBadRequest, errorType: "bad_request"},
	}

	ts := newTestServer(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)

			resp, err := http.Get(ts.URL + tt.path)
			c.Assert(err, qt.IsNil)
			c.Assert(resp.StatusCode, qt.Equals, tt.status)

			if tt.errorType == "" {
				product := decode[dto.ProductResponse](c, resp)
				c.Assert(product, qt.Equals, dto.ProductResponse{ID: 2, Name: "PS5", Color: "White"})
				return
			}
			body := decode[response.ErrorResponse](c, resp)
			c.Assert(body.Error, qt.Equals, tt.errorType)
		})
	}
}

func TestCreateProduct(t *testing.T) {
	c := qt.New(t)
	ts := newTestServer(t, nil)

	resp, err := http.Post(ts.URL+"/products", "application/json", strings.NewReader(`{"name":"Controller","color":"Red"}`))
	c.Assert(err, qt.IsNil)
	c.Assert(resp.StatusCode, qt.Equals, http.StatusCreated)
	c.Assert(decode[dto.ProductResponse](c, resp), qt.Equals, dto.ProductResponse{ID: 3, Name: "Controller", Color: "Red"})

	resp, err = http.Post(ts.URL+"/products", "application/json", strings.NewReader(`{"name":"Controller"}`))
	c.Assert(err, qt.IsNil)
	c.Assert(resp.StatusCode, qt.Equals, http.StatusBadRequest)
	c.Assert(decode[response.ErrorResponse](c, resp).Message, qt.Equals, "product color is required")

	resp, err = http.Post(ts.URL+"/products", "application/json", strings.NewReader(`{`))
	c.Assert(err, qt.IsNil)
	c.Assert(resp.StatusCode, qt.Equals, http.StatusBadRequest)
	resp.Body.Close()
}

func TestHealthAndReadiness(t *testing.T) {
	c := qt.New(t)

	ts := newTestServer(t, nil)
	for _, path := range []string{"/health", "/ready", "/metrics"} {
		resp, err := http.Get(ts.URL + path)
		c.Assert(err, qt.IsNil)
		c.Assert(resp.StatusCode, qt.Equals, http.StatusOK, qt.Commentf("path %s", path))
		resp.Body.Close()
	}

	down := newTestServer(t, func(context.Context) error { return errors.New("database is locked") })
	resp, err := http.Get(down.URL + "/ready")
	c.Assert(err, qt.IsNil)
	c.Assert(resp.StatusCode, qt.Equals, http.StatusServiceUnavailable)
	c.Assert(decode[response.ErrorResponse](c, resp), qt.Equals, response.ErrorResponse{
		Error:   "service_unavailable",
		Message: "database is locked",
	})
}
