package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/mrops-br/products-webapp/internal/infrastructure/config"
)

var testOTLP = &config.OTLPConfig{ServiceName: "products-api", Environment: "test"}

func TestLoggerInjectsTraceContext(t *testing.T) {
	c := qt.New(t)

	var buf bytes.Buffer
	logger := newLogger(&buf, testOTLP, slog.LevelInfo)

	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	ctx = WithHTTPRoute(ctx, "/products/{id}")
	logger.InfoContext(ctx, "hello")
	span.End()

	var record map[string]any
	c.Assert(json.Unmarshal(buf.Bytes(), &record), qt.IsNil)
	c.Assert(record["msg"], qt.Equals, "hello")
	c.Assert(record["service.name"], qt.Equals, "products-api")
	c.Assert(record["environment"], qt.Equals, "test")
	c.Assert(record["trace_id"], qt.Equals, span.SpanContext().TraceID().String())
	c.Assert(record["span_id"], qt.Equals, span.SpanContext().SpanID().String())
	c.Assert(record["http.route"], qt.Equals, "/products/{id}")
}

func TestLoggerRespectsLevel(t *testing.T) {
	c := qt.New(t)

	var buf bytes.Buffer
	logger := newLogger(&buf, testOTLP, slog.LevelWarn)
	logger.Info("dropped")

	c.Assert(buf.Len(), qt.Equals, 0)
}

func TestNoOpTelemetryServesPrometheusMetrics(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	telem, err := NewNoOpTelemetry(ctx, testOTLP, slog.LevelError)
	c.Assert(err, qt.IsNil)
	defer func() { c.Assert(telem.Shutdown(ctx), qt.IsNil) }()

	counter, err := telem.MeterProvider.Meter("test").Int64Counter("products.seeded.total")
	c.Assert(err, qt.IsNil)
	counter.Add(ctx, 2)

	families, err := telem.Registry.Gather()
	c.Assert(err, qt.IsNil)

	var found bool
	for _, mf := range families {
		if strings.HasPrefix(mf.GetName(), "products_seeded") {
			found = true
			c.Assert(mf.GetMetric()[0].GetCounter().GetValue(), qt.Equals, float64(2))
		}
	}
	c.Assert(found, qt.IsTrue)
}
