// Package seed brings the products store into a usable state at startup:
// it creates the schema and inserts the baseline catalog into an empty table.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mrops-br/products-webapp/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// DefaultProducts returns the baseline catalog, in insertion order.
func DefaultProducts() []domain.Product {
	return []domain.Product{
		{Name: "XBOX", Color: "Black"},
		{Name: "PS5", Color: "White"},
	}
}

// Initializer ensures the schema and seeds the products table once.
type Initializer struct {
	store    domain.Store
	products []domain.Product
	guard    bool

	tracer          trace.Tracer
	logger          *slog.Logger
	seededCounter   metric.Int64Counter
	initializations metric.Int64Counter
}

// Option configures an Initializer.
type Option func(*Initializer)

// WithProducts replaces the default seed set.
func WithProducts(products ...domain.Product) Option {
	return func(i *Initializer) {
		i.products = products
	}
}

// WithGuard makes the seed commit re-check, inside its transaction, that the
// table is still empty. A concurrent seeder that got there first turns the
// commit into a no-op.
func WithGuard(enabled bool) Option {
	return func(i *Initializer) {
		i.guard = enabled
	}
}

// NewInitializer creates a new context initializer
func NewInitializer(
	store domain.Store,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
	opts ...Option,
) *Initializer {
	seededCounter, _ := meter.Int64Counter(
		"products.seeded.total",
		metric.WithDescription("Total number of products inserted by the seed step"),
	)

	initializations, _ := meter.Int64Counter(
		"database.initializations",
		metric.WithDescription("Total number of database initialization runs"),
	)

	i := &Initializer{
		store:           store,
		products:        DefaultProducts(),
		tracer:          tracer,
		logger:          logger,
		seededCounter:   seededCounter,
		initializations: initializations,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Initialize creates the schema if needed and seeds the products table when
// it is empty. Any store failure is returned as is (wrapped); nothing is
// retried and nothing is cleaned up. Callers treat an error as fatal.
func (i *Initializer) Initialize(ctx context.Context) error {
	ctx, span := i.tracer.Start(ctx, "Initializer.Initialize")
	defer span.End()

	span.SetAttributes(attribute.Bool("seed.guard", i.guard))

	if err := i.store.EnsureSchema(ctx); err != nil {
		return i.fail(ctx, span, "ensure_schema", fmt.Errorf("ensure schema: %w", err))
	}

	n, err := i.store.Count(ctx)
	if err != nil {
		return i.fail(ctx, span, "count", fmt.Errorf("count products: %w", err))
	}
	span.SetAttributes(attribute.Int64("product.count", n))

	if n > 0 {
		i.logger.InfoContext(ctx, "Products table already populated, skipping seed",
			slog.Int64("count", n),
		)
		i.record(ctx, "skipped")
		span.SetStatus(codes.Ok, "Seed skipped")
		return nil
	}

	var uowOpts []domain.UnitOfWorkOption
	if i.guard {
		uowOpts = append(uowOpts, domain.RequireEmptyTable())
	}

	uow := i.store.Begin(uowOpts...)
	staged := make([]*domain.Product, len(i.products))
	for idx := range i.products {
		p := i.products[idx]
		staged[idx] = &p
	}
	uow.Add(staged...)

	if err := uow.Commit(ctx); err != nil {
		if i.guard && errors.Is(err, domain.ErrAlreadySeeded) {
			i.logger.InfoContext(ctx, "Products table populated concurrently, skipping seed")
			i.record(ctx, "skipped")
			span.SetStatus(codes.Ok, "Seed skipped")
			return nil
		}
		return i.fail(ctx, span, "commit", fmt.Errorf("commit seed products: %w", err))
	}

	i.seededCounter.Add(ctx, int64(len(staged)))
	i.record(ctx, "seeded")

	for _, p := range staged {
		i.logger.DebugContext(ctx, "Seed product inserted",
			slog.Int64("product_id", p.ID),
			slog.String("product_name", p.Name),
			slog.String("product_color", p.Color),
		)
	}
	i.logger.InfoContext(ctx, "Products table seeded",
		slog.Int("count", len(staged)),
	)

	span.SetAttributes(attribute.Int("product.seeded", len(staged)))
	span.SetStatus(codes.Ok, "Seed committed")
	return nil
}

func (i *Initializer) record(ctx context.Context, result string) {
	i.initializations.Add(ctx, 1,
		metric.WithAttributes(attribute.String("result", result)),
	)
}

func (i *Initializer) fail(ctx context.Context, span trace.Span, step string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, "Initialization failed")
	i.logger.ErrorContext(ctx, "Database initialization failed",
		slog.String("step", step),
		slog.String("error", err.Error()),
	)
	i.record(ctx, "failure")
	return err
}
