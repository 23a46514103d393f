package memory

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/mrops-br/products-webapp/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ProductRepository is an in-memory implementation of domain.Store
type ProductRepository struct {
	mu       sync.RWMutex
	products map[int64]*domain.Product
	nextID   int64
	schema   bool
	tracer   trace.Tracer
	logger   *slog.Logger
}

var _ domain.Store = (*ProductRepository)(nil)

// NewProductRepository creates a new in-memory product repository
func NewProductRepository(tracer trace.Tracer, logger *slog.Logger) *ProductRepository {
	return &ProductRepository{
		products: make(map[int64]*domain.Product),
		tracer:   tracer,
		logger:   logger,
	}
}

// EnsureSchema marks the in-memory table as created. Calling it again is a no-op.
func (r *ProductRepository) EnsureSchema(ctx context.Context) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.EnsureSchema")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	span.SetAttributes(attribute.Bool("schema.existed", r.schema))
	if !r.schema {
		r.schema = true
		r.logger.InfoContext(ctx, "Products table created in memory")
	}

	span.SetStatus(codes.Ok, "Schema ensured")
	return nil
}

// Create stores a new product and assigns its ID
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Create")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.insertLocked(product)

	span.SetAttributes(
		attribute.Int64("product.id", product.ID),
		attribute.String("product.name", product.Name),
	)

	r.logger.InfoContext(ctx, "Product created in repository",
		slog.Int64("product_id", product.ID),
		slog.String("product_name", product.Name),
	)

	span.SetStatus(codes.Ok, "Product created successfully")
	return nil
}

// FindByID retrieves a product by ID
func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindByID")
	defer span.End()

	span.SetAttributes(attribute.Int64("product.id", id))

	r.mu.RLock()
	defer r.mu.RUnlock()

	product, exists := r.products[id]
	if !exists {
		span.RecordError(domain.ErrProductNotFound)
		span.SetStatus(codes.Error, "Product not found")
		r.logger.WarnContext(ctx, "Product not found",
			slog.Int64("product_id", id),
		)
		return nil, domain.ErrProductNotFound
	}

	r.logger.DebugContext(ctx, "Product found in repository",
		slog.Int64("product_id", id),
		slog.String("product_name", product.Name),
	)

	span.SetStatus(codes.Ok, "Product found")
	cp := *product
	return &cp, nil
}

// FindAll retrieves all products ordered by ID
func (r *ProductRepository) FindAll(ctx context.Context) ([]*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindAll")
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]*domain.Product, 0, len(r.products))
	for _, product := range r.products {
		cp := *product
		products = append(products, &cp)
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].ID < products[j].ID
	})

	span.SetAttributes(attribute.Int("product.count", len(products)))

	r.logger.InfoContext(ctx, "Products retrieved from repository",
		slog.Int("count", len(products)),
	)

	span.SetStatus(codes.Ok, "Products retrieved successfully")
	return products, nil
}

// Count returns the number of stored products
func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	_, span := r.tracer.Start(ctx, "ProductRepository.Count")
	defer span.End()

	r.mu.RLock()
	n := int64(len(r.products))
	r.mu.RUnlock()

	span.SetAttributes(attribute.Int64("product.count", n))
	span.SetStatus(codes.Ok, "Products counted")
	return n, nil
}

// Begin starts a unit of work against the in-memory table
func (r *ProductRepository) Begin(opts ...domain.UnitOfWorkOption) domain.UnitOfWork {
	return &unitOfWork{
		repo: r,
		opts: domain.ApplyUnitOfWorkOptions(opts...),
	}
}

func (r *ProductRepository) insertLocked(product *domain.Product) {
	r.nextID++
	product.ID = r.nextID
	cp := *product
	r.products[product.ID] = &cp
}

type unitOfWork struct {
	repo   *ProductRepository
	opts   domain.UnitOfWorkOptions
	staged []*domain.Product
}

func (u *unitOfWork) Add(products ...*domain.Product) {
	u.staged = append(u.staged, products...)
}

// Commit inserts all staged products under a single lock, in the order they were added.
func (u *unitOfWork) Commit(ctx context.Context) error {
	ctx, span := u.repo.tracer.Start(ctx, "ProductRepository.Commit")
	defer span.End()

	span.SetAttributes(
		attribute.Int("product.staged", len(u.staged)),
		attribute.Bool("commit.require_empty", u.opts.RequireEmpty),
	)

	u.repo.mu.Lock()
	defer u.repo.mu.Unlock()

	if u.opts.RequireEmpty && len(u.repo.products) > 0 {
		span.SetStatus(codes.Error, "Table not empty")
		return domain.ErrAlreadySeeded
	}

	for _, product := range u.staged {
		u.repo.insertLocked(product)
	}

	u.repo.logger.InfoContext(ctx, "Unit of work committed",
		slog.Int("count", len(u.staged)),
	)
	u.staged = nil

	span.SetStatus(codes.Ok, "Committed")
	return nil
}
