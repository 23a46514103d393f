// Package sqlstore implements domain.Store on top of database/sql for
// SQLite, PostgreSQL and MySQL.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mrops-br/products-webapp/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Options describe how to reach the backing database.
type Options struct {
	Dialect Dialect
	// Driver is the database/sql driver name. Empty selects the dialect default.
	Driver string
	DSN    string
}

// Store persists products in a relational database.
type Store struct {
	db      *sql.DB
	dialect Dialect
	spec    dialectSpec
	tracer  trace.Tracer
	logger  *slog.Logger
}

var _ domain.Store = (*Store)(nil)

// Open connects to the database described by opts and verifies the connection.
// It does not create the schema; call EnsureSchema for that.
func Open(ctx context.Context, opts Options, tracer trace.Tracer, logger *slog.Logger) (*Store, error) {
	if err := opts.Dialect.Validate(opts.Driver); err != nil {
		return nil, err
	}
	if strings.TrimSpace(opts.DSN) == "" {
		return nil, fmt.Errorf("database dsn is required")
	}

	spec := dialects[opts.Dialect]
	driver := opts.Driver
	if driver == "" {
		driver = spec.drivers[0]
	}

	db, err := sql.Open(driver, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", opts.Dialect, err)
	}

	if opts.Dialect == DialectSQLite {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s db: %w", opts.Dialect, err)
	}

	if opts.Dialect == DialectSQLite {
		if err := applyPragmas(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	logger.Info("Database connection established",
		slog.String("dialect", string(opts.Dialect)),
		slog.String("driver", driver),
	)

	return &Store{
		db:      db,
		dialect: opts.Dialect,
		spec:    spec,
		tracer:  tracer,
		logger:  logger,
	}, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("set pragma %q: %w", pragma, err)
		}
	}
	return nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Dialect reports the SQL flavor the store talks to.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// EnsureSchema creates the products table if it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "Store.EnsureSchema")
	defer span.End()

	span.SetAttributes(attribute.String("db.system", string(s.dialect)))

	ddl, err := s.dialect.schemaSQL()
	if err != nil {
		return s.fail(span, "Failed to load schema", err)
	}
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return s.fail(span, "Failed to create schema", fmt.Errorf("create products table: %w", err))
	}

	s.logger.DebugContext(ctx, "Schema ensured",
		slog.String("dialect", string(s.dialect)),
	)

	span.SetStatus(codes.Ok, "Schema ensured")
	return nil
}

// Create inserts one product and assigns its ID
func (s *Store) Create(ctx context.Context, product *domain.Product) error {
	ctx, span := s.tracer.Start(ctx, "Store.Create")
	defer span.End()

	span.SetAttributes(attribute.String("product.name", product.Name))

	id, err := s.insert(ctx, s.db, s.spec.insert, product)
	if err != nil {
		return s.fail(span, "Failed to insert product", fmt.Errorf("insert product: %w", err))
	}
	product.ID = id

	span.SetAttributes(attribute.Int64("product.id", id))
	s.logger.InfoContext(ctx, "Product created in repository",
		slog.Int64("product_id", product.ID),
		slog.String("product_name", product.Name),
	)

	span.SetStatus(codes.Ok, "Product created successfully")
	return nil
}

// FindByID retrieves a product by ID
func (s *Store) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "Store.FindByID")
	defer span.End()

	span.SetAttributes(attribute.Int64("product.id", id))

	var p domain.Product
	err := s.db.QueryRowContext(ctx, s.spec.selectByID, id).Scan(&p.ID, &p.Name, &p.Color)
	if errors.Is(err, sql.ErrNoRows) {
		span.RecordError(domain.ErrProductNotFound)
		span.SetStatus(codes.Error, "Product not found")
		s.logger.WarnContext(ctx, "Product not found",
			slog.Int64("product_id", id),
		)
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, s.fail(span, "Failed to query product", fmt.Errorf("select product %d: %w", id, err))
	}

	span.SetStatus(codes.Ok, "Product found")
	return &p, nil
}

// FindAll retrieves all products ordered by ID
func (s *Store) FindAll(ctx context.Context) ([]*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "Store.FindAll")
	defer span.End()

	rows, err := s.db.QueryContext(ctx, s.spec.selectAll)
	if err != nil {
		return nil, s.fail(span, "Failed to query products", fmt.Errorf("select products: %w", err))
	}
	defer rows.Close()

	products := make([]*domain.Product, 0)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Color); err != nil {
			return nil, s.fail(span, "Failed to scan product", fmt.Errorf("scan product: %w", err))
		}
		products = append(products, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail(span, "Failed to iterate products", fmt.Errorf("iterate products: %w", err))
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))
	s.logger.InfoContext(ctx, "Products retrieved from repository",
		slog.Int("count", len(products)),
	)

	span.SetStatus(codes.Ok, "Products retrieved successfully")
	return products, nil
}

// Count returns the number of rows in the products table
func (s *Store) Count(ctx context.Context) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "Store.Count")
	defer span.End()

	var n int64
	if err := s.db.QueryRowContext(ctx, s.spec.count).Scan(&n); err != nil {
		return 0, s.fail(span, "Failed to count products", fmt.Errorf("count products: %w", err))
	}

	span.SetAttributes(attribute.Int64("product.count", n))
	span.SetStatus(codes.Ok, "Products counted")
	return n, nil
}

// Begin starts a unit of work. The database transaction is only opened by Commit.
func (s *Store) Begin(opts ...domain.UnitOfWorkOption) domain.UnitOfWork {
	return &unitOfWork{
		store: s,
		opts:  domain.ApplyUnitOfWorkOptions(opts...),
	}
}

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// insert runs an insert statement and returns the generated id. A statement
// that inserted nothing yields sql.ErrNoRows.
func (s *Store) insert(ctx context.Context, q execQuerier, query string, p *domain.Product) (int64, error) {
	if s.spec.returning {
		var id int64
		if err := q.QueryRowContext(ctx, query, p.Name, p.Color).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}

	res, err := q.ExecContext(ctx, query, p.Name, p.Color)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, sql.ErrNoRows
	}
	return res.LastInsertId()
}

func (s *Store) fail(span trace.Span, msg string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	return err
}
