package domain

import (
	"context"
	"errors"
)

//go:generate mockgen -source=repository.go -destination=mocks/repository_mock.go -package=mock_domain

var (
	ErrProductNotFound = errors.New("product not found")
	// ErrAlreadySeeded is returned by a guarded commit when the products
	// table was no longer empty at commit time.
	ErrAlreadySeeded = errors.New("products table is not empty")
)

// ProductRepository defines the contract for product storage
type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	FindByID(ctx context.Context, id int64) (*Product, error)
	FindAll(ctx context.Context) ([]*Product, error)
	Count(ctx context.Context) (int64, error)
}

// UnitOfWork stages products in memory and writes them in a single transaction.
type UnitOfWork interface {
	Add(products ...*Product)
	Commit(ctx context.Context) error
}

// UnitOfWorkOptions controls how a UnitOfWork commits.
type UnitOfWorkOptions struct {
	// RequireEmpty makes Commit re-check, inside its transaction, that the
	// products table is still empty. Commit returns ErrAlreadySeeded otherwise.
	RequireEmpty bool
}

// UnitOfWorkOption configures a UnitOfWork.
type UnitOfWorkOption func(*UnitOfWorkOptions)

// RequireEmptyTable enables the guarded commit.
func RequireEmptyTable() UnitOfWorkOption {
	return func(o *UnitOfWorkOptions) {
		o.RequireEmpty = true
	}
}

// ApplyUnitOfWorkOptions folds opts into a UnitOfWorkOptions value.
func ApplyUnitOfWorkOptions(opts ...UnitOfWorkOption) UnitOfWorkOptions {
	var o UnitOfWorkOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Store is the persistence layer behind the products context.
type Store interface {
	ProductRepository

	// EnsureSchema creates the backing tables if they do not exist yet.
	// It is idempotent.
	EnsureSchema(ctx context.Context) error

	// Begin starts a new unit of work. Nothing touches the database until Commit.
	Begin(opts ...UnitOfWorkOption) UnitOfWork
}
