package memory_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	qt "github.com/frankban/quicktest"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/mrops-br/products-webapp/internal/domain"
	"github.com/mrops-br/products-webapp/internal/infrastructure/repository/memory"
)

func newRepo() *memory.ProductRepository {
	return memory.NewProductRepository(
		noop.NewTracerProvider().Tracer("test"),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func TestProductRepository(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	repo := newRepo()

	c.Assert(repo.EnsureSchema(ctx), qt.IsNil)
	c.Assert(repo.EnsureSchema(ctx), qt.IsNil)

	uow := repo.Begin()
	uow.Add(&domain.Product{Name: "XBOX", Color: "Black"}, &domain.Product{Name: "PS5", Color: "White"})

	n, err := repo.Count(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, int64(0))

	c.Assert(uow.Commit(ctx), qt.IsNil)

	controller := &domain.Product{Name: "Controller", Color: "Red"}
	c.Assert(repo.Create(ctx, controller), qt.IsNil)
	c.Assert(controller.ID, qt.Equals, int64(3))

	all, err := repo.FindAll(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(all, qt.DeepEquals, []*domain.Product{
		{ID: 1, Name: "XBOX", Color: "Black"},
		{ID: 2, Name: "PS5", Color: "White"},
		{ID: 3, Name: "Controller", Color: "Red"},
	})

	got, err := repo.FindByID(ctx, 2)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Name, qt.Equals, "PS5")

	_, err = repo.FindByID(ctx, 42)
	c.Assert(err, qt.ErrorIs, domain.ErrProductNotFound)
}

func TestGuardedCommit(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	repo := newRepo()

	c.Assert(repo.Create(ctx, &domain.Product{Name: "Controller", Color: "Red"}), qt.IsNil)

	uow := repo.Begin(domain.RequireEmptyTable())
	uow.Add(&domain.Product{Name: "XBOX", Color: "Black"})
	c.Assert(uow.Commit(ctx), qt.ErrorIs, domain.ErrAlreadySeeded)

	n, err := repo.Count(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, int64(1))
}
