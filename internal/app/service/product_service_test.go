package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	qt "github.com/frankban/quicktest"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/mock/gomock"

	"github.com/mrops-br/products-webapp/internal/app/dto"
	"github.com/mrops-br/products-webapp/internal/app/service"
	"github.com/mrops-br/products-webapp/internal/domain"
	mock_domain "github.com/mrops-br/products-webapp/internal/domain/mocks"
	"github.com/mrops-br/products-webapp/internal/infrastructure/repository/memory"
)

func newService(repo domain.ProductRepository) *service.ProductService {
	return service.NewProductService(
		repo,
		tracenoop.NewTracerProvider().Tracer("test"),
		metricnoop.NewMeterProvider().Meter("test"),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func TestProductService(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	repo := memory.NewProductRepository(tracenoop.NewTracerProvider().Tracer("test"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc := newService(repo)

	created, err := svc.CreateProduct(ctx, &dto.CreateProductRequest{Name: "XBOX", Color: "Black"})
	c.Assert(err, qt.IsNil)
	c.Assert(created, qt.DeepEquals, &dto.ProductResponse{ID: 1, Name: "XBOX", Color: "Black"})

	_, err = svc.CreateProduct(ctx, &dto.CreateProductRequest{Name: "PS5"})
	c.Assert(err, qt.ErrorIs, domain.ErrInvalidProductColor)

	got, err := svc.GetProductByID(ctx, created.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Name, qt.Equals, "XBOX")

	_, err = svc.GetProductByID(ctx, 99)
	c.Assert(err, qt.ErrorIs, domain.ErrProductNotFound)

	list, err := svc.ListProducts(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(list, qt.HasLen, 1)
}

func TestProductServiceRepositoryFailure(t *testing.T) {
	c := qt.New(t)
	ctrl := gomock.NewController(t)
	repo := mock_domain.NewMockProductRepository(ctrl)
	errDown := errors.New("db down")

	repo.EXPECT().FindByID(gomock.Any(), int64(7)).Return(nil, errDown)
	repo.EXPECT().FindAll(gomock.Any()).Return(nil, errDown)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errDown)

	svc := newService(repo)
	ctx := context.Background()

	_, err := svc.GetProductByID(ctx, 7)
	c.Assert(err, qt.ErrorIs, errDown)

	_, err = svc.ListProducts(ctx)
	c.Assert(err, qt.ErrorIs, errDown)

	_, err = svc.CreateProduct(ctx, &dto.CreateProductRequest{Name: "Switch", Color: "Red"})
	c.Assert(err, qt.ErrorIs, errDown)
}
