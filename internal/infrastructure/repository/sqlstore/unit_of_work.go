package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mrops-br/products-webapp/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type unitOfWork struct {
	store  *Store
	opts   domain.UnitOfWorkOptions
	staged []*domain.Product
}

func (u *unitOfWork) Add(products ...*domain.Product) {
	u.staged = append(u.staged, products...)
}

// Commit writes every staged product in one transaction, in the order they
// were added. With RequireEmpty the first insert only succeeds when the table
// is empty; otherwise the transaction is rolled back and ErrAlreadySeeded
// is returned.
func (u *unitOfWork) Commit(ctx context.Context) (err error) {
	s := u.store
	ctx, span := s.tracer.Start(ctx, "Store.Commit")
	defer span.End()

	span.SetAttributes(
		attribute.Int("product.staged", len(u.staged)),
		attribute.Bool("commit.require_empty", u.opts.RequireEmpty),
	)

	if len(u.staged) == 0 {
		span.SetStatus(codes.Ok, "Nothing to commit")
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.fail(span, "Failed to begin transaction", fmt.Errorf("begin transaction: %w", err))
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if u.opts.RequireEmpty && s.spec.lockTable != "" {
		if _, err = tx.ExecContext(ctx, s.spec.lockTable); err != nil {
			return s.fail(span, "Failed to lock table", fmt.Errorf("lock products table: %w", err))
		}
	}

	ids := make([]int64, len(u.staged))
	for i, p := range u.staged {
		query := s.spec.insert
		if i == 0 && u.opts.RequireEmpty {
			query = s.spec.guardedInsert
		}

		var id int64
		id, err = s.insert(ctx, tx, query, p)
		if i == 0 && u.opts.RequireEmpty && errors.Is(err, sql.ErrNoRows) {
			err = domain.ErrAlreadySeeded
			span.SetStatus(codes.Error, "Table not empty")
			s.logger.InfoContext(ctx, "Guarded commit skipped, products table is not empty")
			return err
		}
		if err != nil {
			return s.fail(span, "Failed to insert product", fmt.Errorf("insert product %q: %w", p.Name, err))
		}
		ids[i] = id
	}

	if err = tx.Commit(); err != nil {
		return s.fail(span, "Failed to commit transaction", fmt.Errorf("commit transaction: %w", err))
	}

	for i, p := range u.staged {
		p.ID = ids[i]
	}

	s.logger.InfoContext(ctx, "Unit of work committed",
		slog.Int("count", len(u.staged)),
	)
	u.staged = nil

	span.SetStatus(codes.Ok, "Committed")
	return nil
}
