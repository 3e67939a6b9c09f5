package aggregates

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/catalog-backend/internal/domain/aggregates"
	"github.com/yungbote/catalog-backend/internal/domain/catalog"
)

var (
	ErrValidation = errors.New("aggregate validation")
	ErrNotFound   = errors.New("aggregate not found")
)

func ValidationError(msg string) error {
	return errors.Join(ErrValidation, errors.New(strings.TrimSpace(msg)))
}

// MapError maps driver and ORM failures into aggregate error codes. Unique
// violations keep the driver's detail text, which is what clients see.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var aggErr *domainagg.Error
	if errors.As(err, &aggErr) {
		return err
	}
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, catalog.ErrEmptySlug):
		return domainagg.Wrap(domainagg.CodeValidation, op, err)
	case errors.Is(err, ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return domainagg.Wrap(domainagg.CodeNotFound, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domainagg.Wrap(domainagg.CodeInternal, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505": // unique_violation
			return domainagg.NewError(domainagg.CodeConflict, op, conflictDetail(pgErr), err)
		case "23503": // foreign_key_violation
			return domainagg.NewError(domainagg.CodePreconditionFailed, op, pgErr.Message, err)
		}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domainagg.Wrap(domainagg.CodeConflict, op, err)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "unique constraint failed"):
		return domainagg.Wrap(domainagg.CodeConflict, op, err)
	case strings.Contains(msg, "foreign key constraint failed"):
		return domainagg.Wrap(domainagg.CodePreconditionFailed, op, err)
	default:
		return domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
}

func conflictDetail(pgErr *pgconn.PgError) string {
	if d := strings.TrimSpace(pgErr.Detail); d != "" {
		return d
	}
	return pgErr.Message
}
