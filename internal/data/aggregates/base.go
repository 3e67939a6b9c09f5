package aggregates

import (
	"context"
	"time"

	"gorm.io/gorm"

	domainagg "github.com/yungbote/catalog-backend/internal/domain/aggregates"
	"github.com/yungbote/catalog-backend/internal/platform/dbctx"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
)

type BaseDeps struct {
	DB     *gorm.DB
	Log    *logger.Logger
	Runner TxRunner
	Hooks  Hooks
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	return d
}

// writeTally is filled in by a write body. It is only reported once the
// transaction has committed.
type writeTally struct {
	images int
}

// executeWrite runs fn in one transaction, maps the error into an aggregate
// code and reports the outcome under op.
func executeWrite(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context, tally *writeTally) error) error {
	start := time.Now()
	deps = deps.withDefaults()

	var tally writeTally
	err := MapError(op, deps.Runner.InTx(ctx, func(dbc dbctx.Context) error {
		tally = writeTally{}
		return fn(dbc, &tally)
	}))

	status := writeStatus(err)
	if domainagg.IsCode(err, domainagg.CodeConflict) {
		deps.Hooks.IncConflict(op)
	}
	if err == nil && tally.images > 0 {
		deps.Hooks.ObserveImagesWritten(op, tally.images)
	}
	deps.Hooks.ObserveOperation(op, status, time.Since(start))
	return err
}

func writeStatus(err error) string {
	if err == nil {
		return "success"
	}
	if code := domainagg.CodeOf(err); code != "" {
		return string(code)
	}
	return "failure"
}
