package testutil

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/yungbote/catalog-backend/internal/data/aggregates"
	"github.com/yungbote/catalog-backend/internal/platform/dbctx"
)

// InjectedTxRunner is a TxRunner with failure injection. With DB set, the
// body runs inside a real transaction and an injected commit failure rolls
// it back; without DB the body runs against whatever the repos default to.
type InjectedTxRunner struct {
	mu sync.Mutex

	DB *gorm.DB

	FailBegin      error
	FailBeforeBody error
	FailCommit     error

	BeginCalls    int
	CommitCalls   int
	RollbackCalls int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.BeginCalls++
	failBegin := r.FailBegin
	failBeforeBody := r.FailBeforeBody
	failCommit := r.FailCommit
	db := r.DB
	r.mu.Unlock()

	if failBegin != nil {
		return failBegin
	}
	if failBeforeBody != nil {
		r.inc(&r.RollbackCalls)
		return failBeforeBody
	}
	if fn == nil {
		r.inc(&r.CommitCalls)
		return nil
	}

	body := func(tx *gorm.DB) error {
		if err := fn(dbctx.Context{Ctx: ctx, Tx: tx}); err != nil {
			return err
		}
		return failCommit
	}

	var err error
	if db != nil {
		err = db.WithContext(ctx).Transaction(body)
	} else {
		err = body(nil)
	}
	if err != nil {
		r.inc(&r.RollbackCalls)
		return err
	}
	r.inc(&r.CommitCalls)
	return nil
}

func (r *InjectedTxRunner) inc(counter *int) {
	r.mu.Lock()
	*counter++
	r.mu.Unlock()
}
