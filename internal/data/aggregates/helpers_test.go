package aggregates_test

import (
	"context"

	"github.com/yungbote/catalog-backend/internal/platform/dbctx"
)

func dbcOf(ctx context.Context) dbctx.Context {
	return dbctx.Context{Ctx: ctx}
}
