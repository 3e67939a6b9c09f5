package services

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/catalog-backend/internal/data/aggregates"
	"github.com/yungbote/catalog-backend/internal/data/repos"
	"github.com/yungbote/catalog-backend/internal/data/repos/testutil"
	"github.com/yungbote/catalog-backend/internal/platform/apierr"
)

func newTestProductService(t *testing.T) (ProductService, *gorm.DB) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	productRepo := repos.NewProductRepo(db, log)
	agg := aggregates.NewProductAggregate(aggregates.ProductAggregateDeps{
		BaseDeps: aggregates.BaseDeps{DB: db, Log: log},
		Products: productRepo,
		Images:   repos.NewProductImageRepo(db, log),
	})
	return NewProductService(db, log, productRepo, agg), db
}

// failInsertsWhere makes product/image inserts fail when match returns true.
func failInsertsWhere(t *testing.T, db *gorm.DB, name string, match func(tx *gorm.DB) bool) {
	t.Helper()
	err := db.Callback().Create().Before("gorm:create").Register(name, func(tx *gorm.DB) {
		if match(tx) {
			_ = tx.AddError(errors.New("injected persistence failure"))
		}
	})
	if err != nil {
		t.Fatalf("register callback %s: %v", name, err)
	}
}

func requireAPIError(t *testing.T, err error, status int, code string) *apierr.Error {
	t.Helper()
	var ae *apierr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected *apierr.Error, got %T (%v)", err, err)
	}
	if ae.Status != status || ae.Code != code {
		t.Fatalf("expected %d/%s, got %d/%s (%v)", status, code, ae.Status, ae.Code, ae.Err)
	}
	return ae
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func strPtr(s string) *string { return &s }
