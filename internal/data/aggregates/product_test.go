package aggregates_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/catalog-backend/internal/data/aggregates"
	aggtest "github.com/yungbote/catalog-backend/internal/data/aggregates/testutil"
	"github.com/yungbote/catalog-backend/internal/data/repos"
	"github.com/yungbote/catalog-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/catalog-backend/internal/domain/aggregates"
	"github.com/yungbote/catalog-backend/internal/domain/catalog"
)

type fixture struct {
	db     *gorm.DB
	agg    aggregates.ProductAggregate
	hooks  *aggtest.HooksRecorder
	images repos.ProductImageRepo
}

func newFixture(t *testing.T, runner aggregates.TxRunner) fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	hooks := &aggtest.HooksRecorder{}
	if injected, ok := runner.(*aggtest.InjectedTxRunner); ok && injected.DB == nil {
		injected.DB = db
	}
	images := repos.NewProductImageRepo(db, log)
	agg := aggregates.NewProductAggregate(aggregates.ProductAggregateDeps{
		BaseDeps: aggregates.BaseDeps{DB: db, Log: log, Runner: runner, Hooks: hooks},
		Products: repos.NewProductRepo(db, log),
		Images:   images,
	})
	return fixture{db: db, agg: agg, hooks: hooks, images: images}
}

func load(t *testing.T, db *gorm.DB, id uuid.UUID) catalog.Product {
	t.Helper()
	var p catalog.Product
	err := db.Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("id = ?", id).Take(&p).Error
	if err != nil {
		t.Fatalf("load product: %v", err)
	}
	return p
}

func TestProductAggregate_CreateKeepsImageOrder(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	created, err := f.agg.Create(ctx, &catalog.Product{
		Title:  "Ordered Tee",
		Gender: catalog.GenderKid,
		Images: catalog.NewImages([]string{"3.jpg", "1.jpg", "2.jpg"}),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	loaded := load(t, f.db, created.ID)
	got := loaded.ImageURLs()
	if len(got) != 3 || got[0] != "3.jpg" || got[1] != "1.jpg" || got[2] != "2.jpg" {
		t.Fatalf("unexpected image order %v", got)
	}
	if s := f.hooks.Statuses(aggregates.OpProductCreate); len(s) != 1 || s[0] != "success" {
		t.Fatalf("unexpected statuses %v", s)
	}
	if n := f.hooks.ImagesWritten(aggregates.OpProductCreate); n != 3 {
		t.Fatalf("expected 3 images reported, got %d", n)
	}
}

func TestProductAggregate_CreateDuplicateIsConflict(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	if _, err := f.agg.Create(ctx, &catalog.Product{Title: "Twin", Gender: catalog.GenderMen}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := f.agg.Create(ctx, &catalog.Product{Title: "Twin", Gender: catalog.GenderMen})
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(f.hooks.Conflicts) != 1 || f.hooks.Conflicts[0] != aggregates.OpProductCreate {
		t.Fatalf("unexpected conflicts %v", f.hooks.Conflicts)
	}
}

func TestProductAggregate_ReplaceSwapsImages(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	p := testutil.SeedProduct(t, ctx, f.db, "Swap Tee", "old-a.jpg", "old-b.jpg")

	p.Price = 99
	if err := f.agg.Replace(ctx, p, []string{"new-a.jpg"}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	got := load(t, f.db, p.ID)
	if got.Price != 99 {
		t.Fatalf("expected price 99, got %v", got.Price)
	}
	urls := got.ImageURLs()
	if len(urls) != 1 || urls[0] != "new-a.jpg" {
		t.Fatalf("expected only new image, got %v", urls)
	}
	if n := f.hooks.ImagesWritten(aggregates.OpProductReplace); n != 1 {
		t.Fatalf("expected 1 image reported, got %d", n)
	}
}

func TestProductAggregate_ReplaceWithoutImagesKeepsThem(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	p := testutil.SeedProduct(t, ctx, f.db, "Keep Tee", "keep.jpg")

	p.Stock = 1
	p.Images = nil
	if err := f.agg.Replace(ctx, p, nil); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	got := load(t, f.db, p.ID)
	if got.Stock != 1 {
		t.Fatalf("expected stock 1, got %d", got.Stock)
	}
	if urls := got.ImageURLs(); len(urls) != 1 || urls[0] != "keep.jpg" {
		t.Fatalf("expected images untouched, got %v", urls)
	}
	if urls := p.ImageURLs(); len(urls) != 1 || urls[0] != "keep.jpg" {
		t.Fatalf("expected Replace to hand back current images, got %v", urls)
	}
	if n := f.hooks.ImagesWritten(aggregates.OpProductReplace); n != 0 {
		t.Fatalf("expected no images reported, got %d", n)
	}
}

func TestProductAggregate_ReplaceAfterDeleteIsNotFound(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	p := testutil.SeedProduct(t, ctx, f.db, "Vanishing Tee", "v.jpg")

	// another request removes the product between the read and the write
	if err := f.agg.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	p.Price = 12
	for _, urls := range [][]string{nil, {"late.jpg"}} {
		err := f.agg.Replace(ctx, p, urls)
		if !domainagg.IsCode(err, domainagg.CodeNotFound) {
			t.Fatalf("Replace(%v): expected not_found, got %v", urls, err)
		}
	}

	var products, images int64
	f.db.Model(&catalog.Product{}).Where("id = ?", p.ID).Count(&products)
	f.db.Model(&catalog.ProductImage{}).Where("product_id = ?", p.ID).Count(&images)
	if products != 0 || images != 0 {
		t.Fatalf("deleted product came back: products=%d images=%d", products, images)
	}
	if s := f.hooks.Statuses(aggregates.OpProductReplace); len(s) != 2 || s[0] != "not_found" || s[1] != "not_found" {
		t.Fatalf("unexpected statuses %v", s)
	}
}

func TestProductAggregate_ReplaceRollsBackOnImageInsertFailure(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	p := testutil.SeedProduct(t, ctx, f.db, "Atomic Tee", "a.jpg", "b.jpg")

	injected := errors.New("injected image insert failure")
	if err := f.db.Callback().Create().Before("gorm:create").Register("test:fail_image_insert", func(tx *gorm.DB) {
		if tx.Statement.Table == "product_image" {
			_ = tx.AddError(injected)
		}
	}); err != nil {
		t.Fatalf("register callback: %v", err)
	}

	p.Title = "Atomic Tee Renamed"
	p.Slug = ""
	err := f.agg.Replace(ctx, p, []string{"c.jpg"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domainagg.IsCode(err, domainagg.CodeInternal) {
		t.Fatalf("expected internal code, got %v", err)
	}

	got := load(t, f.db, p.ID)
	if got.Title != "Atomic Tee" {
		t.Fatalf("expected title rolled back, got %q", got.Title)
	}
	if urls := got.ImageURLs(); len(urls) != 2 || urls[0] != "a.jpg" || urls[1] != "b.jpg" {
		t.Fatalf("expected original images, got %v", urls)
	}
}

func TestProductAggregate_ReplaceRollsBackOnCommitFailure(t *testing.T) {
	runner := &aggtest.InjectedTxRunner{FailCommit: errors.New("commit lost")}
	f := newFixture(t, runner)
	ctx := context.Background()
	p := testutil.SeedProduct(t, ctx, f.db, "Commit Tee", "a.jpg")

	p.Price = 1
	if err := f.agg.Replace(ctx, p, []string{"b.jpg", "c.jpg"}); err == nil {
		t.Fatalf("expected error")
	}
	if runner.RollbackCalls != 1 || runner.CommitCalls != 0 {
		t.Fatalf("unexpected counters commit=%d rollback=%d", runner.CommitCalls, runner.RollbackCalls)
	}
	got := load(t, f.db, p.ID)
	if got.Price != 35 {
		t.Fatalf("expected price unchanged, got %v", got.Price)
	}
	if urls := got.ImageURLs(); len(urls) != 1 || urls[0] != "a.jpg" {
		t.Fatalf("expected original images, got %v", urls)
	}
}

func TestProductAggregate_DeleteAndDeleteAll(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	a := testutil.SeedProduct(t, ctx, f.db, "Del A", "a.jpg")
	testutil.SeedProduct(t, ctx, f.db, "Del B")
	testutil.SeedProduct(t, ctx, f.db, "Del C")

	if err := f.agg.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	imgs, err := f.images.ListByProductID(dbcOf(ctx), a.ID)
	if err != nil {
		t.Fatalf("ListByProductID: %v", err)
	}
	if len(imgs) != 0 {
		t.Fatalf("expected images removed with product, got %d", len(imgs))
	}
	if err := f.agg.Delete(ctx, a.ID); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found on second delete, got %v", err)
	}

	n, err := f.agg.DeleteAll(ctx)
	if err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
	if n != 2 {
		t.Fatalf("DeleteAll: expected 2, got %d", n)
	}
}
