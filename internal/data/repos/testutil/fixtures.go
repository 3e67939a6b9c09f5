package testutil

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/catalog-backend/internal/domain/catalog"
)

func SeedProduct(tb testing.TB, ctx context.Context, tx *gorm.DB, title string, imageURLs ...string) *catalog.Product {
	tb.Helper()
	p := &catalog.Product{
		Title:  title,
		Price:  35,
		Stock:  7,
		Gender: catalog.GenderUnisex,
		Sizes:  []string{"S", "M"},
		Tags:   []string{"shirt"},
		Images: catalog.NewImages(imageURLs),
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed product: %v", err)
	}
	return p
}
