package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/catalog-backend/internal/domain/catalog"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&catalog.Product{},
		&catalog.ProductImage{},
	)
}

// EnsureCatalogIndexes adds the postgres-only expression index used by the
// case-insensitive title lookup.
func EnsureCatalogIndexes(db *gorm.DB) error {
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_product_title_upper ON product (UPPER(title));`).Error; err != nil {
		return fmt.Errorf("create idx_product_title_upper: %w", err)
	}
	return nil
}
