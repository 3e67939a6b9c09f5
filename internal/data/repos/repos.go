package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/catalog-backend/internal/data/repos/catalog"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
)

type ProductRepo = catalog.ProductRepo
type ProductImageRepo = catalog.ProductImageRepo

func NewProductRepo(db *gorm.DB, log *logger.Logger) ProductRepo {
	return catalog.NewProductRepo(db, log)
}

func NewProductImageRepo(db *gorm.DB, log *logger.Logger) ProductImageRepo {
	return catalog.NewProductImageRepo(db, log)
}
