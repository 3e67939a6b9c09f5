package catalog

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/catalog-backend/internal/domain/catalog"
	"github.com/yungbote/catalog-backend/internal/platform/dbctx"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
)

type ProductImageRepo interface {
	Create(dbc dbctx.Context, productID uuid.UUID, urls []string) ([]*types.ProductImage, error)
	ListByProductID(dbc dbctx.Context, productID uuid.UUID) ([]*types.ProductImage, error)
	DeleteByProductID(dbc dbctx.Context, productID uuid.UUID) (int64, error)
}

type productImageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductImageRepo(db *gorm.DB, baseLog *logger.Logger) ProductImageRepo {
	return &productImageRepo{
		db:  db,
		log: baseLog.With("repo", "ProductImageRepo"),
	}
}

// Create inserts one row per url, in order, so ascending ids follow the input.
func (r *productImageRepo) Create(dbc dbctx.Context, productID uuid.UUID, urls []string) ([]*types.ProductImage, error) {
	out := make([]*types.ProductImage, 0, len(urls))
	if len(urls) == 0 {
		return out, nil
	}
	for _, u := range urls {
		out = append(out, &types.ProductImage{URL: u, ProductID: productID})
	}
	if err := dbc.DB(r.db).Create(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *productImageRepo) ListByProductID(dbc dbctx.Context, productID uuid.UUID) ([]*types.ProductImage, error) {
	var out []*types.ProductImage
	if productID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("product_id = ?", productID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *productImageRepo) DeleteByProductID(dbc dbctx.Context, productID uuid.UUID) (int64, error) {
	if productID == uuid.Nil {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("product_id = ?", productID).Delete(&types.ProductImage{})
	return res.RowsAffected, res.Error
}
