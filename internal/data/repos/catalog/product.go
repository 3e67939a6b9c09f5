package catalog

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/catalog-backend/internal/domain/catalog"
	"github.com/yungbote/catalog-backend/internal/platform/dbctx"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
)

type ProductRepo interface {
	Create(dbc dbctx.Context, products []*types.Product) ([]*types.Product, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Product, error)
	GetByTerm(dbc dbctx.Context, term types.LookupByTerm) (*types.Product, error)
	GetByLookup(dbc dbctx.Context, lookup types.Lookup) (*types.Product, error)
	List(dbc dbctx.Context, limit, offset int) ([]*types.Product, error)
	Count(dbc dbctx.Context) (int64, error)
	Save(dbc dbctx.Context, product *types.Product) error
	Delete(dbc dbctx.Context, id uuid.UUID) (int64, error)
	DeleteAll(dbc dbctx.Context) (int64, error)
}

type productRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	return &productRepo{
		db:  db,
		log: baseLog.With("repo", "ProductRepo"),
	}
}

// withImages preloads the image relation in insertion order.
func withImages(q *gorm.DB) *gorm.DB {
	return q.Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("product_image.id ASC")
	})
}

func (r *productRepo) Create(dbc dbctx.Context, products []*types.Product) ([]*types.Product, error) {
	transaction := dbc.DB(r.db)
	if len(products) == 0 {
		return []*types.Product{}, nil
	}
	if err := transaction.Create(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Product, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var p types.Product
	err := withImages(dbc.DB(r.db)).
		Where("id = ?", id).
		Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) GetByTerm(dbc dbctx.Context, term types.LookupByTerm) (*types.Product, error) {
	if term.Term == "" {
		return nil, nil
	}
	var p types.Product
	err := withImages(dbc.DB(r.db)).
		Where("UPPER(title) = ? OR slug = ?", term.TitleKey(), term.SlugKey()).
		Order("created_at ASC").
		Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByLookup returns (nil, nil) when nothing matches.
func (r *productRepo) GetByLookup(dbc dbctx.Context, lookup types.Lookup) (*types.Product, error) {
	switch l := lookup.(type) {
	case types.LookupByID:
		return r.GetByID(dbc, l.ID)
	case types.LookupByTerm:
		return r.GetByTerm(dbc, l)
	default:
		return nil, nil
	}
}

func (r *productRepo) List(dbc dbctx.Context, limit, offset int) ([]*types.Product, error) {
	out := []*types.Product{}
	if limit <= 0 {
		return out, nil
	}
	if offset < 0 {
		offset = 0
	}
	if err := withImages(dbc.DB(r.db)).
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *productRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	if err := dbc.DB(r.db).Model(&types.Product{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// Save updates every product column of an existing row; images are managed
// by ProductImageRepo. A row removed in the meantime is reported as
// gorm.ErrRecordNotFound and never re-inserted.
func (r *productRepo) Save(dbc dbctx.Context, product *types.Product) error {
	if product == nil || product.ID == uuid.Nil {
		return gorm.ErrMissingWhereClause
	}
	res := dbc.DB(r.db).Select("*").Omit(clause.Associations).Updates(product)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepo) Delete(dbc dbctx.Context, id uuid.UUID) (int64, error) {
	if id == uuid.Nil {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("id = ?", id).Delete(&types.Product{})
	return res.RowsAffected, res.Error
}

// DeleteAll removes every product. Images go with them through the cascade,
// and are cleared explicitly first so drivers without FK enforcement agree.
func (r *productRepo) DeleteAll(dbc dbctx.Context) (int64, error) {
	transaction := dbc.DB(r.db)
	if err := transaction.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&types.ProductImage{}).Error; err != nil {
		return 0, err
	}
	res := transaction.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&types.Product{})
	return res.RowsAffected, res.Error
}
