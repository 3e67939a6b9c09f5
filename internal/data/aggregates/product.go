package aggregates

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/catalog-backend/internal/data/repos"
	domainagg "github.com/yungbote/catalog-backend/internal/domain/aggregates"
	"github.com/yungbote/catalog-backend/internal/domain/catalog"
	"github.com/yungbote/catalog-backend/internal/platform/dbctx"
)

const (
	OpProductCreate    = "product.create"
	OpProductReplace   = "product.replace"
	OpProductDelete    = "product.delete"
	OpProductDeleteAll = "product.delete_all"
)

// ProductAggregate owns every write that touches a product together with its
// image collection.
type ProductAggregate interface {
	Create(ctx context.Context, product *catalog.Product) (*catalog.Product, error)
	// Replace saves the product columns and, when imageURLs is non-nil,
	// swaps the whole image set. Nothing is persisted unless all steps succeed.
	Replace(ctx context.Context, product *catalog.Product, imageURLs []string) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) (int64, error)
}

type ProductAggregateDeps struct {
	BaseDeps
	Products repos.ProductRepo
	Images   repos.ProductImageRepo
}

type productAggregate struct {
	deps ProductAggregateDeps
}

func NewProductAggregate(deps ProductAggregateDeps) ProductAggregate {
	deps.BaseDeps = deps.BaseDeps.withDefaults()
	if deps.Log != nil {
		deps.Log = deps.Log.With("aggregate", "ProductAggregate")
	}
	return &productAggregate{deps: deps}
}

func (a *productAggregate) Create(ctx context.Context, product *catalog.Product) (*catalog.Product, error) {
	if product == nil {
		return nil, MapError(OpProductCreate, ValidationError("product is required"))
	}
	var out *catalog.Product
	err := executeWrite(ctx, a.deps.BaseDeps, OpProductCreate, func(dbc dbctx.Context, tally *writeTally) error {
		created, err := a.deps.Products.Create(dbc, []*catalog.Product{product})
		if err != nil {
			return err
		}
		out = created[0]
		tally.images = len(out.Images)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *productAggregate) Replace(ctx context.Context, product *catalog.Product, imageURLs []string) error {
	if product == nil || product.ID == uuid.Nil {
		return MapError(OpProductReplace, ValidationError("product id is required"))
	}
	return executeWrite(ctx, a.deps.BaseDeps, OpProductReplace, func(dbc dbctx.Context, tally *writeTally) error {
		if imageURLs != nil {
			if _, err := a.deps.Images.DeleteByProductID(dbc, product.ID); err != nil {
				return err
			}
		}
		if err := a.deps.Products.Save(dbc, product); err != nil {
			return err
		}

		var images []*catalog.ProductImage
		var err error
		if imageURLs != nil {
			images, err = a.deps.Images.Create(dbc, product.ID, imageURLs)
			tally.images = len(images)
		} else {
			// read back inside the transaction so the caller sees the set
			// that was current when the row was written
			images, err = a.deps.Images.ListByProductID(dbc, product.ID)
		}
		if err != nil {
			return err
		}
		product.Images = make([]catalog.ProductImage, 0, len(images))
		for _, img := range images {
			product.Images = append(product.Images, *img)
		}
		return nil
	})
}

func (a *productAggregate) Delete(ctx context.Context, id uuid.UUID) error {
	return executeWrite(ctx, a.deps.BaseDeps, OpProductDelete, func(dbc dbctx.Context, _ *writeTally) error {
		n, err := a.deps.Products.Delete(dbc, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return domainagg.NewError(domainagg.CodeNotFound, OpProductDelete, "product not found", ErrNotFound)
		}
		return nil
	})
}

func (a *productAggregate) DeleteAll(ctx context.Context) (int64, error) {
	var n int64
	err := executeWrite(ctx, a.deps.BaseDeps, OpProductDeleteAll, func(dbc dbctx.Context, _ *writeTally) error {
		var err error
		n, err = a.deps.Products.DeleteAll(dbc)
		return err
	})
	return n, err
}
