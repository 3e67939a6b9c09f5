package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/catalog-backend/internal/data/aggregates"
	"github.com/yungbote/catalog-backend/internal/data/cache"
	"github.com/yungbote/catalog-backend/internal/data/repos"
	domainagg "github.com/yungbote/catalog-backend/internal/domain/aggregates"
	"github.com/yungbote/catalog-backend/internal/domain/catalog"
	"github.com/yungbote/catalog-backend/internal/platform/apierr"
	"github.com/yungbote/catalog-backend/internal/platform/dbctx"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
)

const DefaultPageLimit = 10

type CreateProductInput struct {
	Title       string
	Price       float64
	Description string
	Slug        string
	Stock       int
	Sizes       []string
	Gender      string
	Tags        []string
	Images      []string
}

// UpdateProductInput is a partial update: nil fields are left untouched, and a
// non-nil Images replaces the whole image set (an empty slice clears it).
type UpdateProductInput struct {
	Title       *string
	Price       *float64
	Description *string
	Slug        *string
	Stock       *int
	Sizes       []string
	Gender      *string
	Tags        []string
	Images      []string
}

type Pagination struct {
	Limit  int
	Offset int
}

type ProductPage struct {
	Data  []*catalog.ProductView `json:"data"`
	Count int64                  `json:"count"`
}

type ProductService interface {
	Create(ctx context.Context, in CreateProductInput) (*catalog.ProductView, error)
	FindAll(ctx context.Context, page Pagination) (*ProductPage, error)
	FindOne(ctx context.Context, search string) (*catalog.Product, error)
	FindOnePlain(ctx context.Context, search string) (*catalog.ProductView, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateProductInput) (*catalog.ProductView, error)
	Remove(ctx context.Context, id uuid.UUID) error
	DeleteAllProducts(ctx context.Context) (int64, error)
}

type productService struct {
	db          *gorm.DB
	log         *logger.Logger
	productRepo repos.ProductRepo
	products    aggregates.ProductAggregate
	cache       cache.ProductCache
}

type ProductServiceOption func(*productService)

// WithProductCache serves FindOnePlain from c and invalidates it on every write.
func WithProductCache(c cache.ProductCache) ProductServiceOption {
	return func(s *productService) { s.cache = c }
}

func NewProductService(db *gorm.DB, log *logger.Logger, productRepo repos.ProductRepo, products aggregates.ProductAggregate, opts ...ProductServiceOption) ProductService {
	s := &productService{
		db:          db,
		log:         log.With("service", "ProductService"),
		productRepo: productRepo,
		products:    products,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *productService) Create(ctx context.Context, in CreateProductInput) (*catalog.ProductView, error) {
	product := &catalog.Product{
		Title:       in.Title,
		Price:       in.Price,
		Description: in.Description,
		Slug:        in.Slug,
		Stock:       in.Stock,
		Sizes:       in.Sizes,
		Gender:      in.Gender,
		Tags:        in.Tags,
		Images:      catalog.NewImages(in.Images),
	}
	created, err := s.products.Create(ctx, product)
	if err != nil {
		return nil, s.handleDBError("create", err)
	}
	s.invalidate(ctx)
	return created.View(), nil
}

func (s *productService) FindAll(ctx context.Context, page Pagination) (*ProductPage, error) {
	if page.Limit <= 0 {
		page.Limit = DefaultPageLimit
	}
	if page.Offset < 0 {
		page.Offset = 0
	}
	dbc := dbctx.Context{Ctx: ctx}
	rows, err := s.productRepo.List(dbc, page.Limit, page.Offset)
	if err != nil {
		return nil, s.handleDBError("find_all", err)
	}
	count, err := s.productRepo.Count(dbc)
	if err != nil {
		return nil, s.handleDBError("find_all", err)
	}
	out := &ProductPage{Data: make([]*catalog.ProductView, 0, len(rows)), Count: count}
	for _, p := range rows {
		out.Data = append(out.Data, p.View())
	}
	return out, nil
}

func (s *productService) FindOne(ctx context.Context, search string) (*catalog.Product, error) {
	lookup := catalog.ParseLookup(search)
	product, err := s.productRepo.GetByLookup(dbctx.Context{Ctx: ctx}, lookup)
	if err != nil {
		return nil, s.handleDBError("find_one", err)
	}
	if product == nil {
		return nil, productNotFound(search)
	}
	return product, nil
}

func (s *productService) FindOnePlain(ctx context.Context, search string) (*catalog.ProductView, error) {
	if s.cache == nil {
		product, err := s.FindOne(ctx, search)
		if err != nil {
			return nil, err
		}
		return product.View(), nil
	}

	// read the generation before the database so a concurrent write can only
	// leave behind an entry under a generation nobody reads anymore
	gen := s.cache.Generation(ctx)
	if view, ok := s.cache.Get(ctx, gen, search); ok {
		return view, nil
	}
	product, err := s.FindOne(ctx, search)
	if err != nil {
		return nil, err
	}
	view := product.View()
	s.cache.Set(ctx, gen, search, view)
	return view, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, in UpdateProductInput) (*catalog.ProductView, error) {
	product, err := s.productRepo.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, s.handleDBError("update", err)
	}
	if product == nil {
		return nil, productNotFound(id.String())
	}
	applyUpdate(product, in)

	if err := s.products.Replace(ctx, product, in.Images); err != nil {
		return nil, s.handleDBError("update", err)
	}
	s.invalidate(ctx)
	return product.View(), nil
}

func (s *productService) Remove(ctx context.Context, id uuid.UUID) error {
	if _, err := s.FindOne(ctx, id.String()); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return s.handleDBError("remove", err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *productService) DeleteAllProducts(ctx context.Context) (int64, error) {
	n, err := s.products.DeleteAll(ctx)
	if err != nil {
		return 0, s.handleDBError("delete_all", err)
	}
	s.invalidate(ctx)
	return n, nil
}

func (s *productService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

func applyUpdate(p *catalog.Product, in UpdateProductInput) {
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Slug != nil {
		p.Slug = *in.Slug
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.Sizes != nil {
		p.Sizes = in.Sizes
	}
	if in.Gender != nil {
		p.Gender = *in.Gender
	}
	if in.Tags != nil {
		p.Tags = in.Tags
	}
}

func productNotFound(search string) error {
	return apierr.NotFound("product_not_found", fmt.Sprintf("Product with id %s not found", search))
}

// handleDBError turns persistence failures into client errors where the
// caller can act on them. Anything unclassified is logged and hidden.
func (s *productService) handleDBError(op string, err error) error {
	mapped := aggregates.MapError("product."+op, err)
	switch domainagg.CodeOf(mapped) {
	case domainagg.CodeConflict:
		return apierr.New(http.StatusBadRequest, "duplicate_key", fmt.Errorf("%s", domainagg.MessageOf(mapped)))
	case domainagg.CodeValidation:
		return apierr.New(http.StatusBadRequest, "invalid_product", fmt.Errorf("%s", domainagg.MessageOf(mapped)))
	case domainagg.CodeNotFound:
		return apierr.NotFound("product_not_found", "Product not found")
	}
	s.log.Error("product persistence failed", "op", op, "error", err)
	return apierr.Internal("internal_error")
}
