package services

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/catalog-backend/internal/observability"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
	"github.com/yungbote/catalog-backend/internal/seed"
)

const SeedExecuted = "Seed executed"

type SeedService interface {
	RunSeed(ctx context.Context) (string, error)
}

type seedService struct {
	log      *logger.Logger
	products ProductService
	fixtures []seed.ProductFixture
	metrics  *observability.Metrics
}

func NewSeedService(log *logger.Logger, products ProductService, fixtures []seed.ProductFixture, metrics *observability.Metrics) SeedService {
	return &seedService{
		log:      log.With("service", "SeedService"),
		products: products,
		fixtures: fixtures,
		metrics:  metrics,
	}
}

// RunSeed wipes the catalog and creates every fixture concurrently. A failed
// insert fails the run but inserts that already committed are kept.
func (s *seedService) RunSeed(ctx context.Context) (string, error) {
	deleted, err := s.products.DeleteAllProducts(ctx)
	if err != nil {
		s.metrics.ObserveSeedRun("failed", 0)
		return "", err
	}

	var created atomic.Int64
	var g errgroup.Group
	for _, f := range s.fixtures {
		g.Go(func() error {
			if _, err := s.products.Create(ctx, fixtureInput(f)); err != nil {
				s.log.Warn("seed insert failed", "title", f.Title, "error", err)
				return err
			}
			created.Add(1)
			return nil
		})
	}
	err = g.Wait()
	n := int(created.Load())
	if err != nil {
		s.metrics.ObserveSeedRun("failed", n)
		return "", err
	}
	s.metrics.ObserveSeedRun("success", n)
	s.log.Info("seed executed", "deleted", deleted, "created", n)
	return SeedExecuted, nil
}

func fixtureInput(f seed.ProductFixture) CreateProductInput {
	return CreateProductInput{
		Title:       f.Title,
		Price:       f.Price,
		Description: f.Description,
		Slug:        f.Slug,
		Stock:       f.Stock,
		Sizes:       f.Sizes,
		Gender:      f.Gender,
		Tags:        f.Tags,
		Images:      f.Images,
	}
}
