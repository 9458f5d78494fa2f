// Package catalog lists and searches the product catalog.
package catalog

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/freshmart/storefront/internal/storeapi"
)

// AllProducts is the pseudo-category shown first in category pickers.
var AllProducts = storeapi.Category{ID: 0, Name: "All Products", Slug: AllCategories}

// Backend is the subset of the REST client used for browsing.
type Backend interface {
	Products(ctx context.Context, filter storeapi.ProductFilter) ([]storeapi.Product, error)
	Product(ctx context.Context, id int64) (storeapi.Product, error)
	Categories(ctx context.Context) ([]storeapi.Category, error)
}

// Service fronts catalog reads.
type Service struct {
	backend Backend
	group   singleflight.Group
}

// NewService constructs a Service.
func NewService(backend Backend) *Service {
	return &Service{backend: backend}
}

// Products lists products, passing the criteria to the backend.
func (s *Service) Products(ctx context.Context, c Criteria) ([]storeapi.Product, error) {
	filter := storeapi.ProductFilter{Search: c.Query}
	if c.Category != AllCategories {
		filter.Category = c.Category
	}
	products, err := s.backend.Products(ctx, filter)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []storeapi.Product{}
	}
	return products, nil
}

// Product fetches one product.
func (s *Service) Product(ctx context.Context, id int64) (storeapi.Product, error) {
	return s.backend.Product(ctx, id)
}

// Categories returns the backend categories preceded by AllProducts.
// Concurrent callers share one backend request.
func (s *Service) Categories(ctx context.Context) ([]storeapi.Category, error) {
	// The shared fetch outlives any single caller; each caller still stops
	// waiting when its own context ends.
	fetchCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan("categories", func() (any, error) {
		return s.backend.Categories(fetchCtx)
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Err != nil {
		return nil, res.Err
	}
	fetched := res.Val.([]storeapi.Category)
	out := make([]storeapi.Category, 0, len(fetched)+1)
	out = append(out, AllProducts)
	return append(out, fetched...), nil
}

// Search returns a debounced Searcher over this service.
func (s *Service) Search(ctx context.Context, category string, delay time.Duration) *Searcher {
	return NewSearcher(ctx, func(ctx context.Context, query string) ([]storeapi.Product, error) {
		return s.Products(ctx, Criteria{Query: query, Category: category})
	}, delay)
}
