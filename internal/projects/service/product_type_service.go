package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ctein-nexus/nexus-backend/internal/metrics"
	"github.com/ctein-nexus/nexus-backend/internal/projects/domain"
	"github.com/ctein-nexus/nexus-backend/internal/projects/validation"
)

// ProductTypeService serves the shared product type catalogue.
type ProductTypeService struct {
	store ProductTypeStore
	cache Cache
}

func NewProductTypeService(store ProductTypeStore, cache Cache) *ProductTypeService {
	if cache == nil {
		cache = noCache{}
	}
	return &ProductTypeService{store: store, cache: cache}
}

// List returns all product types ordered by category then code.
func (s *ProductTypeService) List(ctx context.Context) ([]domain.ProductType, error) {
	var cached []domain.ProductType
	hit, err := s.cache.GetJSON(ctx, productTypesCacheKey, &cached)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("product type cache read failed")
	}
	metrics.RecordCacheLookup(hit)
	if hit {
		return cached, nil
	}

	items, err := s.store.List(ctx)
	if err != nil {
		return nil, domain.Upstream("list product types", err)
	}
	if err := s.cache.SetJSON(ctx, productTypesCacheKey, items); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("product type cache write failed")
	}
	return items, nil
}

// Create adds a product type. Admin rights are enforced by the caller.
func (s *ProductTypeService) Create(ctx context.Context, req validation.CreateProductTypeRequest) (*domain.ProductType, error) {
	in, err := validation.CreateProductType(req)
	if err != nil {
		return nil, err
	}
	pt, err := s.store.Create(ctx, in)
	if err != nil {
		return nil, domain.Upstream("create product type", err)
	}
	invalidate(ctx, s.cache, productTypesCachePrefix)
	return pt, nil
}
