package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ctein-nexus/nexus-backend/internal/metrics"
	"github.com/ctein-nexus/nexus-backend/internal/projects/domain"
	"github.com/ctein-nexus/nexus-backend/internal/projects/validation"
)

// PublicService answers the unauthenticated project listing.
type PublicService struct {
	store    PublicStore
	products ProductStore
	cache    Cache
}

func NewPublicService(store PublicStore, products ProductStore, cache Cache) *PublicService {
	if cache == nil {
		cache = noCache{}
	}
	return &PublicService{store: store, products: products, cache: cache}
}

func publicCacheKey(q domain.PublicQuery) string {
	return fmt.Sprintf("%s%d:%d:%s", publicCachePrefix, q.Limit, q.Offset, strings.ToLower(q.Search))
}

// List returns one page of public projects, newest first. At most
// MaxPublicPageSize rows are returned; has_more is computed from the
// requested limit.
func (s *PublicService) List(ctx context.Context, q domain.PublicQuery) (*domain.PublicPage, error) {
	if q.Limit <= 0 {
		q.Limit = validation.DefaultPublicLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	key := publicCacheKey(q)
	var cached domain.PublicPage
	hit, err := s.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("public cache read failed")
	}
	metrics.RecordCacheLookup(hit)
	if hit {
		return &cached, nil
	}

	take := min(q.Limit, validation.MaxPublicPageSize)

	total, err := s.store.Count(ctx, q.Search)
	if err != nil {
		return nil, domain.Upstream("count public projects", err)
	}
	projects, err := s.store.Page(ctx, q.Search, take, q.Offset)
	if err != nil {
		return nil, domain.Upstream("list public projects", err)
	}
	if err := s.withPublicProducts(ctx, projects); err != nil {
		return nil, err
	}

	page := &domain.PublicPage{
		Projects: projects,
		Pagination: domain.Pagination{
			Total:   total,
			Limit:   q.Limit,
			Offset:  q.Offset,
			HasMore: hasMore(q.Offset, q.Limit, total),
		},
	}
	if err := s.cache.SetJSON(ctx, key, page); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("public cache write failed")
	}
	return page, nil
}

// Invalidate drops every cached public page.
func (s *PublicService) Invalidate(ctx context.Context) {
	invalidate(ctx, s.cache, publicCachePrefix)
}

// hasMore reports offset+limit < total without overflowing on huge inputs.
func hasMore(offset, limit, total int) bool {
	return offset < total && limit < total-offset
}

func (s *PublicService) withPublicProducts(ctx context.Context, projects []domain.PublicProject) error {
	if len(projects) == 0 {
		return nil
	}
	ids := make([]string, len(projects))
	for i := range projects {
		ids[i] = projects[i].ID
	}
	products, err := s.products.ListByProjects(ctx, ids, true)
	if err != nil {
		return domain.Upstream("list public products", err)
	}

	byProject := make(map[string][]domain.PublicProduct, len(projects))
	for _, pr := range products {
		if !pr.IsPublic {
			continue
		}
		byProject[pr.ProjectID] = append(byProject[pr.ProjectID], domain.PublicProduct{
			ID:          pr.ID,
			Title:       pr.Title,
			Summary:     pr.Summary,
			Description: pr.Description,
			ProductURL:  pr.ProductURL,
			ProductType: pr.ProductType,
			CreatedAt:   pr.CreatedAt,
		})
	}
	for i := range projects {
		if ps, ok := byProject[projects[i].ID]; ok {
			projects[i].Products = ps
		}
	}
	return nil
}
