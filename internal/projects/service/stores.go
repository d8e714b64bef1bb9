package service

import (
	"context"

	"github.com/ctein-nexus/nexus-backend/internal/projects/domain"
)

// ProjectStore is the persistence contract for projects. The repository
// package provides the PostgreSQL implementation.
type ProjectStore interface {
	Create(ctx context.Context, ownerID string, in domain.NewProject) (*domain.Project, error)
	GetOwned(ctx context.Context, id, ownerID string) (*domain.Project, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Project, error)
	Update(ctx context.Context, id, ownerID string, patch domain.ProjectPatch) error
	Delete(ctx context.Context, id, ownerID string) (bool, error)
	StorageKeys(ctx context.Context, id string) ([]string, error)
}

type ProductStore interface {
	Create(ctx context.Context, ownerID string, in domain.NewProduct) (string, error)
	GetOwned(ctx context.Context, id, ownerID string) (*domain.Product, error)
	ListByOwner(ctx context.Context, ownerID, projectID string) ([]domain.Product, error)
	ListByProjects(ctx context.Context, projectIDs []string, publicOnly bool) ([]domain.Product, error)
	Update(ctx context.Context, id, ownerID string, patch domain.ProductPatch) error
	Delete(ctx context.Context, id, ownerID string) (bool, error)
	StorageKeys(ctx context.Context, id string) ([]string, error)
}

type ProductTypeStore interface {
	Create(ctx context.Context, in domain.NewProductType) (*domain.ProductType, error)
	Get(ctx context.Context, id string) (*domain.ProductType, error)
	List(ctx context.Context) ([]domain.ProductType, error)
}

type AttachmentStore interface {
	Create(ctx context.Context, a *domain.Attachment) error
	GetOwned(ctx context.Context, id, ownerID string) (*domain.Attachment, error)
	Delete(ctx context.Context, id string) error
	ListByProjects(ctx context.Context, projectIDs []string) ([]domain.Attachment, error)
	ListByProducts(ctx context.Context, productIDs []string) ([]domain.Attachment, error)
}

type PublicStore interface {
	Count(ctx context.Context, search string) (int, error)
	Page(ctx context.Context, search string, take, offset int) ([]domain.PublicProject, error)
}

// Cache is a JSON read-through cache. A miss is (false, nil).
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, v any) error
	Invalidate(ctx context.Context, prefix string) error
}

// Cache key prefixes.
const (
	publicCachePrefix       = "public:projects:"
	productTypesCacheKey    = "product-types:all"
	productTypesCachePrefix = "product-types:"
)

type noCache struct{}

func (noCache) GetJSON(context.Context, string, any) (bool, error) { return false, nil }
func (noCache) SetJSON(context.Context, string, any) error         { return nil }
func (noCache) Invalidate(context.Context, string) error           { return nil }
