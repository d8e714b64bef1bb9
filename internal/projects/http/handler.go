package http

import (
	"context"

	"github.com/ctein-nexus/nexus-backend/internal/projects/domain"
	"github.com/ctein-nexus/nexus-backend/internal/projects/validation"
)

type ProjectService interface {
	Create(ctx context.Context, ownerID string, req validation.CreateProjectRequest) (*domain.Project, error)
	Get(ctx context.Context, id, ownerID string) (*domain.Project, error)
	List(ctx context.Context, ownerID string) ([]domain.Project, error)
	Update(ctx context.Context, id, ownerID string, req validation.UpdateProjectRequest) (*domain.Project, error)
	Delete(ctx context.Context, id, ownerID string) error
}

type ProductService interface {
	Create(ctx context.Context, ownerID string, req validation.CreateProductRequest) (*domain.Product, error)
	Get(ctx context.Context, id, ownerID string) (*domain.Product, error)
	List(ctx context.Context, ownerID, projectID string) ([]domain.Product, error)
	Update(ctx context.Context, id, ownerID string, req validation.UpdateProductRequest) (*domain.Product, error)
	Delete(ctx context.Context, id, ownerID string) error
}

type ProductTypeService interface {
	List(ctx context.Context) ([]domain.ProductType, error)
	Create(ctx context.Context, req validation.CreateProductTypeRequest) (*domain.ProductType, error)
}

type AttachmentService interface {
	Attach(ctx context.Context, ownerID string, target domain.AttachTarget, file domain.FileUpload) (*domain.Attachment, error)
	AttachMany(ctx context.Context, ownerID string, target domain.AttachTarget, files []domain.FileUpload) []domain.AttachOutcome
	Detach(ctx context.Context, ownerID, id string) error
}

type PublicService interface {
	List(ctx context.Context, q domain.PublicQuery) (*domain.PublicPage, error)
}

// Handler bundles the dependencies for the projects HTTP endpoints.
type Handler struct {
	projects     ProjectService
	products     ProductService
	productTypes ProductTypeService
	attachments  AttachmentService
	public       PublicService
	maxUpload    int64
}

type Deps struct {
	Projects       ProjectService
	Products       ProductService
	ProductTypes   ProductTypeService
	Attachments    AttachmentService
	Public         PublicService
	MaxUploadBytes int64
}

func New(d Deps) *Handler {
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = 10 << 20
	}
	return &Handler{
		projects:     d.Projects,
		products:     d.Products,
		productTypes: d.ProductTypes,
		attachments:  d.Attachments,
		public:       d.Public,
		maxUpload:    d.MaxUploadBytes,
	}
}
