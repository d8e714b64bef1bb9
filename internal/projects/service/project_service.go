package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ctein-nexus/nexus-backend/internal/blobstore"
	"github.com/ctein-nexus/nexus-backend/internal/projects/domain"
	"github.com/ctein-nexus/nexus-backend/internal/projects/validation"
)

// ProjectService handles project-related business logic
type ProjectService struct {
	guard       *Guard
	projects    ProjectStore
	products    ProductStore
	attachments AttachmentStore
	blobs       blobstore.Gateway
	cleanup     CleanupPolicy
	cache       Cache
}

type ProjectDeps struct {
	Guard       *Guard
	Projects    ProjectStore
	Products    ProductStore
	Attachments AttachmentStore
	Blobs       blobstore.Gateway
	Cleanup     CleanupPolicy
	Cache       Cache
}

// NewProjectService creates a new project service
func NewProjectService(d ProjectDeps) *ProjectService {
	if d.Cleanup == nil {
		d.Cleanup = LogAndContinue{}
	}
	if d.Cache == nil {
		d.Cache = noCache{}
	}
	return &ProjectService{
		guard:       d.Guard,
		projects:    d.Projects,
		products:    d.Products,
		attachments: d.Attachments,
		blobs:       d.Blobs,
		cleanup:     d.Cleanup,
		cache:       d.Cache,
	}
}

// Create validates req and stores a new PROPOSED project owned by ownerID.
func (s *ProjectService) Create(ctx context.Context, ownerID string, req validation.CreateProjectRequest) (*domain.Project, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	in, err := validation.CreateProject(req)
	if err != nil {
		return nil, err
	}

	p, err := s.projects.Create(ctx, ownerID, in)
	if err != nil {
		return nil, domain.Upstream("create project", err)
	}
	if p.IsPublic {
		s.invalidatePublic(ctx)
	}
	return p, nil
}

// Get returns the project with its products and attachments.
func (s *ProjectService) Get(ctx context.Context, id, ownerID string) (*domain.Project, error) {
	p, err := s.guard.OwnedProject(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	list := []domain.Project{*p}
	if err := s.hydrate(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// List returns the caller's projects, newest first.
func (s *ProjectService) List(ctx context.Context, ownerID string) ([]domain.Project, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	items, err := s.projects.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, domain.Upstream("list projects", err)
	}
	if err := s.hydrate(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// hydrate fills products (with their attachments) and direct attachments in two round trips per relation.
func (s *ProjectService) hydrate(ctx context.Context, items []domain.Project) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}

	products, err := s.products.ListByProjects(ctx, ids, false)
	if err != nil {
		return domain.Upstream("list products", err)
	}
	if err := attachToProducts(ctx, s.attachments, products); err != nil {
		return err
	}
	projectFiles, err := s.attachments.ListByProjects(ctx, ids)
	if err != nil {
		return domain.Upstream("list attachments", err)
	}

	byProject := make(map[string][]domain.Product, len(items))
	for _, pr := range products {
		byProject[pr.ProjectID] = append(byProject[pr.ProjectID], pr)
	}
	filesByProject := make(map[string][]domain.Attachment, len(items))
	for _, a := range projectFiles {
		if a.ProjectID != nil {
			filesByProject[*a.ProjectID] = append(filesByProject[*a.ProjectID], a)
		}
	}
	for i := range items {
		if ps, ok := byProject[items[i].ID]; ok {
			items[i].Products = ps
		}
		if fs, ok := filesByProject[items[i].ID]; ok {
			items[i].Attachments = fs
		}
	}
	return nil
}

func attachToProducts(ctx context.Context, store AttachmentStore, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]string, len(products))
	for i := range products {
		ids[i] = products[i].ID
	}
	files, err := store.ListByProducts(ctx, ids)
	if err != nil {
		return domain.Upstream("list attachments", err)
	}
	byProduct := make(map[string][]domain.Attachment, len(products))
	for _, a := range files {
		if a.ProductID != nil {
			byProduct[*a.ProductID] = append(byProduct[*a.ProductID], a)
		}
	}
	for i := range products {
		if fs, ok := byProduct[products[i].ID]; ok {
			products[i].Attachments = fs
		}
	}
	return nil
}

// Update re-validates the present fields and applies them after an ownership check.
func (s *ProjectService) Update(ctx context.Context, id, ownerID string, req validation.UpdateProjectRequest) (*domain.Project, error) {
	patch, err := validation.UpdateProject(req)
	if err != nil {
		return nil, err
	}
	current, err := s.guard.OwnedProject(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if err := checkPatchedDates(current, patch); err != nil {
		return nil, err
	}

	if !patch.Empty() {
		if err := s.projects.Update(ctx, id, ownerID, patch); err != nil {
			return nil, domain.Upstream("update project", err)
		}
		s.invalidatePublic(ctx)
	}
	return s.Get(ctx, id, ownerID)
}

// checkPatchedDates rejects a patch that would leave end_date before start_date.
func checkPatchedDates(current *domain.Project, patch domain.ProjectPatch) error {
	start, end := current.StartDate, current.EndDate
	if patch.StartDate != nil {
		start = patch.StartDate
	}
	if patch.EndDate != nil {
		end = patch.EndDate
	}
	if start != nil && end != nil && end.Before(start.Time) {
		ve := &domain.ValidationError{}
		ve.Add("end_date", "must not be before start_date")
		return ve
	}
	return nil
}

// Delete removes the project and everything under it, then deletes the blobs
// of the cascaded attachments on a best-effort basis.
func (s *ProjectService) Delete(ctx context.Context, id, ownerID string) error {
	if _, err := s.guard.OwnedProject(ctx, id, ownerID); err != nil {
		return err
	}
	keys, err := s.projects.StorageKeys(ctx, id)
	if err != nil {
		return domain.Upstream("list project blobs", err)
	}

	ok, err := s.projects.Delete(ctx, id, ownerID)
	if err != nil {
		return domain.Upstream("delete project", err)
	}
	if !ok {
		return domain.ErrNotFound
	}

	zerolog.Ctx(ctx).Info().Str("project_id", id).Int("blobs", len(keys)).Msg("project deleted")
	removeBlobs(ctx, s.blobs, s.cleanup, keys)
	s.invalidatePublic(ctx)
	return nil
}

func (s *ProjectService) invalidatePublic(ctx context.Context) {
	invalidate(ctx, s.cache, publicCachePrefix)
}

func invalidate(ctx context.Context, c Cache, prefix string) {
	if err := c.Invalidate(ctx, prefix); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("prefix", prefix).Msg("cache invalidate failed")
	}
}
