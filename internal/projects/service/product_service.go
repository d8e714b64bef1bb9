package service

import (
	"context"

	"github.com/ctein-nexus/nexus-backend/internal/blobstore"
	"github.com/ctein-nexus/nexus-backend/internal/projects/domain"
	"github.com/ctein-nexus/nexus-backend/internal/projects/validation"
)

type ProductService struct {
	guard       *Guard
	products    ProductStore
	types       ProductTypeStore
	attachments AttachmentStore
	blobs       blobstore.Gateway
	cleanup     CleanupPolicy
	cache       Cache
}

type ProductDeps struct {
	Guard       *Guard
	Products    ProductStore
	Types       ProductTypeStore
	Attachments AttachmentStore
	Blobs       blobstore.Gateway
	Cleanup     CleanupPolicy
	Cache       Cache
}

func NewProductService(d ProductDeps) *ProductService {
	if d.Cleanup == nil {
		d.Cleanup = LogAndContinue{}
	}
	if d.Cache == nil {
		d.Cache = noCache{}
	}
	return &ProductService{
		guard:       d.Guard,
		products:    d.Products,
		types:       d.Types,
		attachments: d.Attachments,
		blobs:       d.Blobs,
		cleanup:     d.Cleanup,
		cache:       d.Cache,
	}
}

// Create stores a product under a project the caller owns. A foreign or
// missing project and an unknown product type both yield domain.ErrNotFound.
func (s *ProductService) Create(ctx context.Context, ownerID string, req validation.CreateProductRequest) (*domain.Product, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	in, err := validation.CreateProduct(req)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.OwnedProject(ctx, in.ProjectID, ownerID); err != nil {
		return nil, err
	}
	if err := s.typeExists(ctx, in.ProductTypeID); err != nil {
		return nil, err
	}

	id, err := s.products.Create(ctx, ownerID, in)
	if err != nil {
		return nil, domain.Upstream("create product", err)
	}
	invalidate(ctx, s.cache, publicCachePrefix)
	return s.Get(ctx, id, ownerID)
}

func (s *ProductService) typeExists(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	if _, err := s.types.Get(ctx, id); err != nil {
		return domain.Upstream("get product type", err)
	}
	return nil
}

// Get returns the product with its type, parent summary and attachments.
func (s *ProductService) Get(ctx context.Context, id, ownerID string) (*domain.Product, error) {
	pr, err := s.guard.OwnedProduct(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	list := []domain.Product{*pr}
	if err := attachToProducts(ctx, s.attachments, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// List returns the caller's products, optionally only those of projectID.
func (s *ProductService) List(ctx context.Context, ownerID, projectID string) ([]domain.Product, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if projectID != "" && !validID(projectID) {
		return []domain.Product{}, nil
	}
	items, err := s.products.ListByOwner(ctx, ownerID, projectID)
	if err != nil {
		return nil, domain.Upstream("list products", err)
	}
	if err := attachToProducts(ctx, s.attachments, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Update applies a validated patch. Moving the product to another project
// requires owning that project; a changed type must exist.
func (s *ProductService) Update(ctx context.Context, id, ownerID string, req validation.UpdateProductRequest) (*domain.Product, error) {
	patch, err := validation.UpdateProduct(req)
	if err != nil {
		return nil, err
	}
	current, err := s.guard.OwnedProduct(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if patch.ProjectID != nil && *patch.ProjectID != current.ProjectID {
		if _, err := s.guard.OwnedProject(ctx, *patch.ProjectID, ownerID); err != nil {
			return nil, err
		}
	}
	if patch.ProductTypeID != nil && *patch.ProductTypeID != current.ProductTypeID {
		if err := s.typeExists(ctx, *patch.ProductTypeID); err != nil {
			return nil, err
		}
	}

	if !patch.Empty() {
		if err := s.products.Update(ctx, id, ownerID, patch); err != nil {
			return nil, domain.Upstream("update product", err)
		}
		invalidate(ctx, s.cache, publicCachePrefix)
	}
	return s.Get(ctx, id, ownerID)
}

// Delete removes the product and its attachments, then their blobs.
func (s *ProductService) Delete(ctx context.Context, id, ownerID string) error {
	if _, err := s.guard.OwnedProduct(ctx, id, ownerID); err != nil {
		return err
	}
	keys, err := s.products.StorageKeys(ctx, id)
	if err != nil {
		return domain.Upstream("list product blobs", err)
	}

	ok, err := s.products.Delete(ctx, id, ownerID)
	if err != nil {
		return domain.Upstream("delete product", err)
	}
	if !ok {
		return domain.ErrNotFound
	}

	removeBlobs(ctx, s.blobs, s.cleanup, keys)
	invalidate(ctx, s.cache, publicCachePrefix)
	return nil
}
