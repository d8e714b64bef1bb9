package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/ctein-nexus/nexus-backend/internal/projects/domain"
)

// Guard resolves entities on behalf of a caller. Anything absent, malformed
// or owned by someone else is reported as domain.ErrNotFound.
type Guard struct {
	projects    ProjectStore
	products    ProductStore
	attachments AttachmentStore
}

func NewGuard(projects ProjectStore, products ProductStore, attachments AttachmentStore) *Guard {
	return &Guard{projects: projects, products: products, attachments: attachments}
}

func requireOwner(ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return domain.ErrUnauthenticated
	}
	return nil
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (g *Guard) OwnedProject(ctx context.Context, id, ownerID string) (*domain.Project, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	p, err := g.projects.GetOwned(ctx, id, ownerID)
	if err != nil {
		return nil, domain.Upstream("get project", err)
	}
	return p, nil
}

func (g *Guard) OwnedProduct(ctx context.Context, id, ownerID string) (*domain.Product, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	pr, err := g.products.GetOwned(ctx, id, ownerID)
	if err != nil {
		return nil, domain.Upstream("get product", err)
	}
	return pr, nil
}

func (g *Guard) OwnedAttachment(ctx context.Context, id, ownerID string) (*domain.Attachment, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	a, err := g.attachments.GetOwned(ctx, id, ownerID)
	if err != nil {
		return nil, domain.Upstream("get attachment", err)
	}
	return a, nil
}

// OwnedTarget confirms the caller owns the parent an upload is aimed at.
func (g *Guard) OwnedTarget(ctx context.Context, t domain.AttachTarget, ownerID string) error {
	switch t.EntityType {
	case domain.EntityProject:
		_, err := g.OwnedProject(ctx, t.EntityID, ownerID)
		return err
	case domain.EntityProduct:
		_, err := g.OwnedProduct(ctx, t.EntityID, ownerID)
		return err
	}
	return domain.ErrNotFound
}
