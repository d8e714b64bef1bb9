package http

import (
	"context"

	"github.com/ctein-nexus/nexus-backend/internal/users"
)

// ProfileStore is the subset of the users repository the profile endpoints use.
type ProfileStore interface {
	Get(ctx context.Context, firebaseUID string) (*users.User, error)
	UpdateDisplayName(ctx context.Context, firebaseUID, name string) (*users.User, error)
}

// PublicViews drops cached public listings, which embed creator display names.
type PublicViews interface {
	Invalidate(ctx context.Context)
}

type Handler struct {
	profiles ProfileStore
	views    PublicViews
}

// New builds the profile handler. views may be nil.
func New(profiles ProfileStore, views PublicViews) *Handler {
	return &Handler{profiles: profiles, views: views}
}
