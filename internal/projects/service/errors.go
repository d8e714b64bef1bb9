package service

import (
	"errors"

	"github.com/ctein-nexus/nexus-backend/internal/projects/domain"
)

// publicMessage is the caller-safe text for err. Upstream causes are hidden.
func publicMessage(err error) string {
	var ve *domain.ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Error()
	case errors.Is(err, domain.ErrNotFound):
		return "not found"
	case errors.Is(err, domain.ErrUnauthenticated):
		return "not authenticated"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrConflict):
		return "already exists"
	}
	return "internal error"
}
