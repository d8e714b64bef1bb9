package validation

import (
	"math"
	"strconv"
	"strings"

	"github.com/ctein-nexus/nexus-backend/internal/projects/domain"
)

type UploadRequest struct {
	EntityType string `form:"entityType" validate:"required,oneof=project product"`
	EntityID   string `form:"entityId" validate:"required,uuid"`
	FileName   string `form:"fileName" validate:"required,max=255"`
}

// Upload validates the form fields of an upload. fallbackName (the multipart
// file name) is used when fileName is blank.
func Upload(req UploadRequest, fallbackName string) (domain.AttachTarget, string, error) {
	req.EntityType = strings.ToLower(trim(req.EntityType))
	req.EntityID = trim(req.EntityID)
	req.FileName = trim(req.FileName)
	if req.FileName == "" {
		req.FileName = trim(fallbackName)
	}

	ve := &domain.ValidationError{}
	check(ve, req)
	if err := ve.OrNil(); err != nil {
		return domain.AttachTarget{}, "", err
	}

	return domain.AttachTarget{
		EntityType: domain.EntityType(req.EntityType),
		EntityID:   req.EntityID,
	}, req.FileName, nil
}

// AttachmentID validates the id query parameter of a delete.
func AttachmentID(raw string) (string, error) {
	id := trim(raw)
	ve := &domain.ValidationError{}
	if id == "" {
		ve.Add("id", "is required")
	} else if err := validate.Var(id, "uuid"); err != nil {
		ve.Add("id", "must be a valid id")
	}
	if err := ve.OrNil(); err != nil {
		return "", err
	}
	return id, nil
}

const (
	DefaultPublicLimit  = 10
	ShowcasePublicLimit = 6
	MaxPublicPageSize   = 50
	// maxPublicParam bounds limit and offset so offset+limit fits any int.
	maxPublicParam = math.MaxInt32
)

// PublicQuery normalises listing parameters. Unparseable or non-positive limits
// fall back to defaultLimit, negative offsets become 0 and both are capped at
// math.MaxInt32.
func PublicQuery(rawLimit, rawOffset, search string, defaultLimit int) domain.PublicQuery {
	limit, err := strconv.Atoi(strings.TrimSpace(rawLimit))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(strings.TrimSpace(rawOffset))
	if err != nil || offset < 0 {
		offset = 0
	}
	return domain.PublicQuery{
		Limit:  min(limit, maxPublicParam),
		Offset: min(offset, maxPublicParam),
		Search: strings.TrimSpace(search),
	}
}
