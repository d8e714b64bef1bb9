package service

import (
	"context"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ctein-nexus/nexus-backend/internal/blobstore"
	"github.com/ctein-nexus/nexus-backend/internal/metrics"
	"github.com/ctein-nexus/nexus-backend/internal/projects/domain"
)

const defaultUploadConcurrency = 4

// AttachmentService owns the attachment lifecycle: upload then record on
// attach, record removal then best-effort blob removal on detach.
type AttachmentService struct {
	guard       *Guard
	store       AttachmentStore
	blobs       blobstore.Gateway
	cleanup     CleanupPolicy
	cache       Cache
	folderRoot  string
	maxBytes    int64
	concurrency int
}

type AttachmentDeps struct {
	Guard       *Guard
	Store       AttachmentStore
	Blobs       blobstore.Gateway
	Cleanup     CleanupPolicy
	Cache       Cache
	FolderRoot  string
	MaxBytes    int64
	Concurrency int
}

func NewAttachmentService(d AttachmentDeps) *AttachmentService {
	if d.Cleanup == nil {
		d.Cleanup = LogAndContinue{}
	}
	if d.Cache == nil {
		d.Cache = noCache{}
	}
	if d.Concurrency <= 0 {
		d.Concurrency = defaultUploadConcurrency
	}
	return &AttachmentService{
		guard:       d.Guard,
		store:       d.Store,
		blobs:       d.Blobs,
		cleanup:     d.Cleanup,
		cache:       d.Cache,
		folderRoot:  d.FolderRoot,
		maxBytes:    d.MaxBytes,
		concurrency: d.Concurrency,
	}
}

// Attach uploads one file under the target's folder and records it. An upload
// failure leaves no row behind.
func (s *AttachmentService) Attach(ctx context.Context, ownerID string, target domain.AttachTarget, file domain.FileUpload) (*domain.Attachment, error) {
	a, err := s.attach(ctx, ownerID, target, file)
	metrics.RecordUpload(string(target.EntityType), int64(len(file.Data)), err == nil)
	return a, err
}

func (s *AttachmentService) attach(ctx context.Context, ownerID string, target domain.AttachTarget, file domain.FileUpload) (*domain.Attachment, error) {
	if err := s.checkFile(file); err != nil {
		return nil, err
	}
	if err := s.guard.OwnedTarget(ctx, target, ownerID); err != nil {
		return nil, err
	}

	mimeType := file.MimeType
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = mimetype.Detect(file.Data).String()
	}

	folder := blobstore.Folder(s.folderRoot, string(target.EntityType), target.EntityID)
	obj, err := s.blobs.Upload(ctx, folder, file.FileName, mimeType, file.Data)
	if err != nil {
		return nil, domain.Upstream("upload blob", err)
	}

	a := &domain.Attachment{
		URL:        obj.URL,
		StorageKey: obj.Key,
		FileName:   file.FileName,
		FileSize:   int64(len(file.Data)),
		MimeType:   mimeType,
	}
	id := target.EntityID
	if target.EntityType == domain.EntityProject {
		a.ProjectID = &id
	} else {
		a.ProductID = &id
	}

	if err := s.store.Create(ctx, a); err != nil {
		removeBlobs(ctx, s.blobs, s.cleanup, []string{obj.Key})
		return nil, domain.Upstream("create attachment", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("attachment_id", a.ID).
		Str("entity_type", string(target.EntityType)).
		Str("entity_id", target.EntityID).
		Int64("size", a.FileSize).
		Msg("attachment stored")
	invalidate(ctx, s.cache, publicCachePrefix)
	return a, nil
}

func (s *AttachmentService) checkFile(file domain.FileUpload) error {
	ve := &domain.ValidationError{}
	if file.FileName == "" {
		ve.Add("fileName", "is required")
	}
	switch {
	case len(file.Data) == 0:
		ve.Add("file", "is required")
	case s.maxBytes > 0 && int64(len(file.Data)) > s.maxBytes:
		ve.Add("file", fmt.Sprintf("must be at most %d bytes", s.maxBytes))
	}
	return ve.OrNil()
}

// AttachMany attaches each file independently and concurrently. The result
// has one outcome per file in input order; a failure never affects the others.
func (s *AttachmentService) AttachMany(ctx context.Context, ownerID string, target domain.AttachTarget, files []domain.FileUpload) []domain.AttachOutcome {
	out := make([]domain.AttachOutcome, len(files))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, f := range files {
		g.Go(func() error {
			a, err := s.Attach(ctx, ownerID, target, f)
			out[i] = domain.AttachOutcome{FileName: f.FileName, Attachment: a, Err: err}
			if err != nil {
				out[i].Error = publicMessage(err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Detach removes the attachment row regardless of whether its blob could be
// deleted. Blob failures go to the cleanup policy.
func (s *AttachmentService) Detach(ctx context.Context, ownerID, id string) error {
	a, err := s.guard.OwnedAttachment(ctx, id, ownerID)
	if err != nil {
		return err
	}

	removeBlobs(ctx, s.blobs, s.cleanup, []string{a.StorageKey})

	if err := s.store.Delete(ctx, a.ID); err != nil {
		return domain.Upstream("delete attachment", err)
	}
	invalidate(ctx, s.cache, publicCachePrefix)
	return nil
}
