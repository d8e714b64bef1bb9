package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ctein-nexus/nexus-backend/internal/blobstore"
	"github.com/ctein-nexus/nexus-backend/internal/metrics"
)

// CleanupPolicy decides what happens when a blob could not be deleted after
// its row is gone. It must not fail the calling operation.
type CleanupPolicy interface {
	BlobDeleteFailed(ctx context.Context, key string, err error)
}

// OrphanRecorder remembers blob keys for a later retry.
type OrphanRecorder interface {
	RecordOrphan(ctx context.Context, key string) error
}

// LogAndContinue logs the failure and, when Orphans is set, queues the key
// for the sweeper.
type LogAndContinue struct {
	Orphans OrphanRecorder
}

func (p LogAndContinue) BlobDeleteFailed(ctx context.Context, key string, err error) {
	log := zerolog.Ctx(ctx)
	metrics.RecordBlobCleanupFailure()
	log.Warn().Err(err).Str("storage_key", key).Msg("blob delete failed, continuing")

	if p.Orphans == nil {
		return
	}
	if qerr := p.Orphans.RecordOrphan(ctx, key); qerr != nil {
		log.Error().Err(qerr).Str("storage_key", key).Msg("record orphaned blob")
	}
}

// removeBlobs deletes every key, handing failures to policy.
func removeBlobs(ctx context.Context, gw blobstore.Gateway, policy CleanupPolicy, keys []string) {
	for _, k := range keys {
		if err := gw.Delete(ctx, k); err != nil {
			policy.BlobDeleteFailed(ctx, k, err)
		}
	}
}
