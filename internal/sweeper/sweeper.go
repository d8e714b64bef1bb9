// Package sweeper retries deletion of blobs whose cleanup failed on the
// request path.
package sweeper

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/ctein-nexus/nexus-backend/internal/metrics"
)

const (
	DefaultSchedule = "0 */15 * * * *" // every 15 minutes, seconds field first
	batchSize       = 100
	runTimeout      = 2 * time.Minute
)

// Deleter is the part of the blob gateway the sweeper needs.
type Deleter interface {
	Delete(ctx context.Context, key string) error
}

type Sweeper struct {
	queue *Queue
	blobs Deleter
	log   zerolog.Logger
	cron  *cron.Cron
}

func New(queue *Queue, blobs Deleter, log zerolog.Logger) *Sweeper {
	return &Sweeper{
		queue: queue,
		blobs: blobs,
		log:   log.With().Str("component", "sweeper").Logger(),
	}
}

// RunOnce drains the queue in batches. Keys that still fail are put back
// for the next run. It returns how many blobs were deleted and how many failed.
func (s *Sweeper) RunOnce(ctx context.Context) (deleted, failed int, err error) {
	var retry []string
	defer func() {
		for _, k := range retry {
			if qerr := s.queue.RecordOrphan(ctx, k); qerr != nil {
				s.log.Error().Err(qerr).Str("storage_key", k).Msg("requeue orphan")
			}
		}
	}()

	for {
		keys, err := s.queue.Take(ctx, batchSize)
		if err != nil {
			return deleted, failed, err
		}
		if len(keys) == 0 {
			return deleted, failed, nil
		}
		for _, k := range keys {
			if derr := s.blobs.Delete(ctx, k); derr != nil {
				s.log.Warn().Err(derr).Str("storage_key", k).Msg("orphan delete failed")
				metrics.RecordOrphanSweep(false)
				retry = append(retry, k)
				failed++
				continue
			}
			metrics.RecordOrphanSweep(true)
			deleted++
		}
		if len(keys) < batchSize {
			return deleted, failed, nil
		}
	}
}

// Start schedules RunOnce using a six-field cron spec.
func (s *Sweeper) Start(schedule string) error {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	c := cron.New(cron.WithSeconds())
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		deleted, failed, err := s.RunOnce(ctx)
		if err != nil {
			s.log.Error().Err(err).Msg("sweep failed")
			return
		}
		if deleted+failed > 0 {
			s.log.Info().Int("deleted", deleted).Int("failed", failed).Msg("sweep finished")
		}
	})
	if err != nil {
		return err
	}

	s.cron = c
	c.Start()
	s.log.Info().Str("schedule", schedule).Msg("sweeper started")
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}
