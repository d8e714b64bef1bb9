package sweeper

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const orphanSetKey = "nexus:blobs:orphaned" // set of storage keys awaiting deletion

// Queue is the Redis set of blob keys whose deletion failed.
type Queue struct {
	client *redis.Client
}

func NewQueue(client *redis.Client) *Queue {
	return &Queue{client: client}
}

// RecordOrphan queues key for a later delete attempt.
func (q *Queue) RecordOrphan(ctx context.Context, key string) error {
	if err := q.client.SAdd(ctx, orphanSetKey, key).Err(); err != nil {
		return fmt.Errorf("queue orphan %s: %w", key, err)
	}
	return nil
}

// Take removes and returns up to n queued keys.
func (q *Queue) Take(ctx context.Context, n int64) ([]string, error) {
	keys, err := q.client.SPopN(ctx, orphanSetKey, n).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("take orphans: %w", err)
	}
	return keys, nil
}

// Len reports how many keys are waiting.
func (q *Queue) Len(ctx context.Context) (int64, error) {
	return q.client.SCard(ctx, orphanSetKey).Result()
}
