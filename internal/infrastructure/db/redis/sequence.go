package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/aerolux/concierge-admin/internal/core/domain"
)

const sequenceKeyPrefix = "inventory:seq:"

// SequenceSeeder reports the highest sequence already persisted for a
// category. It is consulted once per counter, when the key is missing.
type SequenceSeeder interface {
	MaxSequence(ctx context.Context, cat domain.CategoryDescriptor) (int64, error)
}

// SequenceAllocator hands out per-category sequence numbers with INCR.
// Key format: inventory:seq:<collection>
type SequenceAllocator struct {
	client *redis.Client
	seeder SequenceSeeder
}

// NewSequenceAllocator creates a SequenceAllocator wrapping the given Redis client.
func NewSequenceAllocator(client *redis.Client, seeder SequenceSeeder) *SequenceAllocator {
	return &SequenceAllocator{client: client, seeder: seeder}
}

// Next returns the next unused sequence for cat. The counter is seeded from
// the store with SET NX, so concurrent seeders cannot move it backwards.
func (a *SequenceAllocator) Next(ctx context.Context, cat domain.CategoryDescriptor) (int64, error) {
	key := a.key(cat)

	n, err := a.client.Exists(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("sequence exists: %w", err)
	}
	if n == 0 && a.seeder != nil {
		max, err := a.seeder.MaxSequence(ctx, cat)
		if err != nil {
			return 0, fmt.Errorf("sequence seed: %w", err)
		}
		if err := a.client.SetNX(ctx, key, max, 0).Err(); err != nil {
			return 0, fmt.Errorf("sequence seed: %w", err)
		}
	}

	next, err := a.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("sequence incr: %w", err)
	}
	return next, nil
}

func (a *SequenceAllocator) key(cat domain.CategoryDescriptor) string {
	return sequenceKeyPrefix + cat.Collection
}
