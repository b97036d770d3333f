package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "talentsphere:"

// SnapshotStorage keeps the session snapshot in a single Redis key so that
// several CLI hosts can share one session.
type SnapshotStorage struct {
	client *redis.Client
	key    string
}

// NewSnapshotStorage stores the snapshot under talentsphere:<name>.
func NewSnapshotStorage(client *redis.Client, name string) *SnapshotStorage {
	return &SnapshotStorage{client: client, key: keyPrefix + name}
}

// Load returns nil, nil when no snapshot has been saved.
func (s *SnapshotStorage) Load(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return data, nil
}

// Save overwrites the snapshot. It never expires.
func (s *SnapshotStorage) Save(ctx context.Context, data []byte) error {
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
