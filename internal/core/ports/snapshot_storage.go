package ports

import "context"

// SnapshotStorage persists the serialized session projection under a fixed key.
// Load returns nil, nil when nothing has been stored yet.
type SnapshotStorage interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}
