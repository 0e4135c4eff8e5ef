package storage

import (
	"context"
	"time"
)

// Default expiry duration for presigned download URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// SnapshotStorage is the object-storage capability behind plan backups:
// whole-aggregate JSON snapshots written under opaque keys, retrieved via
// presigned download URLs.
type SnapshotStorage interface {
	// PutSnapshot writes one serialized snapshot under the given key,
	// replacing any previous object at that key.
	PutSnapshot(ctx context.Context, key string, data []byte) error

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET
	// requests for a snapshot directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, key string, expires time.Duration) (string, error)

	// DeleteSnapshot removes a snapshot object.
	DeleteSnapshot(ctx context.Context, key string) error
}
