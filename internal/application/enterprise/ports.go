package enterprise

import "context"

// SnapshotRepository saves and restores whole-factory snapshots
type SnapshotRepository interface {
	// Save persists snap and returns its assigned id
	Save(ctx context.Context, snap Snapshot) (string, error)

	// Latest returns the most recently saved snapshot, or nil if none exists
	Latest(ctx context.Context) (*Snapshot, error)
}
