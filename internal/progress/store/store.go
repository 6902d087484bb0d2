// Package store persists user progress profiles. Implementations pair an
// in-memory store for tests and local runs with a PostgreSQL store for
// production; both expose whole-profile snapshots and version-guarded saves.
package store

import (
	"context"

	"onestack/internal/progress"
	id "onestack/pkg/domain"
)

// ProfileStore is the repository for per-user progress documents.
//
// Get returns a snapshot the caller may mutate freely. Save persists the
// whole document atomically and succeeds only if the stored version still
// matches the snapshot's; sentinel.ErrConflict signals that another writer
// got there first and the caller should re-read and replay. Profiles are
// provisioned by the external registration flow; Get on an unknown user
// returns sentinel.ErrNotFound.
type ProfileStore interface {
	Get(ctx context.Context, userID id.UserID) (*progress.Profile, error)
	Save(ctx context.Context, profile *progress.Profile) error
	Create(ctx context.Context, userID id.UserID) error
}
