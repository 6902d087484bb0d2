package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"onestack/internal/progress"
	id "onestack/pkg/domain"
	"onestack/pkg/platform/sentinel"
	"onestack/pkg/requestcontext"
)

// PostgresProfileStore persists each user's progress as a single row: a JSONB
// document for the domain records plus denormalized total and version
// columns. One row update keeps the domain array and the total atomic, the
// same guarantee the document model gives, while the version column backs the
// optimistic-concurrency check.
type PostgresProfileStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresProfileStore {
	return &PostgresProfileStore{db: db}
}

const schema = `
CREATE TABLE IF NOT EXISTS user_progress (
	user_id                UUID PRIMARY KEY,
	progress               JSONB NOT NULL DEFAULT '[]',
	total_topics_completed INTEGER NOT NULL DEFAULT 0,
	version                BIGINT NOT NULL DEFAULT 1,
	updated_at             TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// EnsureSchema creates the backing table if it does not exist.
func (s *PostgresProfileStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure user_progress schema: %w", err)
	}
	return nil
}

func (s *PostgresProfileStore) Get(ctx context.Context, userID id.UserID) (*progress.Profile, error) {
	var (
		raw     []byte
		total   int
		version int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT progress, total_topics_completed, version
		   FROM user_progress WHERE user_id = $1`,
		uuid.UUID(userID),
	).Scan(&raw, &total, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	var domains []progress.DomainProgress
	if err := json.Unmarshal(raw, &domains); err != nil {
		return nil, fmt.Errorf("decode progress document: %w", err)
	}

	return &progress.Profile{
		UserID:               userID,
		Domains:              domains,
		TotalTopicsCompleted: total,
		Version:              version,
	}, nil
}

func (s *PostgresProfileStore) Save(ctx context.Context, profile *progress.Profile) error {
	doc, err := json.Marshal(profile.Domains)
	if err != nil {
		return fmt.Errorf("encode progress document: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE user_progress
		    SET progress = $2,
		        total_topics_completed = $3,
		        version = version + 1,
		        updated_at = $4
		  WHERE user_id = $1 AND version = $5`,
		uuid.UUID(profile.UserID), doc, profile.TotalTopicsCompleted,
		requestcontext.Now(ctx), profile.Version,
	)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	if affected == 0 {
		// Either the row is gone or another writer bumped the version.
		var exists bool
		err := s.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM user_progress WHERE user_id = $1)`,
			uuid.UUID(profile.UserID),
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		if !exists {
			return sentinel.ErrNotFound
		}
		return sentinel.ErrConflict
	}

	profile.Version++
	return nil
}

func (s *PostgresProfileStore) Create(ctx context.Context, userID id.UserID) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO user_progress (user_id) VALUES ($1)
		 ON CONFLICT (user_id) DO NOTHING`,
		uuid.UUID(userID),
	)
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrConflict
	}
	return nil
}
