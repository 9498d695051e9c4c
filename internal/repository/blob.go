// Package repository persists each state collection as a single keyed JSON
// blob, overwritten in full on every change and read back verbatim at
// startup.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"pvp-leaderboard/internal/constants"
)

const (
	KeyPlayers       = "players"
	KeyMatches       = "matches"
	KeyChampionships = "championships"
)

// ErrNoBlob is returned when a key has never been written or holds an empty
// body; callers fall back to the bundled snapshot.
var ErrNoBlob = errors.New("blob not found")

type BlobStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewBlobStore(sqlDB *sql.DB, logger zerolog.Logger) *BlobStore {
	return &BlobStore{db: sqlDB, logger: logger}
}

func (r *BlobStore) Save(ctx context.Context, key string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO blobs (key, body, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
	`, key, string(body), time.Now())
	if err != nil {
		r.logger.Error().Err(err).Str("key", key).Msg("failed to save blob")
		return fmt.Errorf("failed to save blob %s: %w", key, err)
	}

	r.logger.Debug().Str("key", key).Int("bytes", len(body)).Msg("blob saved")
	return nil
}

func (r *BlobStore) Load(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	var body string
	err := r.db.QueryRowContext(ctx, `SELECT body FROM blobs WHERE key = ?`, key).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, ErrNoBlob
	}
	if err != nil {
		r.logger.Error().Err(err).Str("key", key).Msg("failed to load blob")
		return nil, fmt.Errorf("failed to load blob %s: %w", key, err)
	}
	if body == "" {
		return nil, ErrNoBlob
	}
	return []byte(body), nil
}
