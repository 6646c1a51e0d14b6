package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"starlings/models"
)

// The store keeps a single snapshot per key; the approved feed only
// needs one.
const snapshotKey = "approved"

// ErrNoSnapshot is returned when no usable snapshot exists. A corrupt
// payload is reported the same way so callers treat it as a cache miss.
var ErrNoSnapshot = errors.New("no cached snapshot")

// Store persists the last fetched approved-post snapshot so a restart
// does not have to wait for the moderation backend.
type Store struct {
	db *sql.DB
}

func NewStore(database string) (*Store, error) {
	db, err := connection(database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return &Store{db: db}, nil
}

func (store *Store) Close() error {
	return store.db.Close()
}

// GetSnapshot returns the persisted posts and the time they were
// fetched from the backend.
func (store *Store) GetSnapshot(ctx context.Context) ([]models.Post, time.Time, error) {
	selectSnap := sqlbuilder.NewSelectBuilder()
	selectSnap.Select("fetched_at", "payload").
		From("post_cache").
		Where(selectSnap.Equal("key", snapshotKey))
	query, args := selectSnap.BuildWithFlavor(sqlbuilder.SQLite)

	var fetchedAt int64
	var payload string
	err := store.db.QueryRowContext(ctx, query, args...).Scan(&fetchedAt, &payload)
	if err == sql.ErrNoRows {
		return nil, time.Time{}, ErrNoSnapshot
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("query error: %w", err)
	}

	var posts []models.Post
	if err := json.Unmarshal([]byte(payload), &posts); err != nil {
		log.WithFields(log.Fields{
			"error": err,
		}).Warn("Discarding corrupt post snapshot")
		return nil, time.Time{}, ErrNoSnapshot
	}

	return posts, time.Unix(fetchedAt, 0), nil
}

// PutSnapshot replaces the persisted snapshot.
func (store *Store) PutSnapshot(ctx context.Context, posts []models.Post, fetchedAt time.Time) error {
	payload, err := json.Marshal(posts)
	if err != nil {
		return fmt.Errorf("failed to encode posts: %w", err)
	}

	log.WithFields(log.Fields{
		"count":     len(posts),
		"fetchedAt": fetchedAt.Format(time.RFC3339),
	}).Info("Persisting post snapshot")

	_, err = store.db.ExecContext(ctx, `
		INSERT INTO post_cache (key, fetched_at, payload)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			fetched_at = excluded.fetched_at,
			payload = excluded.payload`,
		snapshotKey,
		fetchedAt.Unix(),
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert error: %w", err)
	}

	return nil
}
