package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"
)

// CachedFeed is the last raw payload fetched for one feed kind.
type CachedFeed struct {
	Kind      string
	Body      []byte
	SHA256    string
	FetchedAt time.Time
}

func bodyHash(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

// SaveFeed stores body as the latest payload for kind. It reports whether the
// payload differs from what was cached before.
func (d *DB) SaveFeed(ctx context.Context, kind string, body []byte, at time.Time) (changed bool, err error) {
	sum := bodyHash(body)

	var prev string
	err = d.Pool.QueryRowContext(ctx, `SELECT sha256 FROM feed_cache WHERE kind = ?;`, kind).Scan(&prev)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}

	_, err = d.Pool.ExecContext(ctx, `
INSERT INTO feed_cache(kind, body, sha256, fetched_at)
VALUES(?,?,?,?)
ON CONFLICT(kind) DO UPDATE SET
  body = excluded.body,
  sha256 = excluded.sha256,
  fetched_at = excluded.fetched_at;
`, kind, body, sum, at.UTC().Format(time.RFC3339))
	if err != nil {
		return false, err
	}
	return prev != sum, nil
}

// LoadFeed returns the cached payload for kind; ok is false when nothing was
// cached yet.
func (d *DB) LoadFeed(ctx context.Context, kind string) (feed CachedFeed, ok bool, err error) {
	var fetchedAt string
	err = d.Pool.QueryRowContext(ctx, `
SELECT kind, body, sha256, fetched_at FROM feed_cache WHERE kind = ?;
`, kind).Scan(&feed.Kind, &feed.Body, &feed.SHA256, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return CachedFeed{}, false, nil
	}
	if err != nil {
		return CachedFeed{}, false, err
	}
	feed.FetchedAt, _ = time.Parse(time.RFC3339, fetchedAt)
	return feed, true, nil
}
