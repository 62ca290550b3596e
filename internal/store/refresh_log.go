package store

import (
	"context"
	"fmt"
	"time"
)

type RefreshRecord struct {
	ID          int64     `json:"id"`
	StartedAt   time.Time `json:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt"`
	OK          bool      `json:"ok"`
	Error       string    `json:"error,omitempty"`
	Jobs        int       `json:"jobs"`
	HostGroups  int       `json:"hostGroups"`
	BrandGroups int       `json:"brandGroups"`
}

func (d *DB) RecordRefresh(ctx context.Context, r RefreshRecord) (int64, error) {
	ok := 0
	if r.OK {
		ok = 1
	}
	res, err := d.Pool.ExecContext(ctx, `
INSERT INTO refresh_log(started_at, finished_at, ok, error, jobs, host_groups, brand_groups)
VALUES(?,?,?,?,?,?,?);`,
		r.StartedAt.UTC().Format(time.RFC3339Nano),
		r.FinishedAt.UTC().Format(time.RFC3339Nano),
		ok, r.Error, r.Jobs, r.HostGroups, r.BrandGroups)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// RecentRefreshes lists the newest refresh records first.
func (d *DB) RecentRefreshes(ctx context.Context, limit int) ([]RefreshRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := d.Pool.QueryContext(ctx, `
SELECT id, started_at, finished_at, ok, error, jobs, host_groups, brand_groups
FROM refresh_log
ORDER BY id DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []RefreshRecord{}
	for rows.Next() {
		var r RefreshRecord
		var started, finished string
		var ok int
		if err := rows.Scan(&r.ID, &started, &finished, &ok, &r.Error, &r.Jobs, &r.HostGroups, &r.BrandGroups); err != nil {
			return nil, err
		}
		r.OK = ok == 1
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

// PruneRefreshes keeps only the newest keep records.
func (d *DB) PruneRefreshes(ctx context.Context, keep int) (deleted int64, err error) {
	res, err := d.Pool.ExecContext(ctx, `
DELETE FROM refresh_log
WHERE id NOT IN (SELECT id FROM refresh_log ORDER BY id DESC LIMIT ?);
`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune refresh log: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
