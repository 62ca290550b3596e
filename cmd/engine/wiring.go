package main

import (
	"crypto/rand"
	"encoding/hex"
	"path/filepath"

	"livesched-engine/internal/config"
	"livesched-engine/internal/domain"
	"livesched-engine/internal/feed"
	"livesched-engine/internal/match"
	"livesched-engine/internal/schedule"
	"livesched-engine/internal/snapshot"
)

func feedOptions(cfg config.Config) feed.Options {
	return feed.Options{
		Jobs:     feed.Source{URL: cfg.Feeds.JobsURL, Format: cfg.Feeds.JobsFormat},
		Groups:   feed.Source{URL: cfg.Feeds.GroupsURL, Format: cfg.Feeds.GroupsFormat},
		Timeout:  cfg.FetchTimeout(),
		Interval: cfg.RefreshInterval(),
	}
}

// snapshotBuilder captures the matching settings of cfg. A config save
// installs a new builder so the next snapshot uses the new thresholds.
func snapshotBuilder(cfg config.Config) feed.Builder {
	resolver := match.NewResolver(match.Options{
		AcceptScore:    cfg.Matching.AcceptScore,
		CandidateFloor: cfg.Matching.CandidateFloor,
		StopWords:      cfg.Matching.StopWords,
	})
	loc := cfg.Location()
	classifier := schedule.NewClassifier(nil, loc, cfg.StartingSoon())

	return func(jobs domain.JobFeed, groups domain.GroupFeed) *snapshot.Snapshot {
		return snapshot.Build(jobs, groups, snapshot.Deps{
			Resolver:   resolver,
			Classifier: classifier,
			Location:   loc,
		})
	}
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// storeDir resolves app.data_dir against the directory the config lives in.
func storeDir(base, configured string) string {
	if configured == "" {
		return base
	}
	if filepath.IsAbs(configured) {
		return configured
	}
	return filepath.Join(base, configured)
}
