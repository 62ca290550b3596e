package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livesched-engine/internal/config"
	"livesched-engine/internal/domain"
	"livesched-engine/internal/match"
)

func baseConfig() config.Config {
	var cfg config.Config
	cfg.App.Timezone = "UTC"
	cfg.Feeds.JobsURL = "https://sheets.example.com/jobs"
	cfg.Feeds.JobsFormat = "csv"
	config.ApplyDefaults(&cfg)
	return cfg
}

func TestFeedOptions(t *testing.T) {
	opts := feedOptions(baseConfig())

	assert.Equal(t, "https://sheets.example.com/jobs", opts.Jobs.URL)
	assert.Equal(t, "csv", opts.Jobs.Format)
	assert.Equal(t, "json", opts.Groups.Format)
	assert.Equal(t, time.Minute, opts.Interval)
	assert.Equal(t, 20*time.Second, opts.Timeout)
}

func TestSnapshotBuilderUsesMatchingSettings(t *testing.T) {
	jobs := domain.JobFeed{Jobs: []domain.Job{{domain.FieldStore: "Highland Coffee Team"}}}
	groups := domain.GroupFeed{
		Hosts:  domain.Groups{"highland coffee": {OriginalName: "Highland Coffee", Link: "https://zalo.me/g/hc"}},
		Brands: domain.Groups{},
	}

	s := snapshotBuilder(baseConfig())(jobs, groups)

	links, ok := s.Links(0)
	require.True(t, ok)
	require.NotNil(t, links.Host)
	assert.Equal(t, "Highland Coffee", links.Host.OriginalName)
	assert.NotNil(t, s.ResolveStore("Highland Coffee", match.ModeHost))
}

func TestRandomToken(t *testing.T) {
	a, err := randomToken(16)
	require.NoError(t, err)
	b, err := randomToken(16)
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func TestStoreDir(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "db")

	assert.Equal(t, "base", storeDir("base", ""))
	assert.Equal(t, "base", storeDir("base", "."))
	assert.Equal(t, filepath.Join("base", "cache"), storeDir("base", "cache"))
	assert.Equal(t, abs, storeDir("base", abs))
}
