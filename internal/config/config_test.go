package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
app:
  port: 40000
  timezone: "UTC"
feeds:
  jobs_url: "https://sheets.example.com/jobs"
  groups_url: "https://sheets.example.com/groups"
  jobs_format: csv
matching:
  stop_words: [" Team ", "team", "crew"]
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func validConfig() Config {
	var cfg Config
	cfg.Feeds.JobsURL = "https://sheets.example.com/jobs"
	cfg.Feeds.GroupsURL = "https://sheets.example.com/groups"
	cfg.App.Timezone = "UTC"
	ApplyDefaults(&cfg)
	return cfg
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 40000, cfg.App.Port)
	assert.Equal(t, ".", cfg.App.DataDir)
	assert.Equal(t, "UTC", cfg.Location().String())
	assert.Equal(t, "csv", cfg.Feeds.JobsFormat)
	assert.Equal(t, FormatJSON, cfg.Feeds.GroupsFormat)
	assert.Equal(t, 60, cfg.Feeds.RefreshSeconds)
	assert.InDelta(t, 0.85, cfg.Matching.AcceptScore, 1e-9)
	assert.InDelta(t, 0.4, cfg.Matching.CandidateFloor, 1e-9)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("LIVESCHED_PORT", "41000")
	t.Setenv("LIVESCHED_JOBS_FORMAT", "html")
	t.Setenv("LIVESCHED_ACCEPT_SCORE", "0.9")
	t.Setenv("LIVESCHED_STOP_WORDS", "team,crew")
	t.Setenv("LIVESCHED_TOKEN_ACCOUNT", "")

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 41000, cfg.App.Port)
	assert.Equal(t, "html", cfg.Feeds.JobsFormat)
	assert.InDelta(t, 0.9, cfg.Matching.AcceptScore, 1e-9)
	assert.Equal(t, []string{"team", "crew"}, cfg.Matching.StopWords)
	assert.Equal(t, "", cfg.Feeds.TokenAccount)
}

func TestLoadEnvBadNumbers(t *testing.T) {
	t.Setenv("LIVESCHED_PORT", "abc")
	t.Setenv("LIVESCHED_CANDIDATE_FLOOR", "x")

	_, err := Load(writeConfig(t, sampleYAML))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "LIVESCHED_PORT")
	assert.Contains(t, err.Error(), "LIVESCHED_CANDIDATE_FLOOR")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestNormalizeAndValidate(t *testing.T) {
	testCases := []struct {
		name     string
		mutate   func(*Config)
		errors   int
		warnings int
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name:   "bad port",
			mutate: func(c *Config) { c.App.Port = 70000 },
			errors: 1,
		},
		{
			name:   "unknown timezone",
			mutate: func(c *Config) { c.App.Timezone = "Mars/Olympus" },
			errors: 1,
		},
		{
			name:   "relative url",
			mutate: func(c *Config) { c.Feeds.JobsURL = "/jobs.json" },
			errors: 1,
		},
		{
			name:     "missing url is a warning",
			mutate:   func(c *Config) { c.Feeds.GroupsURL = "" },
			warnings: 1,
		},
		{
			name:   "html groups not supported",
			mutate: func(c *Config) { c.Feeds.GroupsFormat = "html" },
			errors: 1,
		},
		{
			name:     "low refresh",
			mutate:   func(c *Config) { c.Feeds.RefreshSeconds = 5; c.Feeds.TimeoutSeconds = 5 },
			warnings: 1,
		},
		{
			name:     "timeout longer than refresh",
			mutate:   func(c *Config) { c.Feeds.TimeoutSeconds = 90 },
			warnings: 1,
		},
		{
			name:   "floor above accept",
			mutate: func(c *Config) { c.Matching.CandidateFloor = 0.9 },
			errors: 1,
		},
		{
			name:   "accept out of range",
			mutate: func(c *Config) { c.Matching.AcceptScore = 1.5 },
			errors: 1,
		},
		{
			name:   "bad log level",
			mutate: func(c *Config) { c.Log.Level = "loud" },
			errors: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)

			_, res := NormalizeAndValidate(cfg)

			assert.Len(t, res.Errors, tc.errors, "errors: %v", res.Errors)
			assert.Len(t, res.Warnings, tc.warnings, "warnings: %v", res.Warnings)
		})
	}
}

func TestNormalizeStopWords(t *testing.T) {
	cfg := validConfig()
	cfg.Matching.StopWords = []string{" Team ", "team", "", "Crew"}
	cfg.Feeds.JobsFormat = " CSV "

	out, res := NormalizeAndValidate(cfg)

	assert.True(t, res.OK())
	assert.Equal(t, []string{"team", "crew"}, out.Matching.StopWords)
	assert.Equal(t, "csv", out.Feeds.JobsFormat)
}

func TestSaveAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	cfg := validConfig()
	cfg.App.Port = 39000
	require.NoError(t, SaveAtomic(path, cfg))

	bak, err := os.ReadFile(path + ".bak")
	require.NoError(t, err)
	assert.Equal(t, "old", string(bak))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 39000, loaded.App.Port)
}

func TestSaveAtomicRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	cfg := validConfig()
	cfg.Feeds.RequestsPerSecond = -1

	err := SaveAtomic(path, cfg)

	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "feeds.requests_per_second")
	_, statErr := os.Stat(path)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestEnsureUserConfig(t *testing.T) {
	defaults := writeConfig(t, sampleYAML)
	dataDir := filepath.Join(t.TempDir(), "data")

	p, err := EnsureUserConfig(dataDir, defaults)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "config.yml"), p)

	require.NoError(t, os.WriteFile(p, []byte("edited"), 0o644))
	p2, err := EnsureUserConfig(dataDir, defaults)
	require.NoError(t, err)
	assert.Equal(t, p, p2)

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "edited", string(b))
}
