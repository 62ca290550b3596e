package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatHTML = "html"
)

type Config struct {
	App struct {
		Port     int    `yaml:"port" json:"port"`
		DataDir  string `yaml:"data_dir" json:"data_dir"`
		Timezone string `yaml:"timezone" json:"timezone"`
	} `yaml:"app" json:"app"`

	Log struct {
		Level  string `yaml:"level" json:"level"`
		Format string `yaml:"format" json:"format"`
	} `yaml:"log" json:"log"`

	Feeds struct {
		JobsURL           string  `yaml:"jobs_url" json:"jobs_url"`
		GroupsURL         string  `yaml:"groups_url" json:"groups_url"`
		JobsFormat        string  `yaml:"jobs_format" json:"jobs_format"`
		GroupsFormat      string  `yaml:"groups_format" json:"groups_format"`
		RefreshSeconds    int     `yaml:"refresh_seconds" json:"refresh_seconds"`
		TimeoutSeconds    int     `yaml:"timeout_seconds" json:"timeout_seconds"`
		RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
		Burst             int     `yaml:"burst" json:"burst"`
		TokenAccount      string  `yaml:"token_account" json:"token_account"`
	} `yaml:"feeds" json:"feeds"`

	Matching struct {
		AcceptScore         float64  `yaml:"accept_score" json:"accept_score"`
		CandidateFloor      float64  `yaml:"candidate_floor" json:"candidate_floor"`
		StartingSoonMinutes int      `yaml:"starting_soon_minutes" json:"starting_soon_minutes"`
		StopWords           []string `yaml:"stop_words" json:"stop_words"`
	} `yaml:"matching" json:"matching"`
}

// Load reads the YAML file, applies LIVESCHED_* environment overrides and
// fills defaults for anything still unset.
func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	ApplyDefaults(&cfg)
	return cfg, nil
}

func ApplyDefaults(cfg *Config) {
	if cfg.App.Port == 0 {
		cfg.App.Port = 38471
	}
	if cfg.App.DataDir == "" {
		cfg.App.DataDir = "."
	}
	if cfg.App.Timezone == "" {
		cfg.App.Timezone = "Asia/Ho_Chi_Minh"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Feeds.JobsFormat == "" {
		cfg.Feeds.JobsFormat = FormatJSON
	}
	if cfg.Feeds.GroupsFormat == "" {
		cfg.Feeds.GroupsFormat = FormatJSON
	}
	if cfg.Feeds.RefreshSeconds == 0 {
		cfg.Feeds.RefreshSeconds = 60
	}
	if cfg.Feeds.TimeoutSeconds == 0 {
		cfg.Feeds.TimeoutSeconds = 20
	}
	if cfg.Feeds.RequestsPerSecond == 0 {
		cfg.Feeds.RequestsPerSecond = 1
	}
	if cfg.Feeds.Burst == 0 {
		cfg.Feeds.Burst = 2
	}
	if cfg.Matching.AcceptScore == 0 {
		cfg.Matching.AcceptScore = 0.85
	}
	if cfg.Matching.CandidateFloor == 0 {
		cfg.Matching.CandidateFloor = 0.4
	}
	if cfg.Matching.StartingSoonMinutes == 0 {
		cfg.Matching.StartingSoonMinutes = 60
	}
}

// Location resolves app.timezone, falling back to the local zone.
func (c Config) Location() *time.Location {
	if c.App.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c Config) RefreshInterval() time.Duration {
	return time.Duration(c.Feeds.RefreshSeconds) * time.Second
}

func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Feeds.TimeoutSeconds) * time.Second
}

func (c Config) StartingSoon() time.Duration {
	return time.Duration(c.Matching.StartingSoonMinutes) * time.Minute
}
