package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const envPrefix = "LIVESCHED_"

// ApplyEnv overrides file values with LIVESCHED_* variables. Unparseable
// numbers are reported together rather than aborting on the first one.
func ApplyEnv(cfg *Config) error {
	var errs []error

	envOverrideInt(&cfg.App.Port, "PORT", &errs)
	envOverride(&cfg.App.DataDir, "DATA_DIR")
	envOverride(&cfg.App.Timezone, "TIMEZONE")

	envOverride(&cfg.Log.Level, "LOG_LEVEL")
	envOverride(&cfg.Log.Format, "LOG_FORMAT")

	envOverride(&cfg.Feeds.JobsURL, "JOBS_URL")
	envOverride(&cfg.Feeds.GroupsURL, "GROUPS_URL")
	envOverride(&cfg.Feeds.JobsFormat, "JOBS_FORMAT")
	envOverride(&cfg.Feeds.GroupsFormat, "GROUPS_FORMAT")
	envOverrideInt(&cfg.Feeds.RefreshSeconds, "REFRESH_SECONDS", &errs)
	envOverrideInt(&cfg.Feeds.TimeoutSeconds, "TIMEOUT_SECONDS", &errs)
	envOverrideFloat(&cfg.Feeds.RequestsPerSecond, "REQUESTS_PER_SECOND", &errs)
	envOverrideInt(&cfg.Feeds.Burst, "BURST", &errs)
	envOverrideAllowEmpty(&cfg.Feeds.TokenAccount, "TOKEN_ACCOUNT")

	envOverrideFloat(&cfg.Matching.AcceptScore, "ACCEPT_SCORE", &errs)
	envOverrideFloat(&cfg.Matching.CandidateFloor, "CANDIDATE_FLOOR", &errs)
	envOverrideInt(&cfg.Matching.StartingSoonMinutes, "STARTING_SOON_MINUTES", &errs)
	if val := os.Getenv(envPrefix + "STOP_WORDS"); val != "" {
		cfg.Matching.StopWords = strings.Split(val, ",")
	}

	return errors.Join(errs...)
}

func envOverride(field *string, key string) {
	if val := os.Getenv(envPrefix + key); val != "" {
		*field = val
	}
}

func envOverrideAllowEmpty(field *string, key string) {
	if val, ok := os.LookupEnv(envPrefix + key); ok {
		*field = val
	}
}

func envOverrideInt(field *int, key string, errs *[]error) {
	if val := os.Getenv(envPrefix + key); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s%s %q: %w", envPrefix, key, val, err))
			return
		}
		*field = parsed
	}
}

func envOverrideFloat(field *float64, key string, errs *[]error) {
	if val := os.Getenv(envPrefix + key); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s%s %q: %w", envPrefix, key, val, err))
			return
		}
		*field = parsed
	}
}
