package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy of cfg and what is wrong with it.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.ToLower(strings.TrimSpace(x))
			if x == "" || seen[x] {
				continue
			}
			seen[x] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Matching.StopWords = trimList(out.Matching.StopWords)
	out.Feeds.JobsFormat = strings.ToLower(strings.TrimSpace(out.Feeds.JobsFormat))
	out.Feeds.GroupsFormat = strings.ToLower(strings.TrimSpace(out.Feeds.GroupsFormat))
	out.Feeds.JobsURL = strings.TrimSpace(out.Feeds.JobsURL)
	out.Feeds.GroupsURL = strings.TrimSpace(out.Feeds.GroupsURL)

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}
	if out.App.Timezone != "" {
		if _, err := time.LoadLocation(out.App.Timezone); err != nil {
			res.addErr("app.timezone %q is not a known zone", out.App.Timezone)
		}
	}

	switch strings.ToLower(out.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		res.addErr("log.level must be one of debug, info, warn, error")
	}

	checkURL := func(name, raw string) {
		if raw == "" {
			res.addWarn("%s is empty; that feed will stay empty.", name)
			return
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			res.addErr("%s must be an absolute http(s) URL", name)
		}
	}
	checkURL("feeds.jobs_url", out.Feeds.JobsURL)
	checkURL("feeds.groups_url", out.Feeds.GroupsURL)

	switch out.Feeds.JobsFormat {
	case FormatJSON, FormatCSV, FormatHTML:
	default:
		res.addErr("feeds.jobs_format must be json, csv or html")
	}
	switch out.Feeds.GroupsFormat {
	case FormatJSON, FormatCSV:
	default:
		res.addErr("feeds.groups_format must be json or csv")
	}

	if out.Feeds.RefreshSeconds <= 0 {
		res.addErr("feeds.refresh_seconds must be > 0")
	} else if out.Feeds.RefreshSeconds < 15 {
		res.addWarn("feeds.refresh_seconds is very low (%d) and may hit the sheet's rate limits.", out.Feeds.RefreshSeconds)
	}
	if out.Feeds.TimeoutSeconds <= 0 {
		res.addErr("feeds.timeout_seconds must be > 0")
	} else if out.Feeds.RefreshSeconds > 0 && out.Feeds.TimeoutSeconds > out.Feeds.RefreshSeconds {
		res.addWarn("feeds.timeout_seconds (%d) exceeds refresh_seconds (%d); refreshes may overlap.", out.Feeds.TimeoutSeconds, out.Feeds.RefreshSeconds)
	}
	if out.Feeds.RequestsPerSecond <= 0 {
		res.addErr("feeds.requests_per_second must be > 0")
	}
	if out.Feeds.Burst <= 0 {
		res.addErr("feeds.burst must be > 0")
	}

	m := out.Matching
	if m.AcceptScore <= 0 || m.AcceptScore > 1 {
		res.addErr("matching.accept_score must be in (0, 1]")
	}
	if m.CandidateFloor <= 0 || m.CandidateFloor > 1 {
		res.addErr("matching.candidate_floor must be in (0, 1]")
	}
	if m.CandidateFloor > m.AcceptScore {
		res.addErr("matching.candidate_floor must not exceed matching.accept_score")
	}
	if m.StartingSoonMinutes < 0 {
		res.addErr("matching.starting_soon_minutes must be >= 0")
	}
	if len(cfg.Matching.StopWords) > 0 && len(m.StopWords) == 0 {
		res.addWarn("matching.stop_words is set but empty after trimming; defaults will be used.")
	}

	return out, res
}
