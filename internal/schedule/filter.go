// Package schedule filters, groups and annotates the livestream job list.
package schedule

import (
	"strings"
	"time"

	"livesched-engine/internal/domain"
	"livesched-engine/internal/textnorm"
)

// ExtraText adds searchable text for a job, e.g. the names of its resolved
// groups. i is the job's position in the list being filtered.
type ExtraText func(i int, job domain.Job) string

type searchField struct {
	key          string
	stripOrdinal bool
}

// Searched in this order; the first hit wins.
var searchFields = []searchField{
	{key: domain.FieldStore},
	{key: domain.FieldTalent1},
	{key: domain.FieldTalent1, stripOrdinal: true},
	{key: domain.FieldTalent2},
	{key: domain.FieldTalent2, stripOrdinal: true},
	{key: domain.FieldCoordinator1},
	{key: domain.FieldCoordinator1, stripOrdinal: true},
	{key: domain.FieldCoordinator2},
	{key: domain.FieldCoordinator2, stripOrdinal: true},
	{key: domain.FieldBrand},
	{key: domain.FieldAddress},
	{key: domain.FieldRoom},
	{key: domain.FieldBrandGroupLink},
	{key: domain.FieldHostGroupLink},
	{key: domain.FieldSession},
	{key: domain.FieldDate},
	{key: domain.FieldTimeSlot},
}

var extraSlot = len(searchFields)

// Filter returns the positions of the jobs that pass f, in their original
// order. Stages run query, date range, session; an empty stage ends the pass.
// cache may be nil.
func Filter(jobs []domain.Job, f domain.Filters, extra ExtraText, cache *SearchCache, loc *time.Location) []int {
	out := make([]int, len(jobs))
	for i := range jobs {
		out[i] = i
	}
	if len(out) == 0 {
		return out
	}

	if q := searchText(f.Query); q != "" {
		out = keep(out, func(i int) bool {
			return matchesQuery(i, jobs[i], q, extra, cache)
		})
		if len(out) == 0 {
			return out
		}
	}

	if f.DateFrom != nil || f.DateTo != nil {
		inRange := dateRange(f.DateFrom, f.DateTo, loc)
		out = keep(out, func(i int) bool {
			d, ok := ParseDate(jobs[i].Get(domain.FieldDate), loc)
			return ok && inRange(d)
		})
		if len(out) == 0 {
			return out
		}
	}

	if s := strings.TrimSpace(f.Session); s != "" {
		out = keep(out, func(i int) bool {
			return strings.EqualFold(jobs[i].Get(domain.FieldSession), s)
		})
	}
	return out
}

// FilterJobs is Filter returning the jobs themselves.
func FilterJobs(jobs []domain.Job, f domain.Filters, extra ExtraText, cache *SearchCache, loc *time.Location) []domain.Job {
	idx := Filter(jobs, f, extra, cache, loc)
	out := make([]domain.Job, 0, len(idx))
	for _, i := range idx {
		out = append(out, jobs[i])
	}
	return out
}

func keep(idx []int, pred func(int) bool) []int {
	out := idx[:0:0]
	for _, i := range idx {
		if pred(i) {
			out = append(out, i)
		}
	}
	return out
}

func matchesQuery(i int, job domain.Job, q string, extra ExtraText, cache *SearchCache) bool {
	for slot, sf := range searchFields {
		v := cache.get(i, slot, func() string {
			raw := job.Get(sf.key)
			if sf.stripOrdinal {
				raw = textnorm.StripOrdinalPrefix(raw)
			}
			return searchText(raw)
		})
		if v != "" && strings.Contains(v, q) {
			return true
		}
	}
	if extra == nil {
		return false
	}
	v := cache.get(i, extraSlot, func() string {
		return searchText(extra(i, job))
	})
	return v != "" && strings.Contains(v, q)
}

// searchText folds case and accents and collapses whitespace runs. Digits and
// punctuation stay so dates and times remain searchable.
func searchText(s string) string {
	return textnorm.CleanText(textnorm.Fold(s))
}

// dateRange is inclusive: [from 00:00:00, to 23:59:59] in loc.
func dateRange(from, to *time.Time, loc *time.Location) func(time.Time) bool {
	if loc == nil {
		loc = time.Local
	}
	var lo, hi time.Time
	if from != nil {
		y, m, d := from.Date()
		lo = time.Date(y, m, d, 0, 0, 0, 0, loc)
	}
	if to != nil {
		y, m, d := to.Date()
		hi = time.Date(y, m, d, 23, 59, 59, 0, loc)
	}
	return func(t time.Time) bool {
		if from != nil && t.Before(lo) {
			return false
		}
		if to != nil && t.After(hi) {
			return false
		}
		return true
	}
}
