package match

import (
	"sort"
	"strings"

	"livesched-engine/internal/domain"
	"livesched-engine/internal/textnorm"
)

type hostKey struct {
	raw        string
	normalized string
	value      domain.GroupLink
}

// HostKeys finds a host group from the people on a job when the store name
// gives nothing away. Longest keys are tried first.
type HostKeys struct {
	keys []hostKey
}

func BuildHostKeys(groups domain.Groups) *HostKeys {
	if groups == nil {
		return nil
	}
	hk := &HostKeys{keys: make([]hostKey, 0, len(groups))}
	for raw, v := range groups {
		n := textnorm.MatchKey(raw)
		if n == "" {
			continue
		}
		hk.keys = append(hk.keys, hostKey{raw: raw, normalized: n, value: v})
	}
	sort.Slice(hk.keys, func(i, j int) bool {
		a, b := hk.keys[i], hk.keys[j]
		if len(a.raw) != len(b.raw) {
			return len(a.raw) > len(b.raw)
		}
		return a.raw < b.raw
	})
	return hk
}

// Resolve returns the first key that is a substring of a name, or the other
// way round. Names are tried in the order given.
func (hk *HostKeys) Resolve(names ...string) *domain.GroupLink {
	if hk == nil {
		return nil
	}
	for _, name := range names {
		n := textnorm.MatchKey(name)
		if n == "" {
			continue
		}
		for _, k := range hk.keys {
			if strings.Contains(n, k.normalized) || strings.Contains(k.normalized, n) {
				v := k.value
				return &v
			}
		}
	}
	return nil
}

// ResolveJob tries the talent line first, then the coordinators.
func (hk *HostKeys) ResolveJob(job domain.Job) *domain.GroupLink {
	if job == nil {
		return nil
	}
	return hk.Resolve(job.TalentDisplay(), job.CoordinatorDisplay())
}
