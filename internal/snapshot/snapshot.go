// Package snapshot holds one refresh worth of schedule data together with
// everything derived from it: group indices, resolved links and the search
// cache. A Snapshot is immutable once built and safe for concurrent readers.
package snapshot

import (
	"strings"
	"time"

	"livesched-engine/internal/domain"
	"livesched-engine/internal/match"
	"livesched-engine/internal/schedule"
)

type Deps struct {
	Resolver   *match.Resolver
	Classifier *schedule.Classifier
	Location   *time.Location
	Now        func() time.Time
}

type Snapshot struct {
	jobs     []domain.Job
	dates    []string
	sessions []string

	brandIdx *match.Index
	hostIdx  *match.Index
	hostKeys *match.HostKeys

	links []domain.JobLinks
	cache *schedule.SearchCache

	resolver   *match.Resolver
	classifier *schedule.Classifier
	loc        *time.Location
	builtAt    time.Time
}

type Item struct {
	Index  int             `json:"index"`
	Job    domain.Job      `json:"job"`
	Active bool            `json:"active"`
	Links  domain.JobLinks `json:"links"`
}

type View struct {
	Total   int                        `json:"total"`
	Matched int                        `json:"matched"`
	Groups  []schedule.TimeGroup[Item] `json:"groups"`
}

type Meta struct {
	Jobs        int       `json:"jobs"`
	Dates       []string  `json:"dates"`
	Sessions    []string  `json:"sessions"`
	BrandGroups int       `json:"brandGroups"`
	HostGroups  int       `json:"hostGroups"`
	BuiltAt     time.Time `json:"builtAt"`
}

// Build indexes the groups and resolves every job's links up front.
func Build(jobs domain.JobFeed, groups domain.GroupFeed, deps Deps) *Snapshot {
	if deps.Resolver == nil {
		deps.Resolver = match.NewResolver(match.DefaultOptions())
	}
	if deps.Location == nil {
		deps.Location = time.Local
	}
	if deps.Classifier == nil {
		deps.Classifier = schedule.NewClassifier(nil, deps.Location, 0)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	jobs.FillSideLists()
	s := &Snapshot{
		jobs:       jobs.Jobs,
		dates:      jobs.Dates,
		sessions:   jobs.Sessions,
		brandIdx:   deps.Resolver.BuildIndex(groups.Brands),
		hostIdx:    deps.Resolver.BuildIndex(groups.Hosts),
		hostKeys:   match.BuildHostKeys(groups.Hosts),
		cache:      schedule.NewSearchCache(),
		resolver:   deps.Resolver,
		classifier: deps.Classifier,
		loc:        deps.Location,
		builtAt:    deps.Now(),
	}

	s.links = make([]domain.JobLinks, len(s.jobs))
	for i, j := range s.jobs {
		s.links[i] = s.resolveLinks(j)
	}
	return s
}

// Empty is the snapshot served before any data arrived.
func Empty(deps Deps) *Snapshot {
	return Build(domain.JobFeed{}, domain.GroupFeed{}, deps)
}

// A link already present in the sheet wins over a resolved one.
func (s *Snapshot) resolveLinks(j domain.Job) domain.JobLinks {
	var out domain.JobLinks

	if l := j.Get(domain.FieldBrandGroupLink); l != "" {
		out.Brand = &domain.GroupLink{OriginalName: firstNonEmpty(j.Get(domain.FieldBrand), j.Get(domain.FieldStore)), Link: l}
	} else {
		out.Brand = s.resolver.Resolve(j, s.brandIdx, match.ModeBrand)
	}

	if l := j.Get(domain.FieldHostGroupLink); l != "" {
		out.Host = &domain.GroupLink{OriginalName: j.Get(domain.FieldStore), Link: l}
	} else if g := s.resolver.Resolve(j, s.hostIdx, match.ModeHost); g != nil {
		out.Host = g
	} else {
		out.Host = s.hostKeys.ResolveJob(j)
	}
	return out
}

func (s *Snapshot) extraText(i int, _ domain.Job) string {
	if i < 0 || i >= len(s.links) {
		return ""
	}
	var parts []string
	for _, g := range []*domain.GroupLink{s.links[i].Brand, s.links[i].Host} {
		if g == nil {
			continue
		}
		parts = append(parts, g.OriginalName, g.Link)
	}
	return strings.Join(parts, " ")
}

// View filters, groups by time slot and annotates the jobs.
func (s *Snapshot) View(f domain.Filters) View {
	idx := schedule.Filter(s.jobs, f, s.extraText, s.cache, s.loc)

	items := make([]Item, 0, len(idx))
	for _, i := range idx {
		items = append(items, Item{
			Index:  i,
			Job:    s.jobs[i],
			Active: s.classifier.IsActive(s.jobs[i]),
			Links:  s.links[i],
		})
	}

	groups := schedule.GroupByTime(items, func(it Item) string {
		return it.Job.Get(domain.FieldTimeSlot)
	})
	if groups == nil {
		groups = []schedule.TimeGroup[Item]{}
	}
	return View{Total: len(s.jobs), Matched: len(items), Groups: groups}
}

func (s *Snapshot) Meta() Meta {
	return Meta{
		Jobs:        len(s.jobs),
		Dates:       nonNil(s.dates),
		Sessions:    nonNil(s.sessions),
		BrandGroups: s.brandIdx.Len(),
		HostGroups:  s.hostIdx.Len(),
		BuiltAt:     s.builtAt,
	}
}

func (s *Snapshot) Len() int { return len(s.jobs) }

// Links returns the resolved links of the job at position i.
func (s *Snapshot) Links(i int) (domain.JobLinks, bool) {
	if i < 0 || i >= len(s.links) {
		return domain.JobLinks{}, false
	}
	return s.links[i], true
}

// ResolveStore runs the resolver for a free-standing store name. Host mode
// falls back to matching the name against host keys.
func (s *Snapshot) ResolveStore(name string, mode match.Mode) *domain.GroupLink {
	switch mode {
	case match.ModeBrand:
		return s.resolver.ResolveName(name, s.brandIdx, mode)
	case match.ModeHost:
		if g := s.resolver.ResolveName(name, s.hostIdx, mode); g != nil {
			return g
		}
		return s.hostKeys.Resolve(name)
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
