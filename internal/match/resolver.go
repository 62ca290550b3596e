package match

import (
	"livesched-engine/internal/domain"
	"livesched-engine/internal/textnorm"
)

type Mode string

const (
	ModeBrand Mode = "brand"
	ModeHost  Mode = "host"
)

func (m Mode) Valid() bool { return m == ModeBrand || m == ModeHost }

// Options tune the fuzzy layer. The defaults were fitted against real sheet
// data; change them only with labelled examples to check against.
type Options struct {
	AcceptScore    float64
	CandidateFloor float64
	StopWords      []string
}

func DefaultOptions() Options {
	return Options{
		AcceptScore:    0.85,
		CandidateFloor: 0.4,
		StopWords:      DefaultStopWords,
	}
}

type Resolver struct {
	opts       Options
	stop       StopWords
	strategies []Strategy
}

func NewResolver(opts Options) *Resolver {
	def := DefaultOptions()
	if opts.AcceptScore <= 0 {
		opts.AcceptScore = def.AcceptScore
	}
	if opts.CandidateFloor <= 0 {
		opts.CandidateFloor = def.CandidateFloor
	}
	if len(opts.StopWords) == 0 {
		opts.StopWords = def.StopWords
	}
	return &Resolver{
		opts:       opts,
		stop:       NewStopWords(opts.StopWords),
		strategies: strategies(opts),
	}
}

// BuildIndex builds an index that shares this resolver's stop words.
func (r *Resolver) BuildIndex(groups domain.Groups) *Index {
	return BuildIndex(groups, r.stop)
}

// Resolve matches the job's store name against idx.
func (r *Resolver) Resolve(job domain.Job, idx *Index, mode Mode) *domain.GroupLink {
	if job == nil || idx == nil {
		return nil
	}
	return r.ResolveName(job.Get(domain.FieldStore), idx, mode)
}

func (r *Resolver) ResolveName(name string, idx *Index, mode Mode) *domain.GroupLink {
	if idx == nil || name == "" {
		return nil
	}

	normalized := normalizeFor(name, mode)
	if normalized == "" {
		return nil
	}
	if g, ok := idx.Lookup(normalized); ok {
		return &g
	}

	t := idx.stop.Tokenize(normalized)
	tried := map[string]bool{}
	for _, c := range []string{t.CoreName, normalized} {
		if tried[c] {
			continue
		}
		tried[c] = true
		if g, ok := idx.Lookup(c); ok {
			return &g
		}
	}

	p := &probe{
		Tokens:   t,
		tokenSet: tokenSet(t.Tokens),
		tried:    tried,
	}

	var best *Entry
	bestScore := 0.0
	for i := range idx.entries {
		e := &idx.entries[i]
		for _, s := range r.strategies {
			v := s(p, e)
			if v.Accepted() {
				g := e.Value
				return &g
			}
			if v.Candidate() {
				if v.Score > bestScore {
					best, bestScore = e, v.Score
				}
				break
			}
		}
	}
	if best == nil {
		return nil
	}
	g := best.Value
	return &g
}

func normalizeFor(name string, mode Mode) string {
	if mode == ModeBrand {
		return textnorm.MatchKey(textnorm.BrandKey(name))
	}
	return textnorm.MatchKey(name)
}

var defaultResolver = NewResolver(DefaultOptions())

// Resolve uses the default thresholds and stop words.
func Resolve(job domain.Job, idx *Index, mode Mode) *domain.GroupLink {
	return defaultResolver.Resolve(job, idx, mode)
}
