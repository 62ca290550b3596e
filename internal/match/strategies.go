package match

import "strings"

type verdictKind int

const (
	noOpinion verdictKind = iota
	accepted
	candidate
)

// Verdict is what one strategy thinks of one index entry.
type Verdict struct {
	kind  verdictKind
	Score float64
}

func (v Verdict) Accepted() bool  { return v.kind == accepted }
func (v Verdict) Candidate() bool { return v.kind == candidate }

func accept() Verdict                     { return Verdict{kind: accepted, Score: 1} }
func candidateWith(score float64) Verdict { return Verdict{kind: candidate, Score: score} }

// probe is the store side of a comparison, computed once per resolution.
type probe struct {
	Tokens
	tokenSet map[string]struct{}
	tried    map[string]bool
}

// Strategy judges one entry. Strategies run in order; the first Accept wins.
type Strategy func(p *probe, e *Entry) Verdict

func strategies(opts Options) []Strategy {
	return []Strategy{
		triedKey,
		equalCoreName,
		entryTokensInStore,
		storeTokensInEntry,
		coreNameSubstring,
		tokenOverlap(opts.AcceptScore, opts.CandidateFloor),
	}
}

// triedKey catches keys the dictionary lookups missed.
func triedKey(p *probe, e *Entry) Verdict {
	if p.tried[e.Key] {
		return accept()
	}
	return Verdict{}
}

func equalCoreName(p *probe, e *Entry) Verdict {
	if p.CoreName == e.CoreName {
		return accept()
	}
	return Verdict{}
}

func entryTokensInStore(p *probe, e *Entry) Verdict {
	if len(e.CoreTokens) >= 2 && containsAll(p.tokenSet, e.CoreTokens) {
		return accept()
	}
	return Verdict{}
}

func storeTokensInEntry(p *probe, e *Entry) Verdict {
	if len(p.CoreTokens) >= 2 && containsAll(e.tokenSet, p.CoreTokens) {
		return accept()
	}
	return Verdict{}
}

// coreNameSubstring accepts the first entry in index order whose core name
// contains, or is contained in, the store's core name.
func coreNameSubstring(p *probe, e *Entry) Verdict {
	if p.CoreName == "" || e.CoreName == "" {
		return Verdict{}
	}
	if strings.Contains(p.CoreName, e.CoreName) || strings.Contains(e.CoreName, p.CoreName) {
		return accept()
	}
	return Verdict{}
}

func tokenOverlap(acceptAt, floor float64) Strategy {
	return func(p *probe, e *Entry) Verdict {
		score := overlapScore(p.CoreTokens, e.CoreTokens)
		switch {
		case score >= acceptAt:
			return accept()
		case score >= floor && score > 0:
			return candidateWith(score)
		default:
			return Verdict{}
		}
	}
}
