// Package match resolves a job's store name to its brand or host chat group.
package match

import "strings"

// DefaultStopWords are organizational words that show up in many store and
// group names without telling them apart.
var DefaultStopWords = []string{
	"team", "group", "brand", "official", "studio", "account", "page",
	"crew", "channel", "event", "agency", "store", "shop", "mall",
	"livestream", "live", "nhom", "kenh",
}

type StopWords map[string]struct{}

func NewStopWords(words []string) StopWords {
	sw := make(StopWords, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			sw[w] = struct{}{}
		}
	}
	return sw
}

func (sw StopWords) Has(w string) bool {
	_, ok := sw[w]
	return ok
}

// Tokens is the comparable shape of a match-normalized name.
type Tokens struct {
	Tokens     []string
	CoreTokens []string
	CoreName   string
}

// Tokenize splits an already normalized name. Stop words are dropped from
// CoreTokens unless that would leave nothing.
func (sw StopWords) Tokenize(normalized string) Tokens {
	tokens := strings.Fields(normalized)

	core := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !sw.Has(t) {
			core = append(core, t)
		}
	}
	if len(core) == 0 {
		core = tokens
	}

	coreName := strings.Join(core, " ")
	if coreName == "" {
		coreName = normalized
	}
	return Tokens{Tokens: tokens, CoreTokens: core, CoreName: coreName}
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

func containsAll(set map[string]struct{}, tokens []string) bool {
	for _, t := range tokens {
		if _, ok := set[t]; !ok {
			return false
		}
	}
	return true
}

// overlapScore is |a∩b| / max(|a|,|b|) over distinct tokens.
func overlapScore(a, b []string) float64 {
	as, bs := tokenSet(a), tokenSet(b)
	denom := len(as)
	if len(bs) > denom {
		denom = len(bs)
	}
	if denom == 0 {
		return 0
	}
	shared := 0
	for t := range as {
		if _, ok := bs[t]; ok {
			shared++
		}
	}
	return float64(shared) / float64(denom)
}
