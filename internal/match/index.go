package match

import (
	"sort"

	"livesched-engine/internal/domain"
	"livesched-engine/internal/textnorm"
)

// Entry is one precomputed group of an Index.
type Entry struct {
	Key   string
	Value domain.GroupLink
	Tokens

	tokenSet map[string]struct{}
}

// Index is a specificity-ordered view over a name→group mapping. Entries with
// more core tokens, then longer keys, come first: several strategies stop at
// the first hit, so a short generic key must never shadow a precise one.
type Index struct {
	entries []Entry
	byKey   domain.Groups
	stop    StopWords
}

// BuildIndex returns nil when no groups are loaded.
func BuildIndex(groups domain.Groups, stop StopWords) *Index {
	if groups == nil {
		return nil
	}
	if stop == nil {
		stop = NewStopWords(DefaultStopWords)
	}

	idx := &Index{
		entries: make([]Entry, 0, len(groups)),
		byKey:   groups,
		stop:    stop,
	}
	for key, value := range groups {
		normalized := textnorm.MatchKey(key)
		if normalized == "" {
			continue
		}
		t := stop.Tokenize(normalized)
		idx.entries = append(idx.entries, Entry{
			Key:      key,
			Value:    value,
			Tokens:   t,
			tokenSet: tokenSet(t.Tokens),
		})
	}

	sort.Slice(idx.entries, func(i, j int) bool {
		a, b := idx.entries[i], idx.entries[j]
		if len(a.CoreTokens) != len(b.CoreTokens) {
			return len(a.CoreTokens) > len(b.CoreTokens)
		}
		if len(a.Key) != len(b.Key) {
			return len(a.Key) > len(b.Key)
		}
		return a.Key < b.Key
	})
	return idx
}

func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

// Entries returns the entries in match order.
func (idx *Index) Entries() []Entry {
	if idx == nil {
		return nil
	}
	return idx.entries
}

// Lookup is the exact dictionary lookup by raw key.
func (idx *Index) Lookup(key string) (domain.GroupLink, bool) {
	if idx == nil || key == "" {
		return domain.GroupLink{}, false
	}
	g, ok := idx.byKey[key]
	return g, ok
}
