package match

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"livesched-engine/internal/domain"
)

func TestTokenize(t *testing.T) {
	sw := NewStopWords(DefaultStopWords)

	testCases := []struct {
		name     string
		input    string
		core     []string
		coreName string
	}{
		{name: "drops stop words", input: "highland coffee team", core: []string{"highland", "coffee"}, coreName: "highland coffee"},
		{name: "all stop words kept", input: "official team", core: []string{"official", "team"}, coreName: "official team"},
		{name: "empty", input: "", core: []string{}, coreName: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := sw.Tokenize(tc.input)
			assert.ElementsMatch(t, tc.core, got.CoreTokens)
			assert.Equal(t, tc.coreName, got.CoreName)
		})
	}
}

func TestBuildIndexNil(t *testing.T) {
	assert.Nil(t, BuildIndex(nil, nil))
	assert.Equal(t, 0, BuildIndex(nil, nil).Len())
}

func TestBuildIndexDiscardsEmptyKeys(t *testing.T) {
	idx := BuildIndex(domain.Groups{"": group("blank"), "123 !!": group("digits")}, nil)

	assert.NotNil(t, idx)
	assert.Equal(t, 0, idx.Len())
}

func TestBuildIndexSpecificityOrder(t *testing.T) {
	idx := BuildIndex(domain.Groups{
		"x":           group("x"),
		"a b":         group("a b"),
		"abc def ghi": group("abc def ghi"),
		"longer key":  group("longer key"),
		"team a b":    group("team a b"),
	}, nil)

	var keys []string
	for _, e := range idx.Entries() {
		keys = append(keys, e.Key)
	}
	assert.Equal(t, []string{"abc def ghi", "longer key", "team a b", "a b", "x"}, keys)
}

func TestIndexLookup(t *testing.T) {
	idx := BuildIndex(domain.Groups{"highland coffee": group("Highland Coffee")}, nil)

	g, ok := idx.Lookup("highland coffee")
	assert.True(t, ok)
	assert.Equal(t, "Highland Coffee", g.OriginalName)

	_, ok = idx.Lookup("")
	assert.False(t, ok)

	var nilIdx *Index
	_, ok = nilIdx.Lookup("highland coffee")
	assert.False(t, ok)
}
