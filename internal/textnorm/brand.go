package textnorm

import (
	"regexp"
	"strings"
)

// Store names abbreviate the ecommerce platform inconsistently ("ABC TTS",
// "ABCshp", "ABC (Laz)"); the group directory spells it out.
var platformAbbrevs = []struct {
	short string
	long  string
}{
	{"tts", "tiktok"},
	{"shp", "shopee"},
	{"laz", "lazada"},
	{"ecom", "ecommerce"},
}

var (
	bracketChars   = strings.NewReplacer("[", " ", "]", " ", "{", " ", "}", " ")
	parenChars     = strings.NewReplacer("(", " ", ")", " ")
	separatorChars = strings.NewReplacer("+", " ", "&", " ", "/", " ", "-", " ", "|", " ")

	standaloneAbbrevRe = make([]*regexp.Regexp, len(platformAbbrevs))
	gluedAbbrevRe      = make([]*regexp.Regexp, len(platformAbbrevs))
)

func init() {
	for i, a := range platformAbbrevs {
		standaloneAbbrevRe[i] = regexp.MustCompile(`\b` + a.short + `\b`)
		gluedAbbrevRe[i] = regexp.MustCompile(`([a-z])` + a.short + `\b`)
	}
}

// BrandKey prepares a store name for brand matching. The result still goes
// through MatchKey before comparison.
func BrandKey(s string) string {
	s = Fold(s)
	if s == "" {
		return ""
	}
	s = bracketChars.Replace(s)
	s = parenChars.Replace(s)
	s = separatorChars.Replace(s)
	s = CleanText(s)

	for i, a := range platformAbbrevs {
		s = gluedAbbrevRe[i].ReplaceAllString(s, "${1} "+a.long)
		s = standaloneAbbrevRe[i].ReplaceAllString(s, a.long)
	}
	return CleanText(s)
}
