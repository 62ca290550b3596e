// Package textnorm canonicalizes display names (store, brand and staff names)
// into comparable forms.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Decomposition alone leaves đ/Đ untouched, it is a distinct letter.
var vietnameseD = strings.NewReplacer("đ", "d", "Đ", "D")

func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(t, s); err == nil {
		return out
	}
	return s
}

// Fold is the display normalization: accents stripped, đ→d, lower-cased.
func Fold(s string) string {
	if s == "" {
		return ""
	}
	s = stripMarks(s)
	s = vietnameseD.Replace(s)
	return strings.ToLower(s)
}

// MatchKey folds s and keeps only a-z and single spaces. Used for identity
// comparison of names, never for display.
func MatchKey(s string) string {
	s = Fold(s)
	if s == "" {
		return ""
	}
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, s)
	return CleanText(s)
}

// CleanText collapses whitespace runs (including NBSP) and trims.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

var ordinalPrefixRe = regexp.MustCompile(`^\s*\d+_`)

// StripOrdinalPrefix drops the "12_" tag some staff names carry in the sheet.
func StripOrdinalPrefix(s string) string {
	return ordinalPrefixRe.ReplaceAllString(s, "")
}
