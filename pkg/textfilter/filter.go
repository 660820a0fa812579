// Package textfilter softens model narration for family-friendly play.
// The model is prompted to keep a PG tone, but prompts are advisory;
// the filter is the backstop applied to completed narration.
package textfilter

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// replacements maps coarse language to tabletop-safe alternatives.
// Words without a natural stand-in are censored outright.
var replacements = map[string]string{
	"fuck":         "fudge",
	"shit":         "shoot",
	"damn":         "dang",
	"goddamn":      "gosh-dang",
	"hell":         "heck",
	"ass":          "butt",
	"asshole":      "jerk",
	"bitch":        "jerk",
	"bastard":      "scoundrel",
	"crap":         "crud",
	"piss":         "ticked",
	"bullshit":     "baloney",
	"motherfucker": "mother-trucker",
	"dumbass":      "dullard",
	"jackass":      "fool",
	"prick":        "lout",
	"dick":         "lout",
	"whore":        "[censored]",
	"slut":         "[censored]",
	"cock":         "[censored]",
	"pussy":        "[censored]",
	"tits":         "[censored]",
}

type pattern struct {
	re          *regexp.Regexp
	replacement string
}

// Filter rewrites flagged words in narration, preserving the case of
// the original text.
type Filter struct {
	patterns []pattern
}

var titleCaser = cases.Title(language.English)

// New compiles the word list into a filter. Filters are safe for
// concurrent use.
func New() *Filter {
	f := &Filter{patterns: make([]pattern, 0, len(replacements))}
	for word, replacement := range replacements {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
		f.patterns = append(f.patterns, pattern{re: re, replacement: replacement})
	}
	return f
}

// Sanitize replaces flagged words with their alternatives. The case
// pattern of each match carries over to its replacement.
func (f *Filter) Sanitize(text string) string {
	result := text
	for _, p := range f.patterns {
		result = p.re.ReplaceAllStringFunc(result, func(match string) string {
			return matchCase(match, p.replacement)
		})
	}
	return result
}

// Flagged reports whether the text contains any word on the list.
func (f *Filter) Flagged(text string) bool {
	for _, p := range f.patterns {
		if p.re.MatchString(text) {
			return true
		}
	}
	return false
}

// Enabled reports whether a content rating calls for filtering.
func Enabled(rating string) bool {
	switch strings.ToUpper(strings.TrimSpace(rating)) {
	case "G", "PG", "PG13", "PG-13":
		return true
	default:
		return false
	}
}

// matchCase applies the case shape of the matched word to the
// replacement: all caps stays all caps, title case stays title case.
func matchCase(original, replacement string) string {
	if original == "" {
		return replacement
	}
	if strings.ToUpper(original) == original && strings.ContainsFunc(original, unicode.IsLetter) {
		return strings.ToUpper(replacement)
	}
	if strings.ToLower(original) == original {
		return replacement
	}
	if titleCaser.String(strings.ToLower(original)) == original {
		return titleCaser.String(replacement)
	}
	return replacement
}
