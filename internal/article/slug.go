package article

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultSlug is used when nothing URL-safe survives normalization
const DefaultSlug = "article"

var nonAlnumExpr = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// Slugify turns a title into a lowercase ASCII hyphenated identifier.
func Slugify(title string) string {
	folded, _, err := transform.String(asciiFolder(), title)
	if err != nil {
		folded = ""
	}

	slug := nonAlnumExpr.ReplaceAllString(folded, "-")
	slug = strings.ToLower(strings.Trim(slug, "-"))
	if slug == "" {
		return DefaultSlug
	}
	return slug
}

// asciiFolder decomposes compatibility characters and drops everything outside ASCII,
// so "Café" becomes "Cafe" and "ﬁ" becomes "fi".
func asciiFolder() transform.Transformer {
	return transform.Chain(
		norm.NFKD,
		runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
	)
}
