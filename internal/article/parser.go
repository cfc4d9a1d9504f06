package article

import (
	"regexp"
	"strings"

	"github.com/cuongbtq/article-worker/internal/worker/domain"
)

// MetaDescriptionMaxLen bounds the fallback meta description, in characters
const MetaDescriptionMaxLen = 155

var (
	metaMarkerExpr = regexp.MustCompile(`(?is)META_DESC\s*:(.*)$`)
	tagExpr        = regexp.MustCompile(`<.*?>`)
)

// ParseResponse splits raw model output into article HTML and meta description.
//
// Everything before the first META_DESC: marker is the article; everything after
// it is the meta description. Without a marker the whole text is the article and
// the description is derived from its plain text.
func ParseResponse(raw string) (domain.Article, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.Article{}, domain.ErrEmptyOutput
	}

	var result domain.Article
	if loc := metaMarkerExpr.FindStringSubmatchIndex(raw); loc != nil {
		result.HTML = strings.TrimSpace(raw[:loc[0]])
		result.MetaDescription = strings.TrimSpace(raw[loc[2]:loc[3]])
	} else {
		result.HTML = raw
		result.MetaDescription = FallbackMetaDescription(raw)
		result.MetaFromFallback = true
	}

	if result.HTML == "" {
		return domain.Article{}, domain.ErrEmptyArticle
	}

	return result, nil
}

// FallbackMetaDescription strips tags, collapses whitespace and truncates.
func FallbackMetaDescription(html string) string {
	text := tagExpr.ReplaceAllString(html, " ")
	// strings.Fields splits on Unicode spaces too (NBSP, \v), which \s does not match
	text = strings.Join(strings.Fields(text), " ")
	return truncateRunes(text, MetaDescriptionMaxLen)
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
