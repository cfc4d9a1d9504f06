package article

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var slugShape = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{name: "simple title", title: "Best Yoga Mats 2025", want: "best-yoga-mats-2025"},
		{name: "accents folded", title: "Café Crème Brûlée", want: "cafe-creme-brulee"},
		{name: "punctuation runs collapse", title: "What's new?!  In -- Go", want: "what-s-new-in-go"},
		{name: "leading and trailing symbols", title: "  ***Hello World***  ", want: "hello-world"},
		{name: "ligature decomposed", title: "ﬁnance tips", want: "finance-tips"},
		{name: "empty input", title: "", want: DefaultSlug},
		{name: "only symbols", title: "!!! ??? ---", want: DefaultSlug},
		{name: "non latin script", title: "日本語", want: DefaultSlug},
		{name: "mixed script", title: "Tokyo 東京 Guide", want: "tokyo-guide"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.title))
		})
	}
}

func TestSlugify_ShapeAndIdempotence(t *testing.T) {
	inputs := []string{
		"Best Yoga Mats 2025",
		"Ärger über Öl",
		"-a-",
		"   ",
		"100% Natural \"Organic\" Soap",
		"Ça va? Très bien!",
		"ＦＵＬＬ ＷＩＤＴＨ",
	}

	for _, in := range inputs {
		slug := Slugify(in)
		assert.Regexp(t, slugShape, slug, "input %q", in)
		assert.Equal(t, slug, Slugify(slug), "input %q", in)
	}
}
