package article

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt(t *testing.T) {
	tests := []struct {
		name      string
		title     string
		wantTitle string
	}{
		{
			name:      "plain title",
			title:     "Best Yoga Mats 2025",
			wantTitle: `"Best Yoga Mats 2025"`,
		},
		{
			name:      "double quotes are replaced",
			title:     `The "Ultimate" Guide to Tea`,
			wantTitle: `"The 'Ultimate' Guide to Tea"`,
		},
		{
			name:      "single quotes kept",
			title:     "Beginner's Guide",
			wantTitle: `"Beginner's Guide"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt := BuildPrompt(tt.title)

			assert.Equal(t, 2, strings.Count(prompt, tt.wantTitle))
			assert.NotContains(t, prompt, titlePlaceholder)
			assert.Contains(t, prompt, "META_DESC:")
			assert.Contains(t, prompt, "ABSOLUTELY NO <h1> TAG ALLOWED")
			assert.Contains(t, prompt, "<h2>FAQ</h2>")
			assert.Contains(t, prompt, "<h2>Conclusion</h2>")
		})
	}
}

func TestBuildPrompt_NoUnescapedQuotesFromTitle(t *testing.T) {
	title := `He said "yes" and "no"`
	prompt := BuildPrompt(title)

	assert.NotContains(t, prompt, title)
	assert.Contains(t, prompt, EscapeTitle(title))
	assert.NotContains(t, EscapeTitle(title), `"`)
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	assert.Equal(t, BuildPrompt("Same Title"), BuildPrompt("Same Title"))
}
