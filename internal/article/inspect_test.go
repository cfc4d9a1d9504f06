package article

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspect(t *testing.T) {
	html := `<p>Intro paragraph with five words.</p>
<h2>Why it matters</h2>
<h3>1. First</h3><p>Detail.</p>
<h3>2. Second</h3><p>Detail.</p>
<h2>FAQ</h2><p>Q and A.</p>
<h2>Conclusion</h2><p>Wrap up.</p>`

	report, err := Inspect(html)
	require.NoError(t, err)

	assert.Equal(t, 0, report.H1Count)
	assert.Equal(t, 3, report.H2Count)
	assert.Equal(t, 2, report.H3Count)
	assert.True(t, report.HasFAQ)
	assert.True(t, report.HasConclusion)
	assert.False(t, report.HasDocumentWrapper)
	assert.Greater(t, report.WordCount, 10)
	assert.Empty(t, report.Warnings())
}

func TestInspect_Violations(t *testing.T) {
	html := `<html><body><h1>Title</h1><p>Only text.</p></body></html>`

	report, err := Inspect(html)
	require.NoError(t, err)

	assert.Equal(t, 1, report.H1Count)
	assert.True(t, report.HasDocumentWrapper)
	assert.False(t, report.HasFAQ)
	assert.False(t, report.HasConclusion)

	warnings := report.Warnings()
	assert.Len(t, warnings, 4)
	assert.Contains(t, warnings[0], "<h1>")
}
