// Package article holds the pure text side of the worker: prompt rendering,
// response parsing, slug generation, and structural checks on generated HTML.
package article

import "strings"

const titlePlaceholder = "{{TITLE}}"

const promptTemplate = `
ABSOLUTELY NO <h1> TAG ALLOWED. START WITH <p> OR OUTPUT IS USELESS.

You are a professional SEO content writer.
Your articles regularly hit position #1–3 on Google because they are helpful, authoritative, and feel genuinely human.

Main title to write about: "{{TITLE}}"

Your task:
Write one complete, high-quality SEO article in English that perfectly satisfies Google’s E-E-A-T guidelines.

Do these steps internally (never show them in the output):
1. Create 10 alternative, more clickable title variations (for your reference only).
2. Build a logical, value-packed outline with at least 7–9 H2 sections before FAQ & Conclusion.
3. Research/recall the most recent 2024–2025 data, statistics, tools, or trends related to the topic.

STRICT WRITING RULES YOU MUST FOLLOW:
- Write in a warm, conversational yet authoritative tone, like a trusted expert talking directly to the reader.
- Use “you” frequently to make it personal and engaging.
- Naturally weave in real-world experience or observations.
- Use smooth transitions (however, here’s the thing, the good news is, interestingly, for example, etc.).
- Keep passive voice under 8%.
- Avoid keyword stuffing; use the main keyword and related terms naturally.
- Every section must deliver real value; no fluff.
- When using lists, make them numbered H3s (1., 2., 3…) and explain each item in depth.
- Include up-to-date facts, statistics, tools, or case studies where relevant.
- Opening paragraph: instantly engaging, data-rich or insight-rich, no rhetorical questions.

REQUIRED STRUCTURE:
- Strong introduction
- Logical H2 sections
- Use numbered <h3> for lists inside sections
- End with exactly these two sections:
  <h2>FAQ</h2>
  <h2>Conclusion</h2>

OUTPUT FORMAT:
1. ONLY the clean article HTML (no <html>, <head>, or <body>).
2. After the HTML, add one blank line, then:
   META_DESC: your compelling meta description (145–160 characters, plain text, no quotes)

Now write the best possible article for this title:
"{{TITLE}}"
`

// EscapeTitle replaces double quotes so the title cannot break out of the quoted prompt lines.
func EscapeTitle(title string) string {
	return strings.ReplaceAll(title, `"`, "'")
}

// BuildPrompt renders the instruction template around title.
func BuildPrompt(title string) string {
	return strings.ReplaceAll(promptTemplate, titlePlaceholder, EscapeTitle(title))
}
