package article

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var wrapperExpr = regexp.MustCompile(`(?i)<\s*/?\s*(html|head|body)[\s>]`)

// Report describes the structure of a generated article
type Report struct {
	H1Count            int
	H2Count            int
	H3Count            int
	HasFAQ             bool
	HasConclusion      bool
	HasDocumentWrapper bool
	WordCount          int
}

// Inspect parses the HTML fragment and collects structural facts about it.
func Inspect(html string) (Report, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Report{}, fmt.Errorf("parse article html: %w", err)
	}

	report := Report{
		H1Count:            doc.Find("h1").Length(),
		H2Count:            doc.Find("h2").Length(),
		H3Count:            doc.Find("h3").Length(),
		HasDocumentWrapper: wrapperExpr.MatchString(html),
		WordCount:          len(strings.Fields(doc.Find("body").Text())),
	}

	doc.Find("h2").Each(func(_ int, s *goquery.Selection) {
		heading := strings.ToLower(strings.TrimSpace(s.Text()))
		if strings.Contains(heading, "faq") || strings.Contains(heading, "frequently asked") {
			report.HasFAQ = true
		}
		if strings.Contains(heading, "conclusion") {
			report.HasConclusion = true
		}
	})

	return report, nil
}

// Warnings lists format-contract violations worth logging.
func (r Report) Warnings() []string {
	var warnings []string
	if r.H1Count > 0 {
		warnings = append(warnings, fmt.Sprintf("article contains %d <h1> tag(s)", r.H1Count))
	}
	if r.HasDocumentWrapper {
		warnings = append(warnings, "article contains html/head/body wrapper")
	}
	if !r.HasFAQ {
		warnings = append(warnings, "article has no FAQ section")
	}
	if !r.HasConclusion {
		warnings = append(warnings, "article has no Conclusion section")
	}
	return warnings
}
