package fetch

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"leadgen-engine/internal/util"
)

// Elements that carry no visible business content.
const noiseSelector = "script, style, noscript, nav, footer, header, aside, svg, iframe, template"

// CleanHTML reduces a document to its visible text, capped at max runes.
func CleanHTML(html string, max int) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find(noiseSelector).Remove()

	var b strings.Builder
	doc.Find("body").Each(func(_ int, s *goquery.Selection) {
		b.WriteString(blockText(s))
	})
	if b.Len() == 0 {
		b.WriteString(blockText(doc.Selection))
	}
	return util.Truncate(util.CleanText(b.String()), max)
}

// blockText is Selection.Text with a separator between elements, so
// "<p>a</p><p>b</p>" reads "a b" instead of "ab".
func blockText(s *goquery.Selection) string {
	var b strings.Builder
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			b.WriteString(c.Text())
			return
		}
		b.WriteString(" ")
		b.WriteString(blockText(c))
		b.WriteString(" ")
	})
	return b.String()
}

// Title is the document <title>, cleaned.
func Title(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return util.CleanText(doc.Find("title").First().Text())
}
