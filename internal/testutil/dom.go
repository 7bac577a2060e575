package testutil

import (
	"bytes"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

// ParseHTML parses the provided HTML payload into a goquery document for assertions.
func ParseHTML(t testing.TB, body []byte) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

// ParseFragment wraps a markup fragment in a container so it can be queried as a document.
func ParseFragment(t testing.TB, markup string) *goquery.Selection {
	t.Helper()

	doc := ParseHTML(t, []byte(`<div id="fragment-root">`+markup+`</div>`))
	return doc.Find("#fragment-root")
}

// Texts collects the trimmed text of every element matching selector.
func Texts(sel *goquery.Selection, selector string) []string {
	var out []string
	sel.Find(selector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, strings.TrimSpace(s.Text()))
	})
	return out
}
