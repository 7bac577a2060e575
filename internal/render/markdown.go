package render

import (
	"bytes"
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	markdown          = goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough))
	descriptionPolicy = newDescriptionPolicy()
	plainPolicy       = bluemonday.StrictPolicy()
)

func newDescriptionPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").OnElements("p", "span")
	policy.RequireNoFollowOnLinks(true)
	return policy
}

// Markdown renders an operator-authored description to sanitised HTML. Raw HTML in the
// source is dropped.
func Markdown(src string) template.HTML {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return template.HTML("<p>" + template.HTMLEscapeString(src) + "</p>")
	}
	return template.HTML(descriptionPolicy.SanitizeBytes(buf.Bytes()))
}

// PlainText renders src as markdown and keeps only its text, with whitespace collapsed.
func PlainText(src string) string {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return strings.Join(strings.Fields(src), " ")
	}
	// goldmark ends every block with a newline, so words never glue together
	text := plainPolicy.SanitizeBytes(buf.Bytes())
	return strings.Join(strings.Fields(html.UnescapeString(string(text))), " ")
}
