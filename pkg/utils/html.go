package utils

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CleanHTML strips HTML tags from s and collapses runs of whitespace.
func CleanHTML(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	// Keep paragraph and line breaks as word boundaries.
	doc.Find("br").ReplaceWithHtml(" ")
	doc.Find("p, li, div, td, h1, h2, h3").AppendHtml(" ")
	return strings.Join(strings.Fields(doc.Text()), " ")
}
