package utils

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// PlainText strips markup from crawled article bodies. Input that is not HTML
// passes through with whitespace collapsed.
func PlainText(raw string) string {
	raw = CleanToValidUTF8(raw)
	if !strings.ContainsAny(raw, "<>") {
		return collapseSpaces(raw)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return collapseSpaces(raw)
	}
	doc.Find("script, style, noscript").Remove()
	return collapseSpaces(doc.Text())
}

// CleanToValidUTF8 drops invalid byte sequences.
func CleanToValidUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "")
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
