// Package normalize provides utilities for normalizing chapter and story text.
//
// Writers paste content from word processors and web editors, so incoming
// chapter bodies may be HTML, Markdown, or plain text. Everything is stored
// as Markdown.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

// htmlTagPattern matches common HTML tags to detect if a string contains HTML.
// Looks for opening tags like <p>, <br>, <div>, <b>, etc.
var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|blockquote)[\s>/]`)

// blankLinePattern collapses runs of three or more newlines into two.
var blankLinePattern = regexp.MustCompile(`\n{3,}`)

// ContainsHTML checks if a string appears to contain HTML markup.
func ContainsHTML(s string) bool {
	return htmlTagPattern.MatchString(strings.ToLower(s))
}

// ChapterContent normalizes a chapter body for storage.
// HTML is converted to Markdown; plain text and Markdown pass through with
// whitespace cleanup only.
func ChapterContent(s string) string {
	if ContainsHTML(s) {
		markdown, err := htmltomarkdown.ConvertString(s)
		if err == nil {
			s = markdown
		}
		// On conversion failure the original string is kept as-is.
	}

	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = blankLinePattern.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// Description normalizes a story description. Same pipeline as chapters,
// but descriptions are short so this mostly strips pasted markup.
func Description(s string) string {
	return ChapterContent(s)
}

// Title normalizes a story or chapter title: collapse internal whitespace
// and trim. Titles never keep markup.
func Title(s string) string {
	s = StripTags(s)
	return strings.Join(strings.Fields(s), " ")
}

// StripTags removes all HTML markup from a string, keeping text content.
// Used for titles and excerpts where even Markdown is unwanted.
func StripTags(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}

	var b strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(tokenizer.Text())
		}
	}
}

// Excerpt produces a plain-text preview of at most maxRunes runes from
// chapter or description content. Markup is stripped and the cut lands on a
// word boundary with a trailing ellipsis.
func Excerpt(s string, maxRunes int) string {
	plain := StripTags(s)
	plain = strings.Join(strings.Fields(plain), " ")

	runes := []rune(plain)
	if len(runes) <= maxRunes {
		return plain
	}
	if maxRunes <= 1 {
		return "…"
	}

	cut := runes[:maxRunes-1]
	// Back up to the last word boundary so words aren't split mid-way.
	for i := len(cut) - 1; i > 0; i-- {
		if unicode.IsSpace(cut[i]) {
			cut = cut[:i]
			break
		}
	}

	return strings.TrimRightFunc(string(cut), unicode.IsSpace) + "…"
}
