package normalize

import "testing"

func TestContainsHTML(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"<p>Hello world</p>", true},
		{"Line one<br/>line two", true},
		{"<STRONG>shouty</STRONG>", true},
		{"plain text with < and > symbols", false},
		{"x < y means y > x", false},
		{"# A markdown heading", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ContainsHTML(tt.input); got != tt.want {
			t.Errorf("ContainsHTML(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestChapterContent_ConvertsHTML(t *testing.T) {
	got := ChapterContent("<p>The rain started at <strong>noon</strong>.</p>")
	want := "The rain started at **noon**."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestChapterContent_PassesThroughMarkdown(t *testing.T) {
	input := "# Chapter One\n\nThe rain started at **noon**."
	if got := ChapterContent(input); got != input {
		t.Errorf("markdown should pass through unchanged, got %q", got)
	}
}

func TestChapterContent_CleansWhitespace(t *testing.T) {
	got := ChapterContent("First paragraph.\r\n\r\n\r\n\r\nSecond paragraph.\n\n")
	want := "First paragraph.\n\nSecond paragraph."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  Lagos   Nights  ", "Lagos Nights"},
		{"<b>Lagos Nights</b>", "Lagos Nights"},
		{"Chapter\tOne", "Chapter One"},
	}
	for _, tt := range tests {
		if got := Title(tt.input); got != tt.want {
			t.Errorf("Title(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestStripTags(t *testing.T) {
	got := StripTags("<p>Hello <em>there</em>, friend</p>")
	want := "Hello there, friend"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExcerpt(t *testing.T) {
	t.Run("short content unchanged", func(t *testing.T) {
		if got := Excerpt("A short line.", 50); got != "A short line." {
			t.Errorf("got %q", got)
		}
	})

	t.Run("cuts on word boundary", func(t *testing.T) {
		got := Excerpt("The rain started at noon and did not stop", 20)
		if got != "The rain started…" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("strips markup first", func(t *testing.T) {
		got := Excerpt("<p>The rain started at noon</p>", 100)
		if got != "The rain started at noon" {
			t.Errorf("got %q", got)
		}
	})
}
