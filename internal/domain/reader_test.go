package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chapters(n int) []Chapter {
	out := make([]Chapter, n)
	for i := range out {
		out[i] = Chapter{ID: "ch-" + string(rune('a'+i)), Number: i + 1}
	}
	return out
}

func readySession(n, start int) *ReaderSession {
	s := &ReaderSession{ID: "rs-1", UserID: "user-1", StoryID: "story-1", State: SessionLoading}
	s.Ready(chapters(n), start)
	return s
}

func TestReady_ClampsStartingPosition(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		start    int
		expected int
	}{
		{"within range", 10, 4, 4},
		{"past end", 3, 5, 3},
		{"zero", 3, 0, 1},
		{"negative", 3, -2, 1},
		{"exact end", 3, 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := readySession(tt.total, tt.start)
			assert.Equal(t, SessionReady, s.State)
			assert.Equal(t, tt.expected, s.Position)
		})
	}
}

func TestNavigation_NoOpAtBounds(t *testing.T) {
	s := readySession(3, 1)

	// Already at the first chapter.
	assert.False(t, s.Previous())
	assert.Equal(t, 1, s.Position)

	require.True(t, s.Next())
	require.True(t, s.Next())
	assert.Equal(t, 3, s.Position)

	// Already at the last chapter.
	assert.False(t, s.Next())
	assert.Equal(t, 3, s.Position)
}

func TestJumpTo(t *testing.T) {
	s := readySession(5, 2)

	assert.True(t, s.JumpTo(4))
	assert.Equal(t, 4, s.Position)

	// Out of range targets do not move the position.
	assert.False(t, s.JumpTo(0))
	assert.False(t, s.JumpTo(6))
	assert.Equal(t, 4, s.Position)

	// Jumping to the current chapter reports no change.
	assert.False(t, s.JumpTo(4))
}

func TestNavigation_IgnoredWhenNotReady(t *testing.T) {
	s := &ReaderSession{State: SessionLoading, Position: 1, Chapters: chapters(3)}
	assert.False(t, s.Next())

	s = readySession(3, 2)
	s.Close()
	assert.False(t, s.Next())
	assert.False(t, s.Previous())
	assert.Equal(t, 2, s.Position)
}

func TestCurrent(t *testing.T) {
	s := readySession(3, 2)
	ch := s.Current()
	require.NotNil(t, ch)
	assert.Equal(t, 2, ch.Number)

	s.Close()
	assert.Nil(t, s.Current())
}

func TestPreferences_Clamp(t *testing.T) {
	prev := DefaultPreferences()

	got := ReaderPreferences{FontSize: 40, LineHeight: 3.0, FontFamily: "comic-sans", Theme: "neon"}.Clamp(prev)
	assert.Equal(t, MaxFontSize, got.FontSize)
	assert.Equal(t, MaxLineHeight, got.LineHeight)
	assert.Equal(t, FontSerif, got.FontFamily)
	assert.Equal(t, ThemeLight, got.Theme)

	got = ReaderPreferences{FontSize: 6, LineHeight: 0.5, FontFamily: FontMonospace, Theme: ThemeDark}.Clamp(prev)
	assert.Equal(t, MinFontSize, got.FontSize)
	assert.Equal(t, MinLineHeight, got.LineHeight)
	assert.Equal(t, FontMonospace, got.FontFamily)
	assert.Equal(t, ThemeDark, got.Theme)
}

func TestPreferences_PartialPatchKeepsNumericFields(t *testing.T) {
	prev := ReaderPreferences{FontSize: 20, LineHeight: 2.0, FontFamily: FontSerif, Theme: ThemeLight}

	// A theme-only patch leaves font size and line height at zero; those
	// keep their saved values instead of snapping to the minimums.
	got := ReaderPreferences{Theme: ThemeDark}.Clamp(prev)
	assert.Equal(t, 20, got.FontSize)
	assert.Equal(t, 2.0, got.LineHeight)
	assert.Equal(t, FontSerif, got.FontFamily)
	assert.Equal(t, ThemeDark, got.Theme)

	// With no previous value either, zeros mean the defaults.
	got = ReaderPreferences{Theme: ThemeDark}.Clamp(ReaderPreferences{})
	assert.Equal(t, DefaultFontSize, got.FontSize)
	assert.Equal(t, DefaultLineHeight, got.LineHeight)
}

func TestPreferences_UnknownEnumKeepsPrevious(t *testing.T) {
	prev := ReaderPreferences{FontSize: 18, LineHeight: 2.0, FontFamily: FontSansSerif, Theme: ThemeSepia}
	got := ReaderPreferences{FontSize: 18, LineHeight: 2.0, FontFamily: "wingdings", Theme: "blurple"}.Clamp(prev)
	assert.Equal(t, FontSansSerif, got.FontFamily)
	assert.Equal(t, ThemeSepia, got.Theme)
}

func TestApplyPreferences(t *testing.T) {
	s := readySession(3, 1)
	s.Prefs = DefaultPreferences()

	got := s.ApplyPreferences(ReaderPreferences{FontSize: 100, LineHeight: 1.8, FontFamily: FontMonospace, Theme: ThemeDark})
	assert.Equal(t, MaxFontSize, got.FontSize)
	assert.Equal(t, 1.8, got.LineHeight)
	assert.Equal(t, got, s.Prefs)
}

func TestClose_Idempotent(t *testing.T) {
	s := readySession(3, 1)
	s.Close()
	first := s.UpdatedAt
	s.Close()
	assert.Equal(t, SessionClosed, s.State)
	assert.Equal(t, first, s.UpdatedAt)
}
