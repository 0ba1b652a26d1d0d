package domain

import "time"

// Reader preference bounds. Values outside these ranges are clamped, never
// rejected, so a stale client can always resume reading.
const (
	MinFontSize = 12
	MaxFontSize = 24

	MinLineHeight = 1.0
	MaxLineHeight = 2.5

	DefaultFontSize   = 16
	DefaultLineHeight = 1.5
)

// FontFamily is a reader font choice.
type FontFamily string

// Supported reader fonts.
const (
	FontSerif     FontFamily = "serif"
	FontSansSerif FontFamily = "sans-serif"
	FontMonospace FontFamily = "monospace"
)

// Valid reports whether the font family is supported by the reader.
func (f FontFamily) Valid() bool {
	switch f {
	case FontSerif, FontSansSerif, FontMonospace:
		return true
	}
	return false
}

// Theme is a reader color theme.
type Theme string

// Supported reader themes.
const (
	ThemeLight Theme = "light"
	ThemeSepia Theme = "sepia"
	ThemeDark  Theme = "dark"
)

// Valid reports whether the theme is supported by the reader.
func (t Theme) Valid() bool {
	switch t {
	case ThemeLight, ThemeSepia, ThemeDark:
		return true
	}
	return false
}

// ReaderPreferences holds per-user display settings for the reading surface.
type ReaderPreferences struct {
	FontSize   int        `json:"font_size"`
	LineHeight float64    `json:"line_height"`
	FontFamily FontFamily `json:"font_family"`
	Theme      Theme      `json:"theme"`
}

// DefaultPreferences returns the reader defaults for a new user.
func DefaultPreferences() ReaderPreferences {
	return ReaderPreferences{
		FontSize:   DefaultFontSize,
		LineHeight: DefaultLineHeight,
		FontFamily: FontSerif,
		Theme:      ThemeLight,
	}
}

// Clamp forces every field into its supported range. A zero numeric field
// means the patch left it out, so it keeps the current value in prev (or the
// default when prev has none); out-of-range values snap to the nearest
// bound. Unknown enum values likewise fall back to prev, then the default.
func (p ReaderPreferences) Clamp(prev ReaderPreferences) ReaderPreferences {
	if p.FontSize == 0 {
		p.FontSize = prev.FontSize
		if p.FontSize == 0 {
			p.FontSize = DefaultFontSize
		}
	}
	if p.LineHeight == 0 {
		p.LineHeight = prev.LineHeight
		if p.LineHeight == 0 {
			p.LineHeight = DefaultLineHeight
		}
	}
	if p.FontSize < MinFontSize {
		p.FontSize = MinFontSize
	}
	if p.FontSize > MaxFontSize {
		p.FontSize = MaxFontSize
	}
	if p.LineHeight < MinLineHeight {
		p.LineHeight = MinLineHeight
	}
	if p.LineHeight > MaxLineHeight {
		p.LineHeight = MaxLineHeight
	}
	if !p.FontFamily.Valid() {
		if prev.FontFamily.Valid() {
			p.FontFamily = prev.FontFamily
		} else {
			p.FontFamily = FontSerif
		}
	}
	if !p.Theme.Valid() {
		if prev.Theme.Valid() {
			p.Theme = prev.Theme
		} else {
			p.Theme = ThemeLight
		}
	}
	return p
}

// SessionState is the lifecycle state of a reader session.
type SessionState string

// Session states. A session is created Loading, becomes Ready once chapters
// are attached, and is Closed when the reader leaves.
const (
	SessionLoading SessionState = "loading"
	SessionReady   SessionState = "ready"
	SessionClosed  SessionState = "closed"
)

// ReaderSession is an active reading session for one user on one story.
// Chapter content is attached once at open; position is a 1-based chapter
// number that is always within [1, len(chapters)] while Ready.
//
// Navigation past either end is a no-op rather than an error: the reader UI
// issues next/previous optimistically and only re-renders when the position
// actually moves.
type ReaderSession struct {
	ID         string            `json:"id"`
	UserID     string            `json:"user_id"`
	StoryID    string            `json:"story_id"`
	StoryTitle string            `json:"story_title"`
	State      SessionState      `json:"state"`
	Chapters   []Chapter         `json:"-"`
	Position   int               `json:"position"`
	Prefs      ReaderPreferences `json:"preferences"`
	Fullscreen bool              `json:"fullscreen"`
	OpenedAt   time.Time         `json:"opened_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// Ready attaches the loaded chapters and transitions Loading → Ready.
// The requested starting position is clamped into [1, len(chapters)], so a
// bookmark pointing past the end of a trimmed story lands on the last
// chapter instead of failing.
func (s *ReaderSession) Ready(chapters []Chapter, requested int) {
	s.Chapters = chapters
	s.Position = clampPosition(requested, len(chapters))
	s.State = SessionReady
	s.UpdatedAt = time.Now()
}

// ChapterCount returns the number of chapters attached to the session.
func (s *ReaderSession) ChapterCount() int {
	return len(s.Chapters)
}

// Current returns the chapter at the session position, or nil when the
// session has no chapters or is not Ready.
func (s *ReaderSession) Current() *Chapter {
	if s.State != SessionReady || len(s.Chapters) == 0 {
		return nil
	}
	return &s.Chapters[s.Position-1]
}

// Next advances one chapter. Returns false without changing anything when
// already on the last chapter or the session is not Ready.
func (s *ReaderSession) Next() bool {
	return s.moveTo(s.Position + 1)
}

// Previous moves back one chapter. Returns false without changing anything
// when already on the first chapter or the session is not Ready.
func (s *ReaderSession) Previous() bool {
	return s.moveTo(s.Position - 1)
}

// JumpTo moves directly to chapter n. Out-of-range targets are a no-op.
func (s *ReaderSession) JumpTo(n int) bool {
	return s.moveTo(n)
}

func (s *ReaderSession) moveTo(n int) bool {
	if s.State != SessionReady {
		return false
	}
	if n < 1 || n > len(s.Chapters) || n == s.Position {
		return false
	}
	s.Position = n
	s.UpdatedAt = time.Now()
	return true
}

// ApplyPreferences merges the patch into the session preferences, clamping
// every field. Returns the effective preferences after clamping.
func (s *ReaderSession) ApplyPreferences(patch ReaderPreferences) ReaderPreferences {
	s.Prefs = patch.Clamp(s.Prefs)
	s.UpdatedAt = time.Now()
	return s.Prefs
}

// SetFullscreen records the fullscreen state reported by the client. The
// actual mode switch happens client-side and may fail; failures there are
// surfaced as warnings, never as session errors, so this only tracks what
// the client achieved.
func (s *ReaderSession) SetFullscreen(on bool) {
	s.Fullscreen = on
	s.UpdatedAt = time.Now()
}

// Close ends the session. Idempotent.
func (s *ReaderSession) Close() {
	if s.State == SessionClosed {
		return
	}
	s.State = SessionClosed
	s.UpdatedAt = time.Now()
}

func clampPosition(n, total int) int {
	if total == 0 {
		return 0
	}
	if n < 1 {
		return 1
	}
	if n > total {
		return total
	}
	return n
}
