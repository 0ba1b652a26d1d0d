package kv

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/writha/writha-server/internal/domain"
	"github.com/writha/writha-server/internal/store"
)

func newTestStore(t *testing.T) *ReaderStateStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reader-state")
	s, err := Open(path, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("open reader state store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPreferences_DefaultsWhenUnset(t *testing.T) {
	s := newTestStore(t)

	prefs, err := s.GetPreferences(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetPreferences: %v", err)
	}
	if prefs != domain.DefaultPreferences() {
		t.Errorf("expected defaults, got %+v", prefs)
	}
}

func TestPreferences_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := domain.ReaderPreferences{
		FontSize:   20,
		LineHeight: 1.8,
		FontFamily: domain.FontMonospace,
		Theme:      domain.ThemeSepia,
	}
	if err := s.SavePreferences(ctx, "user-1", want); err != nil {
		t.Fatalf("SavePreferences: %v", err)
	}

	got, err := s.GetPreferences(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetPreferences: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}

	// Another user is unaffected.
	other, err := s.GetPreferences(ctx, "user-2")
	if err != nil {
		t.Fatalf("GetPreferences other: %v", err)
	}
	if other != domain.DefaultPreferences() {
		t.Errorf("expected defaults for other user, got %+v", other)
	}
}

func TestPreferences_ClampedOnLoad(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Simulate a stale record written under looser bounds.
	stale := domain.ReaderPreferences{
		FontSize:   99,
		LineHeight: 9.9,
		FontFamily: "papyrus",
		Theme:      domain.ThemeDark,
	}
	if err := s.SavePreferences(ctx, "user-1", stale); err != nil {
		t.Fatalf("SavePreferences: %v", err)
	}

	got, err := s.GetPreferences(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetPreferences: %v", err)
	}
	if got.FontSize != domain.MaxFontSize {
		t.Errorf("FontSize: got %d, want %d", got.FontSize, domain.MaxFontSize)
	}
	if got.LineHeight != domain.MaxLineHeight {
		t.Errorf("LineHeight: got %v, want %v", got.LineHeight, domain.MaxLineHeight)
	}
	if got.FontFamily != domain.FontSerif {
		t.Errorf("FontFamily: got %q, want serif fallback", got.FontFamily)
	}
	if got.Theme != domain.ThemeDark {
		t.Errorf("Theme: got %q, want dark", got.Theme)
	}
}

func TestPosition(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetPosition(ctx, "user-1", "story-1")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.SavePosition(ctx, "user-1", "story-1", 7); err != nil {
		t.Fatalf("SavePosition: %v", err)
	}

	got, err := s.GetPosition(ctx, "user-1", "story-1")
	if err != nil {
		t.Fatalf("GetPosition: %v", err)
	}
	if got != 7 {
		t.Errorf("position: got %d, want 7", got)
	}

	// Positions are per story.
	_, err = s.GetPosition(ctx, "user-1", "story-2")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for other story, got %v", err)
	}
}
