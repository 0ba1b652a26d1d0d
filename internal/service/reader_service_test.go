package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/writha/writha-server/internal/domain"
	domainerrors "github.com/writha/writha-server/internal/errors"
	"github.com/writha/writha-server/internal/store/sqlite"
)

type readerFixture struct {
	store  *sqlite.Store
	writer *domain.User
	reader *domain.User
	story  *domain.Story
}

func setupReader(t *testing.T) (*ReaderService, *readerFixture) {
	t.Helper()
	st := setupStore(t)
	state := setupReaderState(t)
	svc := NewReaderService(st, state, testLogger())

	writer := seedUser(t, st, "user-writer", "adaobi", domain.UserTypeWriter)
	reader := seedUser(t, st, "user-reader", "tunde", domain.UserTypeReader)
	story := seedStory(t, st, "story-1", writer.ID, "Lagos Nights", true, 0, time.Now())
	seedChapters(t, st, story.ID, 3)

	return svc, &readerFixture{store: st, writer: writer, reader: reader, story: story}
}

func TestOpenSession_ClampsRequestedPosition(t *testing.T) {
	svc, fx := setupReader(t)
	ctx := context.Background()

	// Requested chapter 5 of a 3-chapter story lands on the last chapter.
	session, err := svc.OpenSession(ctx, fx.reader.ID, fx.story.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionReady, session.State)
	assert.Equal(t, 3, session.Position)
	assert.Equal(t, 3, session.ChapterCount())
}

func TestOpenSession_DefaultsToFirstChapter(t *testing.T) {
	svc, fx := setupReader(t)

	session, err := svc.OpenSession(context.Background(), fx.reader.ID, fx.story.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, session.Position)
}

func TestOpenSession_ReturnsExistingSession(t *testing.T) {
	svc, fx := setupReader(t)
	ctx := context.Background()

	first, err := svc.OpenSession(ctx, fx.reader.ID, fx.story.ID, 2)
	require.NoError(t, err)
	second, err := svc.OpenSession(ctx, fx.reader.ID, fx.story.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, second.Position)
}

func TestNavigation_PersistsAcrossSessions(t *testing.T) {
	svc, fx := setupReader(t)
	ctx := context.Background()

	session, err := svc.OpenSession(ctx, fx.reader.ID, fx.story.ID, 0)
	require.NoError(t, err)

	session, err = svc.NextChapter(ctx, fx.reader.ID, fx.story.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, session.Position)

	require.NoError(t, svc.CloseSession(ctx, fx.reader.ID, fx.story.ID))

	// Reopening without a requested chapter resumes at the saved position.
	session, err = svc.OpenSession(ctx, fx.reader.ID, fx.story.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, session.Position)
}

func TestNavigation_NoOpAtBounds(t *testing.T) {
	svc, fx := setupReader(t)
	ctx := context.Background()

	_, err := svc.OpenSession(ctx, fx.reader.ID, fx.story.ID, 1)
	require.NoError(t, err)

	session, err := svc.PreviousChapter(ctx, fx.reader.ID, fx.story.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, session.Position)

	_, err = svc.JumpToChapter(ctx, fx.reader.ID, fx.story.ID, 3)
	require.NoError(t, err)
	session, err = svc.NextChapter(ctx, fx.reader.ID, fx.story.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, session.Position)

	// Out-of-range jumps change nothing either.
	session, err = svc.JumpToChapter(ctx, fx.reader.ID, fx.story.ID, 99)
	require.NoError(t, err)
	assert.Equal(t, 3, session.Position)
}

func TestNavigation_RequiresOpenSession(t *testing.T) {
	svc, fx := setupReader(t)

	_, err := svc.NextChapter(context.Background(), fx.reader.ID, fx.story.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestOpenSession_PaidStoryRequiresPurchase(t *testing.T) {
	svc, fx := setupReader(t)
	ctx := context.Background()

	paid := seedStory(t, fx.store, "story-paid", fx.writer.ID, "Premium Tale", false, 5000, time.Now())
	seedChapters(t, fx.store, paid.ID, 2)

	_, err := svc.OpenSession(ctx, fx.reader.ID, paid.ID, 0)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	// The writer can always read their own story.
	_, err = svc.OpenSession(ctx, fx.writer.ID, paid.ID, 0)
	require.NoError(t, err)

	// A library grant (from purchase) unlocks it for the reader.
	require.NoError(t, fx.store.AddToLibrary(ctx, fx.reader.ID, paid.ID))
	session, err := svc.OpenSession(ctx, fx.reader.ID, paid.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, session.Position)
}

func TestUpdatePreferences_Clamps(t *testing.T) {
	svc, fx := setupReader(t)
	ctx := context.Background()

	effective, err := svc.UpdatePreferences(ctx, fx.reader.ID, domain.ReaderPreferences{
		FontSize:   99,
		LineHeight: 0.1,
		FontFamily: "papyrus",
		Theme:      domain.ThemeSepia,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.MaxFontSize, effective.FontSize)
	assert.Equal(t, domain.MinLineHeight, effective.LineHeight)
	assert.Equal(t, domain.FontSerif, effective.FontFamily)
	assert.Equal(t, domain.ThemeSepia, effective.Theme)

	// Unknown enum values keep whatever was previously in effect.
	effective, err = svc.UpdatePreferences(ctx, fx.reader.ID, domain.ReaderPreferences{
		FontSize:   18,
		LineHeight: 1.5,
		FontFamily: domain.FontMonospace,
		Theme:      "neon",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.FontMonospace, effective.FontFamily)
	assert.Equal(t, domain.ThemeSepia, effective.Theme)
}

func TestUpdatePreferences_AppliesToOpenSession(t *testing.T) {
	svc, fx := setupReader(t)
	ctx := context.Background()

	session, err := svc.OpenSession(ctx, fx.reader.ID, fx.story.ID, 0)
	require.NoError(t, err)

	_, err = svc.UpdatePreferences(ctx, fx.reader.ID, domain.ReaderPreferences{
		FontSize:   20,
		LineHeight: 2.0,
		FontFamily: domain.FontSansSerif,
		Theme:      domain.ThemeDark,
	})
	require.NoError(t, err)
	assert.Equal(t, 20, session.Prefs.FontSize)
	assert.Equal(t, domain.ThemeDark, session.Prefs.Theme)
}

func TestSetFullscreen_ClientFailureIsNotAnError(t *testing.T) {
	svc, fx := setupReader(t)
	ctx := context.Background()

	_, err := svc.OpenSession(ctx, fx.reader.ID, fx.story.ID, 0)
	require.NoError(t, err)

	session, err := svc.SetFullscreen(ctx, fx.reader.ID, fx.story.ID, true, "")
	require.NoError(t, err)
	assert.True(t, session.Fullscreen)

	// The client couldn't enter fullscreen; the session stays usable.
	session, err = svc.SetFullscreen(ctx, fx.reader.ID, fx.story.ID, true, "permission denied")
	require.NoError(t, err)
	assert.True(t, session.Fullscreen)
	assert.Equal(t, domain.SessionReady, session.State)
}

func TestCloseSession_Idempotent(t *testing.T) {
	svc, fx := setupReader(t)
	ctx := context.Background()

	_, err := svc.OpenSession(ctx, fx.reader.ID, fx.story.ID, 0)
	require.NoError(t, err)
	require.NoError(t, svc.CloseSession(ctx, fx.reader.ID, fx.story.ID))
	require.NoError(t, svc.CloseSession(ctx, fx.reader.ID, fx.story.ID))
}
