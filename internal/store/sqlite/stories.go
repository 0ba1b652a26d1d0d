package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/writha/writha-server/internal/domain"
	"github.com/writha/writha-server/internal/store"
)

const storyColumns = `id, writer_id, title, description, cover_url, cover_blurhash,
	genre, genre_slug, is_free, price, is_completed, created_at, updated_at`

func scanStory(scanner interface{ Scan(dest ...any) error }) (*domain.Story, error) {
	var st domain.Story

	var (
		description   sql.NullString
		coverURL      sql.NullString
		coverBlurhash sql.NullString
		genre         sql.NullString
		genreSlug     sql.NullString
		isFree        int
		isCompleted   int
		createdAt     string
		updatedAt     string
	)

	err := scanner.Scan(
		&st.ID,
		&st.WriterID,
		&st.Title,
		&description,
		&coverURL,
		&coverBlurhash,
		&genre,
		&genreSlug,
		&isFree,
		&st.Price,
		&isCompleted,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	st.Description = description.String
	st.CoverURL = coverURL.String
	st.CoverBlurhash = coverBlurhash.String
	st.Genre = genre.String
	st.GenreSlug = genreSlug.String
	st.IsFree = isFree != 0
	st.IsCompleted = isCompleted != 0

	if st.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if st.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &st, nil
}

// CreateStory inserts a new story and indexes it for search.
func (s *Store) CreateStory(ctx context.Context, story *domain.Story) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stories (
			id, writer_id, title, description, cover_url, cover_blurhash,
			genre, genre_slug, is_free, price, is_completed, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		story.ID,
		story.WriterID,
		story.Title,
		nullString(story.Description),
		nullString(story.CoverURL),
		nullString(story.CoverBlurhash),
		nullString(story.Genre),
		nullString(story.GenreSlug),
		boolToInt(story.IsFree),
		story.Price,
		boolToInt(story.IsCompleted),
		formatTime(story.CreatedAt),
		formatTime(story.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}

	if err := s.indexer.IndexStory(story); err != nil {
		s.logger.Warn("failed to index story", "story_id", story.ID, "error", err)
	}
	return nil
}

// GetStory retrieves a story by ID.
// Returns store.ErrNotFound if the story does not exist.
func (s *Store) GetStory(ctx context.Context, id string) (*domain.Story, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+storyColumns+` FROM stories WHERE id = ?`, id)

	st, err := scanStory(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}

// ListStories returns stories matching the filter, newest first.
func (s *Store) ListStories(ctx context.Context, filter store.StoryFilter) ([]*domain.Story, error) {
	query := `SELECT ` + storyColumns + ` FROM stories`
	var (
		conds []string
		args  []any
	)
	if filter.GenreSlug != "" {
		conds = append(conds, "genre_slug = ?")
		args = append(args, filter.GenreSlug)
	}
	if filter.WriterID != "" {
		conds = append(conds, "writer_id = ?")
		args = append(args, filter.WriterID)
	}
	if filter.FreeOnly {
		conds = append(conds, "is_free = 1")
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stories []*domain.Story
	for rows.Next() {
		st, err := scanStory(rows)
		if err != nil {
			return nil, err
		}
		stories = append(stories, st)
	}
	return stories, rows.Err()
}

// UpdateStory performs a full row update and reindexes the story.
// Returns store.ErrNotFound if the story does not exist.
func (s *Store) UpdateStory(ctx context.Context, story *domain.Story) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE stories SET
			title = ?,
			description = ?,
			cover_url = ?,
			cover_blurhash = ?,
			genre = ?,
			genre_slug = ?,
			is_free = ?,
			price = ?,
			is_completed = ?,
			updated_at = ?
		WHERE id = ?`,
		story.Title,
		nullString(story.Description),
		nullString(story.CoverURL),
		nullString(story.CoverBlurhash),
		nullString(story.Genre),
		nullString(story.GenreSlug),
		boolToInt(story.IsFree),
		story.Price,
		boolToInt(story.IsCompleted),
		formatTime(story.UpdatedAt),
		story.ID,
	)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}

	if err := s.indexer.IndexStory(story); err != nil {
		s.logger.Warn("failed to reindex story", "story_id", story.ID, "error", err)
	}
	return nil
}

// DeleteStory removes a story and its chapters, and drops it from the index.
// Returns store.ErrNotFound if the story does not exist.
func (s *Store) DeleteStory(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM stories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}

	if err := s.indexer.RemoveStory(id); err != nil {
		s.logger.Warn("failed to remove story from index", "story_id", id, "error", err)
	}
	return nil
}

// CreateChapter appends a chapter to a story.
// Returns store.ErrAlreadyExists when the chapter number is taken.
func (s *Store) CreateChapter(ctx context.Context, chapter *domain.Chapter) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chapters (id, story_id, chapter_number, title, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		chapter.ID,
		chapter.StoryID,
		chapter.Number,
		chapter.Title,
		chapter.Content,
		formatTime(chapter.CreatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func scanChapter(scanner interface{ Scan(dest ...any) error }) (*domain.Chapter, error) {
	var ch domain.Chapter
	var createdAt string

	err := scanner.Scan(&ch.ID, &ch.StoryID, &ch.Number, &ch.Title, &ch.Content, &createdAt)
	if err != nil {
		return nil, err
	}
	if ch.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &ch, nil
}

// GetChapterByNumber retrieves one chapter by story and 1-based number.
// Returns store.ErrNotFound if the chapter does not exist.
func (s *Store) GetChapterByNumber(ctx context.Context, storyID string, number int) (*domain.Chapter, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, story_id, chapter_number, title, content, created_at
		FROM chapters WHERE story_id = ? AND chapter_number = ?`,
		storyID, number)

	ch, err := scanChapter(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return ch, nil
}

// ListChapters returns all chapters of a story ordered by chapter number.
func (s *Store) ListChapters(ctx context.Context, storyID string) ([]*domain.Chapter, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, story_id, chapter_number, title, content, created_at
		FROM chapters WHERE story_id = ? ORDER BY chapter_number ASC`,
		storyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chapters []*domain.Chapter
	for rows.Next() {
		ch, err := scanChapter(rows)
		if err != nil {
			return nil, err
		}
		chapters = append(chapters, ch)
	}
	return chapters, rows.Err()
}

// CountChapters returns the number of chapters in a story.
func (s *Store) CountChapters(ctx context.Context, storyID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chapters WHERE story_id = ?`, storyID).Scan(&n)
	return n, err
}
