// Package main provides a tool to seed the database with demo catalog data.
//
// This creates writer and reader accounts, publishes a handful of stories
// with chapters, and scatters ratings so recommendation and search features
// have something to work with.
//
// Usage:
//
//	WRITHA_DB_PATH=./data/writha.db go run ./cmd/seed
//	go run ./cmd/seed --readers 5  # Also create extra reader accounts
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/writha/writha-server/internal/auth"
	"github.com/writha/writha-server/internal/domain"
	"github.com/writha/writha-server/internal/id"
	"github.com/writha/writha-server/internal/store/sqlite"
	"github.com/writha/writha-server/internal/util"
)

var readerCount = flag.Int("readers", 3, "Number of reader accounts to create")

type seedStory struct {
	title       string
	description string
	genre       string
	isFree      bool
	price       int64
	chapters    []string
}

var seedStories = []seedStory{
	{
		title:       "Lagos Nights",
		description: "A courier finds a phone that keeps ringing with calls from tomorrow.",
		genre:       "Science Fiction",
		isFree:      true,
		chapters:    []string{"The Phone", "Missed Calls", "Tomorrow's News", "Answer It"},
	},
	{
		title:       "The Palm Wine Ledger",
		description: "An accountant in a small town discovers the books balance against people's memories.",
		genre:       "Fantasy",
		isFree:      true,
		chapters:    []string{"Debits", "Credits", "Reconciliation"},
	},
	{
		title:       "Harmattan Letters",
		description: "Two pen pals separated by a border war keep writing after the post office burns down.",
		genre:       "Romance",
		isFree:      false,
		price:       50000,
		chapters:    []string{"Dear Amara", "Dear Chidi", "Return to Sender", "The Last Stamp", "Postscript"},
	},
	{
		title:       "Market Day",
		description: "A detective works a theft at the biggest market in the city, one stall at a time.",
		genre:       "Mystery",
		isFree:      false,
		price:       30000,
		chapters:    []string{"The Missing Crate", "Stallholders", "Closing Bell"},
	},
}

func main() {
	flag.Parse()

	dbPath := os.Getenv("WRITHA_DB_PATH")
	if dbPath == "" {
		dbPath = "./data/writha.db"
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	st, err := sqlite.Open(dbPath, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	writers := createUsers(ctx, st, []string{"adaobi", "tunde"}, domain.UserTypeWriter)
	if len(writers) == 0 {
		log.Fatal("No writer accounts available")
	}

	readerNames := make([]string, 0, *readerCount)
	for i := range *readerCount {
		readerNames = append(readerNames, fmt.Sprintf("reader%d", i+1))
	}
	readers := createUsers(ctx, st, readerNames, domain.UserTypeReader)

	stories := createStories(ctx, st, writers, rng)

	// Scatter ratings and library additions so recommendations have signal
	for _, reader := range readers {
		for _, story := range stories {
			if rng.Float32() > 0.6 {
				continue
			}

			rating := &domain.Rating{
				UserID:    reader.ID,
				StoryID:   story.ID,
				Rating:    2 + rng.Intn(4),
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}
			if err := st.UpsertRating(ctx, rating); err != nil {
				log.Printf("Failed to rate %s: %v", story.Title, err)
				continue
			}

			if story.IsFree && rating.Rating >= 3 {
				if err := st.AddToLibrary(ctx, reader.ID, story.ID); err != nil {
					log.Printf("Failed to add %s to library: %v", story.Title, err)
				}
			}
		}
	}

	fmt.Println("\nSeeding complete!")
}

// createUsers creates accounts with the shared demo password, skipping any
// that already exist.
func createUsers(ctx context.Context, st *sqlite.Store, usernames []string, userType domain.UserType) []*domain.User {
	passwordHash, err := auth.HashPassword("demopass123")
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	now := time.Now()
	users := make([]*domain.User, 0, len(usernames))

	for _, username := range usernames {
		email := username + "@example.com"

		if existing, err := st.GetUserByEmail(ctx, email); err == nil {
			fmt.Printf("  User %s already exists, skipping\n", email)
			users = append(users, existing)
			continue
		}

		user := &domain.User{
			ID:           id.MustGenerate("user"),
			Email:        email,
			Username:     username,
			PasswordHash: passwordHash,
			UserType:     userType,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := st.CreateUser(ctx, user); err != nil {
			log.Printf("  Failed to create user %s: %v", username, err)
			continue
		}

		fmt.Printf("  Created %s account: %s\n", userType, email)
		users = append(users, user)
	}

	return users
}

// createStories publishes the demo catalog, alternating writers.
func createStories(ctx context.Context, st *sqlite.Store, writers []*domain.User, rng *rand.Rand) []*domain.Story {
	now := time.Now()
	stories := make([]*domain.Story, 0, len(seedStories))

	for i, seed := range seedStories {
		writer := writers[i%len(writers)]

		story := &domain.Story{
			ID:          id.MustGenerate("story"),
			WriterID:    writer.ID,
			Title:       seed.title,
			Description: seed.description,
			Genre:       seed.genre,
			GenreSlug:   util.Slugify(seed.genre),
			IsFree:      seed.isFree,
			Price:       seed.price,
			CreatedAt:   now.AddDate(0, 0, -rng.Intn(30)),
			UpdatedAt:   now,
		}

		if err := st.CreateStory(ctx, story); err != nil {
			log.Printf("  Failed to create story %s: %v", seed.title, err)
			continue
		}

		for n, chapterTitle := range seed.chapters {
			chapter := &domain.Chapter{
				ID:        id.MustGenerate("chapter"),
				StoryID:   story.ID,
				Number:    n + 1,
				Title:     chapterTitle,
				Content:   chapterText(chapterTitle),
				CreatedAt: story.CreatedAt,
			}
			if err := st.CreateChapter(ctx, chapter); err != nil {
				log.Printf("  Failed to create chapter %s: %v", chapterTitle, err)
			}
		}

		fmt.Printf("  Published: %s (%d chapters) by %s\n", seed.title, len(seed.chapters), writer.Username)
		stories = append(stories, story)
	}

	return stories
}

func chapterText(title string) string {
	return fmt.Sprintf("%s\n\nThe evening traffic had thinned by the time the generator coughed "+
		"to life, and somewhere down the street a radio argued with itself about the match. "+
		"This is placeholder prose for the demo catalog, long enough to scroll.", title)
}
