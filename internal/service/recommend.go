package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/writha/writha-server/internal/domain"
	domainerrors "github.com/writha/writha-server/internal/errors"
	"github.com/writha/writha-server/internal/ratelimit"
	"github.com/writha/writha-server/internal/recommend"
	"github.com/writha/writha-server/internal/store"
	"github.com/writha/writha-server/internal/util"
)

// feedbackQueueSize bounds the pending feedback writes. The queue only backs
// up when the database stalls, and a dropped entry just means the story may
// be recommended again.
const feedbackQueueSize = 64

// RecommendOptions narrows the candidate pool for one request.
type RecommendOptions struct {
	// CurrentStoryID excludes the story the reader is looking at right now.
	CurrentStoryID string
	// Genre restricts candidates to one genre. Accepts the display name or
	// the slug.
	Genre string
}

// RecommendationService builds the personalized story shortlist.
//
// The pipeline never surfaces an error to the reader: any failure along the
// way degrades to the deterministic fallback (the first stories in fetch
// order) or, at worst, an empty shortlist.
type RecommendationService struct {
	store  store.Store
	ranker recommend.Ranker
	// rerankLimiter caps LLM calls per user so one reader hammering
	// refresh can't burn through the completion quota.
	rerankLimiter *ratelimit.KeyedRateLimiter
	maxResults    int
	poolSize      int
	logger        *slog.Logger

	// feedback writes run on a single worker goroutine so request handlers
	// never wait on the database, and Stop can drain what's queued.
	feedback chan *domain.Feedback
	quit     chan struct{}
	wg       sync.WaitGroup
}

// NewRecommendationService creates the recommendation pipeline and starts
// its feedback worker. ranker may be nil, which disables personalized
// reranking entirely.
func NewRecommendationService(st store.Store, ranker recommend.Ranker, maxResults, poolSize int, logger *slog.Logger) *RecommendationService {
	if maxResults <= 0 {
		maxResults = 4
	}
	if poolSize <= 0 {
		poolSize = 10
	}
	s := &RecommendationService{
		store:  st,
		ranker: ranker,
		// One rerank per 10 seconds per user, small burst.
		rerankLimiter: ratelimit.New(0.1, 3),
		maxResults:    maxResults,
		poolSize:      poolSize,
		logger:        logger,
		feedback:      make(chan *domain.Feedback, feedbackQueueSize),
		quit:          make(chan struct{}),
	}
	s.wg.Add(1)
	go s.feedbackWorker()
	return s
}

// Stop drains queued feedback writes and releases background resources.
func (s *RecommendationService) Stop() {
	close(s.quit)
	s.wg.Wait()
	s.rerankLimiter.Stop()
}

// GetRecommendations returns up to maxResults stories for the reader.
//
// Candidates are fetched with the reader's library, dismissals, own stories,
// and the story on screen already excluded. When the reader has any rating
// signals and the ranker is available, the shortlist is reranked; the
// ranker's picks come first, the candidates it skipped follow in fetch
// order. On any rerank failure the first candidates in fetch order are
// returned.
func (s *RecommendationService) GetRecommendations(ctx context.Context, userID string, opts RecommendOptions) ([]domain.Candidate, error) {
	filter := store.CandidateFilter{
		ExcludeStoryID: opts.CurrentStoryID,
		Limit:          s.poolSize,
	}
	if opts.Genre != "" {
		filter.GenreSlug = util.Slugify(opts.Genre)
	}

	candidates, err := s.store.ListCandidates(ctx, userID, filter)
	if err != nil {
		s.logger.Error("Failed to fetch recommendation candidates",
			"user_id", userID,
			"error", err,
		)
		return []domain.Candidate{}, nil
	}
	if len(candidates) == 0 {
		return []domain.Candidate{}, nil
	}

	signals, err := s.store.ListRatingSignals(ctx, userID)
	if err != nil {
		s.logger.Warn("Failed to fetch rating signals",
			"user_id", userID,
			"error", err,
		)
		return recommend.Fallback(candidates, s.maxResults), nil
	}

	// Low ratings are signals too: they tell the ranker what to avoid.
	if len(signals) == 0 || s.ranker == nil {
		return recommend.Fallback(candidates, s.maxResults), nil
	}

	if !s.rerankLimiter.Allow(userID) {
		return recommend.Fallback(candidates, s.maxResults), nil
	}

	ranked, err := s.ranker.Rank(ctx, signals, candidates)
	if err != nil {
		s.logger.Warn("Reranking failed, using fetch order",
			"user_id", userID,
			"error", err,
		)
		return recommend.Fallback(candidates, s.maxResults), nil
	}
	return recommend.Merge(ranked, candidates, s.maxResults), nil
}

// RecordFeedback records what the reader did with a recommendation.
//
// The write is queued fire-and-forget: the card is already gone from the
// reader's screen, and a lost write only means the story may be recommended
// again. Saved stories also go into the library, which excludes them from
// future candidate pools.
func (s *RecommendationService) RecordFeedback(userID, storyID string, action domain.FeedbackAction) error {
	switch action {
	case domain.FeedbackDismissed, domain.FeedbackSaved:
	default:
		return domainerrors.Validation("unknown feedback action")
	}

	fb := &domain.Feedback{
		UserID:    userID,
		StoryID:   storyID,
		Action:    action,
		CreatedAt: time.Now(),
	}
	select {
	case s.feedback <- fb:
	case <-s.quit:
	default:
		s.logger.Warn("Feedback queue full, dropping entry",
			"user_id", userID,
			"story_id", storyID,
		)
	}
	return nil
}

func (s *RecommendationService) feedbackWorker() {
	defer s.wg.Done()
	for {
		select {
		case fb := <-s.feedback:
			s.processFeedback(fb)
		case <-s.quit:
			// Drain whatever was queued before shutdown.
			for {
				select {
				case fb := <-s.feedback:
					s.processFeedback(fb)
				default:
					return
				}
			}
		}
	}
}

func (s *RecommendationService) processFeedback(fb *domain.Feedback) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.store.SaveFeedback(ctx, fb); err != nil {
		s.logger.Warn("Failed to save recommendation feedback",
			"user_id", fb.UserID,
			"story_id", fb.StoryID,
			"action", fb.Action,
			"error", err,
		)
	}

	if fb.Action == domain.FeedbackSaved {
		// Library entries gate paid reading, so only free stories go
		// straight in; paid ones enter through purchase.
		story, err := s.store.GetStory(ctx, fb.StoryID)
		if err != nil || !story.IsFree {
			return
		}
		if addErr := s.store.AddToLibrary(ctx, fb.UserID, fb.StoryID); addErr != nil {
			s.logger.Warn("Failed to add saved recommendation to library",
				"user_id", fb.UserID,
				"story_id", fb.StoryID,
				"error", addErr,
			)
		}
	}
}
