package providers

import (
	"github.com/samber/do/v2"

	"github.com/writha/writha-server/internal/auth"
	"github.com/writha/writha-server/internal/config"
	"github.com/writha/writha-server/internal/logger"
	"github.com/writha/writha-server/internal/recommend"
	"github.com/writha/writha-server/internal/service"
	"github.com/writha/writha-server/internal/textgen"
)

// AuthServiceHandle wraps the auth service with shutdown capability for its
// credential rate limiter.
type AuthServiceHandle struct {
	*service.AuthService
}

// Shutdown implements do.Shutdownable.
func (h *AuthServiceHandle) Shutdown() error {
	h.AuthService.Stop()
	return nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*AuthServiceHandle, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return &AuthServiceHandle{
		AuthService: service.NewAuthService(storeHandle.Store, tokenService, log.Logger),
	}, nil
}

// ProvideStoryService provides the story catalog service.
func ProvideStoryService(i do.Injector) (*service.StoryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewStoryService(storeHandle.Store, log.Logger), nil
}

// ProvideReaderService provides the reader session service.
func ProvideReaderService(i do.Injector) (*service.ReaderService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	stateHandle := do.MustInvoke[*ReaderStateHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewReaderService(storeHandle.Store, stateHandle.ReaderStateStore, log.Logger), nil
}

// ProvideTextGenClient provides the LLM completion client.
// The client is always constructed; Configured reports whether an API key is set.
func ProvideTextGenClient(i do.Injector) (*textgen.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)

	return textgen.NewClient(cfg.TextGen.APIKey, cfg.TextGen.BaseURL, cfg.TextGen.Timeout), nil
}

// RecommendationServiceHandle wraps the recommendation service with shutdown
// capability for its feedback worker.
type RecommendationServiceHandle struct {
	*service.RecommendationService
}

// Shutdown implements do.Shutdownable.
func (h *RecommendationServiceHandle) Shutdown() error {
	h.RecommendationService.Stop()
	return nil
}

// ProvideRecommendationService provides the recommendation pipeline.
// Without an LLM API key the pipeline runs on the deterministic ranker only.
func ProvideRecommendationService(i do.Injector) (*RecommendationServiceHandle, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	client := do.MustInvoke[*textgen.Client](i)

	var ranker recommend.Ranker
	if client.Configured() {
		ranker = recommend.NewLLMRanker(client, cfg.TextGen.Model, cfg.Recommend.MaxResults)
		log.Info("LLM reranking enabled", "model", cfg.TextGen.Model)
	} else {
		log.Info("LLM reranking disabled, using deterministic ranking")
	}

	svc := service.NewRecommendationService(
		storeHandle.Store,
		ranker,
		cfg.Recommend.MaxResults,
		cfg.Recommend.CandidatePoolSize,
		log.Logger,
	)

	return &RecommendationServiceHandle{RecommendationService: svc}, nil
}

// ProvideNotificationService provides the notification feed service.
func ProvideNotificationService(i do.Injector) (*service.NotificationService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewNotificationService(storeHandle.Store, log.Logger), nil
}

// ProvideLibraryService provides the personal library service.
func ProvideLibraryService(i do.Injector) (*service.LibraryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLibraryService(storeHandle.Store, log.Logger), nil
}

// ProvideRatingService provides the story rating service.
func ProvideRatingService(i do.Injector) (*service.RatingService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewRatingService(storeHandle.Store, log.Logger), nil
}

// ProvideCommentService provides the story comment service.
func ProvideCommentService(i do.Injector) (*service.CommentService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	notifications := do.MustInvoke[*service.NotificationService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCommentService(storeHandle.Store, notifications, log.Logger), nil
}

// ProvideWalletService provides the wallet and purchase service.
func ProvideWalletService(i do.Injector) (*service.WalletService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	notifications := do.MustInvoke[*service.NotificationService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewWalletService(storeHandle.Store, notifications, log.Logger), nil
}
