// Package di provides dependency injection configuration for the Writha server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/writha/writha-server/internal/auth"
	"github.com/writha/writha-server/internal/config"
	"github.com/writha/writha-server/internal/di/providers"
	"github.com/writha/writha-server/internal/logger"
	"github.com/writha/writha-server/internal/service"
	"github.com/writha/writha-server/internal/textgen"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Storage layer
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideReaderState)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideStoryService)
	do.Provide(injector, providers.ProvideReaderService)
	do.Provide(injector, providers.ProvideTextGenClient)
	do.Provide(injector, providers.ProvideRecommendationService)
	do.Provide(injector, providers.ProvideNotificationService)
	do.Provide(injector, providers.ProvideLibraryService)
	do.Provide(injector, providers.ProvideRatingService)
	do.Provide(injector, providers.ProvideCommentService)
	do.Provide(injector, providers.ProvideWalletService)

	// Workers
	do.Provide(injector, providers.ProvideSessionCleanupJob)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.ReaderStateHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*service.SearchService](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)

	// Business services
	_ = do.MustInvoke[*providers.AuthServiceHandle](injector)
	_ = do.MustInvoke[*service.StoryService](injector)
	_ = do.MustInvoke[*service.ReaderService](injector)
	_ = do.MustInvoke[*textgen.Client](injector)
	_ = do.MustInvoke[*providers.RecommendationServiceHandle](injector)
	_ = do.MustInvoke[*service.NotificationService](injector)
	_ = do.MustInvoke[*service.LibraryService](injector)
	_ = do.MustInvoke[*service.RatingService](injector)
	_ = do.MustInvoke[*service.CommentService](injector)
	_ = do.MustInvoke[*service.WalletService](injector)

	// Workers
	_ = do.MustInvoke[*providers.SessionCleanupJob](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Rebuild the search index when it is missing catalog entries
	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}
