package api

import (
	"github.com/writha/writha-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth         *service.AuthService
	Story        *service.StoryService
	Reader       *service.ReaderService
	Recommend    *service.RecommendationService
	Notification *service.NotificationService
	Library      *service.LibraryService
	Rating       *service.RatingService
	Comment      *service.CommentService
	Wallet       *service.WalletService
	Search       *service.SearchService
}
