package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/writha/writha-server/internal/api"
	"github.com/writha/writha-server/internal/auth"
	"github.com/writha/writha-server/internal/config"
	"github.com/writha/writha-server/internal/logger"
	"github.com/writha/writha-server/internal/service"
	"github.com/writha/writha-server/internal/sse"
)

// HTTPServerHandle wraps the HTTP server with shutdown capability.
type HTTPServerHandle struct {
	*http.Server
	apiServer *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := h.Server.Shutdown(ctx)
	h.apiServer.Stop()
	return err
}

// ProvideHTTPServer provides the HTTP API server and starts it listening.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)

	services := &api.Services{
		Auth:         do.MustInvoke[*AuthServiceHandle](i).AuthService,
		Story:        do.MustInvoke[*service.StoryService](i),
		Reader:       do.MustInvoke[*service.ReaderService](i),
		Recommend:    do.MustInvoke[*RecommendationServiceHandle](i).RecommendationService,
		Notification: do.MustInvoke[*service.NotificationService](i),
		Library:      do.MustInvoke[*service.LibraryService](i),
		Rating:       do.MustInvoke[*service.RatingService](i),
		Comment:      do.MustInvoke[*service.CommentService](i),
		Wallet:       do.MustInvoke[*service.WalletService](i),
		Search:       do.MustInvoke[*service.SearchService](i),
	}

	sseHandler := sse.NewHandler(sseHandle.Manager, log.Logger)

	apiServer := api.NewServer(
		storeHandle.Store,
		services,
		tokenService,
		sseHandler,
		sseHandle.Manager,
		cfg.Server.CORSOrigins,
		log.Logger,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      apiServer,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv, apiServer: apiServer}, nil
}
