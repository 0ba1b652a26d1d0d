package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/writha/writha-server/internal/config"
	"github.com/writha/writha-server/internal/logger"
	"github.com/writha/writha-server/internal/sse"
	"github.com/writha/writha-server/internal/store/kv"
	"github.com/writha/writha-server/internal/store/sqlite"
)

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.Logger)

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// StoreHandle wraps the SQLite store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the SQLite catalog store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	db, err := sqlite.Open(cfg.Data.DatabasePath, log.Logger)
	if err != nil {
		return nil, err
	}

	// Notification writes fan out to connected SSE clients.
	db.SetEventEmitter(sseHandle.Manager)

	log.Info("Database initialized", "path", cfg.Data.DatabasePath)

	return &StoreHandle{Store: db}, nil
}

// ReaderStateHandle wraps the Badger reader-state store with shutdown capability.
type ReaderStateHandle struct {
	*kv.ReaderStateStore
}

// Shutdown implements do.Shutdownable.
func (h *ReaderStateHandle) Shutdown() error {
	return h.Close()
}

// ProvideReaderState provides the Badger store holding reading positions and preferences.
func ProvideReaderState(i do.Injector) (*ReaderStateHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	state, err := kv.Open(cfg.Data.ReaderStatePath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Reader state store initialized", "path", cfg.Data.ReaderStatePath)

	return &ReaderStateHandle{ReaderStateStore: state}, nil
}
