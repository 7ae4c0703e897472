package providers

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/do/v2"

	"github.com/wishcraft/wishcraft-server/internal/config"
	"github.com/wishcraft/wishcraft-server/internal/logger"
	"github.com/wishcraft/wishcraft-server/internal/sse"
	"github.com/wishcraft/wishcraft-server/internal/store"
	"github.com/wishcraft/wishcraft-server/internal/store/sqlite"
)

// shutdownTimeout bounds how long each handle waits while shutting down.
const shutdownTimeout = 30 * time.Second

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

// StoreHandle wraps the wish database with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the wish database and applies pending migrations.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	db, err := sqlite.Open(cfg.Storage.DatabasePath, log.Logger)
	if err != nil {
		return nil, err
	}

	n, err := db.CountWishes(context.Background())
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info("Database initialized", "path", cfg.Storage.DatabasePath, "wishes", n)

	return &StoreHandle{Store: db}, nil
}

// DraftsHandle wraps the wizard draft store with shutdown capability.
type DraftsHandle struct {
	*store.Drafts
}

// Shutdown implements do.Shutdownable.
func (h *DraftsHandle) Shutdown() error {
	return h.Close()
}

// ProvideDrafts opens the draft store that lets wizard sessions survive restarts.
func ProvideDrafts(i do.Injector) (*DraftsHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	drafts, err := store.OpenDrafts(cfg.Storage.DraftsPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Draft store initialized", "path", cfg.Storage.DraftsPath)

	return &DraftsHandle{Drafts: drafts}, nil
}

// ProvideSlogLogger provides access to the underlying slog.Logger for packages that need it.
func ProvideSlogLogger(i do.Injector) (*slog.Logger, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return log.Logger, nil
}
