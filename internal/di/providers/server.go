package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/wishcraft/wishcraft-server/internal/api"
	"github.com/wishcraft/wishcraft-server/internal/config"
	"github.com/wishcraft/wishcraft-server/internal/logger"
	"github.com/wishcraft/wishcraft-server/internal/media/images"
	"github.com/wishcraft/wishcraft-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	handler *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.handler.Close()
	return err
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	drafts := do.MustInvoke[*DraftsHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	photos := do.MustInvoke[*images.Storage](i)
	wishes := do.MustInvoke[*service.WishService](i)
	sessions := do.MustInvoke[*WizardSessionsHandle](i)

	services := &api.Services{
		Wishes:   wishes,
		Sessions: sessions.WizardSessions,
	}

	storage := &api.StorageServices{
		Photos:   photos,
		Database: storeHandle.Store,
		Drafts:   drafts.Drafts,
	}

	handler := api.NewServer(services, storage, sseHandle.Manager, api.Config{
		PublicURL:         cfg.App.PublicURL,
		MaxPhotoBytes:     int64(cfg.Wish.MaxPhotoBytes),
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		Burst:             cfg.RateLimit.Burst,
	}, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr, "public_url", cfg.App.PublicURL)

	return &HTTPServerHandle{Server: srv, handler: handler}, nil
}
