package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/wishcraft/wishcraft-server/internal/config"
	"github.com/wishcraft/wishcraft-server/internal/logger"
	"github.com/wishcraft/wishcraft-server/internal/media/images"
	"github.com/wishcraft/wishcraft-server/internal/service"
	"github.com/wishcraft/wishcraft-server/internal/wizard"
)

// ProvideWishService provides the service that stores and looks up wishes.
func ProvideWishService(i do.Injector) (*service.WishService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	photos := do.MustInvoke[*images.Storage](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewWishService(storeHandle.Store, photos, service.WishServiceConfig{
		FetchTimeout:   cfg.Wish.FetchTimeout,
		PersistTimeout: cfg.Wish.PersistTimeout,
	}, log.Logger), nil
}

// WizardSessionsHandle wraps the wizard session registry and its janitor loop.
type WizardSessionsHandle struct {
	*service.WizardSessions
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable. Live drafts are snapshotted so they
// can be resumed after a restart.
func (h *WizardSessionsHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.WizardSessions.Shutdown(ctx)
}

// ProvideWizardSessions provides the registry of in-progress wizards.
func ProvideWizardSessions(i do.Injector) (*WizardSessionsHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	drafts := do.MustInvoke[*DraftsHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	generator := do.MustInvoke[*GreetingGeneratorHandle](i)
	converter := do.MustInvoke[*images.Processor](i)
	wishes := do.MustInvoke[*service.WishService](i)

	sessions := service.NewWizardSessions(drafts.Drafts, wizard.Deps{
		Generator: generator.Generator,
		Persister: wizard.PersisterFunc(wishes.Persist),
		Converter: converter,
		Logger:    log.Logger,
	}, sseHandle.Manager, service.WizardSessionsConfig{
		TTL:       cfg.Wizard.SessionTTL,
		PublicURL: cfg.App.PublicURL,
	}, log.Logger)

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	go sessions.Run(ctx)

	log.Info("Wizard sessions started", "session_ttl", cfg.Wizard.SessionTTL)

	return &WizardSessionsHandle{
		WizardSessions: sessions,
		cancel:         cancel,
	}, nil
}
