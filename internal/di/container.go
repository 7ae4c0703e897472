// Package di provides dependency injection configuration for the Wishcraft server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/wishcraft/wishcraft-server/internal/config"
	"github.com/wishcraft/wishcraft-server/internal/di/providers"
	"github.com/wishcraft/wishcraft-server/internal/logger"
	"github.com/wishcraft/wishcraft-server/internal/media/images"
	"github.com/wishcraft/wishcraft-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)
	do.Provide(injector, providers.ProvideSSEManager)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideDrafts)
	do.Provide(injector, providers.ProvidePhotoStorage)
	do.Provide(injector, providers.ProvideImageProcessor)

	// Greeting generation
	do.Provide(injector, providers.ProvideGreetingGenerator)

	// Business services
	do.Provide(injector, providers.ProvideWishService)
	do.Provide(injector, providers.ProvideWizardSessions)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)

	// Storage
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.DraftsHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*images.Storage](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*images.Processor](injector)
	_ = do.MustInvoke[*providers.GreetingGeneratorHandle](injector)

	// Business services
	_ = do.MustInvoke[*service.WishService](injector)
	_ = do.MustInvoke[*providers.WizardSessionsHandle](injector)

	// Server
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}

	return nil
}
