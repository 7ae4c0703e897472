package providers

import (
	"time"

	"github.com/samber/do/v2"

	"github.com/wishcraft/wishcraft-server/internal/config"
	"github.com/wishcraft/wishcraft-server/internal/greeting"
	"github.com/wishcraft/wishcraft-server/internal/logger"
	"github.com/wishcraft/wishcraft-server/internal/ratelimit"
)

// GreetingGeneratorHandle wraps the configured greeting generator together
// with the throttle on outbound model calls.
type GreetingGeneratorHandle struct {
	greeting.Generator
	limiter *ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *GreetingGeneratorHandle) Shutdown() error {
	if h.limiter != nil {
		h.limiter.Stop()
	}
	return nil
}

// ProvideGreetingGenerator provides the greeting generator selected by configuration.
func ProvideGreetingGenerator(i do.Injector) (*GreetingGeneratorHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Greeting.Backend != config.BackendAnthropic {
		log.Info("Using built-in greeting templates")
		return &GreetingGeneratorHandle{
			Generator: greeting.WithTimeout(greeting.NewStatic(), cfg.Greeting.Timeout),
		}, nil
	}

	limiter := ratelimit.New(cfg.Greeting.RequestsPerSecond, 1, ratelimit.WithIdleTTL(time.Hour))
	generator := greeting.NewAnthropic(greeting.AnthropicConfig{
		APIKey: cfg.Greeting.AnthropicAPIKey,
		Model:  cfg.Greeting.AnthropicModel,
	}, limiter, log.Logger)

	log.Info("Using Anthropic greeting generator",
		"model", cfg.Greeting.AnthropicModel,
		"timeout", cfg.Greeting.Timeout,
		"requests_per_second", cfg.Greeting.RequestsPerSecond,
	)

	return &GreetingGeneratorHandle{
		Generator: greeting.WithTimeout(generator, cfg.Greeting.Timeout),
		limiter:   limiter,
	}, nil
}
