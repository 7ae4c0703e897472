// Package greeting produces the three candidate greeting texts offered in the
// wizard. Backends are interchangeable behind Generator.
package greeting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wishcraft/wishcraft-server/internal/domain"
	domainerrors "github.com/wishcraft/wishcraft-server/internal/errors"
)

// Generator writes exactly one variation per style, ordered formal, casual, poetic.
type Generator interface {
	Generate(ctx context.Context, req domain.GreetingRequest) ([]domain.GreetingVariation, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req domain.GreetingRequest) ([]domain.GreetingVariation, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, req domain.GreetingRequest) ([]domain.GreetingVariation, error) {
	return f(ctx, req)
}

// StyleInfo describes a style for the selection screen.
type StyleInfo struct {
	Style       domain.GreetingStyle `json:"style"`
	Icon        string               `json:"icon"`
	Description string               `json:"description"`
}

// Describe returns the icon and blurb shown next to a variation.
func Describe(style domain.GreetingStyle) StyleInfo {
	switch style {
	case domain.StyleFormal:
		return StyleInfo{Style: style, Icon: "🎩", Description: "Professional and respectful"}
	case domain.StyleCasual:
		return StyleInfo{Style: style, Icon: "😊", Description: "Friendly and relaxed"}
	case domain.StylePoetic:
		return StyleInfo{Style: style, Icon: "✨", Description: "Creative and artistic"}
	default:
		return StyleInfo{Style: style, Icon: "💝", Description: "Personalized message"}
	}
}

// Validate checks that vars holds one non-blank variation per style in order.
// Backends that talk to a model use it to reject partial answers.
func Validate(vars []domain.GreetingVariation) error {
	styles := domain.GreetingStyles()
	if len(vars) != len(styles) {
		return fmt.Errorf("expected %d variations, got %d", len(styles), len(vars))
	}
	for i, v := range vars {
		if v.Style != styles[i] {
			return fmt.Errorf("variation %d has style %q, want %q", i, v.Style, styles[i])
		}
		if strings.TrimSpace(v.Text) == "" {
			return fmt.Errorf("variation %q is empty", v.Style)
		}
	}
	return nil
}

type timeoutGenerator struct {
	next    Generator
	timeout time.Duration
}

// WithTimeout bounds every call to next by d. Failures are classified as
// TIMEOUT or TRANSPORT_FAILURE domain errors.
func WithTimeout(next Generator, d time.Duration) Generator {
	return &timeoutGenerator{next: next, timeout: d}
}

func (g *timeoutGenerator) Generate(ctx context.Context, req domain.GreetingRequest) ([]domain.GreetingVariation, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	vars, err := g.next.Generate(ctx, req)
	if err != nil {
		return nil, domainerrors.FromCall(err, "generate greetings")
	}
	if err := Validate(vars); err != nil {
		return nil, domainerrors.TransportFailure(err, "greeting backend returned an incomplete answer")
	}
	return vars, nil
}
