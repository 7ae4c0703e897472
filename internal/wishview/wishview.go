// Package wishview loads a persisted wish by slug and classifies the outcome
// for the shareable wish page.
package wishview

import (
	"context"
	"log/slog"

	"github.com/wishcraft/wishcraft-server/internal/catalog"
	"github.com/wishcraft/wishcraft-server/internal/domain"
	domainerrors "github.com/wishcraft/wishcraft-server/internal/errors"
)

// Status is the outcome of loading a wish.
type Status string

// Load outcomes.
const (
	StatusLoaded          Status = "loaded"
	StatusNotFound        Status = "not_found"
	StatusFailed          Status = "failed"
	StatusUnknownOccasion Status = "unknown_occasion"
)

// Messages shown for the error outcomes.
const (
	MessageNotFound        = "Wish not found"
	MessageFailed          = "Failed to load wish"
	MessageUnknownOccasion = "This wish has an unknown occasion type."
)

// Fetcher looks up a wish by its exact slug.
type Fetcher interface {
	GetWishBySlug(ctx context.Context, slug string) (*domain.Wish, error)
}

// Photo is one photo on the wish page.
type Photo struct {
	URL         string `json:"url"`
	Placeholder string `json:"placeholder,omitempty"`
}

// View is everything the wish page renders.
type View struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Slug    string `json:"slug"`
	BackURL string `json:"back_url,omitempty"`

	Wish        *domain.Wish            `json:"wish,omitempty"`
	Occasion    *domain.OccasionInfo    `json:"occasion,omitempty"`
	Festival    *domain.FestivalInfo    `json:"festival,omitempty"`
	WeddingType *domain.WeddingTypeInfo `json:"wedding_type,omitempty"`
	Template    *domain.Template        `json:"template,omitempty"`
	Colors      domain.CustomColors     `json:"colors"`
	FontFamily  string                  `json:"font_family,omitempty"`
	Layout      domain.PhotoLayout      `json:"layout,omitempty"`
	Photos      []Photo                 `json:"photos"`
	Carousel    *Carousel               `json:"carousel,omitempty"`
}

// Loaded reports whether the view holds a wish.
func (v View) Loaded() bool {
	return v.Status == StatusLoaded
}

// Loader performs the single fetch behind a wish page.
type Loader struct {
	fetcher Fetcher
	logger  *slog.Logger
}

// NewLoader creates a Loader.
func NewLoader(fetcher Fetcher, logger *slog.Logger) *Loader {
	return &Loader{fetcher: fetcher, logger: logger}
}

// Load fetches the wish once and never retries. backURL, when not empty, is
// offered on the error outcomes.
func (l *Loader) Load(ctx context.Context, slug, backURL string) View {
	wish, err := l.fetcher.GetWishBySlug(ctx, slug)
	switch {
	case err == nil && wish == nil, domainerrors.Is(err, domainerrors.ErrNotFound):
		return failure(slug, backURL, StatusNotFound, MessageNotFound)
	case domainerrors.Is(err, domainerrors.ErrDataIntegrity):
		l.logger.Warn("wish failed integrity check", "slug", slug, "error", err)
		return failure(slug, backURL, StatusUnknownOccasion, MessageUnknownOccasion)
	case err != nil:
		l.logger.Error("failed to load wish", "slug", slug, "error", err)
		return failure(slug, backURL, StatusFailed, MessageFailed)
	}

	v := Build(wish)
	if !v.Loaded() {
		l.logger.Warn("wish has unknown occasion", "slug", slug, "occasion", wish.Occasion)
		v.BackURL = backURL
	}
	return v
}

// Build renders a loaded wish. A wish whose occasion is not in the catalog,
// or whose sub-type contradicts it, yields StatusUnknownOccasion.
func Build(wish *domain.Wish) View {
	info, ok := catalog.OccasionByID(wish.Occasion)
	detail, err := wish.Detail()
	if !ok || err != nil {
		return failure(wish.GeneratedSlug, "", StatusUnknownOccasion, MessageUnknownOccasion)
	}

	v := View{
		Status:     StatusLoaded,
		Slug:       wish.GeneratedSlug,
		Wish:       wish,
		Occasion:   &info,
		FontFamily: wish.FontFamily,
		Layout:     wish.PhotoLayout,
		Photos:     make([]Photo, len(wish.PhotoURLs)),
	}
	if f, ok := catalog.FestivalByID(domain.FestivalOf(detail)); ok {
		v.Festival = &f
	}
	if t, ok := catalog.WeddingTypeByID(domain.WeddingOf(detail)); ok {
		v.WeddingType = &t
	}
	if t, ok := catalog.TemplateByID(wish.TemplateID); ok {
		v.Template = &t
	}

	defaults := domain.DefaultCustomization("")
	v.Colors = domain.CustomColors{
		Background: defaults.BackgroundColor,
		Text:       defaults.TextColor,
		Accent:     defaults.AccentColor,
	}
	if wish.CustomColors != nil {
		v.Colors = *wish.CustomColors
	}
	if v.FontFamily == "" {
		v.FontFamily = defaults.FontFamily
	}
	if v.Layout == "" {
		v.Layout = defaults.PhotoLayout
	}

	for i, url := range wish.PhotoURLs {
		v.Photos[i] = Photo{URL: url}
		if i < len(wish.PhotoPlaceholders) {
			v.Photos[i].Placeholder = wish.PhotoPlaceholders[i]
		}
	}
	v.Carousel = NewCarousel(len(v.Photos))
	return v
}

func failure(slug, backURL string, status Status, msg string) View {
	return View{Status: status, Message: msg, Slug: slug, BackURL: backURL, Photos: []Photo{}}
}
