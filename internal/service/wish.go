package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wishcraft/wishcraft-server/internal/domain"
	domainerrors "github.com/wishcraft/wishcraft-server/internal/errors"
	"github.com/wishcraft/wishcraft-server/internal/store"
	"github.com/wishcraft/wishcraft-server/internal/util"
)

// PhotoURLPrefix is the public path durable photos are served under.
const PhotoURLPrefix = "/photos/"

// maxSlugAttempts bounds how often Persist regenerates a colliding slug.
const maxSlugAttempts = 5

// PhotoStore keeps photo bytes and returns their durable name.
// *images.Storage implements it.
type PhotoStore interface {
	Put(data []byte, contentType string) (string, error)
}

// WishServiceConfig holds the timeouts of the wish service.
type WishServiceConfig struct {
	FetchTimeout   time.Duration
	PersistTimeout time.Duration
}

// WishService stores completed drafts and looks wishes up by slug.
type WishService struct {
	store  store.WishStore
	photos PhotoStore
	logger *slog.Logger

	fetchTimeout   time.Duration
	persistTimeout time.Duration

	newSlug func(occasion, name string) string
	newID   func() string
}

// NewWishService creates a new wish service.
func NewWishService(wishes store.WishStore, photos PhotoStore, cfg WishServiceConfig, logger *slog.Logger) *WishService {
	if logger == nil {
		logger = slog.Default()
	}
	return &WishService{
		store:          wishes,
		photos:         photos,
		logger:         logger,
		fetchTimeout:   cfg.FetchTimeout,
		persistTimeout: cfg.PersistTimeout,
		newSlug:        util.GenerateSlug,
		newID:          uuid.NewString,
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// Persist stores the photos of a completed draft, then inserts the wish under
// a fresh slug. A slug collision regenerates the slug, up to maxSlugAttempts
// times, after which it fails with CONFLICT.
func (s *WishService) Persist(ctx context.Context, draft domain.CompletedDraft) (string, error) {
	name := strings.TrimSpace(draft.RecipientName)
	if name == "" {
		return "", domainerrors.ValidationWithDetails("recipient name is required",
			map[string]string{"recipient_name": "is required"})
	}
	if draft.Detail == nil {
		return "", domainerrors.Validation("occasion is required")
	}

	ctx, cancel := withTimeout(ctx, s.persistTimeout)
	defer cancel()

	urls, placeholders, err := s.storePhotos(ctx, draft.Photos)
	if err != nil {
		return "", err
	}

	c := draft.Customization
	wish := &domain.Wish{
		Occasion:          draft.Detail.Occasion(),
		RecipientName:     name,
		PhotoURLs:         urls,
		PhotoPlaceholders: placeholders,
		GreetingText:      draft.GreetingText,
		PersonalNote:      draft.PersonalNote,
		TemplateID:        draft.TemplateID,
		FestivalType:      domain.FestivalOf(draft.Detail),
		WeddingType:       domain.WeddingOf(draft.Detail),
		FontFamily:        c.FontFamily,
		PhotoLayout:       c.PhotoLayout,
	}
	if c.BackgroundColor != "" || c.TextColor != "" || c.AccentColor != "" {
		wish.CustomColors = &domain.CustomColors{
			Background: c.BackgroundColor,
			Text:       c.TextColor,
			Accent:     c.AccentColor,
		}
	}

	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		wish.ID = s.newID()
		wish.GeneratedSlug = s.newSlug(string(wish.Occasion), name)
		wish.CreatedAt = time.Now().UTC()

		err := s.store.CreateWish(ctx, wish)
		if err == nil {
			s.logger.Info("Wish created",
				"slug", wish.GeneratedSlug,
				"occasion", wish.Occasion,
				"photos", len(urls),
				"attempt", attempt)
			return wish.GeneratedSlug, nil
		}
		if !errors.Is(err, store.ErrAlreadyExists) {
			return "", domainerrors.FromCall(err, "failed to save wish")
		}
		s.logger.Warn("slug collision, regenerating",
			"slug", wish.GeneratedSlug,
			"attempt", attempt)
	}

	return "", domainerrors.Conflictf("could not allocate a unique slug after %d attempts", maxSlugAttempts)
}

func (s *WishService) storePhotos(ctx context.Context, photos []domain.PhotoUpload) ([]string, []string, error) {
	urls := make([]string, 0, len(photos))
	placeholders := make([]string, 0, len(photos))
	for i, p := range photos {
		if err := ctx.Err(); err != nil {
			return nil, nil, domainerrors.FromCall(err, "failed to save wish")
		}
		if s.photos == nil {
			return nil, nil, domainerrors.Internal("no photo storage configured")
		}
		name, err := s.photos.Put(p.Data, p.ContentType)
		if err != nil {
			s.logger.Error("failed to store photo", "index", i, "error", err)
			return nil, nil, domainerrors.TransportFailure(err, "failed to store photo")
		}
		urls = append(urls, PhotoURLPrefix+name)
		placeholders = append(placeholders, p.Placeholder)
	}
	return urls, placeholders, nil
}

// GetWishBySlug fetches the wish with exactly this slug.
// A missing wish is NOT_FOUND; a failed or slow fetch is TRANSPORT_FAILURE or TIMEOUT.
func (s *WishService) GetWishBySlug(ctx context.Context, slug string) (*domain.Wish, error) {
	if !util.IsSlug(slug) {
		return nil, domainerrors.NotFoundf("wish %q not found", slug)
	}

	ctx, cancel := withTimeout(ctx, s.fetchTimeout)
	defer cancel()

	wish, err := s.store.GetWishBySlug(ctx, slug)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFoundf("wish %q not found", slug).WithCause(err)
	}
	if err != nil {
		return nil, domainerrors.FromCall(err, "failed to load wish")
	}
	return wish, nil
}

// ListRecentWishes returns the newest wishes.
func (s *WishService) ListRecentWishes(ctx context.Context, limit int) ([]*domain.Wish, error) {
	ctx, cancel := withTimeout(ctx, s.fetchTimeout)
	defer cancel()

	wishes, err := s.store.ListRecentWishes(ctx, limit)
	if err != nil {
		return nil, domainerrors.FromCall(err, "failed to list wishes")
	}
	return wishes, nil
}
