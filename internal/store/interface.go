package store

import (
	"context"
	"time"

	"github.com/wishcraft/wishcraft-server/internal/domain"
)

// WishStore persists created wishes.
type WishStore interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error

	// Wishes
	CreateWish(ctx context.Context, wish *domain.Wish) error
	GetWish(ctx context.Context, id string) (*domain.Wish, error)
	GetWishBySlug(ctx context.Context, slug string) (*domain.Wish, error)
	ListRecentWishes(ctx context.Context, limit int) ([]*domain.Wish, error)
	CountWishes(ctx context.Context) (int, error)
}

// DraftStore keeps wizard snapshots for a limited time.
type DraftStore interface {
	Close() error
	SaveDraft(ctx context.Context, id string, data []byte, ttl time.Duration) error
	LoadDraft(ctx context.Context, id string) ([]byte, error)
	DeleteDraft(ctx context.Context, id string) error
}
