package api

import (
	"context"

	"github.com/wishcraft/wishcraft-server/internal/media/images"
	"github.com/wishcraft/wishcraft-server/internal/service"
)

// Services groups the business services used by the API server.
type Services struct {
	Wishes   *service.WishService
	Sessions *service.WizardSessions
}

// Pinger reports whether a backing store answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DraftCounter reports how many wizard drafts are stored.
type DraftCounter interface {
	CountDrafts(ctx context.Context) (int, error)
}

// StorageServices groups the storage the API server reads directly.
type StorageServices struct {
	Photos   *images.Storage // Durable wish photos
	Database Pinger          // Wish database, for health checks
	Drafts   DraftCounter    // Draft store, for health checks
}
