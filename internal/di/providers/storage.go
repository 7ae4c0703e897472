package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/wishcraft/wishcraft-server/internal/config"
	"github.com/wishcraft/wishcraft-server/internal/logger"
	"github.com/wishcraft/wishcraft-server/internal/media/images"
)

// ProvidePhotoStorage provides the content-addressed store of wish photos.
func ProvidePhotoStorage(i do.Injector) (*images.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	photos, err := images.NewStorage(cfg.Storage.BasePath, cfg.Storage.PhotosDir)
	if err != nil {
		return nil, fmt.Errorf("photo storage: %w", err)
	}

	log.Info("Photo storage initialized", "dir", photos.Dir())

	return photos, nil
}

// ProvideImageProcessor provides the converter that turns uploads into previews.
func ProvideImageProcessor(i do.Injector) (*images.Processor, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return images.NewProcessor(cfg.Wish.MaxPhotoBytes, log.Logger), nil
}
