// Package main provides a tool to seed the database with demo wishes.
//
// It creates one wish per occasion (and per festival and wedding sub-type)
// using the built-in greetings, then prints their links.
//
// Usage:
//
//	go run ./cmd/seed --data ~/wishcraft --public-url http://localhost:8080
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/wishcraft/wishcraft-server/internal/catalog"
	"github.com/wishcraft/wishcraft-server/internal/config"
	"github.com/wishcraft/wishcraft-server/internal/domain"
	"github.com/wishcraft/wishcraft-server/internal/greeting"
	"github.com/wishcraft/wishcraft-server/internal/logger"
	"github.com/wishcraft/wishcraft-server/internal/media/images"
	"github.com/wishcraft/wishcraft-server/internal/service"
	"github.com/wishcraft/wishcraft-server/internal/share"
	"github.com/wishcraft/wishcraft-server/internal/store/sqlite"
)

type demo struct {
	recipient string
	note      string
	detail    domain.OccasionDetail
	preset    string
}

var demos = []demo{
	{"Amir", "Can't wait to celebrate with you!", domain.Birthday{}, "Purple Dream"},
	{"Lena & Tom", "Ten years and counting.", domain.Anniversary{}, "Rose Gold"},
	{"Priya", "", domain.Wedding{Type: domain.WeddingEngagement}, "Sunset"},
	{"Sam", "Save a seat for us.", domain.Wedding{Type: domain.WeddingSaveTheDate}, "Ocean Blue"},
	{"Ravi", "Light up the night!", domain.Festival{Type: domain.FestivalDiwali}, "Sunset"},
	{"Maya", "", domain.Festival{Type: domain.FestivalHoli}, "Forest"},
	{"Noah", "Merry everything.", domain.Festival{Type: domain.FestivalChristmas}, "Midnight"},
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	lg := logger.New(logger.Config{Level: logger.ParseLevel(cfg.Logger.Level), Environment: cfg.App.Environment})

	fmt.Printf("Opening database at: %s\n", cfg.Storage.DatabasePath)

	db, err := sqlite.Open(cfg.Storage.DatabasePath, lg.Logger)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	photos, err := images.NewStorage(cfg.Storage.BasePath, cfg.Storage.PhotosDir)
	if err != nil {
		log.Fatalf("Failed to open photo storage: %v", err)
	}

	wishes := service.NewWishService(db, photos, service.WishServiceConfig{
		FetchTimeout:   cfg.Wish.FetchTimeout,
		PersistTimeout: cfg.Wish.PersistTimeout,
	}, lg.Logger)
	generator := greeting.NewStatic()

	ctx := context.Background()
	created := 0
	for _, d := range demos {
		slug, err := seed(ctx, wishes, generator, d)
		if err != nil {
			log.Printf("Failed to seed wish for %s: %v", d.recipient, err)
			continue
		}
		created++
		fmt.Printf("  %-12s %-12s %s\n", d.detail.Occasion(), d.recipient, share.WishURL(cfg.App.PublicURL, slug))
	}

	recent, err := wishes.ListRecentWishes(ctx, 100)
	if err != nil {
		log.Fatalf("Failed to list wishes: %v", err)
	}
	fmt.Printf("\nCreated %d wishes, %d in the database\n", created, len(recent))
	if created == 0 {
		os.Exit(1)
	}
}

func seed(ctx context.Context, wishes *service.WishService, generator greeting.Generator, d demo) (string, error) {
	occasion := d.detail.Occasion()
	vars, err := generator.Generate(ctx, domain.GreetingRequest{
		RecipientName: d.recipient,
		Occasion:      occasion,
		PersonalNote:  d.note,
		FestivalType:  domain.FestivalOf(d.detail),
		WeddingType:   domain.WeddingOf(d.detail),
	})
	if err != nil {
		return "", err
	}

	templateID := ""
	if templates := catalog.TemplatesFor(occasion, domain.FestivalOf(d.detail)); len(templates) > 0 {
		templateID = templates[0].ID
	}

	c := domain.DefaultCustomization(vars[0].Text)
	if preset, ok := catalog.ColorPresetByName(d.preset); ok {
		preset.Apply(&c)
	}

	return wishes.Persist(ctx, domain.CompletedDraft{
		Detail:        d.detail,
		RecipientName: d.recipient,
		PersonalNote:  d.note,
		TemplateID:    templateID,
		GreetingText:  c.CustomGreeting,
		Customization: c,
	})
}
