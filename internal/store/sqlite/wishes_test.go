package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wishcraft/wishcraft-server/internal/domain"
	"github.com/wishcraft/wishcraft-server/internal/store"
)

func makeTestWish(id, slug string) *domain.Wish {
	return &domain.Wish{
		ID:                id,
		Occasion:          domain.OccasionBirthday,
		RecipientName:     "Alice",
		PhotoURLs:         []string{"/photos/a.jpg", "/photos/b.jpg"},
		PhotoPlaceholders: []string{"LEHV6nWB2yk8", "L6PZfSi_.AyE"},
		GeneratedSlug:     slug,
		CreatedAt:         time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		GreetingText:      "Happy birthday, Alice!",
		PersonalNote:      "See you soon",
		TemplateID:        "birthday-confetti",
	}
}

func TestCreateAndGetWish(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	w := makeTestWish("w1", "alice-x7k2p9")
	require.NoError(t, s.CreateWish(ctx, w))

	got, err := s.GetWishBySlug(ctx, "alice-x7k2p9")
	require.NoError(t, err)

	assert.Equal(t, "w1", got.ID)
	assert.Equal(t, domain.OccasionBirthday, got.Occasion)
	assert.Equal(t, "Alice", got.RecipientName)
	assert.Equal(t, []string{"/photos/a.jpg", "/photos/b.jpg"}, got.PhotoURLs)
	assert.Equal(t, []string{"LEHV6nWB2yk8", "L6PZfSi_.AyE"}, got.PhotoPlaceholders)
	assert.True(t, w.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, "Happy birthday, Alice!", got.GreetingText)
	assert.Equal(t, "See you soon", got.PersonalNote)
	assert.Equal(t, "birthday-confetti", got.TemplateID)
	assert.Empty(t, got.FestivalType)
	assert.Empty(t, got.WeddingType)
	assert.Nil(t, got.CustomColors)
	assert.Empty(t, got.FontFamily)

	byID, err := s.GetWish(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, got, byID)
}

func TestCreateWish_Customization(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	w := makeTestWish("w1", "raj-abc123")
	w.Occasion = domain.OccasionFestival
	w.FestivalType = domain.FestivalDiwali
	w.CustomColors = &domain.CustomColors{Background: "#FEF3C7", Text: "#78350F", Accent: "#F59E0B"}
	w.FontFamily = "Georgia, serif"
	w.PhotoLayout = domain.LayoutSlider
	require.NoError(t, s.CreateWish(ctx, w))

	got, err := s.GetWishBySlug(ctx, "raj-abc123")
	require.NoError(t, err)
	assert.Equal(t, domain.FestivalDiwali, got.FestivalType)
	require.NotNil(t, got.CustomColors)
	assert.Equal(t, *w.CustomColors, *got.CustomColors)
	assert.Equal(t, "Georgia, serif", got.FontFamily)
	assert.Equal(t, domain.LayoutSlider, got.PhotoLayout)
}

func TestCreateWish_NoPhotos(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	w := makeTestWish("w1", "bob-000001")
	w.PhotoURLs = nil
	w.PhotoPlaceholders = nil
	require.NoError(t, s.CreateWish(ctx, w))

	got, err := s.GetWishBySlug(ctx, "bob-000001")
	require.NoError(t, err)
	assert.NotNil(t, got.PhotoURLs)
	assert.Empty(t, got.PhotoURLs)
}

func TestCreateWish_DuplicateSlug(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateWish(ctx, makeTestWish("w1", "alice-x7k2p9")))

	err := s.CreateWish(ctx, makeTestWish("w2", "alice-x7k2p9"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrAlreadyExists))
}

func TestGetWishBySlug_NotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetWishBySlug(ctx, "nobody-zzzzzz")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.GetWish(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGetWishBySlug_ExactMatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateWish(ctx, makeTestWish("w1", "alice-x7k2p9")))

	_, err := s.GetWishBySlug(ctx, "ALICE-X7K2P9")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetWishBySlug(ctx, "alice-x7k2p")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGetWish_UnknownOccasionPreserved(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	w := makeTestWish("w1", "carol-aaaaaa")
	w.Occasion = domain.Occasion("graduation")
	require.NoError(t, s.CreateWish(ctx, w))

	got, err := s.GetWishBySlug(ctx, "carol-aaaaaa")
	require.NoError(t, err)
	assert.Equal(t, domain.Occasion("graduation"), got.Occasion)
	assert.False(t, got.Occasion.Valid())
}

func TestListRecentWishes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, slug := range []string{"a-000001", "b-000002", "c-000003"} {
		w := makeTestWish(slug, slug)
		w.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, s.CreateWish(ctx, w))
	}

	wishes, err := s.ListRecentWishes(ctx, 2)
	require.NoError(t, err)
	require.Len(t, wishes, 2)
	assert.Equal(t, "c-000003", wishes[0].GeneratedSlug)
	assert.Equal(t, "b-000002", wishes[1].GeneratedSlug)

	n, err := s.CountWishes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
