package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/wishcraft/wishcraft-server/internal/domain"
	"github.com/wishcraft/wishcraft-server/internal/store"
)

const wishesTable = "wishes"

// wishColumns must match the scan order in scanWish.
var wishColumns = []string{
	"id",
	"occasion",
	"recipient_name",
	"photo_urls",
	"photo_placeholders",
	"generated_slug",
	"created_at",
	"greeting_text",
	"personal_note",
	"template_id",
	"festival_type",
	"wedding_type",
	"custom_background",
	"custom_text",
	"custom_accent",
	"font_family",
	"photo_layout",
}

var builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// scanWish scans a sql.Row (or sql.Rows via its Scan method) into a domain.Wish.
func scanWish(scanner interface{ Scan(dest ...any) error }) (*domain.Wish, error) {
	var w domain.Wish

	var (
		occasion          string
		photoURLs         string
		photoPlaceholders string
		createdAt         string
		festivalType      sql.NullString
		weddingType       sql.NullString
		customBackground  sql.NullString
		customText        sql.NullString
		customAccent      sql.NullString
		fontFamily        sql.NullString
		photoLayout       sql.NullString
	)

	err := scanner.Scan(
		&w.ID,
		&occasion,
		&w.RecipientName,
		&photoURLs,
		&photoPlaceholders,
		&w.GeneratedSlug,
		&createdAt,
		&w.GreetingText,
		&w.PersonalNote,
		&w.TemplateID,
		&festivalType,
		&weddingType,
		&customBackground,
		&customText,
		&customAccent,
		&fontFamily,
		&photoLayout,
	)
	if err != nil {
		return nil, err
	}

	w.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if err := json.Unmarshal([]byte(photoURLs), &w.PhotoURLs); err != nil {
		return nil, fmt.Errorf("decode photo_urls: %w", err)
	}
	if err := json.Unmarshal([]byte(photoPlaceholders), &w.PhotoPlaceholders); err != nil {
		return nil, fmt.Errorf("decode photo_placeholders: %w", err)
	}

	// Enum fields are kept as stored; readers decide what an unknown value means.
	w.Occasion = domain.Occasion(occasion)
	w.FestivalType = domain.FestivalType(festivalType.String)
	w.WeddingType = domain.WeddingType(weddingType.String)
	w.FontFamily = fontFamily.String
	w.PhotoLayout = domain.PhotoLayout(photoLayout.String)

	if customBackground.Valid || customText.Valid || customAccent.Valid {
		w.CustomColors = &domain.CustomColors{
			Background: customBackground.String,
			Text:       customText.String,
			Accent:     customAccent.String,
		}
	}

	return &w, nil
}

// CreateWish inserts a new wish.
// Returns store.ErrAlreadyExists if the id or slug is taken.
func (s *Store) CreateWish(ctx context.Context, w *domain.Wish) error {
	if w.CreatedAt.IsZero() {
		w.CreatedAt = s.now()
	}
	if w.PhotoURLs == nil {
		w.PhotoURLs = []string{}
	}
	if w.PhotoPlaceholders == nil {
		w.PhotoPlaceholders = []string{}
	}

	photoURLs, err := json.Marshal(w.PhotoURLs)
	if err != nil {
		return fmt.Errorf("encode photo_urls: %w", err)
	}
	photoPlaceholders, err := json.Marshal(w.PhotoPlaceholders)
	if err != nil {
		return fmt.Errorf("encode photo_placeholders: %w", err)
	}

	var colors domain.CustomColors
	if w.CustomColors != nil {
		colors = *w.CustomColors
	}

	query, args, err := builder.Insert(wishesTable).
		Columns(wishColumns...).
		Values(
			w.ID,
			string(w.Occasion),
			w.RecipientName,
			string(photoURLs),
			string(photoPlaceholders),
			w.GeneratedSlug,
			formatTime(w.CreatedAt),
			w.GreetingText,
			w.PersonalNote,
			w.TemplateID,
			nullString(string(w.FestivalType)),
			nullString(string(w.WeddingType)),
			nullString(colors.Background),
			nullString(colors.Text),
			nullString(colors.Accent),
			nullString(w.FontFamily),
			nullString(string(w.PhotoLayout)),
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if store.IsUniqueViolation(err) {
			return store.ErrAlreadyExists.WithCause(err)
		}
		return fmt.Errorf("insert wish: %w", err)
	}
	return nil
}

// GetWish retrieves a wish by ID.
// Returns store.ErrNotFound if the wish does not exist.
func (s *Store) GetWish(ctx context.Context, id string) (*domain.Wish, error) {
	return s.getWhere(ctx, sq.Eq{"id": id})
}

// GetWishBySlug retrieves the wish whose slug matches exactly.
// Returns store.ErrNotFound if no wish has that slug.
func (s *Store) GetWishBySlug(ctx context.Context, slug string) (*domain.Wish, error) {
	return s.getWhere(ctx, sq.Eq{"generated_slug": slug})
}

func (s *Store) getWhere(ctx context.Context, pred sq.Eq) (*domain.Wish, error) {
	query, args, err := builder.Select(wishColumns...).
		From(wishesTable).
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	w, err := scanWish(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

// ListRecentWishes returns up to limit wishes, newest first.
func (s *Store) ListRecentWishes(ctx context.Context, limit int) ([]*domain.Wish, error) {
	if limit <= 0 {
		limit = 20
	}
	query, args, err := builder.Select(wishColumns...).
		From(wishesTable).
		OrderBy("created_at DESC", "id").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var wishes []*domain.Wish
	for rows.Next() {
		w, err := scanWish(rows)
		if err != nil {
			return nil, err
		}
		wishes = append(wishes, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return wishes, nil
}

// CountWishes returns the number of stored wishes.
func (s *Store) CountWishes(ctx context.Context) (int, error) {
	query, args, err := builder.Select("COUNT(*)").From(wishesTable).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
