package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	domainerrors "github.com/wishcraft/wishcraft-server/internal/errors"
	"github.com/wishcraft/wishcraft-server/internal/share"
	"github.com/wishcraft/wishcraft-server/internal/wishview"
)

func (s *Server) registerWishRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getWish",
		Method:      http.MethodGet,
		Path:        "/api/v1/wishes/{slug}",
		Summary:     "Get wish",
		Description: "Returns the wish page of a slug",
		Tags:        []string{"Wishes"},
	}, s.handleGetWish)

	huma.Register(s.api, huma.Operation{
		OperationID: "getWishShareLinks",
		Method:      http.MethodGet,
		Path:        "/api/v1/wishes/{slug}/share",
		Summary:     "Share links",
		Description: "Returns the link, messaging share URLs and QR code location of a wish",
		Tags:        []string{"Wishes"},
	}, s.handleGetWishShareLinks)
}

// WishInput identifies a wish.
type WishInput struct {
	Slug string `path:"slug" maxLength:"200" doc:"Wish slug"`
}

// WishOutput wraps the wish page for Huma.
type WishOutput struct {
	Body wishview.View
}

// ShareLinksOutput wraps the share links for Huma.
type ShareLinksOutput struct {
	Body share.Links
}

func (s *Server) handleGetWish(ctx context.Context, input *WishInput) (*WishOutput, error) {
	wish, err := s.services.Wishes.GetWishBySlug(ctx, input.Slug)
	if err != nil {
		return nil, toAPIError(err)
	}

	v := wishview.Build(wish)
	if !v.Loaded() {
		s.logger.Warn("Wish has unknown occasion", "slug", input.Slug, "occasion", wish.Occasion)
		return nil, toAPIError(domainerrors.DataIntegrity(wishview.MessageUnknownOccasion))
	}
	return &WishOutput{Body: v}, nil
}

func (s *Server) handleGetWishShareLinks(ctx context.Context, input *WishInput) (*ShareLinksOutput, error) {
	wish, err := s.services.Wishes.GetWishBySlug(ctx, input.Slug)
	if err != nil {
		return nil, toAPIError(err)
	}
	return &ShareLinksOutput{Body: share.Compose(wish, s.cfg.PublicURL)}, nil
}

// handleWishQRCode renders the wish link as a PNG QR code.
// GET /wishes/{slug}/qr.png?size=256
func (s *Server) handleWishQRCode(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	wish, err := s.services.Wishes.GetWishBySlug(r.Context(), slug)
	if err != nil {
		status := domainerrors.CodeOf(err).HTTPStatus()
		http.Error(w, http.StatusText(status), status)
		return
	}

	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	png, err := share.QRCode(share.WishURL(s.cfg.PublicURL, wish.GeneratedSlug), size)
	if err != nil {
		s.logger.Error("Failed to render QR code", "slug", slug, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", CacheOneDay)
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Write(png)
}
