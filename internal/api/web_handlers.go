package api

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wishcraft/wishcraft-server/internal/catalog"
	"github.com/wishcraft/wishcraft-server/internal/domain"
	"github.com/wishcraft/wishcraft-server/internal/share"
	"github.com/wishcraft/wishcraft-server/internal/wishview"
	"github.com/wishcraft/wishcraft-server/internal/wizard"
)

//go:embed templates/*.html
var templates embed.FS

var pages = template.Must(template.ParseFS(templates, "templates/*.html"))

// homePageData contains data for the landing page template.
type homePageData struct {
	Occasions []domain.OccasionInfo
}

// createPageData contains data for the wizard shell template.
type createPageData struct {
	SessionID string
	Progress  string
	Occasions []domain.OccasionInfo
}

// wishPageData contains data for the shareable wish page template.
type wishPageData struct {
	View     wishview.View
	Share    share.Links
	Carousel *carouselControls
	// Copied shows the acknowledgement of the copy-link action.
	Copied bool
}

// carouselControls are the photo indicator links of a multi-photo wish.
type carouselControls struct {
	Current    int
	Prev       int
	Next       int
	Indicators []carouselIndicator
}

type carouselIndicator struct {
	Index  int
	Label  string
	Active bool
}

// handleHomePage serves the landing page.
// GET /
func (s *Server) handleHomePage(w http.ResponseWriter, _ *http.Request) {
	s.renderPage(w, http.StatusOK, "home.html", homePageData{Occasions: catalog.ListOccasions()})
}

// handleCreatePage opens a wizard session and serves the wizard shell.
// GET /create
func (s *Server) handleCreatePage(w http.ResponseWriter, r *http.Request) {
	wz, err := s.services.Sessions.Create(r.Context())
	if err != nil {
		s.logger.Error("Failed to create wizard session", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", CacheNoStore)
	s.renderPage(w, http.StatusOK, "create.html", createPageData{
		SessionID: wz.ID(),
		Progress:  wizard.StepOccasion.Progress(),
		Occasions: catalog.ListOccasions(),
	})
}

// handleWishPage serves the shareable wish page. Error outcomes render the
// same template with a message and a link home.
// GET /wishes/{slug}
func (s *Server) handleWishPage(w http.ResponseWriter, r *http.Request) {
	v := s.loader.Load(r.Context(), chi.URLParam(r, "slug"), "/")

	data := wishPageData{View: v}
	status := http.StatusOK
	switch v.Status {
	case wishview.StatusLoaded:
		q := r.URL.Query()
		data.Share = share.Compose(v.Wish, s.cfg.PublicURL)
		data.Carousel = carouselFor(v.Carousel, q.Get("photo"))
		data.Copied = copyAcknowledged(q.Get("copied"), time.Now())
	case wishview.StatusNotFound:
		status = http.StatusNotFound
	default:
		status = http.StatusInternalServerError
	}

	s.renderPage(w, status, "wish.html", data)
}

// handleCopyLink acknowledges the copy-link action of the share section and
// sends the browser back to the wish page, where the link field is selected.
// POST /wishes/{slug}/copy
func (s *Server) handleCopyLink(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	target := "/wishes/" + url.PathEscape(slug) +
		"?copied=" + strconv.FormatInt(time.Now().UnixMilli(), 10) + "#share"
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// carouselFor moves c to the photo named by the query value and builds the
// indicator links. An invalid index keeps the first photo.
func carouselFor(c *wishview.Carousel, photo string) *carouselControls {
	if c == nil {
		return nil
	}
	if i, err := strconv.Atoi(photo); err == nil {
		_ = c.Select(i)
	}

	prev, next := *c, *c
	prev.Prev()
	next.Next()

	controls := &carouselControls{
		Current:    c.Index,
		Prev:       prev.Index,
		Next:       next.Index,
		Indicators: make([]carouselIndicator, c.Count),
	}
	for i := range c.Count {
		controls.Indicators[i] = carouselIndicator{
			Index:  i,
			Label:  "Photo " + strconv.Itoa(i+1),
			Active: i == c.Index,
		}
	}
	return controls
}

// copyAcknowledged reports whether a copy made at the given Unix milliseconds is
// still inside the acknowledgement window at now.
func copyAcknowledged(millis string, now time.Time) bool {
	ms, err := strconv.ParseInt(millis, 10, 64)
	if err != nil {
		return false
	}
	var clip share.Clipboard
	clip.MarkCopied(time.UnixMilli(ms))
	return clip.Copied(now)
}

// renderPage executes into a buffer so a template failure still yields a
// clean 500.
func (s *Server) renderPage(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("Failed to execute template", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
