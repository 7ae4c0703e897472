package api

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wishcraft/wishcraft-server/internal/domain"
	"github.com/wishcraft/wishcraft-server/internal/greeting"
	"github.com/wishcraft/wishcraft-server/internal/http/response"
	"github.com/wishcraft/wishcraft-server/internal/media/images"
	"github.com/wishcraft/wishcraft-server/internal/service"
	"github.com/wishcraft/wishcraft-server/internal/sse"
	"github.com/wishcraft/wishcraft-server/internal/store"
	"github.com/wishcraft/wishcraft-server/internal/store/sqlite"
	"github.com/wishcraft/wishcraft-server/internal/wizard"
)

const testPublicURL = "https://wishes.example"

// testEnvelope decodes the data of a successful response.
type testEnvelope[T any] struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// testServer bundles a server with the stores behind it.
type testServer struct {
	*Server
	db     *sqlite.Store
	photos *images.Storage
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupTestServer creates a server over a temporary database, an in-memory
// draft store and the static greeting generator.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	return setupTestServerWithConfig(t, Config{PublicURL: testPublicURL})
}

func setupTestServerWithConfig(t *testing.T, cfg Config) *testServer {
	t.Helper()
	dir := t.TempDir()
	logger := discardLogger()

	db, err := sqlite.Open(filepath.Join(dir, "wishes.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	drafts, err := store.OpenDraftsInMemory(logger)
	require.NoError(t, err)
	t.Cleanup(func() { drafts.Close() })

	photos, err := images.NewStorage(dir, "photos")
	require.NoError(t, err)

	wishes := service.NewWishService(db, photos, service.WishServiceConfig{
		FetchTimeout:   5 * time.Second,
		PersistTimeout: 5 * time.Second,
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	sseManager := sse.NewManager(logger)
	go sseManager.Start(ctx)

	sessions := service.NewWizardSessions(drafts, wizard.Deps{
		Generator: greeting.NewStatic(),
		Persister: wizard.PersisterFunc(wishes.Persist),
		Converter: images.NewProcessor(MaxUploadSize, logger),
		Logger:    logger,
	}, sseManager, service.WizardSessionsConfig{
		TTL:       time.Hour,
		PublicURL: cfg.PublicURL,
	}, logger)

	server := NewServer(
		&Services{Wishes: wishes, Sessions: sessions},
		&StorageServices{Photos: photos, Database: db, Drafts: drafts},
		sseManager,
		cfg,
		logger,
	)

	t.Cleanup(func() {
		server.Close()
		_ = sessions.Shutdown(context.Background())
		cancel()
	})

	return &testServer{Server: server, db: db, photos: photos}
}

// do sends a request through the full router.
func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	ts.ServeHTTP(w, req)
	return w
}

// decode unmarshals an enveloped response body.
func decode[T any](t *testing.T, w *httptest.ResponseRecorder) testEnvelope[T] {
	t.Helper()
	var envelope testEnvelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), w.Body.String())
	return envelope
}

// seedWish stores a finished birthday wish with one photo and returns its slug.
func (ts *testServer) seedWish(t *testing.T, recipient string) string {
	t.Helper()
	return ts.seedWishWithPhotos(t, recipient, 1, domain.LayoutGrid)
}

// seedWishWithPhotos stores a birthday wish with n distinct photos.
func (ts *testServer) seedWishWithPhotos(t *testing.T, recipient string, n int, layout domain.PhotoLayout) string {
	t.Helper()
	c := domain.DefaultCustomization("Happy birthday, " + recipient + "!")
	c.PhotoLayout = layout

	photos := make([]domain.PhotoUpload, n)
	for i := range photos {
		photos[i] = domain.PhotoUpload{Data: createTestJPEG(t, 32+i, 24), ContentType: "image/jpeg"}
	}

	slug, err := ts.services.Wishes.Persist(context.Background(), domain.CompletedDraft{
		Detail:        domain.Birthday{},
		RecipientName: recipient,
		PersonalNote:  "See you Saturday",
		TemplateID:    "birthday-balloons",
		GreetingText:  c.CustomGreeting,
		Customization: c,
		Photos:        photos,
	})
	require.NoError(t, err)
	return slug
}

func TestServer_Routes(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{"health check", http.MethodGet, "/health", http.StatusOK},
		{"occasions", http.MethodGet, "/api/v1/catalog/occasions", http.StatusOK},
		{"home page", http.MethodGet, "/", http.StatusOK},
		{"unknown wizard", http.MethodGet, "/api/v1/wizard/wiz-missing", http.StatusNotFound},
		{"unknown wish", http.MethodGet, "/api/v1/wishes/nobody-birthday-0000", http.StatusNotFound},
		{"not found", http.MethodGet, "/api/v1/nonexistent", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, tt.method, tt.path, nil)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
		})
	}
}

func TestServer_JSONResponse(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/v1/catalog/occasions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "application/json"))

	var result response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, EnvelopeVersion, result.Version)
	assert.True(t, result.Success)
	assert.NotNil(t, result.Data)
	assert.Empty(t, result.Error)
}

func TestServer_ErrorEnvelope(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/v1/wizard/wiz-missing", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	envelope := decode[any](t, w)
	assert.Equal(t, EnvelopeVersion, envelope.Version)
	assert.False(t, envelope.Success)
	assert.Equal(t, "NOT_FOUND", envelope.Code)
	assert.NotEmpty(t, envelope.Error)
}

func TestServer_CORSPreflight(t *testing.T) {
	ts := setupTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/wizard", http.NoBody)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	ts.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

// createTestJPEG creates a gradient JPEG image.
func createTestJPEG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			r := uint8((x * 255) / width)
			g := uint8((y * 255) / height)
			b := uint8(((x + y) * 255) / (width + height))
			img.Set(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}
