// Package images turns uploaded photos into previews and stores them durably.
package images

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"log/slog"
	"net/http"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	// PreviewSize is the longest side of a wizard preview thumbnail.
	PreviewSize = 480
	// DefaultMaxBytes caps a single uploaded photo.
	DefaultMaxBytes = 10 << 20

	previewQuality = 80
)

// ErrUnsupportedType is returned for uploads that are not JPEG, PNG, GIF or WebP.
var ErrUnsupportedType = errors.New("unsupported image type")

// ErrTooLarge is returned for uploads above the configured size cap.
var ErrTooLarge = errors.New("image too large")

var supportedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Preview is the displayable form of an uploaded photo.
type Preview struct {
	ContentType string `json:"content_type"`
	DataURL     string `json:"data_url"`
	Placeholder string `json:"placeholder"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

// Processor validates uploads and renders previews. Safe for concurrent use.
type Processor struct {
	maxBytes int
	logger   *slog.Logger
}

// NewProcessor creates a Processor. maxBytes <= 0 selects DefaultMaxBytes.
func NewProcessor(maxBytes int, logger *slog.Logger) *Processor {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Processor{maxBytes: maxBytes, logger: logger}
}

// DetectType sniffs the content type of data and reports whether it is an
// accepted photo format.
func DetectType(data []byte) (string, bool) {
	ct := http.DetectContentType(data)
	_, ok := supportedTypes[ct]
	return ct, ok
}

// Extension returns the file extension stored photos of contentType get.
func Extension(contentType string) string {
	return supportedTypes[contentType]
}

// Preview decodes data and renders a JPEG thumbnail data URL plus a BlurHash.
func (p *Processor) Preview(data []byte) (Preview, error) {
	if len(data) > p.maxBytes {
		return Preview{}, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(data))
	}
	ct, ok := DetectType(data)
	if !ok {
		return Preview{}, fmt.Errorf("%w: %s", ErrUnsupportedType, ct)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Preview{}, fmt.Errorf("decode image: %w", err)
	}

	thumb := fit(img, PreviewSize, draw.CatmullRom)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: previewQuality}); err != nil {
		return Preview{}, fmt.Errorf("encode preview: %w", err)
	}

	hash, err := BlurHash(thumb)
	if err != nil {
		// A missing placeholder only degrades the page while photos load.
		p.logger.Warn("blurhash failed", slog.String("error", err.Error()))
	}

	b := thumb.Bounds()
	return Preview{
		ContentType: ct,
		DataURL:     "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
		Placeholder: hash,
		Width:       b.Dx(),
		Height:      b.Dy(),
	}, nil
}
