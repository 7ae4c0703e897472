package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wishcraft/wishcraft-server/internal/logger"
)

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcessor_Preview(t *testing.T) {
	p := NewProcessor(0, logger.Discard().Logger)

	prev, err := p.Preview(pngBytes(t, 1200, 600, color.RGBA{R: 200, G: 80, B: 120, A: 255}))
	require.NoError(t, err)

	assert.Equal(t, "image/png", prev.ContentType)
	assert.True(t, strings.HasPrefix(prev.DataURL, "data:image/jpeg;base64,"))
	assert.Equal(t, PreviewSize, prev.Width)
	assert.Equal(t, PreviewSize/2, prev.Height)
	assert.NotEmpty(t, prev.Placeholder)
}

func TestProcessor_SmallImageKeepsSize(t *testing.T) {
	p := NewProcessor(0, logger.Discard().Logger)

	prev, err := p.Preview(pngBytes(t, 40, 30, color.White))
	require.NoError(t, err)
	assert.Equal(t, 40, prev.Width)
	assert.Equal(t, 30, prev.Height)
}

func TestProcessor_Rejects(t *testing.T) {
	p := NewProcessor(1024, logger.Discard().Logger)

	_, err := p.Preview([]byte("%PDF-1.7 not a photo"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	oversized := append(pngBytes(t, 4, 4, color.Black), make([]byte, 2048)...)
	_, err = p.Preview(oversized)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestProcessor_CorruptImage(t *testing.T) {
	p := NewProcessor(0, logger.Discard().Logger)
	data := pngBytes(t, 10, 10, color.White)

	_, err := p.Preview(data[:len(data)/2])
	assert.Error(t, err)
}

func TestBlurHash_Length(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 300, 100))
	hash, err := BlurHash(img)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(hash), 20)
}

func TestStorage_PutGet(t *testing.T) {
	s, err := NewStorage(t.TempDir(), "photos")
	require.NoError(t, err)
	data := pngBytes(t, 8, 8, color.White)

	name, err := s.Put(data, "image/png")
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f]{32}\.png$`, name)
	assert.True(t, s.Exists(name))

	got, err := s.Get(name)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	again, err := s.Put(data, "image/png")
	require.NoError(t, err)
	assert.Equal(t, name, again, "same bytes map to the same name")

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestStorage_RejectsBadNames(t *testing.T) {
	s, err := NewStorage(t.TempDir(), "photos")
	require.NoError(t, err)

	_, err = s.Get("../../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = s.Get(strings.Repeat("a", 32) + ".jpg")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Put([]byte("x"), "application/pdf")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestStorage_Delete(t *testing.T) {
	s, err := NewStorage(t.TempDir(), "photos")
	require.NoError(t, err)

	name, err := s.Put(pngBytes(t, 2, 2, color.Black), "image/png")
	require.NoError(t, err)

	require.NoError(t, s.Delete(name))
	assert.False(t, s.Exists(name))
	assert.NoError(t, s.Delete(name))
}

func TestNewStorage_Validation(t *testing.T) {
	_, err := NewStorage("", "photos")
	assert.Error(t, err)
	_, err = NewStorage(t.TempDir(), "")
	assert.Error(t, err)

	s, err := NewStorage(t.TempDir(), "nested/photos")
	require.NoError(t, err)
	assert.Equal(t, "photos", filepath.Base(s.Dir()))
}
