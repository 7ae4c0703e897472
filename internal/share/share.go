// Package share builds the share targets offered for a created wish.
package share

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/wishcraft/wishcraft-server/internal/domain"
)

const (
	whatsAppBase = "https://wa.me/?text="
	facebookBase = "https://www.facebook.com/sharer/sharer.php?u="

	// InstagramInstruction is shown after the link is copied for Instagram,
	// which has no URL share endpoint.
	InstagramInstruction = "Link copied! You can now paste it in your Instagram story or bio."

	// CopiedFor is how long the "copied" acknowledgement stays visible.
	CopiedFor = 2 * time.Second

	// DefaultQRSize is the edge length in pixels of a QR code image.
	DefaultQRSize = 256
	minQRSize     = 64
	maxQRSize     = 1024
)

// Links are the share targets of one wish.
type Links struct {
	URL       string    `json:"url"`
	Message   string    `json:"message"`
	WhatsApp  string    `json:"whatsapp"`
	Facebook  string    `json:"facebook"`
	Instagram Instagram `json:"instagram"`
	QRCode    string    `json:"qr_code"`
}

// Instagram is the copy-to-clipboard fallback for Instagram.
type Instagram struct {
	CopyText    string `json:"copy_text"`
	Instruction string `json:"instruction"`
}

// WishURL returns the canonical page URL of a wish.
func WishURL(baseURL, slug string) string {
	return strings.TrimRight(baseURL, "/") + "/wishes/" + url.PathEscape(slug)
}

// Message is the text posted to messaging apps.
func Message(recipientName, wishURL string) string {
	return fmt.Sprintf("🎉 Check out this special celebration website I created for %s! %s", recipientName, wishURL)
}

// Compose builds every share target of wish under baseURL.
func Compose(wish *domain.Wish, baseURL string) Links {
	u := WishURL(baseURL, wish.GeneratedSlug)
	msg := Message(wish.RecipientName, u)
	return Links{
		URL:      u,
		Message:  msg,
		WhatsApp: whatsAppBase + EncodeComponent(msg),
		Facebook: facebookBase + EncodeComponent(u),
		Instagram: Instagram{
			CopyText:    u,
			Instruction: InstagramInstruction,
		},
		QRCode: u + "/qr.png",
	}
}

// componentUnescaper restores the characters that browsers leave alone in a
// URI component but url.QueryEscape encodes.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeComponent escapes s the way a browser's encodeURIComponent does.
func EncodeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}

// QRCode renders u as a PNG QR code of the given size. Sizes outside
// [64, 1024] are clamped; zero selects DefaultQRSize.
func QRCode(u string, size int) ([]byte, error) {
	switch {
	case size == 0:
		size = DefaultQRSize
	case size < minQRSize:
		size = minQRSize
	case size > maxQRSize:
		size = maxQRSize
	}
	png, err := qrcode.Encode(u, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}

// Clipboard tracks the "copied" acknowledgement of the share dialog.
type Clipboard struct {
	mu       sync.Mutex
	copiedAt time.Time
}

// MarkCopied records a copy at now.
func (c *Clipboard) MarkCopied(now time.Time) {
	c.mu.Lock()
	c.copiedAt = now
	c.mu.Unlock()
}

// Copied reports whether the acknowledgement is still visible at now.
func (c *Clipboard) Copied(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.copiedAt.IsZero() {
		return false
	}
	since := now.Sub(c.copiedAt)
	return since >= 0 && since < CopiedFor
}
