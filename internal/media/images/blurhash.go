package images

import (
	"fmt"
	"image"

	"github.com/bbrks/go-blurhash"
	"golang.org/x/image/draw"
)

// blurHashSize bounds the image BlurHash is computed from. A placeholder
// needs no detail, and a 64px source keeps encoding in the millisecond range.
const blurHashSize = 64

// BlurHash encodes img as a 4x3 component BlurHash string.
func BlurHash(img image.Image) (string, error) {
	hash, err := blurhash.Encode(4, 3, fit(img, blurHashSize, draw.ApproxBiLinear))
	if err != nil {
		return "", fmt.Errorf("encode blurhash: %w", err)
	}
	return hash, nil
}

// fit scales img down so neither side exceeds maxSide, keeping the aspect
// ratio. Images already small enough are returned as is.
func fit(img image.Image, maxSide int, scaler draw.Scaler) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxSide && h <= maxSide {
		return img
	}

	var dw, dh int
	if w >= h {
		dw = maxSide
		dh = max(1, h*maxSide/w)
	} else {
		dh = maxSide
		dw = max(1, w*maxSide/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	scaler.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
