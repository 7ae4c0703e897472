package wishview

import domainerrors "github.com/wishcraft/wishcraft-server/internal/errors"

// Carousel tracks the photo shown by the slider. It never advances on its own.
type Carousel struct {
	Index int `json:"index"`
	Count int `json:"count"`
}

// NewCarousel returns a carousel over count photos, or nil when there is
// nothing to page through.
func NewCarousel(count int) *Carousel {
	if count <= 1 {
		return nil
	}
	return &Carousel{Count: count}
}

// Select shows photo i.
func (c *Carousel) Select(i int) error {
	if i < 0 || i >= c.Count {
		return domainerrors.Validationf("photo %d out of range [0, %d)", i, c.Count)
	}
	c.Index = i
	return nil
}

// Next moves to the following photo, wrapping at the end.
func (c *Carousel) Next() {
	c.Index = (c.Index + 1) % c.Count
}

// Prev moves to the previous photo, wrapping at the start.
func (c *Carousel) Prev() {
	c.Index = (c.Index - 1 + c.Count) % c.Count
}
