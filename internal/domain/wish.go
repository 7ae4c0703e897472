package domain

import "time"

// Wish is a persisted celebration page. GeneratedSlug is its only public key.
type Wish struct {
	ID                string        `json:"id"`
	Occasion          Occasion      `json:"occasion"`
	RecipientName     string        `json:"recipient_name"`
	PhotoURLs         []string      `json:"photo_urls"`
	PhotoPlaceholders []string      `json:"photo_placeholders,omitempty"` // BlurHash per photo, same order as PhotoURLs
	GeneratedSlug     string        `json:"generated_slug"`
	CreatedAt         time.Time     `json:"created_at"`
	GreetingText      string        `json:"greeting_text"`
	PersonalNote      string        `json:"personal_note"`
	TemplateID        string        `json:"template_id"`
	FestivalType      FestivalType  `json:"festival_type,omitempty"`
	WeddingType       WeddingType   `json:"wedding_type,omitempty"`
	CustomColors      *CustomColors `json:"custom_colors,omitempty"`
	FontFamily        string        `json:"font_family,omitempty"`
	PhotoLayout       PhotoLayout   `json:"photo_layout,omitempty"`
}

// CustomColors are the colors a wish page is painted with.
type CustomColors struct {
	Background string `json:"background"`
	Text       string `json:"text"`
	Accent     string `json:"accent"`
}

// Detail returns the occasion detail of the wish, failing on a record whose
// sub-type columns contradict its occasion.
func (w *Wish) Detail() (OccasionDetail, error) {
	return DetailFrom(w.Occasion, w.FestivalType, w.WeddingType)
}

// PhotoUpload is a photo blob carried from the wizard to persistence.
type PhotoUpload struct {
	Data        []byte `json:"data"`
	ContentType string `json:"content_type"`
	Placeholder string `json:"placeholder,omitempty"`
}

// CompletedDraft is a finished wizard draft, ready to be stored exactly once.
type CompletedDraft struct {
	Detail        OccasionDetail
	RecipientName string
	PersonalNote  string
	Photos        []PhotoUpload
	TemplateID    string
	GreetingText  string
	Customization Customization
}
