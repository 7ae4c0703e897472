package domain

// PhotoLayout is how photos are arranged on a wish page.
type PhotoLayout string

// Photo layouts.
const (
	LayoutGrid   PhotoLayout = "grid"
	LayoutSlider PhotoLayout = "slider"
)

// Customization is the look of a wish page chosen in the last wizard step.
type Customization struct {
	BackgroundColor string      `json:"background_color" validate:"required,hexcolor"`
	TextColor       string      `json:"text_color" validate:"required,hexcolor"`
	AccentColor     string      `json:"accent_color" validate:"required,hexcolor"`
	FontFamily      string      `json:"font_family" validate:"required,oneof=Inter 'Playfair Display' 'Dancing Script' Poppins"`
	PhotoLayout     PhotoLayout `json:"photo_layout" validate:"required,oneof=grid slider"`
	CustomGreeting  string      `json:"custom_greeting" validate:"required,max=4000"`
}

// DefaultCustomization seeds the Customize step with the confirmed greeting.
func DefaultCustomization(greeting string) Customization {
	return Customization{
		BackgroundColor: "#ffffff",
		TextColor:       "#1f2937",
		AccentColor:     "#8b5cf6",
		FontFamily:      "Inter",
		PhotoLayout:     LayoutGrid,
		CustomGreeting:  greeting,
	}
}

// ColorPreset is a named background/text/accent combination.
type ColorPreset struct {
	Name       string `json:"name"`
	Background string `json:"background"`
	Text       string `json:"text"`
	Accent     string `json:"accent"`
}

// Apply copies the preset colors onto c.
func (p ColorPreset) Apply(c *Customization) {
	c.BackgroundColor = p.Background
	c.TextColor = p.Text
	c.AccentColor = p.Accent
}
