package domain

// Template is a visual theme for a wish page, scoped to one occasion.
type Template struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Category   Occasion     `json:"category"`
	Festival   FestivalType `json:"festival,omitempty"` // Empty means any festival
	PreviewURL string       `json:"preview_url"`
	Colors     ColorTheme   `json:"colors"`
	Animations []string     `json:"animations"`
}

// Offers reports whether the template may be picked for the given occasion
// and festival sub-type. An empty festival accepts every festival template.
func (t Template) Offers(o Occasion, festival FestivalType) bool {
	if t.Category != o {
		return false
	}
	if festival != "" && t.Festival != "" && t.Festival != festival {
		return false
	}
	return true
}
