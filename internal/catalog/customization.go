package catalog

import (
	"slices"
	"strings"

	"github.com/wishcraft/wishcraft-server/internal/domain"
)

var colorPresets = []domain.ColorPreset{
	{Name: "Purple Dream", Background: "#f3e8ff", Text: "#581c87", Accent: "#8b5cf6"},
	{Name: "Rose Gold", Background: "#fdf2f8", Text: "#9f1239", Accent: "#f43f5e"},
	{Name: "Ocean Blue", Background: "#eff6ff", Text: "#1e3a8a", Accent: "#3b82f6"},
	{Name: "Sunset", Background: "#fff7ed", Text: "#9a3412", Accent: "#ea580c"},
	{Name: "Forest", Background: "#f0fdf4", Text: "#14532d", Accent: "#22c55e"},
	{Name: "Midnight", Background: "#1f2937", Text: "#f9fafb", Accent: "#6366f1"},
}

var fontFamilies = []string{"Inter", "Playfair Display", "Dancing Script", "Poppins"}

// ColorPresets returns the named color combinations of the Customize step.
func ColorPresets() []domain.ColorPreset {
	return slices.Clone(colorPresets)
}

// ColorPresetByName finds a preset, ignoring case.
func ColorPresetByName(name string) (domain.ColorPreset, bool) {
	i := slices.IndexFunc(colorPresets, func(p domain.ColorPreset) bool {
		return strings.EqualFold(p.Name, name)
	})
	if i < 0 {
		return domain.ColorPreset{}, false
	}
	return colorPresets[i], true
}

// FontFamilies returns the selectable fonts.
func FontFamilies() []string {
	return slices.Clone(fontFamilies)
}
