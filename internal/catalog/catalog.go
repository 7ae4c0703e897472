// Package catalog holds the fixed occasions, festivals, wedding types and
// page templates offered by the wizard.
//
// The tables are package-level values built at init and never written again,
// so every accessor may be called from any goroutine. Accessors hand out
// copies; callers cannot reach the backing arrays.
package catalog

import (
	"slices"

	"github.com/wishcraft/wishcraft-server/internal/domain"
)

const previewPhoto = "https://images.pexels.com/photos/1729931/pexels-photo-1729931.jpeg"

var occasions = []domain.OccasionInfo{
	{
		ID:          domain.OccasionBirthday,
		Title:       "Birthday",
		Emoji:       "🎂",
		Description: "Celebrate another year of joy",
		Colors: domain.ColorTheme{
			Primary:   "from-purple-500 to-pink-500",
			Secondary: "from-purple-100 to-pink-100",
			Accent:    "purple-500",
			Text:      "purple-900",
		},
	},
	{
		ID:          domain.OccasionAnniversary,
		Title:       "Anniversary",
		Emoji:       "💖",
		Description: "Celebrate love and togetherness",
		Colors: domain.ColorTheme{
			Primary:   "from-rose-500 to-red-500",
			Secondary: "from-rose-100 to-red-100",
			Accent:    "rose-500",
			Text:      "rose-900",
		},
	},
	{
		ID:          domain.OccasionWedding,
		Title:       "Wedding",
		Emoji:       "💒",
		Description: "Celebrate the beginning of forever",
		Colors: domain.ColorTheme{
			Primary:   "from-pink-300 to-rose-400",
			Secondary: "from-pink-50 to-rose-50",
			Accent:    "pink-400",
			Text:      "pink-900",
		},
	},
	{
		ID:          domain.OccasionFestival,
		Title:       "Festival",
		Emoji:       "🎉",
		Description: "Celebrate traditions and joy",
		Colors: domain.ColorTheme{
			Primary:   "from-yellow-400 via-orange-500 to-red-500",
			Secondary: "from-yellow-100 to-orange-100",
			Accent:    "orange-500",
			Text:      "orange-900",
		},
	},
}

var festivals = []domain.FestivalInfo{
	{ID: domain.FestivalDiwali, Name: "Diwali", Emoji: "🪔", Colors: "from-yellow-400 to-orange-500"},
	{ID: domain.FestivalHoli, Name: "Holi", Emoji: "🎨", Colors: "from-pink-400 to-purple-500"},
	{ID: domain.FestivalChristmas, Name: "Christmas", Emoji: "🎄", Colors: "from-green-500 to-red-500"},
	{ID: domain.FestivalEid, Name: "Eid", Emoji: "🌙", Colors: "from-blue-400 to-green-400"},
	{ID: domain.FestivalRakshaBandhan, Name: "Raksha Bandhan", Emoji: "🎗️", Colors: "from-orange-400 to-red-400"},
	{ID: domain.FestivalNewYear, Name: "New Year", Emoji: "🎊", Colors: "from-purple-500 to-blue-500"},
	{ID: domain.FestivalOther, Name: "Other Festival", Emoji: "🎉", Colors: "from-indigo-400 to-purple-500"},
}

var weddingTypes = []domain.WeddingTypeInfo{
	{ID: domain.WeddingInvitation, Name: "Wedding Invitation", Emoji: "💌"},
	{ID: domain.WeddingAnnouncement, Name: "Wedding Announcement", Emoji: "📢"},
	{ID: domain.WeddingSaveTheDate, Name: "Save the Date", Emoji: "📅"},
	{ID: domain.WeddingReception, Name: "Reception Invitation", Emoji: "🥂"},
	{ID: domain.WeddingEngagement, Name: "Engagement Announcement", Emoji: "💍"},
}

var templates = []domain.Template{
	{
		ID:         "birthday-balloons",
		Name:       "Balloon Celebration",
		Category:   domain.OccasionBirthday,
		PreviewURL: previewPhoto,
		Colors:     domain.ColorTheme{Primary: "from-purple-500 to-pink-500", Secondary: "from-purple-100 to-pink-100", Accent: "purple-500", Text: "purple-900"},
		Animations: []string{"bounce", "float"},
	},
	{
		ID:         "birthday-cake",
		Name:       "Birthday Cake",
		Category:   domain.OccasionBirthday,
		PreviewURL: previewPhoto,
		Colors:     domain.ColorTheme{Primary: "from-pink-400 to-rose-500", Secondary: "from-pink-100 to-rose-100", Accent: "pink-500", Text: "pink-900"},
		Animations: []string{"sparkle", "glow"},
	},
	{
		ID:         "wedding-elegant",
		Name:       "Elegant Wedding",
		Category:   domain.OccasionWedding,
		PreviewURL: previewPhoto,
		Colors:     domain.ColorTheme{Primary: "from-rose-300 to-pink-400", Secondary: "from-rose-50 to-pink-50", Accent: "rose-400", Text: "rose-900"},
		Animations: []string{"fade", "slide"},
	},
	{
		ID:         "wedding-traditional",
		Name:       "Traditional Indian",
		Category:   domain.OccasionWedding,
		PreviewURL: previewPhoto,
		Colors:     domain.ColorTheme{Primary: "from-red-500 to-orange-500", Secondary: "from-red-100 to-orange-100", Accent: "red-500", Text: "red-900"},
		Animations: []string{"mandala", "lotus"},
	},
	{
		ID:         "diwali-diyas",
		Name:       "Diwali Diyas",
		Category:   domain.OccasionFestival,
		Festival:   domain.FestivalDiwali,
		PreviewURL: previewPhoto,
		Colors:     domain.ColorTheme{Primary: "from-yellow-400 to-orange-500", Secondary: "from-yellow-100 to-orange-100", Accent: "orange-500", Text: "orange-900"},
		Animations: []string{"flicker", "glow"},
	},
	{
		ID:         "holi-colors",
		Name:       "Holi Colors",
		Category:   domain.OccasionFestival,
		Festival:   domain.FestivalHoli,
		PreviewURL: previewPhoto,
		Colors:     domain.ColorTheme{Primary: "from-pink-400 to-purple-500", Secondary: "from-pink-100 to-purple-100", Accent: "purple-500", Text: "purple-900"},
		Animations: []string{"splash", "rainbow"},
	},
}

// ListOccasions returns the four occasions in display order.
func ListOccasions() []domain.OccasionInfo {
	return slices.Clone(occasions)
}

// ListFestivals returns the festivals in display order.
func ListFestivals() []domain.FestivalInfo {
	return slices.Clone(festivals)
}

// ListWeddingTypes returns the wedding sub-types in display order.
func ListWeddingTypes() []domain.WeddingTypeInfo {
	return slices.Clone(weddingTypes)
}

// ListTemplates returns every template in declaration order.
func ListTemplates() []domain.Template {
	out := make([]domain.Template, len(templates))
	for i, t := range templates {
		out[i] = cloneTemplate(t)
	}
	return out
}

// TemplatesFor returns the templates offered for an occasion, in declaration
// order. A non-empty festival drops templates bound to a different festival.
func TemplatesFor(occasion domain.Occasion, festival domain.FestivalType) []domain.Template {
	var out []domain.Template
	for _, t := range templates {
		if t.Offers(occasion, festival) {
			out = append(out, cloneTemplate(t))
		}
	}
	return out
}

// OccasionByID looks up an occasion.
func OccasionByID(id domain.Occasion) (domain.OccasionInfo, bool) {
	i := slices.IndexFunc(occasions, func(o domain.OccasionInfo) bool { return o.ID == id })
	if i < 0 {
		return domain.OccasionInfo{}, false
	}
	return occasions[i], true
}

// FestivalByID looks up a festival.
func FestivalByID(id domain.FestivalType) (domain.FestivalInfo, bool) {
	i := slices.IndexFunc(festivals, func(f domain.FestivalInfo) bool { return f.ID == id })
	if i < 0 {
		return domain.FestivalInfo{}, false
	}
	return festivals[i], true
}

// WeddingTypeByID looks up a wedding sub-type.
func WeddingTypeByID(id domain.WeddingType) (domain.WeddingTypeInfo, bool) {
	i := slices.IndexFunc(weddingTypes, func(w domain.WeddingTypeInfo) bool { return w.ID == id })
	if i < 0 {
		return domain.WeddingTypeInfo{}, false
	}
	return weddingTypes[i], true
}

// TemplateByID looks up a template.
func TemplateByID(id string) (domain.Template, bool) {
	i := slices.IndexFunc(templates, func(t domain.Template) bool { return t.ID == id })
	if i < 0 {
		return domain.Template{}, false
	}
	return cloneTemplate(templates[i]), true
}

func cloneTemplate(t domain.Template) domain.Template {
	t.Animations = slices.Clone(t.Animations)
	return t
}
