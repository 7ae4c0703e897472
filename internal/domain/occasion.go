package domain

import "fmt"

// Occasion is the kind of celebration a wish is for.
type Occasion string

// Supported occasions, in display order.
const (
	OccasionBirthday    Occasion = "birthday"
	OccasionAnniversary Occasion = "anniversary"
	OccasionWedding     Occasion = "wedding"
	OccasionFestival    Occasion = "festival"
)

// Valid reports whether o is one of the four known occasions.
func (o Occasion) Valid() bool {
	switch o {
	case OccasionBirthday, OccasionAnniversary, OccasionWedding, OccasionFestival:
		return true
	default:
		return false
	}
}

// FestivalType narrows a festival wish.
type FestivalType string

// Supported festivals.
const (
	FestivalDiwali        FestivalType = "diwali"
	FestivalHoli          FestivalType = "holi"
	FestivalChristmas     FestivalType = "christmas"
	FestivalEid           FestivalType = "eid"
	FestivalRakshaBandhan FestivalType = "raksha-bandhan"
	FestivalNewYear       FestivalType = "new-year"
	FestivalOther         FestivalType = "other"
)

// Valid reports whether f is a known festival.
func (f FestivalType) Valid() bool {
	switch f {
	case FestivalDiwali, FestivalHoli, FestivalChristmas, FestivalEid,
		FestivalRakshaBandhan, FestivalNewYear, FestivalOther:
		return true
	default:
		return false
	}
}

// WeddingType narrows a wedding wish.
type WeddingType string

// Supported wedding sub-types.
const (
	WeddingInvitation   WeddingType = "invitation"
	WeddingAnnouncement WeddingType = "announcement"
	WeddingSaveTheDate  WeddingType = "save-the-date"
	WeddingReception    WeddingType = "reception"
	WeddingEngagement   WeddingType = "engagement"
)

// Valid reports whether w is a known wedding sub-type.
func (w WeddingType) Valid() bool {
	switch w {
	case WeddingInvitation, WeddingAnnouncement, WeddingSaveTheDate, WeddingReception, WeddingEngagement:
		return true
	default:
		return false
	}
}

// ColorTheme holds the utility-class color tokens used to paint an occasion or template.
type ColorTheme struct {
	Primary   string `json:"primary"`   // Gradient for headers, e.g. "from-purple-500 to-pink-500"
	Secondary string `json:"secondary"` // Soft background gradient
	Accent    string `json:"accent"`
	Text      string `json:"text"`
}

// OccasionInfo is the display metadata of an occasion.
type OccasionInfo struct {
	ID          Occasion   `json:"id"`
	Title       string     `json:"title"`
	Emoji       string     `json:"emoji"`
	Description string     `json:"description"`
	Colors      ColorTheme `json:"colors"`
}

// FestivalInfo is the display metadata of a festival.
type FestivalInfo struct {
	ID     FestivalType `json:"id"`
	Name   string       `json:"name"`
	Emoji  string       `json:"emoji"`
	Colors string       `json:"colors"`
}

// WeddingTypeInfo is the display metadata of a wedding sub-type.
type WeddingTypeInfo struct {
	ID    WeddingType `json:"id"`
	Name  string      `json:"name"`
	Emoji string      `json:"emoji"`
}

// OccasionDetail is the occasion of a draft together with the sub-type that
// only exists for that occasion. Exactly one of Birthday, Anniversary, Wedding
// or Festival implements it, so a festival type can never sit on a wedding.
type OccasionDetail interface {
	Occasion() Occasion
	occasionDetail()
}

// Birthday is the detail of a birthday wish.
type Birthday struct{}

// Anniversary is the detail of an anniversary wish.
type Anniversary struct{}

// Wedding is the detail of a wedding wish. Type is empty until chosen.
type Wedding struct {
	Type WeddingType
}

// Festival is the detail of a festival wish. Type is empty until chosen.
type Festival struct {
	Type FestivalType
}

func (Birthday) Occasion() Occasion    { return OccasionBirthday }
func (Anniversary) Occasion() Occasion { return OccasionAnniversary }
func (Wedding) Occasion() Occasion     { return OccasionWedding }
func (Festival) Occasion() Occasion    { return OccasionFestival }

func (Birthday) occasionDetail()    {}
func (Anniversary) occasionDetail() {}
func (Wedding) occasionDetail()     {}
func (Festival) occasionDetail()    {}

// NewOccasionDetail returns the empty detail for o.
func NewOccasionDetail(o Occasion) (OccasionDetail, error) {
	switch o {
	case OccasionBirthday:
		return Birthday{}, nil
	case OccasionAnniversary:
		return Anniversary{}, nil
	case OccasionWedding:
		return Wedding{}, nil
	case OccasionFestival:
		return Festival{}, nil
	default:
		return nil, fmt.Errorf("unknown occasion %q", o)
	}
}

// DetailFrom rebuilds a detail from its flat columns. It rejects a sub-type
// that does not belong to the occasion.
func DetailFrom(o Occasion, festival FestivalType, wedding WeddingType) (OccasionDetail, error) {
	if festival != "" && o != OccasionFestival {
		return nil, fmt.Errorf("festival type %q set on %s", festival, o)
	}
	if wedding != "" && o != OccasionWedding {
		return nil, fmt.Errorf("wedding type %q set on %s", wedding, o)
	}
	if festival != "" && !festival.Valid() {
		return nil, fmt.Errorf("unknown festival type %q", festival)
	}
	if wedding != "" && !wedding.Valid() {
		return nil, fmt.Errorf("unknown wedding type %q", wedding)
	}

	switch o {
	case OccasionWedding:
		return Wedding{Type: wedding}, nil
	case OccasionFestival:
		return Festival{Type: festival}, nil
	default:
		return NewOccasionDetail(o)
	}
}

// FestivalOf returns the festival type of d, or "" when d is not a festival.
func FestivalOf(d OccasionDetail) FestivalType {
	if f, ok := d.(Festival); ok {
		return f.Type
	}
	return ""
}

// WeddingOf returns the wedding type of d, or "" when d is not a wedding.
func WeddingOf(d OccasionDetail) WeddingType {
	if w, ok := d.(Wedding); ok {
		return w.Type
	}
	return ""
}
