package domain

// GreetingStyle is the tone of a greeting variation.
type GreetingStyle string

// Greeting styles, in the order they are generated.
const (
	StyleFormal GreetingStyle = "formal"
	StyleCasual GreetingStyle = "casual"
	StylePoetic GreetingStyle = "poetic"
)

// GreetingStyles returns the styles in generation order.
func GreetingStyles() []GreetingStyle {
	return []GreetingStyle{StyleFormal, StyleCasual, StylePoetic}
}

// GreetingVariation is one candidate greeting text.
type GreetingVariation struct {
	ID    string        `json:"id"`
	Style GreetingStyle `json:"style"`
	Text  string        `json:"text"`
}

// GreetingRequest is the context a greeting is written for.
type GreetingRequest struct {
	RecipientName string       `json:"recipient_name"`
	Occasion      Occasion     `json:"occasion"`
	PersonalNote  string       `json:"personal_note,omitempty"`
	FestivalType  FestivalType `json:"festival_type,omitempty"`
	WeddingType   WeddingType  `json:"wedding_type,omitempty"`
}
