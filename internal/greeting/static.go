package greeting

import (
	"context"

	"github.com/wishcraft/wishcraft-server/internal/domain"
)

// occasionContext is the vocabulary the static styles are filled with.
type occasionContext struct {
	emoji   string
	wishes  [3]string
	actions [3]string
}

var festivalEmoji = map[domain.FestivalType]string{
	domain.FestivalDiwali:        "🪔✨",
	domain.FestivalHoli:          "🎨🌈",
	domain.FestivalChristmas:     "🎄🎅",
	domain.FestivalEid:           "🌙⭐",
	domain.FestivalRakshaBandhan: "🎗️👫",
	domain.FestivalNewYear:       "🎊🥳",
}

func contextFor(req domain.GreetingRequest) occasionContext {
	switch req.Occasion {
	case domain.OccasionAnniversary:
		return occasionContext{
			emoji:   "💖💕",
			wishes:  [3]string{"continued love", "togetherness", "beautiful moments"},
			actions: [3]string{"celebrate your journey", "cherish memories", "look forward"},
		}
	case domain.OccasionWedding:
		emoji := "💒🎊"
		if req.WeddingType == domain.WeddingEngagement {
			emoji = "💍✨"
		}
		return occasionContext{
			emoji:   emoji,
			wishes:  [3]string{"lifetime of happiness", "endless love", "beautiful future"},
			actions: [3]string{"begin forever", "unite hearts", "celebrate love"},
		}
	case domain.OccasionFestival:
		emoji, ok := festivalEmoji[req.FestivalType]
		if !ok {
			emoji = "🎉✨"
		}
		return occasionContext{
			emoji:   emoji,
			wishes:  [3]string{"joy and prosperity", "blessings", "celebration"},
			actions: [3]string{"celebrate traditions", "spread joy", "share happiness"},
		}
	default:
		return occasionContext{
			emoji:   "🎂🎉",
			wishes:  [3]string{"another year of joy", "happiness and success", "wonderful memories"},
			actions: [3]string{"celebrate", "party", "make wishes"},
		}
	}
}

// noteBlock is the personal note followed by a blank line, or nothing.
func noteBlock(note string) string {
	if note == "" {
		return ""
	}
	return note + "\n\n"
}

// Static fills fixed per-style templates. The output is a pure function of
// the request, so regenerating yields the same three texts.
type Static struct{}

// NewStatic returns the template-based generator.
func NewStatic() *Static {
	return &Static{}
}

// Generate implements Generator. It never fails.
func (s *Static) Generate(_ context.Context, req domain.GreetingRequest) ([]domain.GreetingVariation, error) {
	c := contextFor(req)
	name := req.RecipientName
	note := noteBlock(req.PersonalNote)

	formal := c.emoji + " Dear " + name + ",\n\n" +
		"On this special occasion, I extend my warmest wishes to you. May this celebration bring you " +
		c.wishes[0] + " and fill your life with beautiful moments.\n\n" +
		note +
		"With heartfelt regards and best wishes for your continued happiness and success."

	casual := "Hey " + name + "! " + c.emoji + "\n\n" +
		"Hope you have an absolutely amazing celebration! Wishing you all the " +
		c.wishes[1] + " and lots of fun times ahead.\n\n" +
		note +
		"Can't wait to " + c.actions[0] + " with you! 🎉"

	poetic := c.emoji + " For " + name + " " + c.emoji + "\n\n" +
		"Like stars that shine in darkest night,\n" +
		"Your special day brings pure delight.\n" +
		"May " + c.wishes[2] + " dance around,\n" +
		"And joy in every moment be found.\n\n" +
		note +
		"Here's to you and all the magic this day brings! ✨"

	return []domain.GreetingVariation{
		{ID: string(domain.StyleFormal), Style: domain.StyleFormal, Text: formal},
		{ID: string(domain.StyleCasual), Style: domain.StyleCasual, Text: casual},
		{ID: string(domain.StylePoetic), Style: domain.StylePoetic, Text: poetic},
	}, nil
}
