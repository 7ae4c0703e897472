package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wishcraft/wishcraft-server/internal/catalog"
	"github.com/wishcraft/wishcraft-server/internal/domain"
	domainerrors "github.com/wishcraft/wishcraft-server/internal/errors"
	"github.com/wishcraft/wishcraft-server/internal/validation"
)

// maxGreetingLength matches the limit on Customization.CustomGreeting.
const maxGreetingLength = 4000

// Greetings is the state of the greeting selection screen.
type Greetings struct {
	Variations []domain.GreetingVariation `json:"variations"`
	Loading    bool                       `json:"loading"`
	Error      domainerrors.Code          `json:"error,omitempty"`
	SelectedID string                     `json:"selected_id,omitempty"`
	UseCustom  bool                       `json:"use_custom"`
	CustomText string                     `json:"custom_text,omitempty"`
}

func (g Greetings) canConfirm() bool {
	if g.UseCustom {
		return strings.TrimSpace(g.CustomText) != ""
	}
	return g.SelectedID != ""
}

func (g Greetings) selectedText() string {
	if g.UseCustom {
		return strings.TrimSpace(g.CustomText)
	}
	for _, v := range g.Variations {
		if v.ID == g.SelectedID {
			return v.Text
		}
	}
	return ""
}

func (g Greetings) clone() Greetings {
	g.Variations = append([]domain.GreetingVariation(nil), g.Variations...)
	return g
}

// SelectTemplate picks one of the templates offered for the draft and moves
// on to greeting selection.
func (w *Wizard) SelectTemplate(id string) (Step, error) {
	w.mu.Lock()
	if err := w.editableLocked(StepTemplateSelect, "select a template"); err != nil {
		step := w.step
		w.mu.Unlock()
		return step, err
	}
	t, ok := catalog.TemplateByID(id)
	if !ok || !t.Offers(w.draft.detail.Occasion(), domain.FestivalOf(w.draft.detail)) {
		w.mu.Unlock()
		return StepTemplateSelect, domainerrors.Validationf("template %q is not available for this wish", id)
	}
	w.draft.templateID = t.ID
	w.enterGreetingSelectLocked()
	w.mu.Unlock()

	w.notify(ChangeStep)
	return StepGreetingSelect, nil
}

// enterGreetingSelectLocked shows the greeting screen in its loading state.
// Variations arrive through RequestGreetings.
func (w *Wizard) enterGreetingSelectLocked() {
	w.abandonGreetingsLocked()
	w.step = StepGreetingSelect
	w.greetings = Greetings{Loading: true}
}

// abandonGreetingsLocked cancels the in-flight generation and invalidates its token.
func (w *Wizard) abandonGreetingsLocked() {
	if w.genCancel != nil {
		w.genCancel()
		w.genCancel = nil
	}
	w.genSeq++
	w.greetings = Greetings{}
}

// NeedsGreetings reports whether the greeting screen is waiting for a
// generation that nobody has started yet.
func (w *Wizard) NeedsGreetings() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step == StepGreetingSelect && w.greetings.Loading && w.genCancel == nil
}

// RequestGreetings generates a fresh set of variations, replacing the current
// ones. A newer request cancels this one; a superseded result is discarded
// and reported to the caller as STALE.
func (w *Wizard) RequestGreetings(ctx context.Context) error {
	w.mu.Lock()
	if err := w.editableLocked(StepGreetingSelect, "generate greetings"); err != nil {
		w.mu.Unlock()
		return err
	}
	if w.genCancel != nil {
		w.genCancel()
	}
	w.genSeq++
	token := w.genSeq
	ctx, cancel := context.WithCancel(ctx)
	w.genCancel = cancel
	w.greetings = Greetings{Loading: true}
	req := w.greetingRequestLocked()
	w.mu.Unlock()
	defer cancel()

	vars, err := w.generator.Generate(ctx, req)

	w.mu.Lock()
	if token != w.genSeq || w.step != StepGreetingSelect {
		w.mu.Unlock()
		w.logger.Debug("discarded stale greetings", slog.Uint64("token", token))
		return domainerrors.Stale("greeting request superseded")
	}
	w.genCancel = nil
	w.greetings.Loading = false
	if err != nil {
		w.greetings.Error = domainerrors.CodeOf(err)
		w.mu.Unlock()
		w.logger.Warn("greeting generation failed", slog.String("error", err.Error()))
		w.notify(ChangeGreetingsFailed)
		return err
	}
	w.greetings.Variations = vars
	w.mu.Unlock()

	w.notify(ChangeGreetingsReady)
	return nil
}

func (w *Wizard) greetingRequestLocked() domain.GreetingRequest {
	return domain.GreetingRequest{
		RecipientName: strings.TrimSpace(w.draft.recipientName),
		Occasion:      w.draft.detail.Occasion(),
		PersonalNote:  strings.TrimSpace(w.draft.personalNote),
		FestivalType:  domain.FestivalOf(w.draft.detail),
		WeddingType:   domain.WeddingOf(w.draft.detail),
	}
}

// SelectVariation picks one of the generated variations.
func (w *Wizard) SelectVariation(id string) error {
	w.mu.Lock()
	if err := w.editableLocked(StepGreetingSelect, "select a greeting"); err != nil {
		w.mu.Unlock()
		return err
	}
	found := false
	for _, v := range w.greetings.Variations {
		if v.ID == id {
			found = true
			break
		}
	}
	if !found {
		w.mu.Unlock()
		return domainerrors.Validationf("unknown greeting variation %q", id)
	}
	w.greetings.SelectedID = id
	w.greetings.UseCustom = false
	w.mu.Unlock()

	w.notify(ChangeDraft)
	return nil
}

// SetCustomGreeting stores free text and switches to using it.
func (w *Wizard) SetCustomGreeting(text string) error {
	w.mu.Lock()
	if err := w.editableLocked(StepGreetingSelect, "write a greeting"); err != nil {
		w.mu.Unlock()
		return err
	}
	text = normalize(text)
	if err := validation.Default().Var("custom_text", text, fmt.Sprintf("max=%d", maxGreetingLength)); err != nil {
		w.mu.Unlock()
		return err
	}
	w.greetings.CustomText = text
	w.greetings.UseCustom = true
	w.mu.Unlock()

	w.notify(ChangeDraft)
	return nil
}

// UseCustomGreeting toggles between the custom text and the selected variation.
func (w *Wizard) UseCustomGreeting(on bool) error {
	w.mu.Lock()
	if err := w.editableLocked(StepGreetingSelect, "write a greeting"); err != nil {
		w.mu.Unlock()
		return err
	}
	w.greetings.UseCustom = on
	w.mu.Unlock()

	w.notify(ChangeDraft)
	return nil
}

// ConfirmGreeting adopts the chosen greeting and moves on to Customize.
// The customization keeps earlier edits but always takes the new greeting.
func (w *Wizard) ConfirmGreeting() (Step, error) {
	w.mu.Lock()
	if err := w.editableLocked(StepGreetingSelect, "confirm a greeting"); err != nil {
		step := w.step
		w.mu.Unlock()
		return step, err
	}
	if !w.greetings.canConfirm() {
		w.mu.Unlock()
		return StepGreetingSelect, domainerrors.Validation("select a greeting or write your own")
	}
	text := w.greetings.selectedText()
	w.draft.greeting = text
	if w.draft.customization == (domain.Customization{}) {
		w.draft.customization = domain.DefaultCustomization(text)
	} else {
		w.draft.customization.CustomGreeting = text
	}
	w.step = StepCustomize
	w.mu.Unlock()

	w.notify(ChangeStep)
	return StepCustomize, nil
}
