// Package wizard is the state machine behind the create-a-wish flow.
//
// A Wizard walks a draft through five numbered form steps (occasion,
// recipient, note, photos, review) and three sub-screens (template, greeting,
// customize) before handing the finished draft to a Persister exactly once.
// All events run under one mutex. Slow work (photo conversion, greeting
// generation, persistence) runs outside it and re-enters with a sequence
// token so that only the latest request of each kind can update the draft.
package wizard

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"

	"github.com/wishcraft/wishcraft-server/internal/domain"
	domainerrors "github.com/wishcraft/wishcraft-server/internal/errors"
	"github.com/wishcraft/wishcraft-server/internal/greeting"
	"github.com/wishcraft/wishcraft-server/internal/media/images"
)

// Persister stores a completed draft and returns the slug of the new wish.
type Persister interface {
	Persist(ctx context.Context, draft domain.CompletedDraft) (string, error)
}

// PersisterFunc adapts a function to Persister.
type PersisterFunc func(ctx context.Context, draft domain.CompletedDraft) (string, error)

// Persist calls f.
func (f PersisterFunc) Persist(ctx context.Context, draft domain.CompletedDraft) (string, error) {
	return f(ctx, draft)
}

// PhotoConverter renders the preview of an uploaded photo.
// *images.Processor implements it.
type PhotoConverter interface {
	Preview(data []byte) (images.Preview, error)
}

// Change names what an event changed. Observers use it to push updates.
type Change string

// Changes reported to Deps.OnChange.
const (
	ChangeDraft           Change = "draft.updated"
	ChangeStep            Change = "step.changed"
	ChangePhotos          Change = "photos.updated"
	ChangeGreetingsReady  Change = "greetings.ready"
	ChangeGreetingsFailed Change = "greetings.failed"
	ChangeSaving          Change = "wish.saving"
	ChangePersistFailed   Change = "wish.failed"
	ChangeCompleted       Change = "wish.created"
)

// Deps are the collaborators of a Wizard.
type Deps struct {
	Generator greeting.Generator
	Persister Persister
	Converter PhotoConverter
	Logger    *slog.Logger
	// OnChange is called after every state change, outside the wizard lock.
	OnChange func(Change)
}

// Wizard is one in-progress wish draft.
type Wizard struct {
	mu sync.Mutex

	id    string
	step  Step
	draft draft

	greetings  Greetings
	genSeq     uint64
	genCancel  context.CancelFunc
	persistSeq uint64
	saving     bool
	persistErr string
	slug       string
	nextSlot   uint64

	generator greeting.Generator
	persister Persister
	converter PhotoConverter
	logger    *slog.Logger
	onChange  func(Change)
}

type draft struct {
	detail        domain.OccasionDetail
	recipientName string
	personalNote  string
	photos        []*photoSlot
	templateID    string
	greeting      string
	customization domain.Customization
}

// New starts a wizard on the occasion step with birthday preselected.
func New(id string, deps Deps) *Wizard {
	w := &Wizard{
		id:   id,
		step: StepOccasion,
		draft: draft{
			detail: domain.Birthday{},
		},
	}
	w.setDeps(deps)
	return w
}

func (w *Wizard) setDeps(deps Deps) {
	w.logger = deps.Logger
	if w.logger == nil {
		w.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	w.logger = w.logger.With(slog.String("session_id", w.id))

	w.generator = deps.Generator
	if w.generator == nil {
		w.generator = greeting.NewStatic()
	}
	w.converter = deps.Converter
	if w.converter == nil {
		w.converter = images.NewProcessor(0, w.logger)
	}
	w.persister = deps.Persister
	w.onChange = deps.OnChange
}

// ID returns the session id of the wizard.
func (w *Wizard) ID() string {
	return w.id
}

// Step returns the current step.
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Slug returns the slug of the created wish once the wizard is complete.
func (w *Wizard) Slug() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.slug
}

func (w *Wizard) notify(c Change) {
	if w.onChange != nil {
		w.onChange(c)
	}
}

// editableLocked returns an error unless the wizard sits on want and is not
// busy saving.
func (w *Wizard) editableLocked(want Step, action string) error {
	if w.step == StepComplete {
		return domainerrors.Conflict("wish has already been created")
	}
	if w.saving {
		return domainerrors.Conflict("wish is being saved")
	}
	if w.step != want {
		return domainerrors.Conflictf("cannot %s on the %s step", action, w.step)
	}
	return nil
}

// SelectOccasion sets the occasion of the draft. Picking a different occasion
// replaces the detail, which drops any festival or wedding sub-type.
func (w *Wizard) SelectOccasion(o domain.Occasion) error {
	w.mu.Lock()
	if err := w.editableLocked(StepOccasion, "select an occasion"); err != nil {
		w.mu.Unlock()
		return err
	}
	if w.draft.detail.Occasion() == o {
		w.mu.Unlock()
		return nil
	}
	detail, err := domain.NewOccasionDetail(o)
	if err != nil {
		w.mu.Unlock()
		return domainerrors.Validationf("unknown occasion %q", o)
	}
	w.draft.detail = detail
	// Templates are scoped to the occasion.
	w.draft.templateID = ""
	w.mu.Unlock()

	w.notify(ChangeDraft)
	return nil
}

// SetRecipientName stores the recipient name as typed, in NFC form.
func (w *Wizard) SetRecipientName(name string) error {
	w.mu.Lock()
	if err := w.editableLocked(StepRecipient, "set the recipient"); err != nil {
		w.mu.Unlock()
		return err
	}
	w.draft.recipientName = norm.NFC.String(name)
	w.mu.Unlock()

	w.notify(ChangeDraft)
	return nil
}

// SelectFestival sets or clears (with "") the festival type of a festival draft.
func (w *Wizard) SelectFestival(f domain.FestivalType) error {
	w.mu.Lock()
	if err := w.editableLocked(StepRecipient, "select a festival"); err != nil {
		w.mu.Unlock()
		return err
	}
	if _, ok := w.draft.detail.(domain.Festival); !ok {
		w.mu.Unlock()
		return domainerrors.Validation("festival type only applies to festival wishes")
	}
	if f != "" && !f.Valid() {
		w.mu.Unlock()
		return domainerrors.Validationf("unknown festival type %q", f)
	}
	w.draft.detail = domain.Festival{Type: f}
	w.draft.templateID = ""
	w.mu.Unlock()

	w.notify(ChangeDraft)
	return nil
}

// SelectWeddingType sets or clears (with "") the wedding type of a wedding draft.
func (w *Wizard) SelectWeddingType(t domain.WeddingType) error {
	w.mu.Lock()
	if err := w.editableLocked(StepRecipient, "select a wedding type"); err != nil {
		w.mu.Unlock()
		return err
	}
	if _, ok := w.draft.detail.(domain.Wedding); !ok {
		w.mu.Unlock()
		return domainerrors.Validation("wedding type only applies to wedding wishes")
	}
	if t != "" && !t.Valid() {
		w.mu.Unlock()
		return domainerrors.Validationf("unknown wedding type %q", t)
	}
	w.draft.detail = domain.Wedding{Type: t}
	w.mu.Unlock()

	w.notify(ChangeDraft)
	return nil
}

// SetNote stores the optional personal note in NFC form.
func (w *Wizard) SetNote(note string) error {
	w.mu.Lock()
	if err := w.editableLocked(StepNote, "set the note"); err != nil {
		w.mu.Unlock()
		return err
	}
	w.draft.personalNote = norm.NFC.String(note)
	w.mu.Unlock()

	w.notify(ChangeDraft)
	return nil
}

// CanContinue reports whether the primary action of the current step is enabled.
func (w *Wizard) CanContinue() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.canContinueLocked()
}

func (w *Wizard) canContinueLocked() bool {
	if w.saving {
		return false
	}
	switch w.step {
	case StepOccasion, StepNote, StepPhotos, StepReview:
		return true
	case StepRecipient:
		return strings.TrimSpace(w.draft.recipientName) != ""
	case StepGreetingSelect:
		return w.greetings.canConfirm()
	case StepCustomize:
		return w.pendingPhotosLocked() == 0
	default:
		return false
	}
}

// Continue performs the primary action of the current step. On the review
// step that is choosing a template, on the greeting step it confirms the
// greeting. Customize finishes with Apply instead.
func (w *Wizard) Continue() (Step, error) {
	w.mu.Lock()
	switch w.step {
	case StepGreetingSelect:
		w.mu.Unlock()
		return w.ConfirmGreeting()
	case StepCustomize:
		w.mu.Unlock()
		return StepCustomize, domainerrors.Conflict("use apply to finish the wish")
	}

	if err := w.editableLocked(w.step, "continue"); err != nil {
		step := w.step
		w.mu.Unlock()
		return step, err
	}

	switch w.step {
	case StepRecipient:
		if !w.canContinueLocked() {
			w.mu.Unlock()
			return StepRecipient, domainerrors.ValidationWithDetails("recipient name is required",
				map[string]string{"recipient_name": "is required"})
		}
	case StepTemplateSelect:
		w.mu.Unlock()
		return StepTemplateSelect, domainerrors.Validation("select a template to continue")
	}

	w.step++
	step := w.step
	w.mu.Unlock()

	w.logger.Debug("wizard advanced", slog.String("step", step.String()))
	w.notify(ChangeStep)
	return step, nil
}

// ChooseTemplate leaves the review summary for template selection.
func (w *Wizard) ChooseTemplate() (Step, error) {
	w.mu.Lock()
	if err := w.editableLocked(StepReview, "choose a template"); err != nil {
		step := w.step
		w.mu.Unlock()
		return step, err
	}
	w.step = StepTemplateSelect
	w.mu.Unlock()

	w.notify(ChangeStep)
	return StepTemplateSelect, nil
}

// Back returns to the previous screen. The draft is kept; leaving the greeting
// step abandons any generation still in flight.
func (w *Wizard) Back() (Step, error) {
	w.mu.Lock()
	if w.step == StepComplete {
		w.mu.Unlock()
		return StepComplete, domainerrors.Conflict("wish has already been created")
	}
	if w.saving {
		w.mu.Unlock()
		return StepCustomize, domainerrors.Conflict("wish is being saved")
	}

	switch w.step {
	case StepOccasion:
		w.mu.Unlock()
		return StepOccasion, domainerrors.Conflict("already on the first step")
	case StepGreetingSelect:
		w.abandonGreetingsLocked()
		w.step = StepTemplateSelect
	case StepCustomize:
		w.enterGreetingSelectLocked()
	default:
		w.step--
	}
	step := w.step
	w.mu.Unlock()

	w.notify(ChangeStep)
	return step, nil
}
