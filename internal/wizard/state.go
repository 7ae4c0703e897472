package wizard

import (
	"strings"

	"github.com/wishcraft/wishcraft-server/internal/catalog"
	"github.com/wishcraft/wishcraft-server/internal/domain"
)

// reviewPhotoLimit is how many previews the review summary shows before "+N".
const reviewPhotoLimit = 3

// PhotoView is one photo slot as shown to the client.
type PhotoView struct {
	Index       int    `json:"index"`
	Preview     string `json:"preview,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	Pending     bool   `json:"pending"`
}

// Review is the read-only summary shown before choosing a template.
type Review struct {
	Occasion      domain.OccasionInfo     `json:"occasion"`
	Festival      *domain.FestivalInfo    `json:"festival,omitempty"`
	WeddingType   *domain.WeddingTypeInfo `json:"wedding_type,omitempty"`
	RecipientName string                  `json:"recipient_name"`
	PersonalNote  string                  `json:"personal_note,omitempty"`
	PhotoCount    int                     `json:"photo_count"`
	PhotoPreviews []string                `json:"photo_previews"`
	MorePhotos    int                     `json:"more_photos"`
}

// State is everything a client needs to render the current screen.
type State struct {
	SessionID     string `json:"session_id"`
	Step          string `json:"step"`
	StepNumber    int    `json:"step_number"`
	Progress      string `json:"progress,omitempty"`
	CanContinue   bool   `json:"can_continue"`
	CanGoBack     bool   `json:"can_go_back"`
	ContinueLabel string `json:"continue_label,omitempty"`

	Occasion           domain.Occasion       `json:"occasion"`
	FestivalType       domain.FestivalType   `json:"festival_type,omitempty"`
	WeddingType        domain.WeddingType    `json:"wedding_type,omitempty"`
	ShowFestivalPicker bool                  `json:"show_festival_picker"`
	ShowWeddingPicker  bool                  `json:"show_wedding_picker"`
	RecipientName      string                `json:"recipient_name"`
	PersonalNote       string                `json:"personal_note"`
	Photos             []PhotoView           `json:"photos"`
	Review             *Review               `json:"review,omitempty"`
	Templates          []domain.Template     `json:"templates,omitempty"`
	TemplateID         string                `json:"template_id,omitempty"`
	Greetings          *Greetings            `json:"greetings,omitempty"`
	Greeting           string                `json:"greeting,omitempty"`
	Customization      *domain.Customization `json:"customization,omitempty"`
	Saving             bool                  `json:"saving"`
	PersistError       string                `json:"persist_error,omitempty"`
	Slug               string                `json:"slug,omitempty"`
}

// State returns a copy of the wizard state.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	occ := w.draft.detail.Occasion()
	s := State{
		SessionID:          w.id,
		Step:               w.step.String(),
		StepNumber:         int(w.step),
		Progress:           w.step.Progress(),
		CanContinue:        w.canContinueLocked(),
		CanGoBack:          w.step > StepOccasion && w.step < StepComplete && !w.saving,
		ContinueLabel:      w.step.ContinueLabel(),
		Occasion:           occ,
		FestivalType:       domain.FestivalOf(w.draft.detail),
		WeddingType:        domain.WeddingOf(w.draft.detail),
		ShowFestivalPicker: occ == domain.OccasionFestival,
		ShowWeddingPicker:  occ == domain.OccasionWedding,
		RecipientName:      w.draft.recipientName,
		PersonalNote:       w.draft.personalNote,
		Photos:             w.photoViewsLocked(),
		TemplateID:         w.draft.templateID,
		Greeting:           w.draft.greeting,
		Saving:             w.saving,
		PersistError:       w.persistErr,
		Slug:               w.slug,
	}

	switch w.step {
	case StepReview:
		r := w.reviewLocked()
		s.Review = &r
	case StepTemplateSelect:
		s.Templates = catalog.TemplatesFor(occ, s.FestivalType)
	case StepGreetingSelect:
		g := w.greetings.clone()
		s.Greetings = &g
	case StepCustomize:
		c := w.draft.customization
		s.Customization = &c
	}
	return s
}

// Review returns the review summary of the draft.
func (w *Wizard) Review() Review {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reviewLocked()
}

func (w *Wizard) reviewLocked() Review {
	r := Review{
		RecipientName: strings.TrimSpace(w.draft.recipientName),
		PersonalNote:  strings.TrimSpace(w.draft.personalNote),
		PhotoCount:    len(w.draft.photos),
		PhotoPreviews: []string{},
	}
	r.Occasion, r.Festival, r.WeddingType = describeDetail(w.draft.detail)
	for i, s := range w.draft.photos {
		if i == reviewPhotoLimit {
			break
		}
		r.PhotoPreviews = append(r.PhotoPreviews, s.preview)
	}
	r.MorePhotos = max(len(w.draft.photos)-reviewPhotoLimit, 0)
	return r
}

func (w *Wizard) photoViewsLocked() []PhotoView {
	views := make([]PhotoView, len(w.draft.photos))
	for i, s := range w.draft.photos {
		views[i] = PhotoView{Index: i, Preview: s.preview, Placeholder: s.placeholder, Pending: s.pending}
	}
	return views
}
