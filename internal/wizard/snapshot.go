package wizard

import (
	"fmt"

	"github.com/wishcraft/wishcraft-server/internal/domain"
	domainerrors "github.com/wishcraft/wishcraft-server/internal/errors"
)

// Snapshot is the serializable form of a wizard, used to survive restarts.
// Photos still converting and requests in flight are not part of it.
type Snapshot struct {
	ID            string               `json:"id"`
	Step          Step                 `json:"step"`
	Occasion      domain.Occasion      `json:"occasion"`
	FestivalType  domain.FestivalType  `json:"festival_type,omitempty"`
	WeddingType   domain.WeddingType   `json:"wedding_type,omitempty"`
	RecipientName string               `json:"recipient_name,omitempty"`
	PersonalNote  string               `json:"personal_note,omitempty"`
	Photos        []SnapshotPhoto      `json:"photos,omitempty"`
	TemplateID    string               `json:"template_id,omitempty"`
	Greeting      string               `json:"greeting,omitempty"`
	Greetings     Greetings            `json:"greetings"`
	Customization domain.Customization `json:"customization"`
	PersistError  string               `json:"persist_error,omitempty"`
	Slug          string               `json:"slug,omitempty"`
}

// SnapshotPhoto is a converted photo slot.
type SnapshotPhoto struct {
	Data        []byte `json:"data"`
	ContentType string `json:"content_type"`
	Preview     string `json:"preview"`
	Placeholder string `json:"placeholder,omitempty"`
}

// Snapshot captures the current draft.
func (w *Wizard) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap := Snapshot{
		ID:            w.id,
		Step:          w.step,
		Occasion:      w.draft.detail.Occasion(),
		FestivalType:  domain.FestivalOf(w.draft.detail),
		WeddingType:   domain.WeddingOf(w.draft.detail),
		RecipientName: w.draft.recipientName,
		PersonalNote:  w.draft.personalNote,
		TemplateID:    w.draft.templateID,
		Greeting:      w.draft.greeting,
		Greetings:     w.greetings.clone(),
		Customization: w.draft.customization,
		PersistError:  w.persistErr,
		Slug:          w.slug,
	}
	for _, s := range w.draft.photos {
		if s.pending {
			continue
		}
		snap.Photos = append(snap.Photos, SnapshotPhoto{
			Data:        s.data,
			ContentType: s.contentType,
			Preview:     s.preview,
			Placeholder: s.placeholder,
		})
	}
	return snap
}

// Restore rebuilds a wizard from a snapshot. A greeting screen that was
// loading comes back waiting for a new generation.
func Restore(snap Snapshot, deps Deps) (*Wizard, error) {
	if !snap.Step.Valid() {
		return nil, domainerrors.DataIntegrity(fmt.Sprintf("snapshot %s has unknown step %d", snap.ID, snap.Step))
	}
	detail, err := domain.DetailFrom(snap.Occasion, snap.FestivalType, snap.WeddingType)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeDataIntegrity, "snapshot "+snap.ID+" has an invalid occasion")
	}
	if len(snap.Photos) > MaxPhotos {
		return nil, domainerrors.DataIntegrity(fmt.Sprintf("snapshot %s has %d photos", snap.ID, len(snap.Photos)))
	}

	w := &Wizard{
		id:   snap.ID,
		step: snap.Step,
		draft: draft{
			detail:        detail,
			recipientName: snap.RecipientName,
			personalNote:  snap.PersonalNote,
			templateID:    snap.TemplateID,
			greeting:      snap.Greeting,
			customization: snap.Customization,
		},
		greetings:  snap.Greetings.clone(),
		persistErr: snap.PersistError,
		slug:       snap.Slug,
	}
	for _, p := range snap.Photos {
		w.nextSlot++
		w.draft.photos = append(w.draft.photos, &photoSlot{
			id:          w.nextSlot,
			data:        p.Data,
			contentType: p.ContentType,
			preview:     p.Preview,
			placeholder: p.Placeholder,
		})
	}
	if w.step == StepGreetingSelect && len(w.greetings.Variations) == 0 && w.greetings.Error == "" {
		w.greetings.Loading = true
	}
	w.setDeps(deps)
	return w, nil
}
