package wizard

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/wishcraft/wishcraft-server/internal/catalog"
	"github.com/wishcraft/wishcraft-server/internal/domain"
	domainerrors "github.com/wishcraft/wishcraft-server/internal/errors"
	"github.com/wishcraft/wishcraft-server/internal/validation"
)

// CustomizationPatch changes some fields of the customization. Nil fields are kept.
type CustomizationPatch struct {
	BackgroundColor *string             `json:"background_color,omitempty"`
	TextColor       *string             `json:"text_color,omitempty"`
	AccentColor     *string             `json:"accent_color,omitempty"`
	FontFamily      *string             `json:"font_family,omitempty"`
	PhotoLayout     *domain.PhotoLayout `json:"photo_layout,omitempty"`
	CustomGreeting  *string             `json:"custom_greeting,omitempty"`
}

func (p CustomizationPatch) apply(c domain.Customization) domain.Customization {
	if p.BackgroundColor != nil {
		c.BackgroundColor = strings.TrimSpace(*p.BackgroundColor)
	}
	if p.TextColor != nil {
		c.TextColor = strings.TrimSpace(*p.TextColor)
	}
	if p.AccentColor != nil {
		c.AccentColor = strings.TrimSpace(*p.AccentColor)
	}
	if p.FontFamily != nil {
		c.FontFamily = *p.FontFamily
	}
	if p.PhotoLayout != nil {
		c.PhotoLayout = *p.PhotoLayout
	}
	if p.CustomGreeting != nil {
		c.CustomGreeting = normalize(*p.CustomGreeting)
	}
	return c
}

func normalize(s string) string {
	return norm.NFC.String(s)
}

// Customize applies a patch to the customization. The greeting text may be
// blank while it is being edited; everything else must stay valid.
func (w *Wizard) Customize(patch CustomizationPatch) (domain.Customization, error) {
	w.mu.Lock()
	if err := w.editableLocked(StepCustomize, "customize"); err != nil {
		w.mu.Unlock()
		return domain.Customization{}, err
	}
	next := patch.apply(w.draft.customization)
	if err := validation.StructExcept(next, "CustomGreeting"); err != nil {
		w.mu.Unlock()
		return domain.Customization{}, err
	}
	if len(next.CustomGreeting) > maxGreetingLength {
		w.mu.Unlock()
		return domain.Customization{}, domainerrors.ValidationWithDetails("validation failed",
			map[string]string{"custom_greeting": "is too long"})
	}
	w.draft.customization = next
	w.mu.Unlock()

	w.notify(ChangeDraft)
	return next, nil
}

// ApplyPreset copies the colors of a named preset onto the customization.
func (w *Wizard) ApplyPreset(name string) (domain.Customization, error) {
	preset, ok := catalog.ColorPresetByName(name)
	if !ok {
		return domain.Customization{}, domainerrors.Validationf("unknown color preset %q", name)
	}

	w.mu.Lock()
	if err := w.editableLocked(StepCustomize, "apply a preset"); err != nil {
		w.mu.Unlock()
		return domain.Customization{}, err
	}
	preset.Apply(&w.draft.customization)
	c := w.draft.customization
	w.mu.Unlock()

	w.notify(ChangeDraft)
	return c, nil
}

// Preview is the wish page as it would look if applied now.
type Preview struct {
	RecipientName string                  `json:"recipient_name"`
	Occasion      domain.OccasionInfo     `json:"occasion"`
	Festival      *domain.FestivalInfo    `json:"festival,omitempty"`
	WeddingType   *domain.WeddingTypeInfo `json:"wedding_type,omitempty"`
	Template      *domain.Template        `json:"template,omitempty"`
	Greeting      string                  `json:"greeting"`
	PersonalNote  string                  `json:"personal_note,omitempty"`
	Customization domain.Customization    `json:"customization"`
	Photos        []string                `json:"photos"`
	Placeholders  []string                `json:"placeholders"`
}

// Preview projects the draft and its customization onto a wish page.
func (w *Wizard) Preview() (Preview, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepCustomize {
		return Preview{}, domainerrors.Conflictf("no preview on the %s step", w.step)
	}

	p := Preview{
		RecipientName: strings.TrimSpace(w.draft.recipientName),
		Greeting:      w.draft.customization.CustomGreeting,
		PersonalNote:  strings.TrimSpace(w.draft.personalNote),
		Customization: w.draft.customization,
		Photos:        make([]string, 0, len(w.draft.photos)),
		Placeholders:  make([]string, 0, len(w.draft.photos)),
	}
	p.Occasion, p.Festival, p.WeddingType = describeDetail(w.draft.detail)
	if t, ok := catalog.TemplateByID(w.draft.templateID); ok {
		p.Template = &t
	}
	for _, s := range w.draft.photos {
		if s.pending {
			continue
		}
		p.Photos = append(p.Photos, s.preview)
		p.Placeholders = append(p.Placeholders, s.placeholder)
	}
	return p, nil
}

// Apply validates the draft and hands it to the Persister. It can succeed at
// most once; on success the wizard is complete and the photo blobs are released.
func (w *Wizard) Apply(ctx context.Context) (string, error) {
	w.mu.Lock()
	if err := w.editableLocked(StepCustomize, "apply"); err != nil {
		w.mu.Unlock()
		return "", err
	}
	if w.persister == nil {
		w.mu.Unlock()
		return "", domainerrors.Internal("wizard has no persister")
	}
	if n := w.pendingPhotosLocked(); n > 0 {
		w.mu.Unlock()
		return "", domainerrors.Conflictf("%d photos are still processing", n)
	}
	completed, err := w.completedDraftLocked()
	if err != nil {
		w.mu.Unlock()
		return "", err
	}
	w.saving = true
	w.persistErr = ""
	w.persistSeq++
	token := w.persistSeq
	w.mu.Unlock()
	w.notify(ChangeSaving)

	slug, err := w.persister.Persist(ctx, completed)

	w.mu.Lock()
	if token != w.persistSeq {
		w.mu.Unlock()
		return "", domainerrors.Stale("persist request superseded")
	}
	w.saving = false
	if err != nil {
		w.persistErr = string(domainerrors.CodeOf(err))
		w.mu.Unlock()
		w.logger.Warn("wish persist failed", slog.String("error", err.Error()))
		w.notify(ChangePersistFailed)
		return "", err
	}
	w.slug = slug
	w.step = StepComplete
	w.draft.photos = nil
	w.greetings = Greetings{}
	w.mu.Unlock()

	w.logger.Info("wish created", slog.String("slug", slug))
	w.notify(ChangeCompleted)
	return slug, nil
}

func (w *Wizard) completedDraftLocked() (domain.CompletedDraft, error) {
	name := strings.TrimSpace(w.draft.recipientName)
	if name == "" {
		return domain.CompletedDraft{}, domainerrors.ValidationWithDetails("recipient name is required",
			map[string]string{"recipient_name": "is required"})
	}
	c := w.draft.customization
	c.CustomGreeting = strings.TrimSpace(c.CustomGreeting)
	if err := validation.Struct(c); err != nil {
		return domain.CompletedDraft{}, err
	}

	photos := make([]domain.PhotoUpload, 0, len(w.draft.photos))
	for _, s := range w.draft.photos {
		photos = append(photos, domain.PhotoUpload{
			Data:        s.data,
			ContentType: s.contentType,
			Placeholder: s.placeholder,
		})
	}
	return domain.CompletedDraft{
		Detail:        w.draft.detail,
		RecipientName: name,
		PersonalNote:  strings.TrimSpace(w.draft.personalNote),
		Photos:        photos,
		TemplateID:    w.draft.templateID,
		GreetingText:  c.CustomGreeting,
		Customization: c,
	}, nil
}

func describeDetail(d domain.OccasionDetail) (domain.OccasionInfo, *domain.FestivalInfo, *domain.WeddingTypeInfo) {
	info, _ := catalog.OccasionByID(d.Occasion())
	var festival *domain.FestivalInfo
	if f, ok := catalog.FestivalByID(domain.FestivalOf(d)); ok {
		festival = &f
	}
	var wedding *domain.WeddingTypeInfo
	if t, ok := catalog.WeddingTypeByID(domain.WeddingOf(d)); ok {
		wedding = &t
	}
	return info, festival, wedding
}
