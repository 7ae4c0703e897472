package wizard

import (
	"context"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	domainerrors "github.com/wishcraft/wishcraft-server/internal/errors"
	"github.com/wishcraft/wishcraft-server/internal/media/images"
)

// MaxPhotos is the number of photos a draft can carry.
const MaxPhotos = 5

const conversionWorkers = 4

// photoSlot is reserved at upload time so that conversions finishing out of
// order still land where the user put them.
type photoSlot struct {
	id          uint64
	pending     bool
	data        []byte
	contentType string
	preview     string
	placeholder string
}

// AddResult reports what happened to an upload batch.
type AddResult struct {
	Accepted  int `json:"accepted"`
	Truncated int `json:"truncated"`
	Rejected  int `json:"rejected"`
}

// AddPhotos appends files to the draft in the given order. Files beyond the
// five photo cap are ignored. Each accepted file gets a slot immediately and
// is converted in parallel; a file that fails to convert is removed from its
// slot without disturbing the others.
func (w *Wizard) AddPhotos(ctx context.Context, files [][]byte) (AddResult, error) {
	w.mu.Lock()
	if err := w.editableLocked(StepPhotos, "add photos"); err != nil {
		w.mu.Unlock()
		return AddResult{}, err
	}

	free := max(MaxPhotos-len(w.draft.photos), 0)
	accepted := files
	if len(accepted) > free {
		accepted = accepted[:free]
	}
	slots := make([]*photoSlot, len(accepted))
	for i, data := range accepted {
		w.nextSlot++
		slots[i] = &photoSlot{id: w.nextSlot, pending: true, data: data}
		w.draft.photos = append(w.draft.photos, slots[i])
	}
	w.mu.Unlock()

	result := AddResult{Accepted: len(accepted), Truncated: len(files) - len(accepted)}
	if len(slots) == 0 {
		return result, nil
	}
	w.notify(ChangePhotos)

	previews := make([]images.Preview, len(slots))
	errs := make([]error, len(slots))

	var g errgroup.Group
	g.SetLimit(conversionWorkers)
	for i, slot := range slots {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			previews[i], errs[i] = w.converter.Preview(slot.data)
			return nil
		})
	}
	_ = g.Wait()

	w.mu.Lock()
	for i, slot := range slots {
		idx := w.slotIndexLocked(slot.id)
		if idx < 0 {
			// Removed while converting.
			continue
		}
		if errs[i] != nil {
			w.logger.Warn("photo rejected",
				slog.Int("index", idx),
				slog.String("error", errs[i].Error()))
			w.draft.photos = slices.Delete(w.draft.photos, idx, idx+1)
			result.Accepted--
			result.Rejected++
			continue
		}
		slot.pending = false
		slot.contentType = previews[i].ContentType
		slot.preview = previews[i].DataURL
		slot.placeholder = previews[i].Placeholder
	}
	w.mu.Unlock()

	w.notify(ChangePhotos)
	return result, nil
}

// RemovePhoto drops the photo at index i. Later photos move up by one.
func (w *Wizard) RemovePhoto(i int) error {
	w.mu.Lock()
	if err := w.editableLocked(StepPhotos, "remove photos"); err != nil {
		w.mu.Unlock()
		return err
	}
	if i < 0 || i >= len(w.draft.photos) {
		n := len(w.draft.photos)
		w.mu.Unlock()
		return domainerrors.Validationf("photo index %d out of range [0, %d)", i, n)
	}
	w.draft.photos = slices.Delete(w.draft.photos, i, i+1)
	w.mu.Unlock()

	w.notify(ChangePhotos)
	return nil
}

func (w *Wizard) slotIndexLocked(id uint64) int {
	return slices.IndexFunc(w.draft.photos, func(s *photoSlot) bool { return s.id == id })
}

func (w *Wizard) pendingPhotosLocked() int {
	n := 0
	for _, s := range w.draft.photos {
		if s.pending {
			n++
		}
	}
	return n
}
