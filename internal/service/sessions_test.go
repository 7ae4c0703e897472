package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wishcraft/wishcraft-server/internal/domain"
	domainerrors "github.com/wishcraft/wishcraft-server/internal/errors"
	"github.com/wishcraft/wishcraft-server/internal/greeting"
	"github.com/wishcraft/wishcraft-server/internal/sse"
	"github.com/wishcraft/wishcraft-server/internal/store"
	"github.com/wishcraft/wishcraft-server/internal/wizard"
)

type recordedEvent struct {
	sessionID string
	eventType sse.EventType
	data      any
}

type recordingSink struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recordingSink) EmitToSession(sessionID string, eventType sse.EventType, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{sessionID, eventType, data})
}

func (r *recordingSink) find(t sse.EventType) (recordedEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.eventType == t {
			return e, true
		}
	}
	return recordedEvent{}, false
}

func setupSessions(t *testing.T, drafts store.DraftStore) (*WizardSessions, *recordingSink) {
	t.Helper()
	if drafts == nil {
		d, err := store.OpenDraftsInMemory(nil)
		require.NoError(t, err)
		t.Cleanup(func() { d.Close() })
		drafts = d
	}
	sink := &recordingSink{}
	deps := wizard.Deps{
		Generator: greeting.NewStatic(),
		Persister: wizard.PersisterFunc(func(context.Context, domain.CompletedDraft) (string, error) {
			return "amir-birthday-abcd", nil
		}),
		Logger: discardLogger(),
	}
	s := NewWizardSessions(drafts, deps, sink, WizardSessionsConfig{
		TTL:       time.Hour,
		PublicURL: "https://wishes.example",
	}, discardLogger())
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s, sink
}

// walkToGreetings drives a fresh wizard to the greeting screen.
func walkToGreetings(t *testing.T, w *wizard.Wizard) {
	t.Helper()
	_, err := w.Continue()
	require.NoError(t, err)
	require.NoError(t, w.SetRecipientName("Amir"))
	for range 3 {
		_, err = w.Continue()
		require.NoError(t, err)
	}
	_, err = w.ChooseTemplate()
	require.NoError(t, err)
	_, err = w.SelectTemplate("birthday-balloons")
	require.NoError(t, err)
}

func TestWizardSessions_CreateAndGet(t *testing.T) {
	s, _ := setupSessions(t, nil)
	ctx := context.Background()

	w, err := s.Create(ctx)
	require.NoError(t, err)
	assert.Regexp(t, `^wiz-`, w.ID())

	got, err := s.Get(ctx, w.ID())
	require.NoError(t, err)
	assert.Same(t, w, got)
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Exists(ctx, w.ID()))

	_, err = s.Get(ctx, "wiz-unknown")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	assert.False(t, s.Exists(ctx, "wiz-unknown"))
}

func TestWizardSessions_RestoresFromSnapshot(t *testing.T) {
	drafts, err := store.OpenDraftsInMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { drafts.Close() })
	ctx := context.Background()

	first, _ := setupSessions(t, drafts)
	w, err := first.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, w.SelectOccasion(domain.OccasionWedding))
	_, err = w.Continue()
	require.NoError(t, err)
	require.NoError(t, w.SetRecipientName("Priya"))
	require.NoError(t, w.SelectWeddingType(domain.WeddingEngagement))

	// A second registry over the same drafts stands in for a restarted server.
	second, _ := setupSessions(t, drafts)
	restored, err := second.Get(ctx, w.ID())
	require.NoError(t, err)
	assert.NotSame(t, w, restored)

	st := restored.State()
	assert.Equal(t, "recipient", st.Step)
	assert.Equal(t, "Priya", st.RecipientName)
	assert.Equal(t, domain.OccasionWedding, st.Occasion)
	assert.Equal(t, domain.WeddingEngagement, st.WeddingType)
}

func TestWizardSessions_GeneratesGreetingsOnEntry(t *testing.T) {
	s, sink := setupSessions(t, nil)
	ctx := context.Background()

	w, err := s.Create(ctx)
	require.NoError(t, err)
	walkToGreetings(t, w)

	require.Eventually(t, func() bool {
		g := w.State().Greetings
		return g != nil && !g.Loading && len(g.Variations) == 3
	}, 2*time.Second, 10*time.Millisecond)

	e, ok := sink.find(sse.EventGreetingsReady)
	require.True(t, ok)
	assert.Equal(t, w.ID(), e.sessionID)
}

func TestWizardSessions_ApplyEmitsWishCreated(t *testing.T) {
	s, sink := setupSessions(t, nil)
	ctx := context.Background()

	w, err := s.Create(ctx)
	require.NoError(t, err)
	walkToGreetings(t, w)
	require.Eventually(t, func() bool {
		g := w.State().Greetings
		return g != nil && len(g.Variations) == 3
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, w.SelectVariation("formal"))
	_, err = w.ConfirmGreeting()
	require.NoError(t, err)

	slug, err := w.Apply(ctx)
	require.NoError(t, err)
	assert.Equal(t, "amir-birthday-abcd", slug)

	e, ok := sink.find(sse.EventWishCreated)
	require.True(t, ok)
	assert.Equal(t, sse.WishCreatedData{
		Slug: "amir-birthday-abcd",
		URL:  "https://wishes.example/wishes/amir-birthday-abcd",
	}, e.data)

	_, ok = sink.find(sse.EventWishSaving)
	assert.True(t, ok)
}

func TestWizardSessions_EvictsIdle(t *testing.T) {
	s, _ := setupSessions(t, nil)
	ctx := context.Background()

	w, err := s.Create(ctx)
	require.NoError(t, err)
	_, err = w.Continue()
	require.NoError(t, err)
	require.NoError(t, w.SetRecipientName("Amir"))

	// Jump past the idle window.
	s.now = func() time.Time { return time.Now().Add(time.Hour) }
	assert.Equal(t, 1, s.evictIdle())
	assert.Zero(t, s.Len())

	restored, err := s.Get(ctx, w.ID())
	require.NoError(t, err)
	assert.Equal(t, "Amir", restored.State().RecipientName)
	assert.Equal(t, 1, s.Len())
}

// gatedDrafts holds the first armed SaveDraft until release is closed.
type gatedDrafts struct {
	store.DraftStore

	mu      sync.Mutex
	armed   bool
	entered chan struct{}
	release chan struct{}
	last    []byte
}

func (g *gatedDrafts) SaveDraft(ctx context.Context, id string, data []byte, ttl time.Duration) error {
	g.mu.Lock()
	hold := g.armed
	g.armed = false
	g.mu.Unlock()

	if hold {
		close(g.entered)
		<-g.release
	}

	g.mu.Lock()
	g.last = data
	g.mu.Unlock()
	return g.DraftStore.SaveDraft(ctx, id, data, ttl)
}

func TestWizardSessions_SnapshotsLandInOrder(t *testing.T) {
	inner, err := store.OpenDraftsInMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { inner.Close() })
	drafts := &gatedDrafts{
		DraftStore: inner,
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}

	s, _ := setupSessions(t, drafts)
	ctx := context.Background()

	w, err := s.Create(ctx)
	require.NoError(t, err)
	_, err = w.Continue()
	require.NoError(t, err)

	drafts.mu.Lock()
	drafts.armed = true
	drafts.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		assert.NoError(t, w.SetRecipientName("Amir"))
	}()
	<-drafts.entered

	// The older write is stuck in the store while a newer change arrives.
	go func() {
		defer wg.Done()
		assert.NoError(t, w.SetRecipientName("Leila"))
	}()
	require.Eventually(t, func() bool {
		return w.State().RecipientName == "Leila"
	}, time.Second, time.Millisecond)

	close(drafts.release)
	wg.Wait()

	drafts.mu.Lock()
	last := drafts.last
	drafts.mu.Unlock()
	var snap wizard.Snapshot
	require.NoError(t, json.Unmarshal(last, &snap))
	assert.Equal(t, "Leila", snap.RecipientName)

	stored, err := inner.LoadDraft(ctx, w.ID())
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(stored, &snap))
	assert.Equal(t, "Leila", snap.RecipientName)

	s.savesMu.Lock()
	assert.Empty(t, s.saves)
	s.savesMu.Unlock()
}
