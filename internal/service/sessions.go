package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	domainerrors "github.com/wishcraft/wishcraft-server/internal/errors"
	"github.com/wishcraft/wishcraft-server/internal/id"
	"github.com/wishcraft/wishcraft-server/internal/share"
	"github.com/wishcraft/wishcraft-server/internal/sse"
	"github.com/wishcraft/wishcraft-server/internal/store"
	"github.com/wishcraft/wishcraft-server/internal/wizard"
)

// SessionIDPrefix prefixes every wizard session id.
const SessionIDPrefix = "wiz"

// snapshotTimeout bounds a single draft write.
const snapshotTimeout = 5 * time.Second

// EventSink receives wizard events. *sse.Manager implements it.
type EventSink interface {
	EmitToSession(sessionID string, eventType sse.EventType, data any)
}

// WizardSessionsConfig configures the session registry.
type WizardSessionsConfig struct {
	// TTL is how long an untouched draft survives in the draft store.
	TTL time.Duration
	// IdleEvict drops a wizard from memory after this long without events.
	// It stays restorable from its snapshot until TTL passes.
	IdleEvict time.Duration
	// PublicURL is the base of the wish links sent with wish.created.
	PublicURL string
}

type liveSession struct {
	wizard   *wizard.Wizard
	lastSeen time.Time
}

// saveLock orders the snapshot writes of one session.
type saveLock struct {
	mu   sync.Mutex
	refs int
}

// WizardSessions owns the live wizards. Every change is snapshotted to the
// draft store so a session outlives a restart or an eviction from memory.
type WizardSessions struct {
	mu   sync.Mutex
	live map[string]*liveSession

	// saves holds a lock per session with a snapshot write in progress.
	savesMu sync.Mutex
	saves   map[string]*saveLock

	drafts store.DraftStore
	deps   wizard.Deps
	events EventSink
	cfg    WizardSessionsConfig
	logger *slog.Logger
	now    func() time.Time

	// Greeting generation started on step entry runs under this context so
	// it outlives the HTTP request that triggered it.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWizardSessions creates a session registry. deps.OnChange is ignored;
// the registry installs its own observer on every wizard.
func NewWizardSessions(drafts store.DraftStore, deps wizard.Deps, events EventSink, cfg WizardSessionsConfig, logger *slog.Logger) *WizardSessions {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.IdleEvict <= 0 {
		cfg.IdleEvict = 30 * time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &WizardSessions{
		live:   make(map[string]*liveSession),
		saves:  make(map[string]*saveLock),
		drafts: drafts,
		deps:   deps,
		events: events,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Create starts a new wizard session.
func (s *WizardSessions) Create(ctx context.Context) (*wizard.Wizard, error) {
	sessionID, err := id.Generate(SessionIDPrefix)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to create wizard session")
	}

	var w *wizard.Wizard
	w = wizard.New(sessionID, s.depsFor(sessionID, func() *wizard.Wizard { return w }))

	s.mu.Lock()
	s.live[sessionID] = &liveSession{wizard: w, lastSeen: s.now()}
	s.mu.Unlock()

	if err := s.save(ctx, w); err != nil {
		s.logger.Warn("failed to snapshot new wizard", "session_id", sessionID, "error", err)
	}
	s.logger.Info("Wizard session created", "session_id", sessionID)
	return w, nil
}

// Get returns the wizard for sessionID, restoring it from its snapshot when
// it is not in memory. Unknown or expired sessions are NOT_FOUND.
func (s *WizardSessions) Get(ctx context.Context, sessionID string) (*wizard.Wizard, error) {
	s.mu.Lock()
	if ls, ok := s.live[sessionID]; ok {
		ls.lastSeen = s.now()
		s.mu.Unlock()
		return ls.wizard, nil
	}
	s.mu.Unlock()

	if s.drafts == nil {
		return nil, domainerrors.NotFoundf("wizard session %q not found", sessionID)
	}
	data, err := s.drafts.LoadDraft(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFoundf("wizard session %q not found", sessionID)
	}
	if err != nil {
		return nil, domainerrors.FromCall(err, "failed to load wizard session")
	}

	var snap wizard.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeDataIntegrity, "corrupt wizard snapshot")
	}
	if snap.ID != sessionID {
		return nil, domainerrors.DataIntegrity("wizard snapshot id mismatch")
	}

	var w *wizard.Wizard
	w, err = wizard.Restore(snap, s.depsFor(sessionID, func() *wizard.Wizard { return w }))
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if ls, ok := s.live[sessionID]; ok {
		// Another request restored it first.
		ls.lastSeen = s.now()
		s.mu.Unlock()
		return ls.wizard, nil
	}
	s.live[sessionID] = &liveSession{wizard: w, lastSeen: s.now()}
	s.mu.Unlock()

	s.logger.Info("Wizard session restored", "session_id", sessionID, "step", w.Step().String())
	s.StartGreetings(w)
	return w, nil
}

// Exists reports whether sessionID can be loaded.
func (s *WizardSessions) Exists(ctx context.Context, sessionID string) bool {
	_, err := s.Get(ctx, sessionID)
	return err == nil
}

// Len returns the number of wizards held in memory.
func (s *WizardSessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// StartGreetings runs the pending greeting generation of w in the background.
// It does nothing unless the wizard is waiting for one.
func (s *WizardSessions) StartGreetings(w *wizard.Wizard) {
	if !w.NeedsGreetings() {
		return
	}
	if s.ctx.Err() != nil {
		return
	}
	s.wg.Go(func() {
		err := w.RequestGreetings(s.ctx)
		switch {
		case err == nil:
		case errors.Is(err, domainerrors.ErrStale):
			s.logger.Debug("background greetings superseded", "session_id", w.ID())
		default:
			s.logger.Warn("background greetings failed", "session_id", w.ID(), "error", err)
		}
	})
}

func (s *WizardSessions) depsFor(sessionID string, self func() *wizard.Wizard) wizard.Deps {
	deps := s.deps
	deps.OnChange = func(c wizard.Change) {
		if w := self(); w != nil {
			s.changed(w, c)
		}
	}
	return deps
}

// changed runs after every wizard event, outside the wizard lock.
func (s *WizardSessions) changed(w *wizard.Wizard, c wizard.Change) {
	s.mu.Lock()
	if ls, ok := s.live[w.ID()]; ok {
		ls.lastSeen = s.now()
	}
	s.mu.Unlock()

	// Saving only flips a flag that a snapshot does not keep.
	if c != wizard.ChangeSaving {
		ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
		if err := s.save(ctx, w); err != nil {
			s.logger.Warn("failed to snapshot wizard", "session_id", w.ID(), "error", err)
		}
		cancel()
	}

	if s.events != nil {
		s.events.EmitToSession(w.ID(), sse.EventType(c), s.eventData(w, c))
	}

	if c == wizard.ChangeStep {
		s.StartGreetings(w)
	}
}

func (s *WizardSessions) eventData(w *wizard.Wizard, c wizard.Change) any {
	switch c {
	case wizard.ChangeCompleted:
		slug := w.Slug()
		return sse.WishCreatedData{Slug: slug, URL: share.WishURL(s.cfg.PublicURL, slug)}
	case wizard.ChangeGreetingsReady, wizard.ChangeGreetingsFailed:
		return w.State().Greetings
	default:
		return w.State()
	}
}

// save writes the wizard's snapshot. Writes for one session are serialized
// and the snapshot is taken once the write may proceed, so the last write
// always carries the newest state.
func (s *WizardSessions) save(ctx context.Context, w *wizard.Wizard) error {
	if s.drafts == nil {
		return nil
	}
	unlock := s.lockSaves(w.ID())
	defer unlock()

	data, err := json.Marshal(w.Snapshot())
	if err != nil {
		return err
	}
	return s.drafts.SaveDraft(ctx, w.ID(), data, s.cfg.TTL)
}

func (s *WizardSessions) lockSaves(sessionID string) func() {
	s.savesMu.Lock()
	l, ok := s.saves[sessionID]
	if !ok {
		l = &saveLock{}
		s.saves[sessionID] = l
	}
	l.refs++
	s.savesMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.savesMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.saves, sessionID)
		}
		s.savesMu.Unlock()
	}
}

// Run evicts idle wizards from memory until ctx is done. Evicted sessions
// are restored from their snapshots on the next request.
func (s *WizardSessions) Run(ctx context.Context) {
	interval := s.cfg.IdleEvict / 2
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.evictIdle(); n > 0 {
				s.logger.Debug("evicted idle wizard sessions", "count", n)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *WizardSessions) evictIdle() int {
	cutoff := s.now().Add(-s.cfg.IdleEvict)

	s.mu.Lock()
	var idle []*liveSession
	for _, ls := range s.live {
		if ls.lastSeen.Before(cutoff) {
			idle = append(idle, ls)
		}
	}
	s.mu.Unlock()

	n := 0
	for _, ls := range idle {
		st := ls.wizard.State()
		if st.Saving || ls.wizard.NeedsGreetings() || (st.Greetings != nil && st.Greetings.Loading) {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
		err := s.save(ctx, ls.wizard)
		cancel()
		if err != nil {
			s.logger.Warn("keeping wizard in memory, snapshot failed", "session_id", ls.wizard.ID(), "error", err)
			continue
		}
		s.mu.Lock()
		if cur, ok := s.live[ls.wizard.ID()]; ok && cur == ls && cur.lastSeen.Before(cutoff) {
			delete(s.live, ls.wizard.ID())
			n++
		}
		s.mu.Unlock()
	}
	return n
}

// Shutdown stops background generation and snapshots every live wizard.
func (s *WizardSessions) Shutdown(ctx context.Context) error {
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("timed out waiting for greeting requests")
	}

	s.mu.Lock()
	wizards := make([]*wizard.Wizard, 0, len(s.live))
	for _, ls := range s.live {
		wizards = append(wizards, ls.wizard)
	}
	s.mu.Unlock()

	var errs []error
	for _, w := range wizards {
		if err := s.save(ctx, w); err != nil {
			errs = append(errs, err)
		}
	}
	s.logger.Info("Wizard sessions saved", "count", len(wizards))
	return errors.Join(errs...)
}
