package sse

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func receive(t *testing.T, c *Client) (Event, bool) {
	t.Helper()
	select {
	case e := <-c.EventChan:
		return e, true
	case <-time.After(200 * time.Millisecond):
		return Event{}, false
	}
}

func TestManager_FiltersBySession(t *testing.T) {
	m := NewManager(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Start(ctx)

	a, err := m.Connect("wiz-a")
	require.NoError(t, err)
	b, err := m.Connect("wiz-b")
	require.NoError(t, err)
	all, err := m.Connect("")
	require.NoError(t, err)
	assert.Equal(t, 3, m.ClientCount())
	assert.Equal(t, 1, m.Watchers("wiz-a"))

	m.EmitToSession("wiz-a", EventStepChanged, map[string]string{"step": "recipient"})

	e, ok := receive(t, a)
	require.True(t, ok)
	assert.Equal(t, EventStepChanged, e.Type)
	assert.Equal(t, "wiz-a", e.SessionID)

	_, ok = receive(t, all)
	assert.True(t, ok)

	_, ok = receive(t, b)
	assert.False(t, ok, "other session must not receive the event")
}

func TestManager_Disconnect(t *testing.T) {
	m := NewManager(testLogger())

	c, err := m.Connect("wiz-a")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(c.ID, "sse-"))

	m.Disconnect(c.ID)
	assert.Equal(t, 0, m.ClientCount())
	assert.Equal(t, 0, m.Watchers("wiz-a"))

	_, open := <-c.EventChan
	assert.False(t, open)

	// Second disconnect is a no-op.
	m.Disconnect(c.ID)
}

func TestManager_EmitAfterShutdown(t *testing.T) {
	m := NewManager(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Start(ctx)

	require.NoError(t, m.Shutdown(context.Background()))
	assert.NotPanics(t, func() {
		m.EmitToSession("wiz-a", EventDraftUpdated, nil)
	})
	require.NoError(t, m.Shutdown(context.Background()))
}

func TestHandler_StreamsSessionEvents(t *testing.T) {
	m := NewManager(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Start(ctx)

	h := NewHandler(m, func(_ context.Context, id string) bool { return id == "wiz-a" }, testLogger())
	r := chi.NewRouter()
	r.Get("/wizard/{id}/events", h.ServeHTTP)
	srv := httptest.NewServer(r)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/wizard/wiz-missing/events")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	reqCtx, reqCancel := context.WithCancel(context.Background())
	defer reqCancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, srv.URL+"/wizard/wiz-a/events", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: connected\n", line)

	// Skip the data line and the blank separator.
	_, _ = reader.ReadString('\n')
	_, _ = reader.ReadString('\n')

	require.Eventually(t, func() bool { return m.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	m.EmitToSession("wiz-a", EventWishCreated, WishCreatedData{Slug: "ana-birthday-ab12"})

	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: wish.created\n", line)
	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, `"slug":"ana-birthday-ab12"`)
}
