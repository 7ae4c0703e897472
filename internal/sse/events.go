// Package sse implements Server-Sent Events for live wizard session updates.
package sse

import (
	"time"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventConnected is the first event on every stream.
	EventConnected EventType = "connected"
	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"

	// EventDraftUpdated is sent after any edit to the draft.
	EventDraftUpdated EventType = "draft.updated"
	// EventStepChanged is sent when the wizard moves to another step.
	EventStepChanged EventType = "step.changed"
	// EventPhotosUpdated is sent when photo slots are added, converted or removed.
	EventPhotosUpdated EventType = "photos.updated"
	// EventGreetingsReady carries freshly generated variations.
	EventGreetingsReady EventType = "greetings.ready"
	// EventGreetingsFailed is sent when greeting generation failed.
	EventGreetingsFailed EventType = "greetings.failed"
	// EventWishSaving is sent when Apply starts persisting the draft.
	EventWishSaving EventType = "wish.saving"
	// EventWishFailed is sent when persisting the draft failed.
	EventWishFailed EventType = "wish.failed"
	// EventWishCreated is sent once the wish exists; Data carries the slug.
	EventWishCreated EventType = "wish.created"
)

// Event represents an SSE event to be sent to clients.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`
	// SessionID scopes the event to clients watching that wizard session.
	// Empty means every client receives it.
	SessionID string `json:"session_id,omitempty"`
}

// NewSessionEvent creates an event for one wizard session.
func NewSessionEvent(sessionID string, eventType EventType, data any) Event {
	return Event{
		Type:      eventType,
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// NewHeartbeatEvent creates a keepalive event.
func NewHeartbeatEvent() Event {
	return Event{
		Type:      EventHeartbeat,
		Data:      map[string]any{},
		Timestamp: time.Now(),
	}
}

// WishCreatedData is the payload of EventWishCreated.
type WishCreatedData struct {
	Slug string `json:"slug"`
	URL  string `json:"url"`
}
