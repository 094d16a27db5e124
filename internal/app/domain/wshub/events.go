// Package wshub implements the WebSocket Hub (spec §4.D): per-request
// channels, session-scoped subscription, backlog replay for late
// subscribers, and ticket-bound connection auth.
package wshub

import "encoding/json"

// EventType names the wire event kinds pushed to subscribers.
type EventType string

const (
	EventStatus    EventType = "status"
	EventAssistant EventType = "assistant"
	EventTerminal  EventType = "terminal"
)

// Event is one published message for a (channel, requestId) subscription.
type Event struct {
	Type      EventType       `json:"type"`
	RequestID string          `json:"requestId"`
	Payload   json.RawMessage `json:"payload"`
	seq       uint64
}

// SubAck is the idempotent acknowledgement sent once a subscription is
// registered.
type SubAck struct {
	Type      string `json:"type"`
	Channel   string `json:"channel"`
	RequestID string `json:"requestId"`
	Pending   int    `json:"pending"`
}

// SubNack is sent when a subscribe request cannot be honoured.
type SubNack struct {
	Type      string `json:"type"`
	Channel   string `json:"channel"`
	RequestID string `json:"requestId"`
	Reason    string `json:"reason"`
}

func newEvent(t EventType, requestID string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Type: t, RequestID: requestID, Payload: raw}, nil
}
