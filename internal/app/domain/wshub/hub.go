package wshub

import (
	"sync"
	"time"

	"go.uber.org/zap"

	appmetrics "github.com/shacharon/placesearch/internal/app/observability/metrics"
)

const (
	// backlogSize bounds the per-request replay buffer for late subscribers.
	backlogSize = 32
	// publishSendTimeout mirrors the teacher's SendEventSafe select/timeout
	// pattern: a slow/blocked subscriber must never stall a publish.
	publishSendTimeout = 200 * time.Millisecond
)

type subscription struct {
	sessionID string
	ch        chan Event
}

// request tracks one requestId's backlog and live subscribers.
type request struct {
	mu      sync.Mutex
	backlog []Event
	subs    map[string]*subscription // subscriptionID -> subscription
	nextSeq uint64
}

// Hub owns the per-request channels and subscription maps — the "owner
// object" the spec requires in place of a module-level singleton, so
// multiple isolated instances are possible in tests.
type Hub struct {
	mu       sync.Mutex
	requests map[string]*request
	logger   *zap.Logger
}

// New builds an empty Hub.
func New(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{requests: make(map[string]*request), logger: logger}
}

func (h *Hub) requestFor(requestID string) *request {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.requests[requestID]
	if !ok {
		r = &request{subs: make(map[string]*subscription)}
		h.requests[requestID] = r
	}
	return r
}

// Subscribe registers subscriptionID for requestID/sessionID and returns a
// channel receiving the backlog immediately followed by live events. A
// duplicate subscribe for the same subscriptionID is idempotent.
func (h *Hub) Subscribe(requestID, sessionID, subscriptionID string) (<-chan Event, int) {
	r := h.requestFor(requestID)
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, exists := r.subs[subscriptionID]
	if !exists {
		sub = &subscription{sessionID: sessionID, ch: make(chan Event, backlogSize)}
		r.subs[subscriptionID] = sub
		for _, e := range r.backlog {
			sub.ch <- e
		}
	}
	return sub.ch, len(r.backlog)
}

// Unsubscribe removes a subscription, e.g. on socket close.
func (h *Hub) Unsubscribe(requestID, subscriptionID string) {
	h.mu.Lock()
	r, ok := h.requests[requestID]
	h.mu.Unlock()
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if sub, ok := r.subs[subscriptionID]; ok {
		close(sub.ch)
		delete(r.subs, subscriptionID)
	}
}

// HasActiveSubscribers reports whether requestID has a live subscriber
// belonging to sessionID — the stale-detection hook.
func (h *Hub) HasActiveSubscribers(requestID, sessionID string) bool {
	h.mu.Lock()
	r, ok := h.requests[requestID]
	h.mu.Unlock()
	if !ok {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs {
		if s.sessionID == sessionID {
			return true
		}
	}
	return false
}

// Publish appends event to requestID's backlog and fans it out to every
// live subscriber. Publish must never fail the caller: when a blocked or
// slow subscriber cannot take the event within publishSendTimeout, the
// event is dropped for that subscriber (logged) and the subscriber stays
// attached, rather than stalling the pipeline.
func (h *Hub) Publish(requestID string, eventType EventType, payload any) {
	r := h.requestFor(requestID)
	event, err := newEvent(eventType, requestID, payload)
	if err != nil {
		h.logger.Error("ws_publish_marshal_failed", zap.String("requestId", requestID), zap.Error(err))
		return
	}

	r.mu.Lock()
	r.nextSeq++
	event.seq = r.nextSeq
	r.backlog = append(r.backlog, event)
	if len(r.backlog) > backlogSize {
		r.backlog = r.backlog[len(r.backlog)-backlogSize:]
	}
	subs := make([]*subscription, 0, len(r.subs))
	for _, s := range r.subs {
		subs = append(subs, s)
	}
	r.mu.Unlock()

	for _, s := range subs {
		h.sendSafe(s, event, requestID)
	}
	appmetrics.RecordWSPublish(string(eventType))
}

// sendSafe is the adapted equivalent of the teacher's SendEventSafe: a
// timed select so one stuck receiver can never block a publish.
func (h *Hub) sendSafe(sub *subscription, event Event, requestID string) {
	select {
	case sub.ch <- event:
	case <-time.After(publishSendTimeout):
		h.logger.Warn("ws_publish_dropped_slow_subscriber", zap.String("requestId", requestID))
	}
}

// Cleanup removes a request's tracking once its job is terminal and no
// subscribers remain, to bound the Hub's memory.
func (h *Hub) Cleanup(requestID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.requests[requestID]; ok {
		r.mu.Lock()
		empty := len(r.subs) == 0
		r.mu.Unlock()
		if empty {
			delete(h.requests, requestID)
		}
	}
}
