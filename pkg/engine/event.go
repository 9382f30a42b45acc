package engine

import (
	"sync"
	"time"
)

// EventKind identifies the type of engine event.
type EventKind string

const (
	EventQueryStart    EventKind = "query_start"
	EventQueryEnd      EventKind = "query_end"
	EventToolCallStart EventKind = "tool_call_start"
	EventToolCallEnd   EventKind = "tool_call_end"
	EventError         EventKind = "error"
)

// Event is an immutable notification of engine activity. Data holds the
// query string for EventQueryStart, an agent.Result for EventQueryEnd, a
// ToolCall for the tool events and an error for EventError.
type Event struct {
	Kind      EventKind
	Agent     string
	Timestamp time.Time
	Data      any
}

// ToolCall describes one tool invocation. On EventToolCallEnd Err is set when
// the tool returned an error or reported a failure in its result, such as a
// {"status":"error"} document or an MCP result flagged IsError.
type ToolCall struct {
	Name string
	Args map[string]any
	Err  error
}

// Subscription receives events from an EventBus.
type Subscription struct {
	C     <-chan Event
	ch    chan Event
	kinds map[EventKind]bool // nil receives every kind
}

func (s *Subscription) wants(k EventKind) bool {
	return s.kinds == nil || s.kinds[k]
}

// EventBus fans events out to subscribers without blocking the publisher.
// It is safe for concurrent use.
type EventBus struct {
	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

// NewEventBus creates an EventBus ready for use.
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[*Subscription]struct{})}
}

// Subscribe registers a subscription buffered to bufSize. With kinds given
// only those kinds are delivered. The caller reads sub.C and must eventually
// call Unsubscribe.
func (b *EventBus) Subscribe(bufSize int, kinds ...EventKind) *Subscription {
	ch := make(chan Event, bufSize)
	sub := &Subscription{C: ch, ch: ch}

	if len(kinds) > 0 {
		sub.kinds = make(map[EventKind]bool, len(kinds))
		for _, k := range kinds {
			sub.kinds[k] = true
		}
	}

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	return sub
}

// Unsubscribe removes sub and closes its channel. Repeated calls are no-ops.
func (b *EventBus) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[sub]; ok {
		delete(b.subs, sub)
		close(sub.ch)
	}
}

// Publish delivers e to every interested subscriber. A subscriber whose
// buffer is full misses the event; a query never waits on a slow reader.
func (b *EventBus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subs {
		if !sub.wants(e.Kind) {
			continue
		}

		select {
		case sub.ch <- e:
		default:
		}
	}
}
