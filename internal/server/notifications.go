package server

import (
	"sync"

	"github.com/cancheito/backoffice/internal/dispatch"
)

// Feed buffers the most recent dispatcher events for the notifications
// endpoint. It implements dispatch.Notifier.
type Feed struct {
	mu     sync.Mutex
	events []dispatch.Event
	cap    int
}

// NewFeed creates a feed keeping at most capacity events.
func NewFeed(capacity int) *Feed {
	return &Feed{cap: capacity}
}

func (f *Feed) Notify(e dispatch.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	if len(f.events) > f.cap {
		f.events = f.events[len(f.events)-f.cap:]
	}
}

// Recent returns up to limit events, newest first. A non-positive
// limit returns everything buffered.
func (f *Feed) Recent(limit int) []dispatch.Event {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := len(f.events)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]dispatch.Event, 0, n)
	for i := len(f.events) - 1; i >= len(f.events)-n; i-- {
		out = append(out, f.events[i])
	}
	return out
}
