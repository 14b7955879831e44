package backend

import (
	"sync"
	"time"

	"github.com/sakif/portfolio/internal/model"
)

// EventType names an auth state change.
type EventType string

const (
	EventSignedIn       EventType = "SIGNED_IN"
	EventSignedOut      EventType = "SIGNED_OUT"
	EventTokenRefreshed EventType = "TOKEN_REFRESHED"
	EventUserDeleted    EventType = "USER_DELETED"
)

// Event is a snapshot of an auth state change. User is a copy; subscribers
// may keep it.
type Event struct {
	Type EventType
	User model.User
	At   time.Time
}

// Events is the process-wide auth event bus. Subscribers are called
// synchronously, in subscription order, on the publishing goroutine.
type Events struct {
	mu     sync.RWMutex
	next   int
	subs   map[int]func(Event)
	order  []int
	closed bool
}

// NewEvents returns an open, empty bus.
func NewEvents() *Events {
	return &Events{subs: make(map[int]func(Event))}
}

// Subscribe registers fn and returns the function that removes it. After
// Close, Subscribe is a no-op and the returned function does nothing.
func (e *Events) Subscribe(fn func(Event)) (unsubscribe func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return func() {}
	}

	id := e.next
	e.next++
	e.subs[id] = fn
	e.order = append(e.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			delete(e.subs, id)
			for i, v := range e.order {
				if v == id {
					e.order = append(e.order[:i], e.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Publish delivers ev to every current subscriber.
func (e *Events) Publish(ev Event) {
	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		return
	}
	fns := make([]func(Event), 0, len(e.order))
	for _, id := range e.order {
		fns = append(fns, e.subs[id])
	}
	e.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Close drops every subscriber. Later publishes are discarded.
func (e *Events) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.subs = map[int]func(Event){}
	e.order = nil
}
