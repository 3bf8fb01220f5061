package session

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is the signed-in identity handed to whatever needs it
type Session struct {
	AccountID   uuid.UUID `json:"account_id"`
	Email       string    `json:"email"`
	Roles       []string  `json:"roles"`
	AccessToken string    `json:"access_token,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// HasRole reports whether the session carries the given role
func (s Session) HasRole(role string) bool {
	return slices.Contains(s.Roles, role)
}

// EventKind identifies a session change
type EventKind string

const (
	SignedIn  EventKind = "signed_in"
	SignedOut EventKind = "signed_out"
)

// Event is published whenever a session starts or ends
type Event struct {
	Kind    EventKind
	Session Session
}

// Broker fans session events out to subscribers.
// Handlers run synchronously on the publishing goroutine and must not block.
type Broker struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(Event)
}

// NewBroker creates an empty broker
func NewBroker() *Broker {
	return &Broker{subs: make(map[int]func(Event))}
}

// Subscribe registers fn and returns the function that removes it.
// Calling the returned function more than once is a no-op.
func (b *Broker) Subscribe(fn func(Event)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Publish delivers ev to every current subscriber
func (b *Broker) Publish(ev Event) {
	b.mu.RLock()
	handlers := make([]func(Event), 0, len(b.subs))
	for _, fn := range b.subs {
		handlers = append(handlers, fn)
	}
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn(ev)
	}
}
