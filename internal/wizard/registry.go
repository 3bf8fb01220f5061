package wizard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	// ErrSessionNotFound is returned for unknown, abandoned or expired sessions
	ErrSessionNotFound = errors.New("wizard session not found")

	// ErrBusy is returned for any change to a session while its commit is running
	ErrBusy = errors.New("wizard session is being submitted")

	// ErrImageNotFound is returned for an unknown preview id
	ErrImageNotFound = errors.New("staged image not found")

	// ErrRegistryFull is returned by Create once the session cap is reached
	ErrRegistryFull = errors.New("too many open wizard sessions")
)

type entry struct {
	mu      sync.Mutex
	session *Session
	busy    bool
	removed bool
	touched time.Time
}

// Registry holds the live wizard sessions. Each session is owned by a
// single client; the registry only serializes that client's requests.
type Registry struct {
	mu          sync.RWMutex
	entries     map[uuid.UUID]*entry
	maxImages   int
	maxSessions int
	ttl         time.Duration
	logger      *logrus.Logger
	now         func() time.Time
}

// NewRegistry creates an empty registry holding at most maxSessions sessions.
// Sessions idle for longer than ttl are dropped by Sweep.
func NewRegistry(maxImages, maxSessions int, ttl time.Duration, logger *logrus.Logger) *Registry {
	return &Registry{
		entries:     make(map[uuid.UUID]*entry),
		maxImages:   maxImages,
		maxSessions: maxSessions,
		ttl:         ttl,
		logger:      logger,
		now:         time.Now,
	}
}

func (r *Registry) full() bool {
	return r.maxSessions > 0 && len(r.entries) >= r.maxSessions
}

// Create starts a new session. When the registry is full, expired sessions
// are swept first; if it is still full, ErrRegistryFull is returned.
func (r *Registry) Create() (uuid.UUID, View, error) {
	r.mu.RLock()
	full := r.full()
	r.mu.RUnlock()
	if full {
		r.Sweep()
	}

	id := uuid.New()
	e := &entry{session: NewSession(r.maxImages), touched: r.now()}

	r.mu.Lock()
	if r.full() {
		r.mu.Unlock()
		r.logger.WithField("max_sessions", r.maxSessions).Warn("Wizard session cap reached")
		return uuid.Nil, View{}, ErrRegistryFull
	}
	r.entries[id] = e
	r.mu.Unlock()

	return id, Render(id, e.session, false), nil
}

// lock finds and locks the entry for id. The caller must unlock it.
func (r *Registry) lock(id uuid.UUID) (*entry, error) {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	e.mu.Lock()
	if e.removed {
		e.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	return e, nil
}

// Get returns the current view of a session
func (r *Registry) Get(id uuid.UUID) (View, error) {
	e, err := r.lock(id)
	if err != nil {
		return View{}, err
	}
	defer e.mu.Unlock()

	return Render(id, e.session, e.busy), nil
}

// Update runs fn against the session and returns the resulting view
// together with fn's error. Sessions being submitted are not changed.
func (r *Registry) Update(id uuid.UUID, fn func(*Session) error) (View, error) {
	e, err := r.lock(id)
	if err != nil {
		return View{}, err
	}
	defer e.mu.Unlock()

	if e.busy {
		return Render(id, e.session, true), ErrBusy
	}

	e.touched = r.now()
	err = fn(e.session)
	return Render(id, e.session, false), err
}

// Image returns a staged image by preview id
func (r *Registry) Image(id uuid.UUID, previewID string) (StagedImage, error) {
	e, err := r.lock(id)
	if err != nil {
		return StagedImage{}, err
	}
	defer e.mu.Unlock()

	img, ok := e.session.media.Find(previewID)
	if !ok {
		return StagedImage{}, ErrImageNotFound
	}
	return img, nil
}

// BeginSubmit validates the session for completion and marks it busy.
// Only one submission per session can be in flight.
func (r *Registry) BeginSubmit(id uuid.UUID) (Submission, View, error) {
	e, err := r.lock(id)
	if err != nil {
		return Submission{}, View{}, err
	}
	defer e.mu.Unlock()

	if e.busy {
		return Submission{}, Render(id, e.session, true), ErrBusy
	}

	e.touched = r.now()
	sub, err := e.session.PrepareSubmit()
	if err != nil {
		return Submission{}, Render(id, e.session, false), err
	}

	e.busy = true
	return sub, Render(id, e.session, true), nil
}

// EndSubmit finishes a submission started by BeginSubmit. A successful
// submission destroys the session; a failed one records message as the
// general error and allows another attempt.
func (r *Registry) EndSubmit(id uuid.UUID, failure error, message string) (View, error) {
	if failure == nil {
		r.remove(id)
		return View{}, nil
	}

	e, err := r.lock(id)
	if err != nil {
		return View{}, err
	}
	defer e.mu.Unlock()

	e.busy = false
	e.touched = r.now()
	e.session.FailSubmit(message)
	return Render(id, e.session, false), nil
}

// Delete abandons a session. A session being submitted cannot be abandoned.
func (r *Registry) Delete(id uuid.UUID) error {
	e, err := r.lock(id)
	if err != nil {
		return err
	}
	busy := e.busy
	e.mu.Unlock()

	if busy {
		return ErrBusy
	}
	r.remove(id)
	return nil
}

func (r *Registry) remove(id uuid.UUID) {
	r.mu.Lock()
	e, ok := r.entries[id]
	delete(r.entries, id)
	r.mu.Unlock()

	if ok {
		e.mu.Lock()
		e.removed = true
		e.session = nil
		e.mu.Unlock()
	}
}

// Len is the number of live sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Sweep drops sessions idle for longer than the ttl and returns how many it dropped
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.ttl)

	var expired []uuid.UUID
	r.mu.RLock()
	for id, e := range r.entries {
		e.mu.Lock()
		if !e.busy && e.touched.Before(cutoff) {
			expired = append(expired, id)
		}
		e.mu.Unlock()
	}
	r.mu.RUnlock()

	for _, id := range expired {
		r.remove(id)
	}
	return len(expired)
}

// Run sweeps expired sessions every interval until ctx is done
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.WithField("expired", n).Info("Expired idle wizard sessions")
			}
		}
	}
}
