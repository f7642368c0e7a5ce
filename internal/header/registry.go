package header

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session is the header state of one rendered page view.
type Session struct {
	ID        string
	Store     *Store
	Tracker   *Tracker
	CreatedAt time.Time
}

// Registry keeps page-view sessions until they expire so that the browser can
// attach to its session over the header websocket.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

func NewRegistry(ttl time.Duration, logger *zap.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
	}
}

// Open creates the session of a new layout mount waiting for imageCount images.
func (r *Registry) Open(imageCount int) *Session {
	store := NewStore()
	session := &Session{
		ID:        uuid.NewString(),
		Store:     store,
		Tracker:   NewTracker(store, imageCount),
		CreatedAt: r.now(),
	}

	r.mu.Lock()
	r.sessions[session.ID] = session
	r.mu.Unlock()

	return session
}

func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	if !ok || r.expired(session) {
		return nil, false
	}
	return session, true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep drops expired sessions and returns how many were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, session := range r.sessions {
		if r.expired(session) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps periodically until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := r.Sweep(); removed > 0 {
				r.logger.Debug("Header sessions swept",
					zap.Int("removed", removed),
					zap.Int("remaining", r.Len()))
			}
		}
	}
}

func (r *Registry) expired(session *Session) bool {
	return r.now().Sub(session.CreatedAt) > r.ttl
}
