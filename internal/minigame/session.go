// internal/minigame/session.go
//
// Play sessions held between HTTP requests.
// Responsibilities:
//   - Wrap a Runner with identity (owner, mission, level) and a completion hook.
//   - Fire the completion hook once, when the runner first finishes. A hook
//     that fails is retried by the next Apply on the finished session.
//   - Keep active sessions in a mutex-guarded map keyed by random id.
//
// Notes:
//   - State is in-memory only and lost on restart.
//   - Stale sessions are swept lazily on Start; there is no background goroutine.

package minigame

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("play session not found")

// CompleteFunc receives the result of a finished session.
type CompleteFunc func(ctx context.Context, s Snapshot) error

// Snapshot is a read-only view of a session.
type Snapshot struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Game      string    `json:"game"`
	MissionID string    `json:"missionId,omitempty"`
	LevelID   int       `json:"levelId"`
	State     Runner    `json:"state"`
	Finished  bool      `json:"finished"`
	Result    *Result   `json:"result,omitempty"`
	StartedAt time.Time `json:"startedAt"`
}

// Session is one in-flight mini-game.
type Session struct {
	mu         sync.Mutex
	id         string
	userID     string
	missionID  string
	levelID    int
	runner     Runner
	onComplete CompleteFunc
	fired      bool
	startedAt  time.Time
}

// NewSession builds a session; onComplete may be nil.
func NewSession(id, userID, missionID string, levelID int, r Runner, onComplete CompleteFunc) *Session {
	return &Session{
		id:         id,
		userID:     userID,
		missionID:  missionID,
		levelID:    levelID,
		runner:     r,
		onComplete: onComplete,
		startedAt:  time.Now().UTC(),
	}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// UserID returns the owning user.
func (s *Session) UserID() string { return s.userID }

// Apply folds ev into the runner. When this event finishes the game the
// completion hook runs before Apply returns; its error is returned as-is.
// Until the hook succeeds, any further Apply ignores its event and retries
// the hook instead of failing with ErrFinished.
func (s *Session) Apply(ctx context.Context, ev Event) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, over := s.runner.Result(); !over {
		next, err := s.runner.Apply(ev)
		if err != nil {
			return s.snapshotLocked(), err
		}
		s.runner = next
	} else if s.fired {
		return s.snapshotLocked(), ErrFinished
	}

	snap := s.snapshotLocked()
	if snap.Finished && !s.fired {
		if s.onComplete != nil {
			if err := s.onComplete(ctx, snap); err != nil {
				return snap, err
			}
		}
		s.fired = true
	}
	return snap, nil
}

// Snapshot returns the current view.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:        s.id,
		UserID:    s.userID,
		Game:      s.runner.Game(),
		MissionID: s.missionID,
		LevelID:   s.levelID,
		State:     s.runner,
		StartedAt: s.startedAt,
	}
	if r, ok := s.runner.Result(); ok {
		snap.Finished = true
		snap.Result = &r
	}
	return snap
}

// ---- registry ----

// DefaultSessionTTL bounds how long an idle session is kept.
const DefaultSessionTTL = 2 * time.Hour

// Sessions is the in-memory registry of active play sessions.
type Sessions struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewSessions constructs an empty registry. ttl <= 0 uses DefaultSessionTTL.
func NewSessions(ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Sessions{sessions: make(map[string]*Session), ttl: ttl, now: time.Now}
}

// Start registers a new session with a random id.
func (r *Sessions) Start(userID, missionID string, levelID int, runner Runner, onComplete CompleteFunc) *Session {
	s := NewSession(uuid.NewString(), userID, missionID, levelID, runner, onComplete)
	s.startedAt = r.now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()
	r.sessions[s.id] = s
	return s
}

// Get looks up a session owned by userID. Sessions of other users are
// reported as missing.
func (r *Sessions) Get(id, userID string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok || s.userID != userID {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Has reports whether id is still tracked, regardless of owner.
func (r *Sessions) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[id]
	return ok
}

// Remove drops a session.
func (r *Sessions) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len reports the number of tracked sessions.
func (r *Sessions) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Sessions) sweepLocked() {
	cutoff := r.now().UTC().Add(-r.ttl)
	for id, s := range r.sessions {
		if s.startedAt.Before(cutoff) {
			delete(r.sessions, id)
		}
	}
}
