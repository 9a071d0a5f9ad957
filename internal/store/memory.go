// internal/store/memory.go
//
// In-memory implementation of Store and Users.
// Used by tests and by HOH_DATABASE_DRIVER=memory for throwaway servers.
//
// Characteristics:
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Values are deep-copied on the way in and out, so callers never share state.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/robalobadob/hero-of-habits/internal/game"
)

type achievementKey struct {
	userID string
	typ    game.AchievementType
	name   string
}

// Memory is a map-based Store + Users.
type Memory struct {
	mu           sync.RWMutex
	progress     map[string]*game.Progress
	scores       []game.MissionScore
	achievements []game.Achievement
	achKeys      map[achievementKey]struct{}
	habits       []game.DailyHabit
	settings     map[string]*game.ParentSettings
	users        map[string]*User
	emails       map[string]string // lower(email) -> id
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		progress: make(map[string]*game.Progress),
		achKeys:  make(map[achievementKey]struct{}),
		settings: make(map[string]*game.ParentSettings),
		users:    make(map[string]*User),
		emails:   make(map[string]string),
	}
}

// ---- progress ----

func (m *Memory) GetProgress(ctx context.Context, userID string) (*game.Progress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.progress[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

func (m *Memory) UpsertProgress(ctx context.Context, p *game.Progress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress[p.UserID] = p.Clone()
	return nil
}

// ---- scores ----

func (m *Memory) InsertMissionScore(ctx context.Context, s *game.MissionScore) error {
	prepareScore(s)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores = append(m.scores, *s)
	return nil
}

func (m *Memory) ListMissionScores(ctx context.Context, userID string, levelID int) ([]game.MissionScore, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []game.MissionScore{}
	for _, s := range m.scores {
		if s.UserID == userID && (levelID == 0 || s.LevelID == levelID) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CompletedAt.After(out[j].CompletedAt) })
	return out, nil
}

// ---- achievements ----

func (m *Memory) InsertAchievement(ctx context.Context, a *game.Achievement) error {
	prepareAchievement(a)
	key := achievementKey{a.UserID, a.Type, a.Name}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.achKeys[key]; ok {
		return ErrDuplicate
	}
	m.achKeys[key] = struct{}{}
	cp := *a
	cp.Data = copyData(a.Data)
	m.achievements = append(m.achievements, cp)
	return nil
}

func (m *Memory) ListAchievements(ctx context.Context, userID string) ([]game.Achievement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []game.Achievement{}
	for _, a := range m.achievements {
		if a.UserID == userID {
			a.Data = copyData(a.Data)
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EarnedAt.After(out[j].EarnedAt) })
	return out, nil
}

// ---- habits ----

func (m *Memory) InsertDailyHabit(ctx context.Context, h *game.DailyHabit) error {
	prepareHabit(h)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.habits = append(m.habits, *h)
	return nil
}

func (m *Memory) ListDailyHabits(ctx context.Context, userID string, from, to time.Time) ([]game.DailyHabit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []game.DailyHabit{}
	for _, h := range m.habits {
		if h.UserID != userID || h.CompletionDate.Before(from) || !h.CompletionDate.Before(to) {
			continue
		}
		out = append(out, h)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CompletionDate.Before(out[j].CompletionDate) })
	return out, nil
}

// ---- parent settings ----

func (m *Memory) GetParentSettings(ctx context.Context, userID string) (*game.ParentSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.settings[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	cp.CustomHabits = append([]game.CustomHabit{}, s.CustomHabits...)
	return &cp, nil
}

func (m *Memory) UpsertParentSettings(ctx context.Context, s *game.ParentSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	cp.CustomHabits = append([]game.CustomHabit{}, s.CustomHabits...)
	m.settings[s.UserID] = &cp
	return nil
}

// ---- users ----

func (m *Memory) CreateUser(ctx context.Context, u *User) error {
	prepareUser(u)
	key := strings.ToLower(u.Email)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.emails[key]; ok {
		return ErrDuplicate
	}
	cp := *u
	m.users[u.ID] = &cp
	m.emails[key] = u.ID
	return nil
}

func (m *Memory) UserByEmail(ctx context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.emails[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m.users[id]
	return &cp, nil
}

func (m *Memory) UserByID(ctx context.Context, id string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func copyData(d map[string]any) map[string]any {
	out := make(map[string]any, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
