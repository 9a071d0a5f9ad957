// internal/store/store.go
//
// Persistence contract for player progression.
// Defines:
//   - Store: per-user progress, score log, achievements, habits, parent settings.
//   - Users: the account table behind the identity layer.
//   - ErrNotFound / ErrDuplicate: the only errors callers branch on.
//
// Implementations:
//   - memory.go: RWMutex-guarded maps (tests, HOH_DATABASE_DRIVER=memory).
//   - sql.go:    sqlx over SQLite (mattn/go-sqlite3) or Postgres (pgx stdlib).
//
// Notes:
//   - Inserts fill an empty ID with a uuid and zero timestamps with now (UTC).
//   - Each call is an independent write; nothing spans entities.

package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/hero-of-habits/internal/game"
)

var (
	// ErrNotFound is returned when a keyed row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a uniqueness constraint rejects an insert.
	ErrDuplicate = errors.New("duplicate")
)

// Store persists progression state.
type Store interface {
	// GetProgress returns ErrNotFound when the user has never saved progress.
	GetProgress(ctx context.Context, userID string) (*game.Progress, error)
	// UpsertProgress inserts or replaces the row keyed by p.UserID.
	UpsertProgress(ctx context.Context, p *game.Progress) error

	// InsertMissionScore appends to the attempt log.
	InsertMissionScore(ctx context.Context, s *game.MissionScore) error
	// ListMissionScores returns newest first; levelID 0 means every level.
	ListMissionScores(ctx context.Context, userID string, levelID int) ([]game.MissionScore, error)

	// InsertAchievement returns ErrDuplicate for an existing (user, type, name).
	InsertAchievement(ctx context.Context, a *game.Achievement) error
	ListAchievements(ctx context.Context, userID string) ([]game.Achievement, error)

	InsertDailyHabit(ctx context.Context, h *game.DailyHabit) error
	// ListDailyHabits returns habits with completion date in [from, to).
	ListDailyHabits(ctx context.Context, userID string, from, to time.Time) ([]game.DailyHabit, error)

	// GetParentSettings returns ErrNotFound when nothing was saved yet.
	GetParentSettings(ctx context.Context, userID string) (*game.ParentSettings, error)
	UpsertParentSettings(ctx context.Context, s *game.ParentSettings) error
}

// User is an account row.
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"firstName" db:"first_name"`
	LastName     string    `json:"lastName" db:"last_name"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// Users persists accounts.
type Users interface {
	// CreateUser returns ErrDuplicate when the email is taken.
	CreateUser(ctx context.Context, u *User) error
	UserByEmail(ctx context.Context, email string) (*User, error)
	UserByID(ctx context.Context, id string) (*User, error)
}

// ---- shared insert defaults ----

func newID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

func prepareScore(s *game.MissionScore) {
	s.ID = newID(s.ID)
	s.CompletedAt = stamp(s.CompletedAt)
}

func prepareAchievement(a *game.Achievement) {
	a.ID = newID(a.ID)
	a.EarnedAt = stamp(a.EarnedAt)
	if a.Data == nil {
		a.Data = map[string]any{}
	}
}

func prepareHabit(h *game.DailyHabit) {
	h.ID = newID(h.ID)
	h.CompletionDate = stamp(h.CompletionDate)
}

func prepareUser(u *User) {
	u.ID = newID(u.ID)
	u.CreatedAt = stamp(u.CreatedAt)
}
