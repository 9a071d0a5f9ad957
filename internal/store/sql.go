// internal/store/sql.go
//
// sqlx-backed implementation of Store and Users.
// Works against SQLite (default) and Postgres; the schema lives in
// assets/sql and is applied by Migrate.
//
// Notes:
//   - sql.ErrNoRows is mapped to ErrNotFound.
//   - Unique violations (SQLite constraint codes, Postgres 23505) map to ErrDuplicate.
//   - Upserts use INSERT ... ON CONFLICT, supported by both engines.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/robalobadob/hero-of-habits/internal/game"
)

// SQL is a Store + Users over a sqlx handle.
type SQL struct {
	db *sqlx.DB
}

// NewSQL wraps an open, migrated database.
func NewSQL(db *sqlx.DB) *SQL { return &SQL{db: db} }

// Ping checks the connection.
func (s *SQL) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Close closes the underlying database.
func (s *SQL) Close() error { return s.db.Close() }

func (s *SQL) q(query string) string { return s.db.Rebind(query) }

// ---- progress ----

const progressColumns = `user_id, current_level, levels_completed, missions_completed, mission_stars,
	total_stars, total_playtime, last_played, updated_at`

func (s *SQL) GetProgress(ctx context.Context, userID string) (*game.Progress, error) {
	var r progressRow
	err := s.db.GetContext(ctx, &r, s.q(`SELECT `+progressColumns+` FROM game_progress WHERE user_id = ?`), userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}
	p, err := r.toProgress()
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}
	return p, nil
}

func (s *SQL) UpsertProgress(ctx context.Context, p *game.Progress) error {
	row, err := toProgressRow(p)
	if err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO game_progress (`+progressColumns+`)
		VALUES (:user_id, :current_level, :levels_completed, :missions_completed, :mission_stars,
			:total_stars, :total_playtime, :last_played, :updated_at)
		ON CONFLICT (user_id) DO UPDATE SET
			current_level      = excluded.current_level,
			levels_completed   = excluded.levels_completed,
			missions_completed = excluded.missions_completed,
			mission_stars      = excluded.mission_stars,
			total_stars        = excluded.total_stars,
			total_playtime     = excluded.total_playtime,
			last_played        = excluded.last_played,
			updated_at         = excluded.updated_at`, row)
	if err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	return nil
}

// ---- scores ----

func (s *SQL) InsertMissionScore(ctx context.Context, sc *game.MissionScore) error {
	prepareScore(sc)
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO mission_scores (id, user_id, level_id, mission_id, stars_earned, time_taken, perfect_score, completed_at)
		VALUES (:id, :user_id, :level_id, :mission_id, :stars_earned, :time_taken, :perfect_score, :completed_at)`,
		toScoreRow(sc))
	if err != nil {
		return fmt.Errorf("insert mission score: %w", err)
	}
	return nil
}

func (s *SQL) ListMissionScores(ctx context.Context, userID string, levelID int) ([]game.MissionScore, error) {
	query := `SELECT id, user_id, level_id, mission_id, stars_earned, time_taken, perfect_score, completed_at
		FROM mission_scores WHERE user_id = ?`
	args := []any{userID}
	if levelID != 0 {
		query += ` AND level_id = ?`
		args = append(args, levelID)
	}
	query += ` ORDER BY completed_at DESC`

	var rows []scoreRow
	if err := s.db.SelectContext(ctx, &rows, s.q(query), args...); err != nil {
		return nil, fmt.Errorf("list mission scores: %w", err)
	}
	out := make([]game.MissionScore, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toScore())
	}
	return out, nil
}

// ---- achievements ----

func (s *SQL) InsertAchievement(ctx context.Context, a *game.Achievement) error {
	prepareAchievement(a)
	row, err := toAchievementRow(a)
	if err != nil {
		return fmt.Errorf("insert achievement: %w", err)
	}
	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO achievements (id, user_id, achievement_type, achievement_name, achievement_data, earned_at)
		VALUES (:id, :user_id, :achievement_type, :achievement_name, :achievement_data, :earned_at)`,
		row)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert achievement: %w", err)
	}
	return nil
}

func (s *SQL) ListAchievements(ctx context.Context, userID string) ([]game.Achievement, error) {
	var rows []achievementRow
	err := s.db.SelectContext(ctx, &rows, s.q(`
		SELECT id, user_id, achievement_type, achievement_name, achievement_data, earned_at
		FROM achievements WHERE user_id = ? ORDER BY earned_at DESC`), userID)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	out := make([]game.Achievement, 0, len(rows))
	for _, r := range rows {
		a, err := r.toAchievement()
		if err != nil {
			return nil, fmt.Errorf("list achievements: %w", err)
		}
		out = append(out, a)
	}
	return out, nil
}

// ---- habits ----

func (s *SQL) InsertDailyHabit(ctx context.Context, h *game.DailyHabit) error {
	prepareHabit(h)
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO daily_habits (id, user_id, habit_name, habit_category, completed, completion_date)
		VALUES (:id, :user_id, :habit_name, :habit_category, :completed, :completion_date)`,
		toHabitRow(h))
	if err != nil {
		return fmt.Errorf("insert daily habit: %w", err)
	}
	return nil
}

func (s *SQL) ListDailyHabits(ctx context.Context, userID string, from, to time.Time) ([]game.DailyHabit, error) {
	var rows []habitRow
	err := s.db.SelectContext(ctx, &rows, s.q(`
		SELECT id, user_id, habit_name, habit_category, completed, completion_date
		FROM daily_habits
		WHERE user_id = ? AND completion_date >= ? AND completion_date < ?
		ORDER BY completion_date ASC`), userID, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("list daily habits: %w", err)
	}
	out := make([]game.DailyHabit, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toHabit())
	}
	return out, nil
}

// ---- parent settings ----

func (s *SQL) GetParentSettings(ctx context.Context, userID string) (*game.ParentSettings, error) {
	var r settingsRow
	err := s.db.GetContext(ctx, &r, s.q(`
		SELECT user_id, screen_time_limit, custom_habits, notifications_enabled, updated_at
		FROM parent_settings WHERE user_id = ?`), userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get parent settings: %w", err)
	}
	ps, err := r.toSettings()
	if err != nil {
		return nil, fmt.Errorf("get parent settings: %w", err)
	}
	return ps, nil
}

func (s *SQL) UpsertParentSettings(ctx context.Context, ps *game.ParentSettings) error {
	row, err := toSettingsRow(ps)
	if err != nil {
		return fmt.Errorf("upsert parent settings: %w", err)
	}
	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO parent_settings (user_id, screen_time_limit, custom_habits, notifications_enabled, updated_at)
		VALUES (:user_id, :screen_time_limit, :custom_habits, :notifications_enabled, :updated_at)
		ON CONFLICT (user_id) DO UPDATE SET
			screen_time_limit     = excluded.screen_time_limit,
			custom_habits         = excluded.custom_habits,
			notifications_enabled = excluded.notifications_enabled,
			updated_at            = excluded.updated_at`, row)
	if err != nil {
		return fmt.Errorf("upsert parent settings: %w", err)
	}
	return nil
}

// ---- users ----

func (s *SQL) CreateUser(ctx context.Context, u *User) error {
	prepareUser(u)
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, created_at)
		VALUES (:id, :email, :password_hash, :first_name, :last_name, :created_at)`, u)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *SQL) UserByEmail(ctx context.Context, email string) (*User, error) {
	return s.getUser(ctx, `SELECT id, email, password_hash, first_name, last_name, created_at FROM users WHERE email = ?`, email)
}

func (s *SQL) UserByID(ctx context.Context, id string) (*User, error) {
	return s.getUser(ctx, `SELECT id, email, password_hash, first_name, last_name, created_at FROM users WHERE id = ?`, id)
}

func (s *SQL) getUser(ctx context.Context, query string, arg any) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, s.q(query), arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

// isUniqueViolation recognises uniqueness failures from both drivers.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrConstraint &&
			(se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return pe.Code == "23505"
	}
	return false
}
