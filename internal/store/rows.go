// internal/store/rows.go
//
// Row types for the SQL store. Columns are snake_case; the game package types
// are camelCase. Conversion between the two lives only here.

package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx/types"

	"github.com/robalobadob/hero-of-habits/internal/game"
)

// toJSONCol encodes v for a JSON text column.
func toJSONCol(col string, v any) (types.JSONText, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", col, err)
	}
	return types.JSONText(b), nil
}

// fromJSONCol decodes a JSON text column into v. An empty column leaves v as is.
func fromJSONCol(col string, j types.JSONText, v any) error {
	if len(j) == 0 {
		return nil
	}
	if err := j.Unmarshal(v); err != nil {
		return fmt.Errorf("decode %s: %w", col, err)
	}
	return nil
}

type progressRow struct {
	UserID            string         `db:"user_id"`
	CurrentLevel      int            `db:"current_level"`
	LevelsCompleted   types.JSONText `db:"levels_completed"`
	MissionsCompleted types.JSONText `db:"missions_completed"`
	MissionStars      types.JSONText `db:"mission_stars"`
	TotalStars        int            `db:"total_stars"`
	TotalPlaytime     int            `db:"total_playtime"`
	LastPlayed        *time.Time     `db:"last_played"`
	UpdatedAt         time.Time      `db:"updated_at"`
}

func toProgressRow(p *game.Progress) (progressRow, error) {
	r := progressRow{
		UserID:        p.UserID,
		CurrentLevel:  p.CurrentLevel,
		TotalStars:    p.TotalStars,
		TotalPlaytime: p.TotalPlaytime,
		UpdatedAt:     time.Now().UTC(),
	}
	var err error
	if r.LevelsCompleted, err = toJSONCol("levels_completed", p.LevelsCompleted); err != nil {
		return r, err
	}
	if r.MissionsCompleted, err = toJSONCol("missions_completed", p.MissionsCompleted); err != nil {
		return r, err
	}
	if r.MissionStars, err = toJSONCol("mission_stars", p.MissionStars); err != nil {
		return r, err
	}
	if p.LastPlayed != nil {
		t := p.LastPlayed.UTC()
		r.LastPlayed = &t
	}
	return r, nil
}

func (r progressRow) toProgress() (*game.Progress, error) {
	p := &game.Progress{
		UserID:        r.UserID,
		CurrentLevel:  r.CurrentLevel,
		TotalStars:    r.TotalStars,
		TotalPlaytime: r.TotalPlaytime,
		LastPlayed:    r.LastPlayed,
	}
	if err := fromJSONCol("levels_completed", r.LevelsCompleted, &p.LevelsCompleted); err != nil {
		return nil, err
	}
	if err := fromJSONCol("missions_completed", r.MissionsCompleted, &p.MissionsCompleted); err != nil {
		return nil, err
	}
	if err := fromJSONCol("mission_stars", r.MissionStars, &p.MissionStars); err != nil {
		return nil, err
	}
	p.Normalize()
	return p, nil
}

type scoreRow struct {
	ID           string    `db:"id"`
	UserID       string    `db:"user_id"`
	LevelID      int       `db:"level_id"`
	MissionID    string    `db:"mission_id"`
	StarsEarned  int       `db:"stars_earned"`
	TimeTaken    int       `db:"time_taken"`
	PerfectScore bool      `db:"perfect_score"`
	CompletedAt  time.Time `db:"completed_at"`
}

func toScoreRow(s *game.MissionScore) scoreRow {
	return scoreRow{
		ID:           s.ID,
		UserID:       s.UserID,
		LevelID:      s.LevelID,
		MissionID:    s.MissionID,
		StarsEarned:  s.StarsEarned,
		TimeTaken:    s.TimeTaken,
		PerfectScore: s.PerfectScore,
		CompletedAt:  s.CompletedAt,
	}
}

func (r scoreRow) toScore() game.MissionScore {
	return game.MissionScore{
		ID:           r.ID,
		UserID:       r.UserID,
		LevelID:      r.LevelID,
		MissionID:    r.MissionID,
		StarsEarned:  r.StarsEarned,
		TimeTaken:    r.TimeTaken,
		PerfectScore: r.PerfectScore,
		CompletedAt:  r.CompletedAt.UTC(),
	}
}

type achievementRow struct {
	ID       string         `db:"id"`
	UserID   string         `db:"user_id"`
	Type     string         `db:"achievement_type"`
	Name     string         `db:"achievement_name"`
	Data     types.JSONText `db:"achievement_data"`
	EarnedAt time.Time      `db:"earned_at"`
}

func toAchievementRow(a *game.Achievement) (achievementRow, error) {
	data, err := toJSONCol("achievement_data", a.Data)
	return achievementRow{
		ID:       a.ID,
		UserID:   a.UserID,
		Type:     string(a.Type),
		Name:     a.Name,
		Data:     data,
		EarnedAt: a.EarnedAt,
	}, err
}

func (r achievementRow) toAchievement() (game.Achievement, error) {
	var data map[string]any
	if err := fromJSONCol("achievement_data", r.Data, &data); err != nil {
		return game.Achievement{}, err
	}
	if data == nil {
		data = map[string]any{}
	}
	return game.Achievement{
		ID:       r.ID,
		UserID:   r.UserID,
		Type:     game.AchievementType(r.Type),
		Name:     r.Name,
		Data:     data,
		EarnedAt: r.EarnedAt.UTC(),
	}, nil
}

type habitRow struct {
	ID             string    `db:"id"`
	UserID         string    `db:"user_id"`
	HabitName      string    `db:"habit_name"`
	HabitCategory  string    `db:"habit_category"`
	Completed      bool      `db:"completed"`
	CompletionDate time.Time `db:"completion_date"`
}

func toHabitRow(h *game.DailyHabit) habitRow {
	return habitRow{
		ID:             h.ID,
		UserID:         h.UserID,
		HabitName:      h.HabitName,
		HabitCategory:  string(h.HabitCategory),
		Completed:      h.Completed,
		CompletionDate: h.CompletionDate,
	}
}

func (r habitRow) toHabit() game.DailyHabit {
	return game.DailyHabit{
		ID:             r.ID,
		UserID:         r.UserID,
		HabitName:      r.HabitName,
		HabitCategory:  game.HabitCategory(r.HabitCategory),
		Completed:      r.Completed,
		CompletionDate: r.CompletionDate.UTC(),
	}
}

type settingsRow struct {
	UserID               string         `db:"user_id"`
	ScreenTimeLimit      int            `db:"screen_time_limit"`
	CustomHabits         types.JSONText `db:"custom_habits"`
	NotificationsEnabled bool           `db:"notifications_enabled"`
	UpdatedAt            time.Time      `db:"updated_at"`
}

func toSettingsRow(s *game.ParentSettings) (settingsRow, error) {
	habits := s.CustomHabits
	if habits == nil {
		habits = []game.CustomHabit{}
	}
	col, err := toJSONCol("custom_habits", habits)
	return settingsRow{
		UserID:               s.UserID,
		ScreenTimeLimit:      s.ScreenTimeLimit,
		CustomHabits:         col,
		NotificationsEnabled: s.NotificationsEnabled,
		UpdatedAt:            time.Now().UTC(),
	}, err
}

func (r settingsRow) toSettings() (*game.ParentSettings, error) {
	var habits []game.CustomHabit
	if err := fromJSONCol("custom_habits", r.CustomHabits, &habits); err != nil {
		return nil, err
	}
	if habits == nil {
		habits = []game.CustomHabit{}
	}
	return &game.ParentSettings{
		UserID:               r.UserID,
		ScreenTimeLimit:      r.ScreenTimeLimit,
		CustomHabits:         habits,
		NotificationsEnabled: r.NotificationsEnabled,
	}, nil
}
