package progression

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/robalobadob/hero-of-habits/internal/catalog"
	"github.com/robalobadob/hero-of-habits/internal/daily"
	"github.com/robalobadob/hero-of-habits/internal/game"
	"github.com/robalobadob/hero-of-habits/internal/store"
)

var validate = validator.New()

// ------------------------------ habits -------------------------------------

// TrackDailyHabit logs a habit observation for today. Habits never feed
// progression.
func (s *Service) TrackDailyHabit(ctx context.Context, userID, name string, category game.HabitCategory, completed bool) (*game.DailyHabit, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 80 {
		return nil, invalid("habit name must be 1-80 characters")
	}
	if !category.Valid() {
		return nil, invalid("unknown habit category %q", category)
	}
	h := &game.DailyHabit{
		UserID:         userID,
		HabitName:      name,
		HabitCategory:  category,
		Completed:      completed,
		CompletionDate: s.now(),
	}
	if err := s.store.InsertDailyHabit(ctx, h); err != nil {
		return nil, storeErr("insert daily habit", err)
	}
	return h, nil
}

// DailyHabits lists habits logged on the UTC day containing day.
func (s *Service) DailyHabits(ctx context.Context, userID string, day time.Time) ([]game.DailyHabit, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	from, to := daily.DayBounds(day)
	out, err := s.store.ListDailyHabits(ctx, userID, from, to)
	if err != nil {
		return nil, storeErr("list daily habits", err)
	}
	return out, nil
}

// ----------------------------- settings ------------------------------------

// DefaultParentSettings is what a user sees before a parent saves anything.
func DefaultParentSettings(userID string) *game.ParentSettings {
	return &game.ParentSettings{
		UserID:               userID,
		ScreenTimeLimit:      game.DefaultScreenTimeLimit,
		CustomHabits:         []game.CustomHabit{},
		NotificationsEnabled: true,
	}
}

// ParentSettings returns the saved settings or defaults.
func (s *Service) ParentSettings(ctx context.Context, userID string) (*game.ParentSettings, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	return s.loadSettings(ctx, userID)
}

func (s *Service) loadSettings(ctx context.Context, userID string) (*game.ParentSettings, error) {
	ps, err := s.store.GetParentSettings(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return DefaultParentSettings(userID), nil
	}
	if err != nil {
		return nil, storeErr("get parent settings", err)
	}
	return ps, nil
}

// SettingsPatch updates only the fields that are set.
type SettingsPatch struct {
	ScreenTimeLimit      *int                `json:"screenTimeLimit" validate:"omitempty,min=0,max=1440"`
	CustomHabits         *[]game.CustomHabit `json:"customHabits" validate:"omitempty,max=50,dive"`
	NotificationsEnabled *bool               `json:"notificationsEnabled"`
}

// UpdateParentSettings applies patch over the current settings and upserts.
func (s *Service) UpdateParentSettings(ctx context.Context, userID string, patch SettingsPatch) (*game.ParentSettings, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if err := validate.Struct(patch); err != nil {
		return nil, invalid("%v", err)
	}
	ps, err := s.loadSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	if patch.ScreenTimeLimit != nil {
		ps.ScreenTimeLimit = *patch.ScreenTimeLimit
	}
	if patch.CustomHabits != nil {
		ps.CustomHabits = append([]game.CustomHabit{}, (*patch.CustomHabits)...)
	}
	if patch.NotificationsEnabled != nil {
		ps.NotificationsEnabled = *patch.NotificationsEnabled
	}
	if err := s.store.UpsertParentSettings(ctx, ps); err != nil {
		return nil, storeErr("upsert parent settings", err)
	}
	return ps, nil
}

// ----------------------------- dashboard -----------------------------------

// recentScoreLimit caps the score list shown on the dashboard.
const recentScoreLimit = 10

// Dashboard is the parent-facing summary of one player.
type Dashboard struct {
	Progress             *game.Progress       `json:"progress"`
	Stats                game.PlayerStats     `json:"stats"`
	Aliens               []catalog.Alien      `json:"aliens"`
	TodayHabits          []game.DailyHabit    `json:"todayHabits"`
	RecentScores         []game.MissionScore  `json:"recentScores"`
	Achievements         []game.Achievement   `json:"achievements"`
	Settings             *game.ParentSettings `json:"settings"`
	ScreenTimeUsedToday  int                  `json:"screenTimeUsedToday"`           // minutes
	ScreenTimeRemaining  *int                 `json:"screenTimeRemaining,omitempty"` // nil when unlimited
	ScreenTimeLimitReach bool                 `json:"screenTimeLimitReached"`
}

// Dashboard gathers everything the parent page shows.
func (s *Service) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	p, err := s.loadProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	scores, err := s.MissionScores(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	habits, err := s.DailyHabits(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}
	_, endOfToday := daily.DayBounds(s.now())
	allHabits, err := s.store.ListDailyHabits(ctx, userID, time.Unix(0, 0).UTC(), endOfToday)
	if err != nil {
		return nil, storeErr("list daily habits", err)
	}
	achievements, err := s.Achievements(ctx, userID)
	if err != nil {
		return nil, err
	}
	settings, err := s.loadSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		Progress:     p,
		Stats:        game.SummarizeStats(p, scores, allHabits),
		Aliens:       catalog.UnlockedAliens(p.LevelsCompleted),
		TodayHabits:  habits,
		RecentScores: scores,
		Achievements: achievements,
		Settings:     settings,
	}
	if len(d.RecentScores) > recentScoreLimit {
		d.RecentScores = d.RecentScores[:recentScoreLimit]
	}

	d.ScreenTimeUsedToday = screenMinutesOn(scores, s.now())
	if settings.ScreenTimeLimit > 0 {
		left := max(0, settings.ScreenTimeLimit-d.ScreenTimeUsedToday)
		d.ScreenTimeRemaining = &left
		d.ScreenTimeLimitReach = left == 0
	}
	return d, nil
}

// screenMinutesOn sums mission time on the UTC day of at, rounded up to minutes.
func screenMinutesOn(scores []game.MissionScore, at time.Time) int {
	from, to := daily.DayBounds(at)
	secs := 0
	for _, sc := range scores {
		if !sc.CompletedAt.Before(from) && sc.CompletedAt.Before(to) {
			secs += sc.TimeTaken
		}
	}
	return (secs + 59) / 60
}
