// internal/game/types.go
//
// Core type definitions for player progression.
// Defines:
//   - Progress: the per-user progression row (levels, missions, stars, playtime).
//   - MissionScore: one append-only mission attempt.
//   - Achievement: a uniquely keyed unlocked reward.
//   - DailyHabit, ParentSettings: parent-dashboard records.
//   - PlayerStats: aggregated numbers for the dashboard.
//
// Field names are camelCase in Go and JSON; the store package owns the
// mapping to snake_case columns.

package game

import "time"

// Progress holds one user's progression state.
type Progress struct {
	UserID            string         `json:"userId"`
	CurrentLevel      int            `json:"currentLevel"`
	LevelsCompleted   []int          `json:"levelsCompleted"`   // set semantics, insertion order
	MissionsCompleted []string       `json:"missionsCompleted"` // set semantics, insertion order
	MissionStars      map[string]int `json:"missionStars"`      // best stars per mission
	TotalStars        int            `json:"totalStars"`        // always Σ MissionStars
	TotalPlaytime     int            `json:"totalPlaytime"`     // seconds
	LastPlayed        *time.Time     `json:"lastPlayed,omitempty"`
}

// MissionScore is one logged attempt at a mission. Never updated.
type MissionScore struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	LevelID      int       `json:"levelId"`
	MissionID    string    `json:"missionId"`
	StarsEarned  int       `json:"starsEarned"`
	TimeTaken    int       `json:"timeTaken"` // seconds
	PerfectScore bool      `json:"perfectScore"`
	CompletedAt  time.Time `json:"completedAt"`
}

// AchievementType classifies an achievement.
type AchievementType string

const (
	AchievementBadge       AchievementType = "badge"
	AchievementAlienUnlock AchievementType = "alien_unlock"
	AchievementMilestone   AchievementType = "milestone"
)

// Valid reports whether t is a known achievement type.
func (t AchievementType) Valid() bool {
	switch t {
	case AchievementBadge, AchievementAlienUnlock, AchievementMilestone:
		return true
	}
	return false
}

// Milestone names granted by the progression service.
const (
	MilestoneFirstMission = "First Mission"
	MilestonePerfectHero  = "Perfect Hero"
	MilestoneAllLevels    = "Hero of Habits"
)

// Achievement is unique per (UserID, Type, Name).
type Achievement struct {
	ID       string          `json:"id"`
	UserID   string          `json:"userId"`
	Type     AchievementType `json:"achievementType"`
	Name     string          `json:"achievementName"`
	Data     map[string]any  `json:"achievementData"`
	EarnedAt time.Time       `json:"earnedAt"`
}

// HabitCategory groups daily habits on the parent dashboard.
type HabitCategory string

const (
	HabitCleanliness HabitCategory = "cleanliness"
	HabitRespect     HabitCategory = "respect"
	HabitEnvironment HabitCategory = "environment"
	HabitSafety      HabitCategory = "safety"
)

// Valid reports whether c is a known category.
func (c HabitCategory) Valid() bool {
	switch c {
	case HabitCleanliness, HabitRespect, HabitEnvironment, HabitSafety:
		return true
	}
	return false
}

// DailyHabit is a per-day observation; it never feeds progression.
type DailyHabit struct {
	ID             string        `json:"id"`
	UserID         string        `json:"userId"`
	HabitName      string        `json:"habitName"`
	HabitCategory  HabitCategory `json:"habitCategory"`
	Completed      bool          `json:"completed"`
	CompletionDate time.Time     `json:"completionDate"`
}

// CustomHabit is a parent-defined habit.
type CustomHabit struct {
	Name      string `json:"name" validate:"required,max=80"`
	Category  string `json:"category" validate:"required"`
	Frequency string `json:"frequency" validate:"oneof=daily weekly"`
}

// ParentSettings is per-user configuration owned by the parent.
type ParentSettings struct {
	UserID               string        `json:"userId"`
	ScreenTimeLimit      int           `json:"screenTimeLimit"` // minutes per day, 0 = unlimited
	CustomHabits         []CustomHabit `json:"customHabits"`
	NotificationsEnabled bool          `json:"notificationsEnabled"`
}

// DefaultScreenTimeLimit applies until a parent saves settings.
const DefaultScreenTimeLimit = 60

// PlayerStats summarises progression for the dashboard.
type PlayerStats struct {
	TotalMissions   int `json:"totalMissions"`
	TotalStars      int `json:"totalStars"`
	PerfectScores   int `json:"perfectScores"`
	HabitsCompleted int `json:"habitsCompleted"` // lifetime
	Playtime        int `json:"playtime"`
	Level           int `json:"level"`
}
