// internal/game/engine.go
//
// Progression rules: pure functions over catalog content and a Progress value.
// Responsibilities:
//   - Unlock gating for levels, missions and bosses.
//   - Applying a mission result (set-add mission, best-of stars, boss gate).
//   - Applying a boss victory (authoritative level completion, level pointer, aliens).
//   - Aggregation helpers (best stars per mission, dashboard stats, level views).
//
// Notes:
//   - Nothing here touches storage; callers load, apply, then persist.
//   - Apply* never mutate their input. They return a fresh Progress.
//   - TotalStars is the sum of best stars per mission, so replays cannot inflate it.
//   - Only a boss victory marks a level complete.

package game

import (
	"sort"
	"time"

	"github.com/robalobadob/hero-of-habits/internal/catalog"
)

// NewProgress returns the default progress for a user with no stored row.
func NewProgress(userID string) *Progress {
	return &Progress{
		UserID:            userID,
		CurrentLevel:      1,
		LevelsCompleted:   []int{},
		MissionsCompleted: []string{},
		MissionStars:      map[string]int{},
	}
}

// Normalize fills nil collections and repairs derived fields after a load.
func (p *Progress) Normalize() {
	if p.LevelsCompleted == nil {
		p.LevelsCompleted = []int{}
	}
	if p.MissionsCompleted == nil {
		p.MissionsCompleted = []string{}
	}
	if p.MissionStars == nil {
		p.MissionStars = map[string]int{}
	}
	if p.CurrentLevel < 1 {
		p.CurrentLevel = 1
	}
	// Rows written before per-mission stars were tracked only carry a total.
	if len(p.MissionStars) > 0 {
		p.TotalStars = SumStars(p.MissionStars)
	}
}

// Clone returns a deep copy.
func (p *Progress) Clone() *Progress {
	c := *p
	c.LevelsCompleted = append([]int{}, p.LevelsCompleted...)
	c.MissionsCompleted = append([]string{}, p.MissionsCompleted...)
	c.MissionStars = make(map[string]int, len(p.MissionStars))
	for k, v := range p.MissionStars {
		c.MissionStars[k] = v
	}
	if p.LastPlayed != nil {
		t := *p.LastPlayed
		c.LastPlayed = &t
	}
	return &c
}

// HasLevel reports whether levelID is in the completed-levels set.
func (p *Progress) HasLevel(levelID int) bool {
	for _, id := range p.LevelsCompleted {
		if id == levelID {
			return true
		}
	}
	return false
}

// HasMission reports whether missionID is in the completed-missions set.
func (p *Progress) HasMission(missionID string) bool {
	for _, id := range p.MissionsCompleted {
		if id == missionID {
			return true
		}
	}
	return false
}

// ValidStars reports whether stars is within 0..MaxStars.
func ValidStars(stars int) bool {
	return stars >= 0 && stars <= catalog.MaxStars
}

// ----------------------------- unlock gating --------------------------------

// IsLevelUnlocked: no requirement, or the prerequisite level is completed.
func IsLevelUnlocked(level catalog.Level, p *Progress) bool {
	return level.UnlockRequirement == 0 || p.HasLevel(level.UnlockRequirement)
}

// IsMissionUnlocked: inside an unlocked level the first mission is always
// open; every other mission opens once its predecessor is completed.
func IsMissionUnlocked(level catalog.Level, missionIndex int, p *Progress) bool {
	if missionIndex < 0 || missionIndex >= len(level.Missions) {
		return false
	}
	if !IsLevelUnlocked(level, p) {
		return false
	}
	if missionIndex == 0 {
		return true
	}
	return p.HasMission(level.Missions[missionIndex-1].ID)
}

// IsBossUnlocked: every mission of the level is completed.
func IsBossUnlocked(level catalog.Level, p *Progress) bool {
	if len(level.Missions) == 0 {
		return false
	}
	for _, m := range level.Missions {
		if !p.HasMission(m.ID) {
			return false
		}
	}
	return true
}

// ------------------------------ transitions ---------------------------------

// MissionOutcome is the result of ApplyMission.
type MissionOutcome struct {
	Progress        *Progress
	FirstCompletion bool // mission was not in the completed set before
	PreviousBest    int
	StarsGained     int  // increase of TotalStars
	BossUnlocked    bool // this completion opened the level's boss
}

// ApplyMission records a finished mission on a copy of p.
func ApplyMission(p *Progress, mission catalog.Mission, stars int, at time.Time) MissionOutcome {
	level, _ := catalog.LevelByID(mission.LevelID)
	bossBefore := IsBossUnlocked(level, p)

	next := p.Clone()
	out := MissionOutcome{Progress: next}

	if !next.HasMission(mission.ID) {
		next.MissionsCompleted = append(next.MissionsCompleted, mission.ID)
		out.FirstCompletion = true
	}

	out.PreviousBest = next.MissionStars[mission.ID]
	if stars > out.PreviousBest {
		next.MissionStars[mission.ID] = stars
	} else if _, ok := next.MissionStars[mission.ID]; !ok {
		next.MissionStars[mission.ID] = stars
	}
	before := next.TotalStars
	next.TotalStars = SumStars(next.MissionStars)
	out.StarsGained = next.TotalStars - before

	t := at.UTC()
	next.LastPlayed = &t

	out.BossUnlocked = !bossBefore && IsBossUnlocked(level, next)
	return out
}

// BossOutcome is the result of ApplyBossVictory.
type BossOutcome struct {
	Progress          *Progress
	FirstVictory      bool
	AliensUnlocked    []catalog.Alien
	AllLevelsComplete bool
}

// ApplyBossVictory marks level complete on a copy of p and advances the
// current-level pointer. The pointer never moves backwards on a replay.
func ApplyBossVictory(p *Progress, level catalog.Level, at time.Time) BossOutcome {
	next := p.Clone()
	out := BossOutcome{Progress: next}

	if !next.HasLevel(level.ID) {
		next.LevelsCompleted = append(next.LevelsCompleted, level.ID)
		sort.Ints(next.LevelsCompleted)
		out.FirstVictory = true
		out.AliensUnlocked = catalog.AliensUnlockedBy(level.ID)
	}
	if next.CurrentLevel < level.ID+1 {
		next.CurrentLevel = level.ID + 1
	}
	t := at.UTC()
	next.LastPlayed = &t

	out.AllLevelsComplete = true
	for _, l := range catalog.Levels() {
		if !next.HasLevel(l.ID) {
			out.AllLevelsComplete = false
			break
		}
	}
	return out
}

// ------------------------------ aggregation ---------------------------------

// SumStars adds up per-mission stars.
func SumStars(best map[string]int) int {
	total := 0
	for _, s := range best {
		total += s
	}
	return total
}

// BestStars derives the best stars per mission from an attempt log.
func BestStars(scores []MissionScore) map[string]int {
	best := make(map[string]int)
	for _, s := range scores {
		if cur, ok := best[s.MissionID]; !ok || s.StarsEarned > cur {
			best[s.MissionID] = s.StarsEarned
		}
	}
	return best
}

// SummarizeStats folds progress, the score log and habit logs into PlayerStats.
func SummarizeStats(p *Progress, scores []MissionScore, habits []DailyHabit) PlayerStats {
	st := PlayerStats{
		TotalMissions: len(p.MissionsCompleted),
		TotalStars:    p.TotalStars,
		Playtime:      p.TotalPlaytime,
		Level:         p.CurrentLevel,
	}
	for _, s := range scores {
		if s.PerfectScore {
			st.PerfectScores++
		}
	}
	for _, h := range habits {
		if h.Completed {
			st.HabitsCompleted++
		}
	}
	return st
}

// MissionView is a mission annotated for one player.
type MissionView struct {
	catalog.Mission
	Unlocked  bool `json:"unlocked"`
	Completed bool `json:"completed"`
	BestStars int  `json:"bestStars"`
}

// LevelView is a level annotated for one player.
type LevelView struct {
	ID           int             `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Environment  string          `json:"environment"`
	Badge        string          `json:"badge"`
	Boss         catalog.Villain `json:"boss"`
	Unlocked     bool            `json:"unlocked"`
	Completed    bool            `json:"completed"`
	BossUnlocked bool            `json:"bossUnlocked"`
	Missions     []MissionView   `json:"missions"`
}

// ViewLevel combines level content, progress and best stars into a LevelView.
// A locked level reports every mission and the boss as locked.
func ViewLevel(level catalog.Level, p *Progress, best map[string]int) LevelView {
	v := LevelView{
		ID:          level.ID,
		Title:       level.Title,
		Description: level.Description,
		Environment: level.Environment,
		Badge:       level.Badge,
		Boss:        level.Boss,
		Unlocked:    IsLevelUnlocked(level, p),
		Completed:   p.HasLevel(level.ID),
		Missions:    make([]MissionView, 0, len(level.Missions)),
	}
	v.BossUnlocked = v.Unlocked && IsBossUnlocked(level, p)
	for i, m := range level.Missions {
		v.Missions = append(v.Missions, MissionView{
			Mission:   m,
			Unlocked:  IsMissionUnlocked(level, i, p),
			Completed: p.HasMission(m.ID),
			BestStars: best[m.ID],
		})
	}
	return v
}
