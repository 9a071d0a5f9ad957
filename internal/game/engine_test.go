package game

import (
	"testing"
	"time"

	"github.com/robalobadob/hero-of-habits/internal/catalog"
)

var now = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func mustLevel(t *testing.T, id int) catalog.Level {
	t.Helper()
	l, ok := catalog.LevelByID(id)
	if !ok {
		t.Fatalf("level %d missing from catalog", id)
	}
	return l
}

func TestNewProgressDefaults(t *testing.T) {
	p := NewProgress("u1")
	if p.CurrentLevel != 1 || p.TotalStars != 0 || p.TotalPlaytime != 0 {
		t.Fatalf("unexpected defaults: %+v", p)
	}
	if p.LevelsCompleted == nil || p.MissionsCompleted == nil || p.MissionStars == nil {
		t.Fatalf("collections must be non-nil: %+v", p)
	}
	if p.LastPlayed != nil {
		t.Fatalf("lastPlayed should be unset")
	}
}

func TestUnlockGatingLevelOne(t *testing.T) {
	l1 := mustLevel(t, 1)
	l2 := mustLevel(t, 2)
	p := NewProgress("u1")

	if !IsLevelUnlocked(l1, p) {
		t.Fatalf("level 1 must always be unlocked")
	}
	if IsLevelUnlocked(l2, p) {
		t.Fatalf("level 2 must start locked")
	}
	if !IsMissionUnlocked(l1, 0, p) || IsMissionUnlocked(l1, 1, p) {
		t.Fatalf("only the first mission should be open")
	}
	if IsMissionUnlocked(l1, -1, p) || IsMissionUnlocked(l1, 3, p) {
		t.Fatalf("out of range indexes must be locked")
	}
	if IsBossUnlocked(l1, p) {
		t.Fatalf("boss must start locked")
	}
	if IsMissionUnlocked(l2, 0, p) {
		t.Fatalf("first mission of a locked level must be locked")
	}
}

func TestLevelOneFlow(t *testing.T) {
	l1 := mustLevel(t, 1)
	p := NewProgress("u1")

	stars := []int{3, 2, 1}
	for i, m := range l1.Missions {
		if !IsMissionUnlocked(l1, i, p) {
			t.Fatalf("mission %s should be unlocked at step %d", m.ID, i)
		}
		out := ApplyMission(p, m, stars[i], now)
		if !out.FirstCompletion {
			t.Fatalf("mission %s should be a first completion", m.ID)
		}
		if out.BossUnlocked != (i == len(l1.Missions)-1) {
			t.Fatalf("step %d BossUnlocked = %v", i, out.BossUnlocked)
		}
		p = out.Progress
	}

	if p.TotalStars != 6 {
		t.Fatalf("TotalStars = %d, want 6", p.TotalStars)
	}
	if len(p.MissionsCompleted) != 3 {
		t.Fatalf("MissionsCompleted = %v", p.MissionsCompleted)
	}
	if len(p.LevelsCompleted) != 0 || p.CurrentLevel != 1 {
		t.Fatalf("missions alone must not complete the level: %+v", p)
	}
	if !IsBossUnlocked(l1, p) {
		t.Fatalf("boss should be unlocked after all missions")
	}

	b := ApplyBossVictory(p, l1, now)
	p = b.Progress
	if !b.FirstVictory || !p.HasLevel(1) || p.CurrentLevel != 2 {
		t.Fatalf("boss victory did not complete level 1: %+v", p)
	}
	if len(b.AliensUnlocked) != 1 || b.AliensUnlocked[0].ID != catalog.AlienXLR8 {
		t.Fatalf("AliensUnlocked = %+v", b.AliensUnlocked)
	}
	if !IsLevelUnlocked(mustLevel(t, 2), p) {
		t.Fatalf("level 2 should now be unlocked")
	}
	if b.AllLevelsComplete {
		t.Fatalf("only one level is done")
	}
}

// Replays keep the best stars per mission; TotalStars never inflates.
func TestReplayDoesNotInflateStars(t *testing.T) {
	l1 := mustLevel(t, 1)
	m := l1.Missions[0]
	p := NewProgress("u1")

	p = ApplyMission(p, m, 2, now).Progress
	out := ApplyMission(p, m, 2, now)
	if out.FirstCompletion || out.StarsGained != 0 || out.Progress.TotalStars != 2 {
		t.Fatalf("equal replay changed totals: %+v", out)
	}
	if len(out.Progress.MissionsCompleted) != 1 {
		t.Fatalf("mission recorded twice: %v", out.Progress.MissionsCompleted)
	}

	out = ApplyMission(out.Progress, m, 1, now)
	if out.Progress.TotalStars != 2 || out.Progress.MissionStars[m.ID] != 2 {
		t.Fatalf("worse replay lowered best: %+v", out.Progress)
	}
}

func TestBestImprovementCountsDifference(t *testing.T) {
	m := mustLevel(t, 1).Missions[0]
	p := ApplyMission(NewProgress("u1"), m, 1, now).Progress
	out := ApplyMission(p, m, 3, now)
	if out.PreviousBest != 1 || out.StarsGained != 2 || out.Progress.TotalStars != 3 {
		t.Fatalf("1 then 3 should total 3: %+v", out)
	}
}

func TestApplyMissionDoesNotMutateInput(t *testing.T) {
	m := mustLevel(t, 1).Missions[0]
	p := NewProgress("u1")
	_ = ApplyMission(p, m, 3, now)
	if len(p.MissionsCompleted) != 0 || len(p.MissionStars) != 0 || p.TotalStars != 0 || p.LastPlayed != nil {
		t.Fatalf("input was mutated: %+v", p)
	}
}

func TestZeroStarMissionStillCompletes(t *testing.T) {
	m := mustLevel(t, 1).Missions[0]
	out := ApplyMission(NewProgress("u1"), m, 0, now)
	if !out.Progress.HasMission(m.ID) || out.Progress.TotalStars != 0 {
		t.Fatalf("zero-star run: %+v", out.Progress)
	}
	if _, ok := out.Progress.MissionStars[m.ID]; !ok {
		t.Fatalf("zero-star run should still record a best entry")
	}
}

func TestBossReplayKeepsPointer(t *testing.T) {
	l1 := mustLevel(t, 1)
	p := NewProgress("u1")
	p.LevelsCompleted = []int{1, 2}
	p.CurrentLevel = 3

	b := ApplyBossVictory(p, l1, now)
	if b.FirstVictory || len(b.AliensUnlocked) != 0 {
		t.Fatalf("replay should not re-unlock: %+v", b)
	}
	if b.Progress.CurrentLevel != 3 {
		t.Fatalf("CurrentLevel moved backwards to %d", b.Progress.CurrentLevel)
	}
	if len(b.Progress.LevelsCompleted) != 2 {
		t.Fatalf("LevelsCompleted = %v", b.Progress.LevelsCompleted)
	}
}

func TestAllLevelsComplete(t *testing.T) {
	p := NewProgress("u1")
	for _, l := range catalog.Levels() {
		b := ApplyBossVictory(p, l, now)
		p = b.Progress
		if b.AllLevelsComplete != (l.ID == catalog.LevelCount()) {
			t.Fatalf("level %d AllLevelsComplete = %v", l.ID, b.AllLevelsComplete)
		}
	}
	if p.CurrentLevel != catalog.LevelCount()+1 {
		t.Fatalf("CurrentLevel = %d", p.CurrentLevel)
	}
}

func TestValidStars(t *testing.T) {
	for s, want := range map[int]bool{-1: false, 0: true, 3: true, 4: false} {
		if ValidStars(s) != want {
			t.Fatalf("ValidStars(%d) != %v", s, want)
		}
	}
}

func TestBestStarsAndStats(t *testing.T) {
	scores := []MissionScore{
		{MissionID: "a", StarsEarned: 1},
		{MissionID: "a", StarsEarned: 3, PerfectScore: true},
		{MissionID: "b", StarsEarned: 0},
		{MissionID: "a", StarsEarned: 2},
	}
	best := BestStars(scores)
	if best["a"] != 3 || best["b"] != 0 || len(best) != 2 {
		t.Fatalf("BestStars = %v", best)
	}

	p := NewProgress("u1")
	p.MissionsCompleted = []string{"a", "b"}
	p.MissionStars = best
	p.TotalStars = SumStars(best)
	p.TotalPlaytime = 420
	habits := []DailyHabit{{Completed: true}, {Completed: false}, {Completed: true}}

	st := SummarizeStats(p, scores, habits)
	want := PlayerStats{TotalMissions: 2, TotalStars: 3, PerfectScores: 1, HabitsCompleted: 2, Playtime: 420, Level: 1}
	if st != want {
		t.Fatalf("SummarizeStats = %+v, want %+v", st, want)
	}
}

func TestNormalizeRepairsLoadedRow(t *testing.T) {
	p := &Progress{UserID: "u1", TotalStars: 99, MissionStars: map[string]int{"a": 2, "b": 3}}
	p.Normalize()
	if p.CurrentLevel != 1 || p.TotalStars != 5 || p.LevelsCompleted == nil || p.MissionsCompleted == nil {
		t.Fatalf("Normalize = %+v", p)
	}
}

func TestViewLevelLockedAndOpen(t *testing.T) {
	l2 := mustLevel(t, 2)
	p := NewProgress("u1")
	v := ViewLevel(l2, p, nil)
	if v.Unlocked || v.BossUnlocked {
		t.Fatalf("level 2 view should be locked: %+v", v)
	}
	for _, m := range v.Missions {
		if m.Unlocked {
			t.Fatalf("mission %s of a locked level reported unlocked", m.ID)
		}
	}

	l1 := mustLevel(t, 1)
	p = ApplyMission(p, l1.Missions[0], 2, now).Progress
	v = ViewLevel(l1, p, map[string]int{l1.Missions[0].ID: 2})
	if !v.Missions[0].Completed || v.Missions[0].BestStars != 2 || !v.Missions[1].Unlocked || v.Missions[2].Unlocked {
		t.Fatalf("level 1 view = %+v", v.Missions)
	}
}
