// internal/catalog/catalog.go
//
// Read-only lookups over the static game content.
//
// Responsibilities:
//   - Expose aliens, villains, levels and missions by id.
//   - Derive the per-alien `Unlocked` flag from a set of completed levels.
//
// Notes:
//   - "Not found" is reported as (zero value, false); lookups never error.
//   - Accessors return copies so callers cannot mutate the shared tables.
//   - Mission ids are unique across levels, so MissionByID is unambiguous.

package catalog

// Alien is a playable hero form mapped to one life-habit theme.
type Alien struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Power       string `json:"power"`
	Habit       string `json:"habit"`
	Color       string `json:"color"`
	Unlocked    bool   `json:"unlocked"`    // derived, see UnlockedAliens
	UnlockLevel int    `json:"unlockLevel"` // 0 = starting alien
}

// Villain is the boss of a level and represents a bad habit.
type Villain struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Represents  string   `json:"represents"`
	WeakAgainst []string `json:"weakAgainst"`
	Difficulty  int      `json:"difficulty"`
}

// Mission is one gameplay unit inside a level, backed by a mini-game.
type Mission struct {
	ID            string `json:"id"`
	LevelID       int    `json:"levelId"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Objective     string `json:"objective"`
	MiniGame      string `json:"miniGame"`
	RequiredAlien string `json:"requiredAlien,omitempty"`
	Difficulty    int    `json:"difficulty"`
	MaxStars      int    `json:"maxStars"`
}

// Level is an ordered group of missions followed by a boss challenge.
type Level struct {
	ID                int       `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Environment       string    `json:"environment"`
	Missions          []Mission `json:"missions"`
	Boss              Villain   `json:"boss"`
	Badge             string    `json:"badge"`
	UnlockRequirement int       `json:"unlockRequirement"` // prerequisite level id, 0 = none
}

// MissionIndex returns the position of missionID within the level, or -1.
func (l Level) MissionIndex(missionID string) int {
	for i, m := range l.Missions {
		if m.ID == missionID {
			return i
		}
	}
	return -1
}

// AlienByID looks up an alien. The returned alien has Unlocked set only for
// starting aliens; use UnlockedAliens for a progress-aware view.
func AlienByID(id string) (Alien, bool) {
	for _, a := range aliens {
		if a.ID == id {
			a.Unlocked = a.UnlockLevel == 0
			return a, true
		}
	}
	return Alien{}, false
}

// VillainByID looks up a villain.
func VillainByID(id string) (Villain, bool) {
	for _, v := range villains {
		if v.ID == id {
			return copyVillain(v), true
		}
	}
	return Villain{}, false
}

// LevelByID looks up a level by its number.
func LevelByID(id int) (Level, bool) {
	for _, l := range levels {
		if l.ID == id {
			return copyLevel(l), true
		}
	}
	return Level{}, false
}

// MissionByID scans every level's missions; first match wins.
func MissionByID(id string) (Mission, bool) {
	for _, l := range levels {
		for _, m := range l.Missions {
			if m.ID == id {
				return m, true
			}
		}
	}
	return Mission{}, false
}

// UnlockedAliens returns the whole alien roster annotated with Unlocked.
// Starting aliens are always unlocked; the rest unlock when their level is
// in completedLevels.
func UnlockedAliens(completedLevels []int) []Alien {
	done := make(map[int]struct{}, len(completedLevels))
	for _, id := range completedLevels {
		done[id] = struct{}{}
	}
	out := make([]Alien, len(aliens))
	for i, a := range aliens {
		_, ok := done[a.UnlockLevel]
		a.Unlocked = a.UnlockLevel == 0 || ok
		out[i] = a
	}
	return out
}

// AliensUnlockedBy returns the aliens whose unlock level is levelID.
func AliensUnlockedBy(levelID int) []Alien {
	var out []Alien
	for _, a := range aliens {
		if levelID != 0 && a.UnlockLevel == levelID {
			a.Unlocked = true
			out = append(out, a)
		}
	}
	return out
}

// Aliens returns the alien roster with starting aliens marked unlocked.
func Aliens() []Alien {
	return UnlockedAliens(nil)
}

// Villains returns every villain.
func Villains() []Villain {
	out := make([]Villain, len(villains))
	for i, v := range villains {
		out[i] = copyVillain(v)
	}
	return out
}

// Levels returns every level in play order.
func Levels() []Level {
	out := make([]Level, len(levels))
	for i, l := range levels {
		out[i] = copyLevel(l)
	}
	return out
}

// LevelCount reports how many levels the catalog ships.
func LevelCount() int { return len(levels) }

func copyVillain(v Villain) Villain {
	v.WeakAgainst = append([]string(nil), v.WeakAgainst...)
	return v
}

func copyLevel(l Level) Level {
	l.Missions = append([]Mission(nil), l.Missions...)
	l.Boss = copyVillain(l.Boss)
	return l
}
