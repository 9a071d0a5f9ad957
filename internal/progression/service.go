// internal/progression/service.go
//
// Progression service: the operations the HTTP layer calls for a signed-in
// player. Each operation loads from the Store, applies the pure rules in
// internal/game, and writes the result back.
//
// Notes:
//   - An empty userID fails with ErrNotAuthenticated before any store access.
//   - Store failures come back as *StoreError with the store's message unchanged.
//   - Progress writes and achievement grants are independent writes. If a grant
//     fails after the progress upsert, the progress change stays persisted.
//   - Nothing retries; the caller re-triggers.

package progression

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hero-of-habits/internal/catalog"
	"github.com/robalobadob/hero-of-habits/internal/game"
	"github.com/robalobadob/hero-of-habits/internal/metrics"
	"github.com/robalobadob/hero-of-habits/internal/store"
)

// Service runs progression operations against a Store.
type Service struct {
	store store.Store
	now   func() time.Time
}

// New constructs a Service.
func New(st store.Store) *Service {
	return &Service{store: st, now: func() time.Time { return time.Now().UTC() }}
}

// Grant is the outcome of an achievement grant. Skipped means the user
// already had it.
type Grant struct {
	Achievement *game.Achievement `json:"achievement,omitempty"`
	Type        string            `json:"achievementType"`
	Name        string            `json:"achievementName"`
	Skipped     bool              `json:"skipped"`
}

// MissionCompletion is returned by ApplyMissionCompletion.
type MissionCompletion struct {
	Progress        *game.Progress `json:"progress"`
	MissionID       string         `json:"missionId"`
	FirstCompletion bool           `json:"firstCompletion"`
	StarsGained     int            `json:"starsGained"`
	BestStars       int            `json:"bestStars"`
	BossUnlocked    bool           `json:"bossUnlocked"`
	Achievements    []Grant        `json:"achievements"`
}

// BossVictory is returned by ApplyBossVictory.
type BossVictory struct {
	Progress       *game.Progress  `json:"progress"`
	LevelID        int             `json:"levelId"`
	FirstVictory   bool            `json:"firstVictory"`
	Badge          Grant           `json:"badge"`
	AliensUnlocked []catalog.Alien `json:"aliensUnlocked"`
	Achievements   []Grant         `json:"achievements"`
}

// ----------------------------- progress ------------------------------------

// GetProgress returns the stored progress, or defaults for a new player.
func (s *Service) GetProgress(ctx context.Context, userID string) (*game.Progress, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	return s.loadProgress(ctx, userID)
}

func (s *Service) loadProgress(ctx context.Context, userID string) (*game.Progress, error) {
	p, err := s.store.GetProgress(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return game.NewProgress(userID), nil
	}
	if err != nil {
		return nil, storeErr("get progress", err)
	}
	p.Normalize()
	return p, nil
}

// RecordMissionResult appends one attempt to the score log. Progress is not
// touched. levelID 0 takes the mission's own level.
func (s *Service) RecordMissionResult(ctx context.Context, userID string, levelID int, missionID string, stars, timeTaken int) (*game.MissionScore, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	m, ok := catalog.MissionByID(missionID)
	if !ok {
		return nil, ErrUnknownMission
	}
	if levelID == 0 {
		levelID = m.LevelID
	}
	if levelID != m.LevelID {
		return nil, invalid("mission %s does not belong to level %d", missionID, levelID)
	}
	if err := CheckMissionResult(stars, timeTaken); err != nil {
		return nil, err
	}

	sc := &game.MissionScore{
		UserID:       userID,
		LevelID:      levelID,
		MissionID:    missionID,
		StarsEarned:  stars,
		TimeTaken:    timeTaken,
		PerfectScore: stars == catalog.MaxStars,
		CompletedAt:  s.now(),
	}
	if err := s.store.InsertMissionScore(ctx, sc); err != nil {
		return nil, storeErr("insert mission score", err)
	}
	return sc, nil
}

// CheckMissionResult validates an attempt the way RecordMissionResult does,
// without touching the store.
func CheckMissionResult(stars, timeTaken int) error {
	if !game.ValidStars(stars) {
		return ErrInvalidStars
	}
	if timeTaken < 0 {
		return invalid("timeTaken must not be negative")
	}
	return nil
}

// ApplyMissionCompletion marks a mission complete and keeps the best stars.
// The level is never completed here; only a boss victory does that.
func (s *Service) ApplyMissionCompletion(ctx context.Context, userID, missionID string, stars int) (*MissionCompletion, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	m, ok := catalog.MissionByID(missionID)
	if !ok {
		return nil, ErrUnknownMission
	}
	if !game.ValidStars(stars) {
		return nil, ErrInvalidStars
	}
	level, _ := catalog.LevelByID(m.LevelID)

	p, err := s.loadProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !game.IsLevelUnlocked(level, p) {
		return nil, ErrLevelLocked
	}
	if !game.IsMissionUnlocked(level, level.MissionIndex(m.ID), p) {
		return nil, ErrMissionLocked
	}

	out := game.ApplyMission(p, m, stars, s.now())
	if err := s.store.UpsertProgress(ctx, out.Progress); err != nil {
		return nil, storeErr("upsert progress", err)
	}
	metrics.MissionsCompleted.WithLabelValues(strconv.Itoa(level.ID), strconv.FormatBool(out.FirstCompletion)).Inc()

	res := &MissionCompletion{
		Progress:        out.Progress,
		MissionID:       m.ID,
		FirstCompletion: out.FirstCompletion,
		StarsGained:     out.StarsGained,
		BestStars:       out.Progress.MissionStars[m.ID],
		BossUnlocked:    out.BossUnlocked,
		Achievements:    []Grant{},
	}

	var milestones []string
	if out.FirstCompletion && len(p.MissionsCompleted) == 0 {
		milestones = append(milestones, game.MilestoneFirstMission)
	}
	if stars == catalog.MaxStars {
		milestones = append(milestones, game.MilestonePerfectHero)
	}
	for _, name := range milestones {
		g, err := s.grant(ctx, userID, game.AchievementMilestone, name, map[string]any{"missionId": m.ID})
		if err != nil {
			return res, err
		}
		res.Achievements = append(res.Achievements, *g)
	}

	log.Debug().Str("user", userID).Str("mission", m.ID).Int("stars", stars).
		Bool("first", out.FirstCompletion).Bool("bossUnlocked", out.BossUnlocked).Msg("mission completed")
	return res, nil
}

// ApplyBossVictory completes the level, advances the level pointer and
// grants the level badge plus any alien unlocks.
func (s *Service) ApplyBossVictory(ctx context.Context, userID string, levelID int) (*BossVictory, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	level, ok := catalog.LevelByID(levelID)
	if !ok {
		return nil, ErrUnknownLevel
	}

	p, err := s.loadProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !game.IsLevelUnlocked(level, p) {
		return nil, ErrLevelLocked
	}
	if !game.IsBossUnlocked(level, p) {
		return nil, ErrBossLocked
	}

	out := game.ApplyBossVictory(p, level, s.now())
	if err := s.store.UpsertProgress(ctx, out.Progress); err != nil {
		return nil, storeErr("upsert progress", err)
	}
	metrics.BossVictories.WithLabelValues(strconv.Itoa(level.ID)).Inc()

	res := &BossVictory{
		Progress:       out.Progress,
		LevelID:        level.ID,
		FirstVictory:   out.FirstVictory,
		AliensUnlocked: out.AliensUnlocked,
		Achievements:   []Grant{},
	}
	if res.AliensUnlocked == nil {
		res.AliensUnlocked = []catalog.Alien{}
	}

	badge, err := s.grant(ctx, userID, game.AchievementBadge, level.Badge, map[string]any{"levelId": level.ID})
	if err != nil {
		return res, err
	}
	res.Badge = *badge

	for _, a := range out.AliensUnlocked {
		g, err := s.grant(ctx, userID, game.AchievementAlienUnlock, a.Name, map[string]any{"alienId": a.ID, "levelId": level.ID})
		if err != nil {
			return res, err
		}
		res.Achievements = append(res.Achievements, *g)
	}
	if out.AllLevelsComplete {
		g, err := s.grant(ctx, userID, game.AchievementMilestone, game.MilestoneAllLevels, map[string]any{"levels": catalog.LevelCount()})
		if err != nil {
			return res, err
		}
		res.Achievements = append(res.Achievements, *g)
	}

	log.Info().Str("user", userID).Int("level", level.ID).Bool("first", out.FirstVictory).Msg("boss defeated")
	return res, nil
}

// AddPlaytime adds seconds to the playtime counter.
func (s *Service) AddPlaytime(ctx context.Context, userID string, seconds int) (*game.Progress, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if seconds <= 0 {
		return nil, invalid("seconds must be positive")
	}
	p, err := s.loadProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.TotalPlaytime += seconds
	t := s.now()
	p.LastPlayed = &t
	if err := s.store.UpsertProgress(ctx, p); err != nil {
		return nil, storeErr("upsert progress", err)
	}
	return p, nil
}

// --------------------------- achievements ----------------------------------

// GrantAchievement records an achievement; a duplicate is reported as Skipped.
func (s *Service) GrantAchievement(ctx context.Context, userID string, typ game.AchievementType, name string, data map[string]any) (*Grant, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if !typ.Valid() || strings.TrimSpace(name) == "" {
		return nil, invalid("unknown achievement type %q or empty name", typ)
	}
	return s.grant(ctx, userID, typ, strings.TrimSpace(name), data)
}

func (s *Service) grant(ctx context.Context, userID string, typ game.AchievementType, name string, data map[string]any) (*Grant, error) {
	a := &game.Achievement{UserID: userID, Type: typ, Name: name, Data: data, EarnedAt: s.now()}
	g := &Grant{Type: string(typ), Name: name}
	err := s.store.InsertAchievement(ctx, a)
	switch {
	case errors.Is(err, store.ErrDuplicate):
		g.Skipped = true
		metrics.AchievementsGranted.WithLabelValues(string(typ), "skipped").Inc()
		return g, nil
	case err != nil:
		log.Warn().Err(err).Str("user", userID).Str("achievement", name).Msg("grant achievement")
		return nil, storeErr("insert achievement", err)
	}
	g.Achievement = a
	metrics.AchievementsGranted.WithLabelValues(string(typ), "granted").Inc()
	return g, nil
}

// Achievements lists the user's achievements, newest first.
func (s *Service) Achievements(ctx context.Context, userID string) ([]game.Achievement, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	out, err := s.store.ListAchievements(ctx, userID)
	if err != nil {
		return nil, storeErr("list achievements", err)
	}
	return out, nil
}

// UnlockedAliens annotates the alien roster for p.
func (s *Service) UnlockedAliens(p *game.Progress) []catalog.Alien {
	return catalog.UnlockedAliens(p.LevelsCompleted)
}

// ------------------------------ scores -------------------------------------

// MissionScores lists attempts newest first; levelID 0 means every level.
func (s *Service) MissionScores(ctx context.Context, userID string, levelID int) ([]game.MissionScore, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	out, err := s.store.ListMissionScores(ctx, userID, levelID)
	if err != nil {
		return nil, storeErr("list mission scores", err)
	}
	return out, nil
}

// BestMissionStars derives the best stars per mission from the score log.
func (s *Service) BestMissionStars(ctx context.Context, userID string, levelID int) (map[string]int, error) {
	scores, err := s.MissionScores(ctx, userID, levelID)
	if err != nil {
		return nil, err
	}
	return game.BestStars(scores), nil
}

// LevelView annotates one level for the player.
func (s *Service) LevelView(ctx context.Context, userID string, levelID int) (*game.LevelView, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	level, ok := catalog.LevelByID(levelID)
	if !ok {
		return nil, ErrUnknownLevel
	}
	p, err := s.loadProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	best, err := s.BestMissionStars(ctx, userID, levelID)
	if err != nil {
		return nil, err
	}
	v := game.ViewLevel(level, p, best)
	return &v, nil
}

// LevelViews annotates every level, in play order.
func (s *Service) LevelViews(ctx context.Context, userID string) ([]game.LevelView, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	p, err := s.loadProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	best, err := s.BestMissionStars(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	levels := catalog.Levels()
	out := make([]game.LevelView, 0, len(levels))
	for _, l := range levels {
		out = append(out, game.ViewLevel(l, p, best))
	}
	return out, nil
}
