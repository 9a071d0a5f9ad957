// internal/httpserver/routes_play.go
//
// Server-side mini-game play.
//   - POST /play/missions/{id}         → start a mission mini-game
//   - POST /play/boss/{levelId}        → start a boss battle
//   - POST /play/{sessionId}/events    → {event: "clean:3"} advance the game
//   - GET  /play/{sessionId}           → current snapshot
//
// Sessions live in memory (minigame.Sessions). When a game finishes, its
// completion hook feeds the result into the progression service exactly
// once: missions apply the completion and record a score; a won boss battle
// applies the victory. A hook that fails is retried by resending any event.
// The outcome is kept next to the session so later GETs can show it.

package httpserver

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hero-of-habits/internal/auth"
	"github.com/robalobadob/hero-of-habits/internal/catalog"
	"github.com/robalobadob/hero-of-habits/internal/game"
	"github.com/robalobadob/hero-of-habits/internal/metrics"
	"github.com/robalobadob/hero-of-habits/internal/minigame"
	"github.com/robalobadob/hero-of-habits/internal/progression"
)

// playOutcome is what a finished session did to progression.
type playOutcome struct {
	Score      *game.MissionScore             `json:"score,omitempty"`
	Completion *progression.MissionCompletion `json:"completion,omitempty"`
	Victory    *progression.BossVictory       `json:"victory,omitempty"`
}

// playResults holds outcomes by session id.
type playResults struct {
	mu  sync.Mutex
	out map[string]*playOutcome
}

func newPlayResults() *playResults {
	return &playResults{out: make(map[string]*playOutcome)}
}

func (p *playResults) put(id string, o *playOutcome) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.out[id] = o
}

func (p *playResults) get(id string) *playOutcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out[id]
}

// prune drops outcomes whose session has expired.
func (p *playResults) prune(live func(id string) bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id := range p.out {
		if !live(id) {
			delete(p.out, id)
		}
	}
}

type playEventReq struct {
	Event string `json:"event"`
}

type playRes struct {
	Session minigame.Snapshot `json:"session"`
	Outcome *playOutcome      `json:"outcome,omitempty"`
}

func (s *Server) mountPlayRoutes() {
	s.r.Route("/play", func(r chi.Router) {
		r.Post("/missions/{id}", s.handlePlayMission)
		r.Post("/boss/{levelId}", s.handlePlayBoss)
		r.Post("/{sessionId}/events", s.handlePlayEvent)
		r.Get("/{sessionId}", s.handlePlayGet)
	})
}

func (s *Server) handlePlayMission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserIDFromContext(ctx)
	m, ok := catalog.MissionByID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, progression.ErrUnknownMission)
		return
	}
	view, err := s.svc.LevelView(ctx, userID, m.LevelID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !view.Unlocked {
		writeError(w, progression.ErrLevelLocked)
		return
	}
	level, _ := catalog.LevelByID(m.LevelID)
	if !view.Missions[level.MissionIndex(m.ID)].Unlocked {
		writeError(w, progression.ErrMissionLocked)
		return
	}

	out := &playOutcome{}
	hook := func(ctx context.Context, snap minigame.Snapshot) error {
		stars := snap.Result.Stars
		taken := int(time.Since(snap.StartedAt).Seconds())
		if out.Completion == nil {
			res, err := s.svc.ApplyMissionCompletion(ctx, snap.UserID, snap.MissionID, stars)
			if err != nil {
				return err
			}
			out.Completion = res
		}
		sc, err := s.svc.RecordMissionResult(ctx, snap.UserID, snap.LevelID, snap.MissionID, stars, taken)
		if err != nil {
			return err
		}
		out.Score = sc
		return nil
	}
	sess := s.startSession(userID, m.ID, m.LevelID, minigame.ForMission(m.MiniGame), hook, out)
	writeJSON(w, http.StatusCreated, playRes{Session: sess.Snapshot()})
}

func (s *Server) handlePlayBoss(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserIDFromContext(ctx)
	levelID, err := intParam(r, "levelId")
	if err != nil {
		writeError(w, err)
		return
	}
	view, err := s.svc.LevelView(ctx, userID, levelID)
	if err != nil {
		writeError(w, err)
		return
	}
	switch {
	case !view.Unlocked:
		writeError(w, progression.ErrLevelLocked)
		return
	case !view.BossUnlocked:
		writeError(w, progression.ErrBossLocked)
		return
	}

	out := &playOutcome{}
	hook := func(ctx context.Context, snap minigame.Snapshot) error {
		if snap.Result.Stars == 0 {
			return nil // defeat changes nothing
		}
		res, err := s.svc.ApplyBossVictory(ctx, snap.UserID, snap.LevelID)
		if err != nil {
			return err
		}
		out.Victory = res
		return nil
	}
	sess := s.startSession(userID, "", levelID, minigame.NewBossBattle(levelID), hook, out)
	writeJSON(w, http.StatusCreated, playRes{Session: sess.Snapshot()})
}

func (s *Server) startSession(userID, missionID string, levelID int, runner minigame.Runner, hook minigame.CompleteFunc, out *playOutcome) *minigame.Session {
	sess := s.sessions.Start(userID, missionID, levelID, runner, hook)
	s.plays.put(sess.ID(), out)
	s.plays.prune(s.sessions.Has)
	metrics.PlaySessions.Set(float64(s.sessions.Len()))
	log.Debug().Str("user", userID).Str("session", sess.ID()).Str("game", runner.Game()).Msg("play session started")
	return sess
}

func (s *Server) handlePlayEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserIDFromContext(ctx)
	if userID == "" {
		writeError(w, progression.ErrNotAuthenticated)
		return
	}
	sess, err := s.sessions.Get(chi.URLParam(r, "sessionId"), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	var body playEventReq
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	ev, err := minigame.ParseEvent(body.Event)
	if err != nil {
		writeError(w, err)
		return
	}
	snap, err := sess.Apply(ctx, ev)
	if err != nil {
		writeError(w, err)
		return
	}
	res := playRes{Session: snap}
	if snap.Finished {
		res.Outcome = s.plays.get(sess.ID())
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handlePlayGet(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, progression.ErrNotAuthenticated)
		return
	}
	sess, err := s.sessions.Get(chi.URLParam(r, "sessionId"), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	snap := sess.Snapshot()
	res := playRes{Session: snap}
	if snap.Finished {
		res.Outcome = s.plays.get(sess.ID())
	}
	writeJSON(w, http.StatusOK, res)
}
