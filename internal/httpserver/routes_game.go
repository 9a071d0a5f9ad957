// internal/httpserver/routes_game.go
//
// Player progression endpoints. Every handler passes the context user id
// straight to the progression service, which answers anonymous callers with
// ErrNotAuthenticated (401).
//   - GET  /progress
//   - POST /progress/playtime     {seconds}
//   - GET  /levels, /levels/{id}  levels annotated with unlock state
//   - POST /missions/{id}/complete {stars, timeTaken}
//   - POST /levels/{id}/boss/victory
//   - GET  /scores?levelId=, /scores/best?levelId=
//   - GET  /achievements, /aliens

package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/hero-of-habits/internal/auth"
	"github.com/robalobadob/hero-of-habits/internal/game"
	"github.com/robalobadob/hero-of-habits/internal/progression"
)

type completeMissionReq struct {
	Stars     int `json:"stars"`
	TimeTaken int `json:"timeTaken"` // seconds
}

type completeMissionRes struct {
	*progression.MissionCompletion
	Score *game.MissionScore `json:"score"`
}

type playtimeReq struct {
	Seconds int `json:"seconds"`
}

func (s *Server) mountGameRoutes() {
	s.r.Get("/progress", s.handleProgress)
	s.r.Post("/progress/playtime", s.handlePlaytime)
	s.r.Get("/levels", s.handleLevels)
	s.r.Get("/levels/{id}", s.handleLevel)
	s.r.Post("/levels/{id}/boss/victory", s.handleBossVictory)
	s.r.Post("/missions/{id}/complete", s.handleCompleteMission)
	s.r.Get("/scores", s.handleScores)
	s.r.Get("/scores/best", s.handleBestScores)
	s.r.Get("/achievements", s.handleAchievements)
	s.r.Get("/aliens", s.handleAliens)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.GetProgress(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePlaytime(w http.ResponseWriter, r *http.Request) {
	var body playtimeReq
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	p, err := s.svc.AddPlaytime(r.Context(), auth.UserIDFromContext(r.Context()), body.Seconds)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	views, err := s.svc.LevelViews(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleLevel(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	v, err := s.svc.LevelView(r.Context(), auth.UserIDFromContext(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// handleCompleteMission validates the attempt, applies the completion so a
// locked mission never lands in the score log, then records the attempt.
func (s *Server) handleCompleteMission(w http.ResponseWriter, r *http.Request) {
	var body completeMissionReq
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	ctx := r.Context()
	userID := auth.UserIDFromContext(ctx)
	missionID := chi.URLParam(r, "id")
	if err := progression.CheckMissionResult(body.Stars, body.TimeTaken); err != nil {
		writeError(w, err)
		return
	}

	res, err := s.svc.ApplyMissionCompletion(ctx, userID, missionID, body.Stars)
	if err != nil {
		writeError(w, err)
		return
	}
	sc, err := s.svc.RecordMissionResult(ctx, userID, 0, missionID, body.Stars, body.TimeTaken)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, completeMissionRes{MissionCompletion: res, Score: sc})
}

func (s *Server) handleBossVictory(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := s.svc.ApplyBossVictory(r.Context(), auth.UserIDFromContext(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	levelID, err := intQuery(r, "levelId")
	if err != nil {
		writeError(w, err)
		return
	}
	scores, err := s.svc.MissionScores(r.Context(), auth.UserIDFromContext(r.Context()), levelID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scores)
}

func (s *Server) handleBestScores(w http.ResponseWriter, r *http.Request) {
	levelID, err := intQuery(r, "levelId")
	if err != nil {
		writeError(w, err)
		return
	}
	best, err := s.svc.BestMissionStars(r.Context(), auth.UserIDFromContext(r.Context()), levelID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, best)
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Achievements(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// handleAliens returns the roster with Unlocked set for this player.
func (s *Server) handleAliens(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.GetProgress(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.UnlockedAliens(p))
}
