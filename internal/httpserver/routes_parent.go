// internal/httpserver/routes_parent.go
//
// Habit log and parent endpoints.
//   - POST /habits               → log today's habit {habitName, habitCategory, completed}
//   - GET  /habits?date=YYYY-MM-DD → habits logged that UTC day (default today)
//   - GET  /parent/settings      → saved settings or defaults
//   - PUT  /parent/settings      → partial update
//   - GET  /parent/dashboard     → progress, stats, habits and screen time
//
// Habits are observations only; they never move progression.

package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/hero-of-habits/internal/auth"
	"github.com/robalobadob/hero-of-habits/internal/daily"
	"github.com/robalobadob/hero-of-habits/internal/game"
	"github.com/robalobadob/hero-of-habits/internal/progression"
)

type trackHabitReq struct {
	HabitName     string             `json:"habitName"`
	HabitCategory game.HabitCategory `json:"habitCategory"`
	Completed     *bool              `json:"completed"` // defaults to true
}

func (s *Server) mountParentRoutes() {
	s.r.Post("/habits", s.handleTrackHabit)
	s.r.Get("/habits", s.handleListHabits)
	s.r.Route("/parent", func(r chi.Router) {
		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handlePutSettings)
		r.Get("/dashboard", s.handleDashboard)
	})
}

func (s *Server) handleTrackHabit(w http.ResponseWriter, r *http.Request) {
	var body trackHabitReq
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	completed := true
	if body.Completed != nil {
		completed = *body.Completed
	}
	h, err := s.svc.TrackDailyHabit(r.Context(), auth.UserIDFromContext(r.Context()), body.HabitName, body.HabitCategory, completed)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h)
}

func (s *Server) handleListHabits(w http.ResponseWriter, r *http.Request) {
	day := time.Now().UTC()
	if q := r.URL.Query().Get("date"); q != "" {
		t, err := daily.ParseDateKey(q)
		if err != nil {
			writeError(w, errors.Join(errBadRequest, err))
			return
		}
		day = t
	}
	list, err := s.svc.DailyHabits(r.Context(), auth.UserIDFromContext(r.Context()), day)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": daily.DateKey(day), "habits": list})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	ps, err := s.svc.ParentSettings(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var patch progression.SettingsPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, err)
		return
	}
	ps, err := s.svc.UpdateParentSettings(r.Context(), auth.UserIDFromContext(r.Context()), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.Dashboard(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
