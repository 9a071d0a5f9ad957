// internal/httpserver/routes_catalog.go
//
// Read-only game content. Public; no progress involved.

package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/hero-of-habits/internal/catalog"
	"github.com/robalobadob/hero-of-habits/internal/progression"
)

func (s *Server) mountCatalogRoutes() {
	s.r.Route("/catalog", func(r chi.Router) {
		r.Get("/levels", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, catalog.Levels())
		})
		r.Get("/levels/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, err := intParam(r, "id")
			if err != nil {
				writeError(w, err)
				return
			}
			l, ok := catalog.LevelByID(id)
			if !ok {
				writeError(w, progression.ErrUnknownLevel)
				return
			}
			writeJSON(w, http.StatusOK, l)
		})
		r.Get("/missions/{id}", func(w http.ResponseWriter, r *http.Request) {
			m, ok := catalog.MissionByID(chi.URLParam(r, "id"))
			if !ok {
				writeError(w, progression.ErrUnknownMission)
				return
			}
			writeJSON(w, http.StatusOK, m)
		})
		r.Get("/aliens", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, catalog.Aliens())
		})
		r.Get("/villains", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, catalog.Villains())
		})
	})
}
