// internal/httpserver/respond.go
//
// JSON responses, error mapping and the access log.
//
// Error body: {"error":{"code":"...","message":"..."}}
//   - not_authenticated 401, not_found 404, locked 409, invalid 400,
//     email_taken 409, store_error 500, internal 500.
//   - store_error messages are the store's message, unchanged.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hero-of-habits/internal/auth"
	"github.com/robalobadob/hero-of-habits/internal/metrics"
	"github.com/robalobadob/hero-of-habits/internal/minigame"
	"github.com/robalobadob/hero-of-habits/internal/progression"
)

const (
	codeNotAuthenticated = "not_authenticated"
	codeNotFound         = "not_found"
	codeLocked           = "locked"
	codeInvalid          = "invalid"
	codeEmailTaken       = "email_taken"
	codeStoreError       = "store_error"
	codeInternal         = "internal"
)

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func writeErrorCode(w http.ResponseWriter, status int, code, msg string) {
	var body errorBody
	body.Error.Code = code
	body.Error.Message = msg
	metrics.ErrorCount.WithLabelValues(code).Inc()
	writeJSON(w, status, body)
}

// writeError maps a domain error to its HTTP status and code.
func writeError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("code", code).Msg("request failed")
	}
	writeErrorCode(w, status, code, err.Error())
}

func classify(err error) (int, string) {
	var se *progression.StoreError
	var ve validator.ValidationErrors
	switch {
	case errors.Is(err, progression.ErrNotAuthenticated),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, codeNotAuthenticated
	case errors.Is(err, progression.ErrUnknownMission),
		errors.Is(err, progression.ErrUnknownLevel),
		errors.Is(err, minigame.ErrSessionNotFound):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, progression.ErrLevelLocked),
		errors.Is(err, progression.ErrMissionLocked),
		errors.Is(err, progression.ErrBossLocked):
		return http.StatusConflict, codeLocked
	case errors.Is(err, auth.ErrEmailTaken):
		return http.StatusConflict, codeEmailTaken
	case errors.Is(err, progression.ErrInvalidStars),
		errors.Is(err, progression.ErrInvalidInput),
		errors.Is(err, minigame.ErrFinished),
		errors.Is(err, minigame.ErrUnknownEvent),
		errors.Is(err, minigame.ErrBadTarget),
		errors.Is(err, errBadRequest),
		errors.As(err, &ve):
		return http.StatusBadRequest, codeInvalid
	case errors.As(err, &se):
		return http.StatusInternalServerError, codeStoreError
	default:
		return http.StatusInternalServerError, codeInternal
	}
}

var errBadRequest = errors.New("bad request")

// decodeJSON reads a JSON body into v.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Join(errBadRequest, err)
	}
	return nil
}

// intParam reads a numeric chi URL parameter.
func intParam(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, errors.Join(errBadRequest, errors.New(name+" must be a number"))
	}
	return n, nil
}

// intQuery reads an optional numeric query value; missing means 0.
func intQuery(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Join(errBadRequest, errors.New(name+" must be a number"))
	}
	return n, nil
}

// requestLogger logs one line per request and feeds the HTTP collectors.
// Paths are recorded by route pattern to keep label cardinality bounded.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			path = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		dur := time.Since(start)

		metrics.ReqCount.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
		metrics.ReqDuration.WithLabelValues(r.Method, path).Observe(dur.Seconds())

		log.Info().
			Str("method", r.Method).
			Str("path", path).
			Int("status", status).
			Dur("duration", dur).
			Str("request_id", chimw.GetReqID(r.Context())).
			Msg("http_request")
	})
}
