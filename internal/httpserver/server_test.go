package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/robalobadob/hero-of-habits/internal/auth"
	"github.com/robalobadob/hero-of-habits/internal/game"
	"github.com/robalobadob/hero-of-habits/internal/minigame"
	"github.com/robalobadob/hero-of-habits/internal/progression"
	"github.com/robalobadob/hero-of-habits/internal/store"
)

// flakyScores fails the next failScores score inserts.
type flakyScores struct {
	*store.Memory
	failScores int
}

func (f *flakyScores) InsertMissionScore(ctx context.Context, sc *game.MissionScore) error {
	if f.failScores > 0 {
		f.failScores--
		return errors.New("connection reset")
	}
	return f.Memory.InsertMissionScore(ctx, sc)
}

func newTestServer() http.Handler {
	return newTestServerWith(&flakyScores{Memory: store.NewMemory()})
}

func newTestServerWith(st *flakyScores) http.Handler {
	am := auth.NewManager(st, auth.Config{Secret: "test-secret"})
	return New(progression.New(st), am, minigame.NewSessions(0), Options{}).Handler()
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[errorBody](t, rr).Error.Code
}

func signUp(t *testing.T, h http.Handler, email string) string {
	t.Helper()
	rr := do(t, h, http.MethodPost, "/auth/signup", "", map[string]string{"email": email, "password": "correct-horse"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("signup status = %d body=%s", rr.Code, rr.Body.String())
	}
	res := decode[sessionRes](t, rr)
	if res.Token == "" || res.RedirectTo != auth.RedirectAfterSignIn {
		t.Fatalf("signup response = %+v", res)
	}
	return res.Token
}

func TestHealthAndCatalog(t *testing.T) {
	h := newTestServer()
	if rr := do(t, h, http.MethodGet, "/health", "", nil); rr.Code != http.StatusOK {
		t.Fatalf("health = %d", rr.Code)
	}
	rr := do(t, h, http.MethodGet, "/catalog/levels", "", nil)
	levels := decode[[]map[string]any](t, rr)
	if rr.Code != http.StatusOK || len(levels) != 4 {
		t.Fatalf("levels = %d %d", rr.Code, len(levels))
	}
	if rr := do(t, h, http.MethodGet, "/catalog/levels/9", "", nil); rr.Code != http.StatusNotFound || errorCode(t, rr) != codeNotFound {
		t.Fatalf("unknown level = %d %s", rr.Code, rr.Body.String())
	}
	if rr := do(t, h, http.MethodGet, "/catalog/levels/abc", "", nil); rr.Code != http.StatusBadRequest {
		t.Fatalf("bad level id = %d", rr.Code)
	}
	if rr := do(t, h, http.MethodGet, "/nope", "", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown route = %d", rr.Code)
	}
}

func TestAnonymousCallsAreRejected(t *testing.T) {
	h := newTestServer()
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/progress"},
		{http.MethodGet, "/achievements"},
		{http.MethodPost, "/missions/home-brush-teeth/complete"},
		{http.MethodPost, "/levels/1/boss/victory"},
		{http.MethodPost, "/play/missions/home-brush-teeth"},
		{http.MethodGet, "/parent/dashboard"},
		{http.MethodGet, "/auth/me"},
	} {
		rr := do(t, h, tc.method, tc.path, "", map[string]int{"stars": 3})
		if rr.Code != http.StatusUnauthorized || errorCode(t, rr) != codeNotAuthenticated {
			t.Fatalf("%s %s = %d %s", tc.method, tc.path, rr.Code, rr.Body.String())
		}
	}
	if rr := do(t, h, http.MethodGet, "/progress", "garbage", nil); rr.Code != http.StatusUnauthorized {
		t.Fatalf("bad token = %d", rr.Code)
	}
}

func TestAuthFlow(t *testing.T) {
	h := newTestServer()
	tok := signUp(t, h, "Kid@Example.com")

	if rr := do(t, h, http.MethodPost, "/auth/signup", "", map[string]string{"email": "kid@example.com", "password": "another-pass"}); rr.Code != http.StatusConflict {
		t.Fatalf("duplicate signup = %d", rr.Code)
	}
	if rr := do(t, h, http.MethodPost, "/auth/signup", "", map[string]string{"email": "not-an-email", "password": "x"}); rr.Code != http.StatusBadRequest {
		t.Fatalf("invalid signup = %d", rr.Code)
	}
	if rr := do(t, h, http.MethodPost, "/auth/login", "", map[string]string{"email": "kid@example.com", "password": "wrong-password"}); rr.Code != http.StatusUnauthorized {
		t.Fatalf("bad login = %d", rr.Code)
	}
	rr := do(t, h, http.MethodPost, "/auth/login", "", map[string]string{"email": "kid@example.com", "password": "correct-horse"})
	if rr.Code != http.StatusOK || len(rr.Result().Cookies()) == 0 {
		t.Fatalf("login = %d cookies=%d", rr.Code, len(rr.Result().Cookies()))
	}

	me := do(t, h, http.MethodGet, "/auth/me", tok, nil)
	if u := decode[store.User](t, me); me.Code != http.StatusOK || u.Email != "kid@example.com" {
		t.Fatalf("me = %d %+v", me.Code, u)
	}

	out := do(t, h, http.MethodPost, "/auth/logout", tok, nil)
	if body := decode[map[string]any](t, out); body["redirectTo"] != auth.RedirectAfterSignOut {
		t.Fatalf("logout = %v", body)
	}
}

func TestCompleteLevelOverHTTP(t *testing.T) {
	h := newTestServer()
	tok := signUp(t, h, "hero@example.com")

	p := decode[map[string]any](t, do(t, h, http.MethodGet, "/progress", tok, nil))
	if p["currentLevel"] != float64(1) {
		t.Fatalf("new progress = %v", p)
	}

	if rr := do(t, h, http.MethodPost, "/missions/home-clean-room/complete", tok, completeMissionReq{Stars: 3}); rr.Code != http.StatusConflict || errorCode(t, rr) != codeLocked {
		t.Fatalf("locked mission = %d %s", rr.Code, rr.Body.String())
	}
	if rr := do(t, h, http.MethodPost, "/levels/1/boss/victory", tok, nil); rr.Code != http.StatusConflict {
		t.Fatalf("locked boss = %d", rr.Code)
	}
	if rr := do(t, h, http.MethodPost, "/missions/home-brush-teeth/complete", tok, completeMissionReq{Stars: 7}); rr.Code != http.StatusBadRequest {
		t.Fatalf("bad stars = %d", rr.Code)
	}

	for _, id := range []string{"home-brush-teeth", "home-clean-room", "home-help-parents"} {
		rr := do(t, h, http.MethodPost, "/missions/"+id+"/complete", tok, completeMissionReq{Stars: 3, TimeTaken: 45})
		if rr.Code != http.StatusOK {
			t.Fatalf("complete %s = %d %s", id, rr.Code, rr.Body.String())
		}
	}

	rr := do(t, h, http.MethodPost, "/levels/1/boss/victory", tok, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("victory = %d %s", rr.Code, rr.Body.String())
	}
	win := decode[progression.BossVictory](t, rr)
	if win.Badge.Name != "Habit Badge" || win.Badge.Skipped || win.Progress.CurrentLevel != 2 {
		t.Fatalf("victory = %+v", win)
	}

	scores := decode[[]map[string]any](t, do(t, h, http.MethodGet, "/scores?levelId=1", tok, nil))
	if len(scores) != 3 {
		t.Fatalf("scores = %v", scores)
	}
	dash := do(t, h, http.MethodGet, "/parent/dashboard", tok, nil)
	if d := decode[map[string]any](t, dash); dash.Code != http.StatusOK || d["screenTimeUsedToday"] != float64(3) {
		t.Fatalf("dashboard = %d %v", dash.Code, d["screenTimeUsedToday"])
	}
}

func TestPlaySessions(t *testing.T) {
	h := newTestServer()
	tok := signUp(t, h, "player@example.com")
	other := signUp(t, h, "sibling@example.com")

	if rr := do(t, h, http.MethodPost, "/play/missions/home-clean-room", tok, nil); rr.Code != http.StatusConflict {
		t.Fatalf("locked play = %d", rr.Code)
	}

	start := do(t, h, http.MethodPost, "/play/missions/home-brush-teeth", tok, nil)
	if start.Code != http.StatusCreated {
		t.Fatalf("start = %d %s", start.Code, start.Body.String())
	}
	id := decode[map[string]map[string]any](t, start)["session"]["id"].(string)

	if rr := do(t, h, http.MethodGet, "/play/"+id, other, nil); rr.Code != http.StatusNotFound {
		t.Fatalf("foreign session = %d", rr.Code)
	}
	if rr := do(t, h, http.MethodPost, "/play/"+id+"/events", tok, playEventReq{Event: "dance"}); rr.Code != http.StatusBadRequest {
		t.Fatalf("bad event = %d", rr.Code)
	}

	var last *httptest.ResponseRecorder
	for _, ev := range []string{"clean:1", "clean:2", "clean:3", "clean:4", "clean:5"} {
		last = do(t, h, http.MethodPost, "/play/"+id+"/events", tok, playEventReq{Event: ev})
		if last.Code != http.StatusOK {
			t.Fatalf("%s = %d %s", ev, last.Code, last.Body.String())
		}
	}
	res := decode[struct {
		Outcome *struct {
			Completion *struct {
				FirstCompletion bool `json:"firstCompletion"`
				BestStars       int  `json:"bestStars"`
			} `json:"completion"`
			Score *struct {
				StarsEarned int `json:"starsEarned"`
			} `json:"score"`
		} `json:"outcome"`
	}](t, last)
	if res.Outcome == nil || res.Outcome.Completion == nil || !res.Outcome.Completion.FirstCompletion ||
		res.Outcome.Completion.BestStars != 3 || res.Outcome.Score == nil || res.Outcome.Score.StarsEarned != 3 {
		t.Fatalf("outcome = %s", last.Body.String())
	}

	if rr := do(t, h, http.MethodPost, "/play/"+id+"/events", tok, playEventReq{Event: "clean:1"}); rr.Code != http.StatusBadRequest {
		t.Fatalf("event after finish = %d", rr.Code)
	}
	if rr := do(t, h, http.MethodPost, "/play/boss/1", tok, nil); rr.Code != http.StatusConflict {
		t.Fatalf("boss before missions = %d", rr.Code)
	}

	for _, m := range []string{"home-clean-room", "home-help-parents"} {
		if rr := do(t, h, http.MethodPost, "/missions/"+m+"/complete", tok, completeMissionReq{Stars: 2}); rr.Code != http.StatusOK {
			t.Fatalf("complete %s = %d", m, rr.Code)
		}
	}
	boss := do(t, h, http.MethodPost, "/play/boss/1", tok, nil)
	if boss.Code != http.StatusCreated {
		t.Fatalf("boss start = %d %s", boss.Code, boss.Body.String())
	}
	bossID := decode[map[string]map[string]any](t, boss)["session"]["id"].(string)
	for i := 0; i < 3; i++ {
		last = do(t, h, http.MethodPost, "/play/"+bossID+"/events", tok, playEventReq{Event: "answer:1"})
		if last.Code != http.StatusOK {
			t.Fatalf("answer = %d %s", last.Code, last.Body.String())
		}
	}
	won := decode[struct {
		Outcome *struct {
			Victory *progression.BossVictory `json:"victory"`
		} `json:"outcome"`
	}](t, last)
	if won.Outcome == nil || won.Outcome.Victory == nil || won.Outcome.Victory.Progress.CurrentLevel != 2 {
		t.Fatalf("boss outcome = %s", last.Body.String())
	}

	get := decode[map[string]any](t, do(t, h, http.MethodGet, "/play/"+bossID, tok, nil))
	if get["outcome"] == nil {
		t.Fatalf("finished session should still report its outcome")
	}
}

func TestHabitsAndSettings(t *testing.T) {
	h := newTestServer()
	tok := signUp(t, h, "parent@example.com")

	rr := do(t, h, http.MethodPost, "/habits", tok, map[string]any{"habitName": "Brush teeth", "habitCategory": "cleanliness"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("track = %d %s", rr.Code, rr.Body.String())
	}
	if rr := do(t, h, http.MethodPost, "/habits", tok, map[string]any{"habitName": "Nap", "habitCategory": "sleep"}); rr.Code != http.StatusBadRequest {
		t.Fatalf("bad category = %d", rr.Code)
	}
	list := decode[map[string]any](t, do(t, h, http.MethodGet, "/habits", tok, nil))
	if habits, _ := list["habits"].([]any); len(habits) != 1 {
		t.Fatalf("habits = %v", list)
	}
	if rr := do(t, h, http.MethodGet, "/habits?date=2020-13-45", tok, nil); rr.Code != http.StatusBadRequest {
		t.Fatalf("bad date = %d", rr.Code)
	}
	old := decode[map[string]any](t, do(t, h, http.MethodGet, "/habits?date=2020-01-01", tok, nil))
	if habits, _ := old["habits"].([]any); len(habits) != 0 {
		t.Fatalf("old day habits = %v", old)
	}

	put := do(t, h, http.MethodPut, "/parent/settings", tok, map[string]any{"screenTimeLimit": 45})
	if ps := decode[map[string]any](t, put); put.Code != http.StatusOK || ps["screenTimeLimit"] != float64(45) || ps["notificationsEnabled"] != true {
		t.Fatalf("put settings = %d %v", put.Code, ps)
	}
	if rr := do(t, h, http.MethodPut, "/parent/settings", tok, map[string]any{"screenTimeLimit": -1}); rr.Code != http.StatusBadRequest {
		t.Fatalf("negative limit = %d", rr.Code)
	}
	got := decode[map[string]any](t, do(t, h, http.MethodGet, "/parent/settings", tok, nil))
	if got["screenTimeLimit"] != float64(45) {
		t.Fatalf("settings = %v", got)
	}
}

func TestRejectedCompletionSavesNothing(t *testing.T) {
	h := newTestServer()
	tok := signUp(t, h, "quick@example.com")

	rr := do(t, h, http.MethodPost, "/missions/home-brush-teeth/complete", tok, completeMissionReq{Stars: 3, TimeTaken: -5})
	if rr.Code != http.StatusBadRequest || errorCode(t, rr) != codeInvalid {
		t.Fatalf("negative timeTaken = %d %s", rr.Code, rr.Body.String())
	}
	p := decode[game.Progress](t, do(t, h, http.MethodGet, "/progress", tok, nil))
	if len(p.MissionsCompleted) != 0 || p.TotalStars != 0 {
		t.Fatalf("progress after rejected completion = %+v", p)
	}
	if scores := decode[[]map[string]any](t, do(t, h, http.MethodGet, "/scores", tok, nil)); len(scores) != 0 {
		t.Fatalf("scores after rejected completion = %v", scores)
	}
}

func TestPlayHookRetriesAfterStoreError(t *testing.T) {
	st := &flakyScores{Memory: store.NewMemory()}
	h := newTestServerWith(st)
	tok := signUp(t, h, "retry@example.com")

	start := do(t, h, http.MethodPost, "/play/missions/home-brush-teeth", tok, nil)
	id := decode[map[string]map[string]any](t, start)["session"]["id"].(string)
	for _, ev := range []string{"clean:1", "clean:2", "clean:3", "clean:4"} {
		if rr := do(t, h, http.MethodPost, "/play/"+id+"/events", tok, playEventReq{Event: ev}); rr.Code != http.StatusOK {
			t.Fatalf("%s = %d", ev, rr.Code)
		}
	}

	st.failScores = 1
	rr := do(t, h, http.MethodPost, "/play/"+id+"/events", tok, playEventReq{Event: "clean:5"})
	if rr.Code != http.StatusInternalServerError || errorCode(t, rr) != codeStoreError {
		t.Fatalf("failing finish = %d %s", rr.Code, rr.Body.String())
	}

	rr = do(t, h, http.MethodPost, "/play/"+id+"/events", tok, playEventReq{Event: "clean:5"})
	if rr.Code != http.StatusOK {
		t.Fatalf("retry = %d %s", rr.Code, rr.Body.String())
	}
	res := decode[struct {
		Outcome *struct {
			Completion *progression.MissionCompletion `json:"completion"`
			Score      *game.MissionScore             `json:"score"`
		} `json:"outcome"`
	}](t, rr)
	if res.Outcome == nil || res.Outcome.Completion == nil || !res.Outcome.Completion.FirstCompletion || res.Outcome.Score == nil {
		t.Fatalf("retry outcome = %s", rr.Body.String())
	}

	p := decode[game.Progress](t, do(t, h, http.MethodGet, "/progress", tok, nil))
	if len(p.MissionsCompleted) != 1 || p.MissionStars["home-brush-teeth"] != 3 {
		t.Fatalf("progress after retry = %+v", p)
	}
	if scores := decode[[]map[string]any](t, do(t, h, http.MethodGet, "/scores", tok, nil)); len(scores) != 1 {
		t.Fatalf("scores after retry = %v", scores)
	}
	if rr := do(t, h, http.MethodPost, "/play/"+id+"/events", tok, playEventReq{Event: "clean:1"}); rr.Code != http.StatusBadRequest {
		t.Fatalf("event after applied finish = %d", rr.Code)
	}
}
