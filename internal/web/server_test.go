package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"americano-app/internal/export"
	"americano-app/internal/live"
	"americano-app/internal/service"
	"americano-app/internal/store"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const testPassword = "s3cret-pass"

var testNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	handler http.Handler
	svc     *service.TournamentService
	server  *Server
}

func newTestEnv(t *testing.T, publisher *export.Publisher, devMode bool) *testEnv {
	t.Helper()
	t.Setenv("APP", "prod")

	log := logrus.New()
	log.SetOutput(io.Discard)

	svc := service.New(store.NewMemoryStore(), log, service.WithClock(func() time.Time { return testNow }))
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	auth, err := NewAuth(AuthOptions{Password: testPassword, Secret: "test-secret", TTL: time.Hour})
	if err != nil {
		t.Fatalf("NewAuth: %v", err)
	}
	srv := NewServer(Options{
		Service:   svc,
		Auth:      auth,
		Publisher: publisher,
		Logger:    log,
		DevMode:   devMode,
	})
	srv.now = func() time.Time { return testNow }
	return &testEnv{handler: srv.Routes(), svc: svc, server: srv}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/admin/login", "", map[string]string{"password": testPassword})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d body=%s", rec.Code, rec.Body.String())
	}
	var resp loginResponse
	decode(t, rec, &resp)
	if resp.Token == "" {
		t.Fatalf("login returned no token")
	}
	return resp.Token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestPublicRoutes(t *testing.T) {
	env := newTestEnv(t, nil, false)

	cases := []struct {
		path   string
		status int
	}{
		{"/healthz", http.StatusOK},
		{"/api/snapshot", http.StatusOK},
		{"/api/standings", http.StatusOK},
		{"/api/matches", http.StatusOK},
		{"/api/matches?status=finished", http.StatusBadRequest},
		{"/api/matches?round=x", http.StatusBadRequest},
		{"/api/head-to-head?a=1&b=2", http.StatusOK},
		{"/api/head-to-head?a=1&b=1", http.StatusBadRequest},
		{"/api/head-to-head?a=1&b=99", http.StatusNotFound},
		{"/api/public/live", http.StatusOK},
		{"/api/public/schedule", http.StatusOK},
		{"/api/public/schedule?filter=all", http.StatusOK},
		{"/api/public/schedule?filter=yesterday", http.StatusBadRequest},
		{"/api/public/results?limit=5", http.StatusOK},
		{"/api/public/results?limit=-1", http.StatusBadRequest},
		{"/api/public/top-scorers", http.StatusOK},
		{"/api/public/next-round", http.StatusOK},
		{"/api/public/summary", http.StatusOK},
		{"/api/public/courts", http.StatusOK},
	}
	for _, tc := range cases {
		rec := env.do(t, http.MethodGet, tc.path, "", nil)
		if rec.Code != tc.status {
			t.Errorf("GET %s = %d, want %d (%s)", tc.path, rec.Code, tc.status, rec.Body.String())
		}
	}

	var standings struct {
		Standings []StandingRow `json:"standings"`
	}
	decode(t, env.do(t, http.MethodGet, "/api/standings", "", nil), &standings)
	if len(standings.Standings) != 4 || standings.Standings[0].Rank != 1 || standings.Standings[0].FullName == "" {
		t.Fatalf("standings = %+v", standings.Standings)
	}

	var top struct {
		Players []json.RawMessage `json:"players"`
	}
	decode(t, env.do(t, http.MethodGet, "/api/public/top-scorers", "", nil), &top)
	if len(top.Players) != 3 {
		t.Fatalf("top scorers = %d, want 3", len(top.Players))
	}
}

func TestSnapshotCarriesRevision(t *testing.T) {
	env := newTestEnv(t, nil, false)
	token := env.login(t)

	if rec := env.do(t, http.MethodPost, "/api/admin/rounds/advance", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("advance = %d", rec.Code)
	}
	rec := env.do(t, http.MethodGet, "/api/snapshot", "", nil)
	if rec.Header().Get("X-Revision") == "" {
		t.Fatalf("missing X-Revision header")
	}
	var snap struct {
		CurrentRound int `json:"currentRound"`
	}
	decode(t, rec, &snap)
	if snap.CurrentRound != 2 {
		t.Fatalf("currentRound = %d, want 2", snap.CurrentRound)
	}
}

func TestAdminAuth(t *testing.T) {
	env := newTestEnv(t, nil, false)
	player := map[string]string{"lastName": "Орлов", "firstName": "Олег"}

	if rec := env.do(t, http.MethodPost, "/api/admin/players", "", player); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous create = %d, want 401", rec.Code)
	}
	if rec := env.do(t, http.MethodPost, "/api/admin/players", "not-a-token", player); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token = %d, want 401", rec.Code)
	}
	if rec := env.do(t, http.MethodPost, "/api/admin/login", "", map[string]string{"password": "wrong"}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password = %d, want 401", rec.Code)
	}

	rec := env.do(t, http.MethodPost, "/api/admin/login", "", map[string]string{"password": testPassword})
	if rec.Code != http.StatusOK {
		t.Fatalf("login = %d", rec.Code)
	}
	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == adminCookieName {
			cookie = c
		}
	}
	if cookie == nil || !cookie.HttpOnly {
		t.Fatalf("auth cookie = %+v", cookie)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/admin/players", strings.NewReader(`{"lastName":"Орлов","firstName":"Олег"}`))
	req.AddCookie(cookie)
	created := httptest.NewRecorder()
	env.handler.ServeHTTP(created, req)
	if created.Code != http.StatusCreated {
		t.Fatalf("cookie create = %d body=%s", created.Code, created.Body.String())
	}

	out := env.do(t, http.MethodPost, "/api/admin/logout", "", nil)
	if out.Code != http.StatusNoContent {
		t.Fatalf("logout = %d", out.Code)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	env := newTestEnv(t, nil, false)
	env.server.auth.now = func() time.Time { return testNow.Add(-2 * time.Hour) }
	stale, _, err := env.server.auth.issue()
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	env.server.auth.now = func() time.Time { return testNow }
	if rec := env.do(t, http.MethodPost, "/api/admin/rounds/advance", stale, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expired token = %d, want 401", rec.Code)
	}
}

func TestPlayerRoutes(t *testing.T) {
	env := newTestEnv(t, nil, false)
	token := env.login(t)

	rec := env.do(t, http.MethodPost, "/api/admin/players", token, map[string]string{"lastName": " ", "firstName": "Олег"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("blank name = %d, want 422", rec.Code)
	}
	rec = env.do(t, http.MethodPost, "/api/admin/players", token, `{"lastName":"Орлов","firstName":"Олег","nickname":"x"}`)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "unknown key") {
		t.Fatalf("unknown field = %d %s", rec.Code, rec.Body.String())
	}
	rec = env.do(t, http.MethodPut, "/api/admin/players/2", token, map[string]string{"lastName": "Петренко", "firstName": "Петр"})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Петренко") {
		t.Fatalf("update = %d %s", rec.Code, rec.Body.String())
	}
	if rec := env.do(t, http.MethodPut, "/api/admin/players/99", token, map[string]string{"lastName": "А", "firstName": "Б"}); rec.Code != http.StatusNotFound {
		t.Fatalf("update missing = %d, want 404", rec.Code)
	}
	if rec := env.do(t, http.MethodDelete, "/api/admin/players/abc", token, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id = %d, want 400", rec.Code)
	}

	if rec := env.do(t, http.MethodPost, "/api/admin/matches/generate", token, nil); rec.Code != http.StatusCreated {
		t.Fatalf("generate = %d", rec.Code)
	}
	rec = env.do(t, http.MethodDelete, "/api/admin/players/1", token, nil)
	var del DeletePlayerView
	decode(t, rec, &del)
	if rec.Code != http.StatusOK || del.RemovedMatches != 3 {
		t.Fatalf("delete = %d %+v", rec.Code, del)
	}
}

func TestResultFlow(t *testing.T) {
	env := newTestEnv(t, nil, false)
	token := env.login(t)

	if rec := env.do(t, http.MethodPost, "/api/admin/matches/generate", token, nil); rec.Code != http.StatusCreated {
		t.Fatalf("generate = %d", rec.Code)
	}
	if rec := env.do(t, http.MethodPost, "/api/admin/matches/generate", token, nil); rec.Code != http.StatusCreated {
		t.Fatalf("second generate = %d", rec.Code)
	}
	if rec := env.do(t, http.MethodPost, "/api/admin/matches", token, map[string]int{"player1Id": 1, "player2Id": 2}); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate pairing = %d, want 409", rec.Code)
	}

	if rec := env.do(t, http.MethodPost, "/api/admin/matches/1/start", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("start = %d", rec.Code)
	}
	var live MatchList
	decode(t, env.do(t, http.MethodGet, "/api/public/live", "", nil), &live)
	if len(live.Matches) != 1 || live.Matches[0].ID != 1 {
		t.Fatalf("live = %+v", live.Matches)
	}

	rec := env.do(t, http.MethodPost, "/api/admin/matches/1/result", token, map[string]any{"player1Points": 10, "player2Points": 5})
	if rec.Code != http.StatusConflict {
		t.Fatalf("mismatch = %d, want 409", rec.Code)
	}
	var warn struct {
		Warning struct {
			Got  int `json:"got"`
			Want int `json:"want"`
		} `json:"warning"`
	}
	decode(t, rec, &warn)
	if warn.Warning.Got != 15 || warn.Warning.Want != 21 {
		t.Fatalf("warning = %+v", warn.Warning)
	}

	if rec := env.do(t, http.MethodPost, "/api/admin/matches/1/result", token, map[string]any{"player1Points": 10}); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("missing score = %d, want 422", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/admin/matches/1/result", token, map[string]any{"player1Points": 10, "player2Points": 5, "confirm": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("confirmed = %d %s", rec.Code, rec.Body.String())
	}
	var res struct {
		WinnerID     *int `json:"winnerId"`
		Player1Delta int  `json:"player1RatingDelta"`
	}
	decode(t, rec, &res)
	if res.WinnerID == nil || *res.WinnerID != 1 || res.Player1Delta != 16 {
		t.Fatalf("result = %+v", res)
	}

	if rec := env.do(t, http.MethodPost, "/api/admin/matches/1/result", token, map[string]any{"player1Points": 11, "player2Points": 10}); rec.Code != http.StatusConflict {
		t.Fatalf("resubmit = %d, want 409", rec.Code)
	}
	if rec := env.do(t, http.MethodPost, "/api/admin/matches/1/reopen", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("reopen = %d", rec.Code)
	}
	if rec := env.do(t, http.MethodPost, "/api/admin/matches/1/pause", token, nil); rec.Code != http.StatusConflict {
		t.Fatalf("pause scheduled = %d, want 409", rec.Code)
	}
	if rec := env.do(t, http.MethodPost, "/api/admin/matches/99/start", token, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown match = %d, want 404", rec.Code)
	}
	if rec := env.do(t, http.MethodDelete, "/api/admin/matches/2", token, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete match = %d", rec.Code)
	}
}

func TestTournamentRoutes(t *testing.T) {
	env := newTestEnv(t, nil, true)
	token := env.login(t)

	if rec := env.do(t, http.MethodPost, "/api/admin/schedule", token, nil); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("schedule without matches = %d, want 422", rec.Code)
	}
	env.do(t, http.MethodPost, "/api/admin/matches/generate", token, nil)
	if rec := env.do(t, http.MethodPost, "/api/admin/schedule", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("schedule = %d", rec.Code)
	}

	if rec := env.do(t, http.MethodPut, "/api/admin/rounds", token, map[string]int{"round": 0}); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("round 0 = %d, want 422", rec.Code)
	}
	rec := env.do(t, http.MethodPut, "/api/admin/rounds", token, map[string]int{"round": 3})
	var round RoundView
	decode(t, rec, &round)
	if round.CurrentRound != 3 {
		t.Fatalf("round = %+v", round)
	}

	rec = env.do(t, http.MethodPut, "/api/admin/settings", token, map[string]any{"totalPoints": 15, "courts": 2, "timezone": "Europe/Moscow"})
	if rec.Code != http.StatusOK || env.svc.Snapshot().Settings.TotalPoints != 15 {
		t.Fatalf("settings = %d %s", rec.Code, rec.Body.String())
	}
	if rec := env.do(t, http.MethodPut, "/api/admin/settings", token, map[string]any{"timezone": "Mars/Olympus"}); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad timezone = %d, want 422", rec.Code)
	}

	var hist HistoryView
	decode(t, env.do(t, http.MethodGet, "/api/admin/snapshot/history?limit=2", token, nil), &hist)
	if len(hist.Revisions) != 2 {
		t.Fatalf("history = %+v", hist)
	}

	if rec := env.do(t, http.MethodPost, "/api/admin/dev/reset", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("reset = %d", rec.Code)
	}
	if snap := env.svc.Snapshot(); len(snap.Matches) != 0 {
		t.Fatalf("reset left %d matches", len(snap.Matches))
	}
}

func TestSnapshotImportAndReload(t *testing.T) {
	env := newTestEnv(t, nil, false)
	token := env.login(t)

	body := `{"tournamentName":"Кубок","players":[{"id":5,"lastName":"А","firstName":"Б"},{"id":6,"lastName":"В","firstName":"Г"}],"matches":[{"id":1,"player1Id":5,"player2Id":6,"court":1,"round":1,"status":"scheduled"}]}`
	if rec := env.do(t, http.MethodPut, "/api/admin/snapshot", token, body); rec.Code != http.StatusOK {
		t.Fatalf("import = %d %s", rec.Code, rec.Body.String())
	}
	bad := `{"players":[{"id":5,"lastName":"А","firstName":"Б"}],"matches":[{"id":1,"player1Id":5,"player2Id":9,"status":"scheduled"}]}`
	if rec := env.do(t, http.MethodPut, "/api/admin/snapshot", token, bad); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad import = %d, want 422", rec.Code)
	}

	rec := env.do(t, http.MethodPost, "/api/admin/snapshot/reload", token, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Кубок") {
		t.Fatalf("reload = %d %s", rec.Code, rec.Body.String())
	}
	if rec := env.do(t, http.MethodPost, "/api/admin/dev/reset", token, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("reset outside dev = %d, want 404", rec.Code)
	}
}

type memUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memUploader) Upload(ctx context.Context, key, contentType string, body io.Reader) (export.UploadResult, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return export.UploadResult{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = raw
	return export.UploadResult{Key: key}, nil
}

func TestExportRoutes(t *testing.T) {
	env := newTestEnv(t, nil, false)
	token := env.login(t)

	rec := env.do(t, http.MethodGet, "/api/admin/export/standings.csv", token, nil)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != export.CSVContentType {
		t.Fatalf("csv = %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, export.StandingsFileName) {
		t.Fatalf("content-disposition = %q", cd)
	}
	if lines := strings.Count(rec.Body.String(), "\n"); lines != 5 {
		t.Fatalf("csv lines = %d, want 5", lines)
	}

	rec = env.do(t, http.MethodGet, "/api/admin/export/snapshot.json", token, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"tournamentName"`) {
		t.Fatalf("json export = %d", rec.Code)
	}

	if rec := env.do(t, http.MethodPost, "/api/admin/export/publish", token, nil); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("publish without bucket = %d, want 503", rec.Code)
	}

	up := &memUploader{objects: map[string][]byte{}}
	env = newTestEnv(t, export.NewPublisher(up, "americano"), false)
	token = env.login(t)
	rec = env.do(t, http.MethodPost, "/api/admin/export/publish", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("publish = %d %s", rec.Code, rec.Body.String())
	}
	var published export.Published
	decode(t, rec, &published)
	if len(published.Files) != 2 || len(up.objects) != 2 {
		t.Fatalf("published = %+v, objects = %d", published, len(up.objects))
	}
	for key := range up.objects {
		if !strings.HasPrefix(key, "americano/20261017T120000Z/") {
			t.Fatalf("unexpected key %q", key)
		}
	}
}

func TestImportAcceptsExportedDocument(t *testing.T) {
	env := newTestEnv(t, nil, false)
	token := env.login(t)

	body := `{
		"tournamentName": "Турнир по настольному теннису",
		"tournamentType": "Americano",
		"settings": {"totalPoints": 21, "courts": 4, "timezone": "Europe/Moscow", "allowDraws": false},
		"players": [
			{"id": 1, "lastName": "Иванов", "firstName": "Иван", "points": 13, "wins": 1, "losses": 0, "matchesPlayed": 1, "rating": 1516},
			{"id": 2, "lastName": "Петров", "firstName": "Петр", "points": 8, "wins": 0, "losses": 1, "matchesPlayed": 1, "rating": 1484}
		],
		"matches": [
			{"id": 1, "player1Id": 1, "player2Id": 2, "player1Points": 13, "player2Points": 8, "totalPoints": 21,
			 "court": 1, "round": 1, "startTime": null, "completed": true, "winnerId": 1}
		],
		"schedule": [],
		"currentRound": 1,
		"lastUpdated": "2026-10-17T09:00:00.000Z"
	}`
	rec := env.do(t, http.MethodPut, "/api/admin/snapshot", token, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("import = %d %s", rec.Code, rec.Body.String())
	}
	snap := env.svc.Snapshot()
	if len(snap.Matches) != 1 || !snap.Matches[0].Completed() || snap.Players[0].Rating != 1516 {
		t.Fatalf("imported = %+v", snap)
	}

	if rec := env.do(t, http.MethodPost, "/api/admin/players", token, `{"lastName":"Орлов","firstName":"Олег","schedule":[]}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown key on a form body = %d, want 400", rec.Code)
	}
}

func TestHealthReportsLiveClients(t *testing.T) {
	env := newTestEnv(t, nil, false)

	var plain struct {
		Status      string `json:"status"`
		Revision    string `json:"revision"`
		LiveClients *int   `json:"liveClients"`
	}
	rec := env.do(t, http.MethodGet, "/healthz", "", nil)
	decode(t, rec, &plain)
	if plain.Status != "ok" || plain.LiveClients != nil {
		t.Fatalf("health without hub = %s", rec.Body.String())
	}

	log := logrus.New()
	log.SetOutput(io.Discard)
	hub := live.NewHub(log, []string{"*"})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := NewServer(Options{Service: env.svc, Hub: hub, Auth: env.server.auth, Logger: log})
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := http.Get(ts.URL + "/healthz")
		if err != nil {
			t.Fatalf("GET /healthz: %v", err)
		}
		var got struct {
			LiveClients int `json:"liveClients"`
		}
		err = json.NewDecoder(resp.Body).Decode(&got)
		resp.Body.Close()
		if err != nil {
			t.Fatalf("decode health: %v", err)
		}
		if got.LiveClients == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("liveClients = %d, want 1", got.LiveClients)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
