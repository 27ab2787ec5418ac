package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"bitstorm/internal/assets"
	"bitstorm/internal/auth"
	"bitstorm/internal/config"
	"bitstorm/internal/database"
	"bitstorm/internal/domain"
	"bitstorm/internal/events"
	"bitstorm/internal/middleware"
	"bitstorm/internal/repository"
	"bitstorm/internal/service"
	"bitstorm/internal/store"

	"github.com/rs/zerolog"
)

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	cfg := &config.Config{
		DBPath:        filepath.Join(t.TempDir(), "test.db"),
		AdminUsername: "club-admin",
		AdminPassword: "topsecret",
		AdminEmail:    "admin@bitstormcricket.com",
	}
	db, err := database.New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	nop := zerolog.Nop()
	st := store.New(db, nop)
	bus := events.New()
	matchRepo := repository.NewMatchRepository(st, nop)
	mediaRepo := repository.NewMediaRepository(st, bus, nop)
	gate := auth.NewGate(cfg, st, nop)
	assetStore := assets.New(cfg, nop) // no token: disabled
	mediaSvc := service.NewMediaService(mediaRepo, assetStore, nop)
	visitors := service.NewVisitorService(st, nop)

	srv := New(matchRepo, mediaRepo, mediaSvc, visitors, gate, nop)
	mux := http.NewServeMux()
	srv.Register(mux, middleware.RequireAdmin(gate, nop))
	return mux
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, mux *http.ServeMux) {
	t.Helper()
	w := doJSON(t, mux, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "club-admin",
		"password": "topsecret",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: status %d body %s", w.Code, w.Body.String())
	}
}

func validMatchBody() map[string]any {
	return map[string]any{
		"date":          "2025-09-15",
		"opponent":      "Thunder Bolts CC",
		"venue":         "Central Cricket Ground",
		"result":        "won",
		"ourScore":      "245/8",
		"opponentScore": "198/10",
		"keyEvents":     []string{"X scored 89"},
		"manOfTheMatch": "X",
	}
}

func TestMutations_RequireAdmin(t *testing.T) {
	mux := newTestMux(t)

	w := doJSON(t, mux, http.MethodPost, "/api/matches", validMatchBody())
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated create: status %d", w.Code)
	}

	w = doJSON(t, mux, http.MethodDelete, "/api/media/some-id", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated delete: status %d", w.Code)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	mux := newTestMux(t)

	w := doJSON(t, mux, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "wrong", "password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d", w.Code)
	}

	w = doJSON(t, mux, http.MethodGet, "/api/auth/me", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("me after failed login: status %d", w.Code)
	}
}

func TestMatchLifecycleOverHTTP(t *testing.T) {
	mux := newTestMux(t)
	login(t, mux)

	w := doJSON(t, mux, http.MethodPost, "/api/matches", validMatchBody())
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status %d body %s", w.Code, w.Body.String())
	}
	var created domain.Match
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.ID != 1 {
		t.Fatalf("id = %d, want 1", created.ID)
	}

	w = doJSON(t, mux, http.MethodGet, "/api/matches/stats", nil)
	var stats domain.MatchStats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	want := domain.MatchStats{Total: 1, Won: 1, WinPercentage: 100}
	if stats != want {
		t.Fatalf("stats = %+v, want %+v", stats, want)
	}

	w = doJSON(t, mux, http.MethodPut, "/api/matches/1", map[string]any{"result": "tied"})
	if w.Code != http.StatusOK {
		t.Fatalf("update: status %d body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, mux, http.MethodDelete, "/api/matches/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: status %d", w.Code)
	}

	w = doJSON(t, mux, http.MethodPut, "/api/matches/1", map[string]any{"result": "won"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("update after delete: status %d", w.Code)
	}

	w = doJSON(t, mux, http.MethodGet, "/api/matches", nil)
	var list struct {
		Matches []domain.Match `json:"matches"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Matches) != 0 {
		t.Fatalf("deleted match still listed: %+v", list.Matches)
	}
}

func TestCreateMatch_Validation(t *testing.T) {
	mux := newTestMux(t)
	login(t, mux)

	cases := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"missing date", func(b map[string]any) { b["date"] = "" }},
		{"bad result", func(b map[string]any) { b["result"] = "abandoned" }},
		{"blank opponent", func(b map[string]any) { b["opponent"] = "   " }},
		{"all key events blank", func(b map[string]any) { b["keyEvents"] = []string{" ", ""} }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			body := validMatchBody()
			c.mutate(body)
			w := doJSON(t, mux, http.MethodPost, "/api/matches", body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status %d body %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestCreateMatch_TrimsKeyEvents(t *testing.T) {
	mux := newTestMux(t)
	login(t, mux)

	body := validMatchBody()
	body["keyEvents"] = []string{"  X scored 89  ", "", "Y took 5 wickets"}
	w := doJSON(t, mux, http.MethodPost, "/api/matches", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}

	var created domain.Match
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(created.KeyEvents) != 2 || created.KeyEvents[0] != "X scored 89" {
		t.Fatalf("keyEvents = %v", created.KeyEvents)
	}
}

func TestListMatches_Filters(t *testing.T) {
	mux := newTestMux(t)
	login(t, mux)

	matches := []map[string]any{validMatchBody(), validMatchBody(), validMatchBody()}
	matches[1]["date"] = "2024-03-10"
	matches[1]["opponent"] = "Royal Strikers"
	matches[2]["date"] = "2025-03-02"
	matches[2]["result"] = "lost"
	for _, m := range matches {
		if w := doJSON(t, mux, http.MethodPost, "/api/matches", m); w.Code != http.StatusCreated {
			t.Fatalf("seed: status %d", w.Code)
		}
	}

	var list struct {
		Matches []domain.Match `json:"matches"`
	}

	w := doJSON(t, mux, http.MethodGet, "/api/matches?year=2025", nil)
	json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Matches) != 2 {
		t.Fatalf("year filter: %d matches", len(list.Matches))
	}

	w = doJSON(t, mux, http.MethodGet, "/api/matches?year=2025&month=3", nil)
	json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Matches) != 1 {
		t.Fatalf("month filter: %d matches", len(list.Matches))
	}

	w = doJSON(t, mux, http.MethodGet, "/api/matches?q=striker", nil)
	json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Matches) != 1 || list.Matches[0].Opponent != "Royal Strikers" {
		t.Fatalf("text filter: %+v", list.Matches)
	}

	w = doJSON(t, mux, http.MethodGet, "/api/matches?result=lost", nil)
	json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Matches) != 1 {
		t.Fatalf("result filter: %d matches", len(list.Matches))
	}

	w = doJSON(t, mux, http.MethodGet, "/api/matches?year=bogus", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad year: status %d", w.Code)
	}
}

func TestMediaEndpoints(t *testing.T) {
	mux := newTestMux(t)
	login(t, mux)

	// seed set is served on first read
	w := doJSON(t, mux, http.MethodGet, "/api/media", nil)
	var list struct {
		Media []domain.MediaItem `json:"media"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Media) == 0 {
		t.Fatal("expected seeded media")
	}

	w = doJSON(t, mux, http.MethodGet, "/api/media?q=celebration", nil)
	json.Unmarshal(w.Body.Bytes(), &list)
	for _, it := range list.Media {
		if !bytes.Contains(bytes.ToLower([]byte(it.Caption+it.Alt)), []byte("celebration")) {
			t.Fatalf("non-matching item: %+v", it)
		}
	}

	w = doJSON(t, mux, http.MethodGet, "/api/media?category=banquet", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid category: status %d", w.Code)
	}

	w = doJSON(t, mux, http.MethodPost, "/api/media", map[string]any{
		"src":      "data:image/jpeg;base64,AAAA",
		"alt":      "new photo",
		"caption":  "Season Opener",
		"category": "events",
		"type":     "image",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status %d body %s", w.Code, w.Body.String())
	}
	var created domain.MediaItem
	json.Unmarshal(w.Body.Bytes(), &created)
	if created.ID == "" {
		t.Fatal("no id assigned")
	}

	w = doJSON(t, mux, http.MethodPut, "/api/media/"+created.ID, map[string]any{"caption": "Updated"})
	if w.Code != http.StatusOK {
		t.Fatalf("update: status %d", w.Code)
	}

	w = doJSON(t, mux, http.MethodDelete, "/api/media/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: status %d", w.Code)
	}
	w = doJSON(t, mux, http.MethodDelete, "/api/media/"+created.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete: status %d", w.Code)
	}
}

func TestVisitEndpoint(t *testing.T) {
	mux := newTestMux(t)

	w := doJSON(t, mux, http.MethodPost, "/api/visit", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("visit: status %d", w.Code)
	}
	var resp struct {
		Count      int64  `json:"count"`
		Formatted  string `json:"formatted"`
		NewVisitor bool   `json:"newVisitor"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 1 || !resp.NewVisitor || resp.Formatted != "1" {
		t.Fatalf("resp = %+v", resp)
	}

	cookie := w.Result().Cookies()
	if len(cookie) == 0 {
		t.Fatal("no session cookie set")
	}

	// same session again
	req := httptest.NewRequest(http.MethodPost, "/api/visit", nil)
	req.AddCookie(cookie[0])
	w2 := httptest.NewRecorder()
	mux.ServeHTTP(w2, req)
	if err := json.Unmarshal(w2.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 1 || resp.NewVisitor {
		t.Fatalf("repeat visit counted: %+v", resp)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	mux := newTestMux(t)
	login(t, mux)

	if w := doJSON(t, mux, http.MethodPost, "/api/matches", validMatchBody()); w.Code != http.StatusCreated {
		t.Fatalf("seed: status %d", w.Code)
	}

	w := doJSON(t, mux, http.MethodGet, "/api/summary", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("summary: status %d", w.Code)
	}
	var resp struct {
		Stats         domain.MatchStats  `json:"stats"`
		RecentMatches []domain.Match     `json:"recentMatches"`
		RecentMedia   []domain.MediaItem `json:"recentMedia"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Stats.Total != 1 || len(resp.RecentMatches) != 1 || len(resp.RecentMedia) == 0 {
		t.Fatalf("resp = %+v", resp)
	}
}
