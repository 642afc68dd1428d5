package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vidtube/logging"
	"vidtube/storage"
	"vidtube/testutil"
	"vidtube/views"
)

// --- helpers ---

func newTestApp(t *testing.T) *App {
	t.Helper()
	return &App{
		db:    testutil.OpenDB(t),
		media: storage.NewMemoryStore(""),
		cfg: Config{
			CORSOrigins:        []string{"*"},
			AccessTokenSecret:  "test-access",
			AccessTokenExpiry:  time.Hour,
			RefreshTokenSecret: "test-refresh",
			RefreshTokenExpiry: 24 * time.Hour,
			AuthRateLimit:      100,
			MaxUploadMB:        8,
		},
		logger: logging.New(logging.Config{Level: "error", Writer: &bytes.Buffer{}}),
	}
}

func serve(h http.Handler, req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func signUp(t *testing.T, h http.Handler, username string) (id, token string) {
	t.Helper()
	req := testutil.MultipartRequest(t, "POST", "/api/v1/users/register", map[string]string{
		"full_name": "User " + username,
		"username":  username,
		"email":     username + "@test.com",
		"password":  "password123",
	}, map[string][]byte{"avatar": testutil.PNG(t)})
	if rec := serve(h, req, ""); rec.Code != 201 {
		t.Fatalf("register %s: %d %s", username, rec.Code, rec.Body.String())
	}

	rec := serve(h, testutil.JSONRequest("POST", "/api/v1/users/login",
		map[string]string{"username": username, "password": "password123"}), "")
	if rec.Code != 200 {
		t.Fatalf("login %s: %d %s", username, rec.Code, rec.Body.String())
	}
	var session struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		AccessToken string `json:"access_token"`
	}
	testutil.Decode(t, rec, &session)
	return session.User.ID, session.AccessToken
}

// --- config ---

func TestLoadConfig_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DATABASE_URL", "CORS_ORIGINS", "ACCESS_TOKEN_EXPIRY", "COOKIE_SECURE", "STORAGE_DRIVER", "AUTH_RATE_LIMIT", "MAX_UPLOAD_MB"} {
		t.Setenv(k, "")
	}
	cfg := loadConfig()
	if cfg.Port != "8000" || cfg.DatabaseURL != "file:vidtube.db" {
		t.Errorf("unexpected defaults: port=%s db=%s", cfg.Port, cfg.DatabaseURL)
	}
	if cfg.AccessTokenExpiry != 24*time.Hour || cfg.RefreshTokenExpiry != 240*time.Hour {
		t.Errorf("unexpected token expiry: %v %v", cfg.AccessTokenExpiry, cfg.RefreshTokenExpiry)
	}
	if !cfg.CookieSecure || cfg.StorageDriver != "minio" || cfg.AuthRateLimit != 20 || cfg.MaxUploadMB != 512 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("unexpected CORS origins: %v", cfg.CORSOrigins)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("ACCESS_TOKEN_EXPIRY", "15m")
	t.Setenv("REFRESH_TOKEN_EXPIRY", "10d")
	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("STORAGE_DRIVER", "S3")
	t.Setenv("AUTH_RATE_LIMIT", "not-a-number")

	cfg := loadConfig()
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Errorf("unexpected CORS origins: %v", cfg.CORSOrigins)
	}
	if cfg.AccessTokenExpiry != 15*time.Minute || cfg.RefreshTokenExpiry != 240*time.Hour {
		t.Errorf("unexpected expiry: %v %v", cfg.AccessTokenExpiry, cfg.RefreshTokenExpiry)
	}
	if cfg.CookieSecure || cfg.StorageDriver != "s3" || cfg.AuthRateLimit != 20 {
		t.Errorf("unexpected overrides: %+v", cfg)
	}
}

func TestNewMediaStore(t *testing.T) {
	store, err := newMediaStore(t.Context(), Config{StorageDriver: "memory"})
	if err != nil {
		t.Fatalf("memory store: %v", err)
	}
	if _, ok := store.(*storage.MemoryStore); !ok {
		t.Errorf("expected *storage.MemoryStore, got %T", store)
	}
	if _, err := newMediaStore(t.Context(), Config{StorageDriver: "floppy"}); err == nil {
		t.Error("expected error for unknown driver")
	}
}

// --- router ---

func TestHealthcheck(t *testing.T) {
	app := newTestApp(t)
	h := app.routes()

	rec := serve(h, httptest.NewRequest("GET", "/api/v1/healthcheck", nil), "")
	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	env := testutil.Decode(t, rec, nil)
	if !env.Success || env.StatusCode != 200 {
		t.Errorf("unexpected envelope: %+v", env)
	}

	app.db.Close()
	if rec := serve(h, httptest.NewRequest("GET", "/api/v1/healthcheck", nil), ""); rec.Code != 503 {
		t.Errorf("closed db: expected 503, got %d", rec.Code)
	}
}

func TestRouter_NotFoundUsesEnvelope(t *testing.T) {
	h := newTestApp(t).routes()
	rec := serve(h, httptest.NewRequest("GET", "/api/v1/nope", nil), "")
	if rec.Code != 404 {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if env := testutil.Decode(t, rec, nil); env.Success || env.Message != "route not found" {
		t.Errorf("unexpected envelope: %+v", env)
	}
}

func TestRouter_CORSCredentialsNeedExplicitOrigins(t *testing.T) {
	preflight := func(origins []string) *httptest.ResponseRecorder {
		app := newTestApp(t)
		app.cfg.CORSOrigins = origins
		req := httptest.NewRequest("OPTIONS", "/api/v1/users/login", nil)
		req.Header.Set("Origin", "http://app.test")
		req.Header.Set("Access-Control-Request-Method", "POST")
		return serve(app.routes(), req, "")
	}

	rec := preflight([]string{"*"})
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "" {
		t.Errorf("wildcard origin: Allow-Credentials = %q, want none", got)
	}

	rec = preflight([]string{"http://app.test"})
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("explicit origin: Allow-Credentials = %q, want true", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://app.test" {
		t.Errorf("explicit origin: Allow-Origin = %q", got)
	}
}

func TestRouter_ProtectedRoutesRequireAuth(t *testing.T) {
	h := newTestApp(t).routes()
	for _, route := range []struct{ method, path string }{
		{"GET", "/api/v1/users/current-user"},
		{"GET", "/api/v1/users/history"},
		{"POST", "/api/v1/videos"},
		{"GET", "/api/v1/likes/videos"},
		{"POST", "/api/v1/tweets"},
		{"POST", "/api/v1/playlists"},
	} {
		rec := serve(h, httptest.NewRequest(route.method, route.path, nil), "")
		if rec.Code != 401 {
			t.Errorf("%s %s: expected 401, got %d", route.method, route.path, rec.Code)
		}
	}
}

func TestRouter_AuthRateLimit(t *testing.T) {
	app := newTestApp(t)
	app.cfg.AuthRateLimit = 2
	h := app.routes()

	var last int
	for i := 0; i < 3; i++ {
		req := testutil.JSONRequest("POST", "/api/v1/users/login", map[string]string{"username": "ghost", "password": "x"})
		req.RemoteAddr = "203.0.113.7:5000"
		last = serve(h, req, "").Code
	}
	if last != 429 {
		t.Errorf("expected 429 after limit, got %d", last)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestApp(t).routes()
	serve(h, httptest.NewRequest("GET", "/api/v1/healthcheck", nil), "")
	rec := serve(h, httptest.NewRequest("GET", "/metrics", nil), "")
	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("http_requests_total")) {
		t.Error("expected http_requests_total in metrics output")
	}
}

// --- end to end ---

func TestEndToEnd_VideoLifecycle(t *testing.T) {
	h := newTestApp(t).routes()
	aliceID, alice := signUp(t, h, "alice")
	_, bob := signUp(t, h, "bob")

	req := testutil.MultipartRequest(t, "POST", "/api/v1/videos", map[string]string{
		"title": "Launch day", "description": "we shipped", "duration": "42",
	}, map[string][]byte{"video_file": []byte("mp4 bytes"), "thumbnail": testutil.PNG(t)})
	rec := serve(h, req, alice)
	if rec.Code != 201 {
		t.Fatalf("publish: %d %s", rec.Code, rec.Body.String())
	}
	var video views.Video
	testutil.Decode(t, rec, &video)

	rec = serve(h, httptest.NewRequest("POST", "/api/v1/likes/toggle/v/"+video.ID, nil), bob)
	if rec.Code != 200 {
		t.Fatalf("like: %d %s", rec.Code, rec.Body.String())
	}
	rec = serve(h, httptest.NewRequest("POST", "/api/v1/subscriptions/c/"+aliceID, nil), bob)
	if rec.Code != 200 {
		t.Fatalf("subscribe: %d %s", rec.Code, rec.Body.String())
	}
	rec = serve(h, testutil.JSONRequest("POST", "/api/v1/comments/"+video.ID, map[string]string{"content": "congrats"}), bob)
	if rec.Code != 201 {
		t.Fatalf("comment: %d %s", rec.Code, rec.Body.String())
	}

	rec = serve(h, httptest.NewRequest("GET", "/api/v1/videos/"+video.ID, nil), bob)
	if rec.Code != 200 {
		t.Fatalf("get video: %d %s", rec.Code, rec.Body.String())
	}
	var detail views.VideoDetail
	testutil.Decode(t, rec, &detail)
	if detail.Views != 1 || !detail.IsLiked || !detail.Owner.IsSubscribed || detail.Owner.SubscribersCount != 1 {
		t.Errorf("unexpected detail: %+v", detail)
	}

	rec = serve(h, httptest.NewRequest("GET", "/api/v1/users/history", nil), bob)
	var history []views.HistoryEntry
	testutil.Decode(t, rec, &history)
	if len(history) != 1 || history[0].ID != video.ID {
		t.Errorf("unexpected history: %+v", history)
	}

	rec = serve(h, httptest.NewRequest("GET", "/api/v1/users/c/alice", nil), bob)
	var profile views.ChannelProfile
	testutil.Decode(t, rec, &profile)
	if profile.SubscribersCount != 1 || !profile.IsSubscribed {
		t.Errorf("unexpected profile: %+v", profile)
	}

	rec = serve(h, httptest.NewRequest("GET", fmt.Sprintf("/api/v1/comments/%s?limit=5", video.ID), nil), "")
	var comments struct {
		Docs      []views.Comment `json:"docs"`
		TotalDocs int             `json:"total_docs"`
	}
	testutil.Decode(t, rec, &comments)
	if comments.TotalDocs != 1 || comments.Docs[0].Content != "congrats" {
		t.Errorf("unexpected comments: %+v", comments)
	}

	if rec := serve(h, httptest.NewRequest("DELETE", "/api/v1/videos/"+video.ID, nil), bob); rec.Code != 403 {
		t.Errorf("non-owner delete: expected 403, got %d", rec.Code)
	}
	if rec := serve(h, httptest.NewRequest("DELETE", "/api/v1/videos/"+video.ID, nil), alice); rec.Code != 200 {
		t.Fatalf("delete: %d %s", rec.Code, rec.Body.String())
	}
	if rec := serve(h, httptest.NewRequest("GET", "/api/v1/videos/"+video.ID, nil), ""); rec.Code != 404 {
		t.Errorf("deleted video: expected 404, got %d", rec.Code)
	}
}

func TestEndToEnd_ListVideosEnvelope(t *testing.T) {
	app := newTestApp(t)
	h := app.routes()
	owner := testutil.CreateUser(t, app.db, "carol")
	for i := 0; i < 3; i++ {
		testutil.CreateVideo(t, app.db, owner, fmt.Sprintf("video %d", i), true)
	}

	rec := serve(h, httptest.NewRequest("GET", "/api/v1/videos?limit=2&sort_by=title&sort_type=asc", nil), "")
	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var raw map[string]json.RawMessage
	env := testutil.Decode(t, rec, &raw)
	if env.Message == "" || !env.Success {
		t.Errorf("unexpected envelope: %+v", env)
	}
	for _, key := range []string{"docs", "total_docs", "limit", "page", "total_pages", "has_prev_page", "has_next_page", "prev_page", "next_page"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing %q in paginated response", key)
		}
	}
	if string(raw["next_page"]) != "2" || string(raw["prev_page"]) != "null" {
		t.Errorf("unexpected paging: next=%s prev=%s", raw["next_page"], raw["prev_page"])
	}
}
