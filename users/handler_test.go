package users

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"vidtube/auth"
	"vidtube/testutil"
	"vidtube/views"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	return &Handler{DB: testutil.OpenDB(t)}
}

func asUser(r *http.Request, id string) *http.Request {
	return r.WithContext(auth.WithUser(r.Context(), &auth.User{ID: id}))
}

func TestHandleChannelProfile(t *testing.T) {
	h := newTestHandler(t)
	alice := testutil.CreateUser(t, h.DB, "alice")
	bob := testutil.CreateUser(t, h.DB, "bob")
	testutil.Subscribe(t, h.DB, bob, alice)

	req := testutil.WithURLParams(httptest.NewRequest("GET", "/api/v1/users/c/alice", nil), "username", "alice")
	rec := httptest.NewRecorder()
	h.HandleChannelProfile(rec, asUser(req, bob))
	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var p views.ChannelProfile
	testutil.Decode(t, rec, &p)
	if p.ID != alice || p.SubscribersCount != 1 || !p.IsSubscribed {
		t.Errorf("unexpected profile: %+v", p)
	}
}

func TestHandleChannelProfile_Errors(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.HandleChannelProfile(rec, testutil.WithURLParams(httptest.NewRequest("GET", "/", nil), "username", "  "))
	if rec.Code != 400 {
		t.Errorf("blank username: expected 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.HandleChannelProfile(rec, testutil.WithURLParams(httptest.NewRequest("GET", "/", nil), "username", "ghost"))
	if rec.Code != 404 {
		t.Errorf("unknown username: expected 404, got %d", rec.Code)
	}
}

func TestHandleWatchHistory(t *testing.T) {
	h := newTestHandler(t)
	alice := testutil.CreateUser(t, h.DB, "alice")
	v := testutil.CreateVideo(t, h.DB, alice, "clip", true)
	testutil.Watch(t, h.DB, alice, v)

	rec := httptest.NewRecorder()
	h.HandleWatchHistory(rec, asUser(httptest.NewRequest("GET", "/", nil), alice))
	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var history []views.HistoryEntry
	testutil.Decode(t, rec, &history)
	if len(history) != 1 || history[0].ID != v || history[0].Owner.Username != "alice" {
		t.Errorf("unexpected history: %+v", history)
	}
}
