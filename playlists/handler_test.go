package playlists

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

func TestHandleCreatePlaylist(t *testing.T) {
	h := newTestHandler(t)
	alice := testutil.CreateUser(t, h.DB, "alice")

	rec := httptest.NewRecorder()
	h.HandleCreatePlaylist(rec, asUser(testutil.JSONRequest("POST", "/", map[string]string{"name": " Faves ", "description": "best of"}), alice))
	if rec.Code != 201 {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var d views.PlaylistDetail
	testutil.Decode(t, rec, &d)
	if d.Name != "Faves" || d.Owner.ID != alice || d.TotalVideos != 0 || d.Videos == nil {
		t.Errorf("unexpected playlist: %+v", d)
	}

	rec = httptest.NewRecorder()
	h.HandleCreatePlaylist(rec, asUser(testutil.JSONRequest("POST", "/", map[string]string{"name": ""}), alice))
	if rec.Code != 400 {
		t.Errorf("blank name: expected 400, got %d", rec.Code)
	}
}

func TestAddAndRemoveVideo(t *testing.T) {
	h := newTestHandler(t)
	alice := testutil.CreateUser(t, h.DB, "alice")
	bob := testutil.CreateUser(t, h.DB, "bob")
	pl := testutil.CreatePlaylist(t, h.DB, alice, "mix")
	v1 := testutil.CreateVideo(t, h.DB, bob, "one", true)
	v2 := testutil.CreateVideo(t, h.DB, bob, "two", true)

	send := func(handle http.HandlerFunc, user, videoID string) *httptest.ResponseRecorder {
		req := testutil.WithURLParams(httptest.NewRequest("PATCH", "/", nil), "videoId", videoID, "playlistId", pl)
		rec := httptest.NewRecorder()
		handle(rec, asUser(req, user))
		return rec
	}

	if rec := send(h.HandleAddVideo, alice, v2); rec.Code != 200 {
		t.Fatalf("add v2: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	rec := send(h.HandleAddVideo, alice, v1)
	if rec.Code != 200 {
		t.Fatalf("add v1: expected 200, got %d", rec.Code)
	}
	var d views.PlaylistDetail
	testutil.Decode(t, rec, &d)
	if d.TotalVideos != 2 || d.Videos[0].ID != v2 || d.Videos[1].ID != v1 {
		t.Errorf("expected videos in insertion order, got %+v", d.Videos)
	}

	if rec := send(h.HandleAddVideo, alice, v1); rec.Code != 409 {
		t.Errorf("duplicate add: expected 409, got %d", rec.Code)
	}
	if rec := send(h.HandleAddVideo, bob, v1); rec.Code != 403 {
		t.Errorf("non-owner add: expected 403, got %d", rec.Code)
	}
	if rec := send(h.HandleAddVideo, alice, "9c1d2e3f-4a5b-4c6d-8e7f-0a1b2c3d4e5f"); rec.Code != 404 {
		t.Errorf("unknown video: expected 404, got %d", rec.Code)
	}

	if rec := send(h.HandleRemoveVideo, alice, v2); rec.Code != 200 {
		t.Fatalf("remove: expected 200, got %d", rec.Code)
	}
	if rec := send(h.HandleRemoveVideo, alice, v2); rec.Code != 404 {
		t.Errorf("remove absent: expected 404, got %d", rec.Code)
	}
	if n := testutil.Count(t, h.DB, `SELECT COUNT(*) FROM playlist_videos WHERE playlist_id = ?`, pl); n != 1 {
		t.Errorf("expected 1 video left, got %d", n)
	}
}

func TestHandleGetPlaylist_HidesDraftsFromOthers(t *testing.T) {
	h := newTestHandler(t)
	alice := testutil.CreateUser(t, h.DB, "alice")
	bob := testutil.CreateUser(t, h.DB, "bob")
	pl := testutil.CreatePlaylist(t, h.DB, alice, "mix")
	testutil.AddToPlaylist(t, h.DB, pl, testutil.CreateVideo(t, h.DB, alice, "public", true), 0)
	testutil.AddToPlaylist(t, h.DB, pl, testutil.CreateVideo(t, h.DB, alice, "draft", false), 1)

	get := func(r *http.Request) views.PlaylistDetail {
		t.Helper()
		rec := httptest.NewRecorder()
		h.HandleGetPlaylist(rec, testutil.WithURLParams(r, "playlistId", pl))
		if rec.Code != 200 {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var d views.PlaylistDetail
		testutil.Decode(t, rec, &d)
		return d
	}

	if d := get(asUser(httptest.NewRequest("GET", "/", nil), bob)); d.TotalVideos != 1 {
		t.Errorf("other viewer: expected 1 video, got %d", d.TotalVideos)
	}
	if d := get(asUser(httptest.NewRequest("GET", "/", nil), alice)); d.TotalVideos != 2 {
		t.Errorf("owner: expected 2 videos, got %d", d.TotalVideos)
	}

	rec := httptest.NewRecorder()
	h.HandleGetPlaylist(rec, testutil.WithURLParams(httptest.NewRequest("GET", "/", nil), "playlistId", "1e2d3c4b-5a69-4788-9aab-bccddeeff001"))
	if rec.Code != 404 {
		t.Errorf("unknown playlist: expected 404, got %d", rec.Code)
	}
}

func TestHandleUserPlaylists(t *testing.T) {
	h := newTestHandler(t)
	alice := testutil.CreateUser(t, h.DB, "alice")
	pl := testutil.CreatePlaylist(t, h.DB, alice, "mix")
	for i, title := range []string{"a", "b", "c", "d", "e"} {
		testutil.AddToPlaylist(t, h.DB, pl, testutil.CreateVideo(t, h.DB, alice, title, true), i)
	}

	rec := httptest.NewRecorder()
	h.HandleUserPlaylists(rec, testutil.WithURLParams(httptest.NewRequest("GET", "/", nil), "userId", alice))
	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var lists []views.PlaylistSummary
	testutil.Decode(t, rec, &lists)
	if len(lists) != 1 || lists[0].TotalVideos != 5 || len(lists[0].Thumbnails) != 4 {
		t.Errorf("unexpected playlists: %+v", lists)
	}

	rec = httptest.NewRecorder()
	h.HandleUserPlaylists(rec, testutil.WithURLParams(httptest.NewRequest("GET", "/", nil), "userId", "1e2d3c4b-5a69-4788-9aab-bccddeeff001"))
	if rec.Code != 404 {
		t.Errorf("unknown user: expected 404, got %d", rec.Code)
	}
}

func TestUpdateAndDeletePlaylist(t *testing.T) {
	h := newTestHandler(t)
	alice := testutil.CreateUser(t, h.DB, "alice")
	bob := testutil.CreateUser(t, h.DB, "bob")
	pl := testutil.CreatePlaylist(t, h.DB, alice, "mix")
	vid := testutil.CreateVideo(t, h.DB, alice, "clip", true)
	testutil.AddToPlaylist(t, h.DB, pl, vid, 0)

	update := func(user string, body map[string]string) *httptest.ResponseRecorder {
		req := testutil.WithURLParams(testutil.JSONRequest("PATCH", "/", body), "playlistId", pl)
		rec := httptest.NewRecorder()
		h.HandleUpdatePlaylist(rec, asUser(req, user))
		return rec
	}
	if rec := update(alice, map[string]string{}); rec.Code != 400 {
		t.Errorf("empty update: expected 400, got %d", rec.Code)
	}
	if rec := update(bob, map[string]string{"name": "x"}); rec.Code != 403 {
		t.Errorf("non-owner update: expected 403, got %d", rec.Code)
	}
	rec := update(alice, map[string]string{"description": "road trip"})
	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var d views.PlaylistDetail
	testutil.Decode(t, rec, &d)
	if d.Name != "mix" || d.Description != "road trip" {
		t.Errorf("unexpected playlist: %+v", d)
	}

	rec = httptest.NewRecorder()
	h.HandleDeletePlaylist(rec, asUser(testutil.WithURLParams(httptest.NewRequest("DELETE", "/", nil), "playlistId", pl), alice))
	if rec.Code != 200 {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}
	if n := testutil.Count(t, h.DB, `SELECT COUNT(*) FROM playlist_videos`); n != 0 {
		t.Errorf("expected playlist entries removed, got %d", n)
	}
	if n := testutil.Count(t, h.DB, `SELECT COUNT(*) FROM videos`); n != 1 {
		t.Errorf("expected video kept, got %d", n)
	}
}
