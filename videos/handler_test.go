package videos

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"vidtube/auth"
	"vidtube/httputil"
	"vidtube/storage"
	"vidtube/testutil"
	"vidtube/views"
)

func newTestHandler(t *testing.T) (*Handler, *storage.MemoryStore) {
	t.Helper()
	media := storage.NewMemoryStore("")
	return &Handler{DB: testutil.OpenDB(t), Media: media}, media
}

func asUser(r *http.Request, id string) *http.Request {
	return r.WithContext(auth.WithUser(r.Context(), &auth.User{ID: id}))
}

func TestHandleListVideos(t *testing.T) {
	h, _ := newTestHandler(t)
	alice := testutil.CreateUser(t, h.DB, "alice")
	bob := testutil.CreateUser(t, h.DB, "bob")
	testutil.CreateVideo(t, h.DB, alice, "Go tutorial", true)
	testutil.CreateVideo(t, h.DB, alice, "draft", false)
	testutil.CreateVideo(t, h.DB, bob, "cooking", true)

	rec := httptest.NewRecorder()
	h.HandleListVideos(rec, httptest.NewRequest("GET", "/api/v1/videos", nil))
	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var page httputil.Paginated[views.VideoCard]
	testutil.Decode(t, rec, &page)
	if page.TotalDocs != 2 || len(page.Docs) != 2 {
		t.Fatalf("expected 2 published videos, got %+v", page)
	}
	if page.Docs[0].Title != "cooking" {
		t.Errorf("expected newest first, got %q", page.Docs[0].Title)
	}

	rec = httptest.NewRecorder()
	h.HandleListVideos(rec, httptest.NewRequest("GET", "/api/v1/videos?query=TUTORIAL", nil))
	testutil.Decode(t, rec, &page)
	if page.TotalDocs != 1 || page.Docs[0].Owner.Username != "alice" {
		t.Errorf("search: unexpected result %+v", page)
	}
}

func TestHandleListVideos_OwnChannelIncludesDrafts(t *testing.T) {
	h, _ := newTestHandler(t)
	alice := testutil.CreateUser(t, h.DB, "alice")
	testutil.CreateVideo(t, h.DB, alice, "public", true)
	testutil.CreateVideo(t, h.DB, alice, "draft", false)

	url := "/api/v1/videos?user_id=" + alice

	var page httputil.Paginated[views.VideoCard]
	rec := httptest.NewRecorder()
	h.HandleListVideos(rec, httptest.NewRequest("GET", url, nil))
	testutil.Decode(t, rec, &page)
	if page.TotalDocs != 1 {
		t.Errorf("anonymous: expected 1 video, got %d", page.TotalDocs)
	}

	rec = httptest.NewRecorder()
	h.HandleListVideos(rec, asUser(httptest.NewRequest("GET", url, nil), alice))
	testutil.Decode(t, rec, &page)
	if page.TotalDocs != 2 {
		t.Errorf("owner: expected 2 videos, got %d", page.TotalDocs)
	}
}

func TestHandleListVideos_BadParams(t *testing.T) {
	h, _ := newTestHandler(t)

	tests := []struct {
		query string
		want  int
	}{
		{"sort_by=password_hash", 400},
		{"sort_type=sideways", 400},
		{"user_id=not-a-uuid", 400},
		{"user_id=7f0c6a53-8f5e-4c59-9d6e-0b7f1a2c3d4e", 404},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.HandleListVideos(rec, httptest.NewRequest("GET", "/api/v1/videos?"+tt.query, nil))
		if rec.Code != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.query, tt.want, rec.Code)
		}
	}
}

func TestHandlePublishVideo(t *testing.T) {
	h, media := newTestHandler(t)
	alice := testutil.CreateUser(t, h.DB, "alice")

	req := testutil.MultipartRequest(t, "POST", "/api/v1/videos", map[string]string{
		"title":       "First upload",
		"description": "hello",
		"duration":    "12.5",
	}, map[string][]byte{
		"video_file": []byte("not really an mp4"),
		"thumbnail":  testutil.PNG(t),
	})
	rec := httptest.NewRecorder()
	h.HandlePublishVideo(rec, asUser(req, alice))
	if rec.Code != 201 {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var v views.Video
	testutil.Decode(t, rec, &v)
	if v.Title != "First upload" || v.Duration != 12.5 || !v.IsPublished {
		t.Errorf("unexpected video: %+v", v)
	}
	if !media.Has(v.VideoFile) || !media.Has(v.Thumbnail) {
		t.Error("expected video file and thumbnail in media store")
	}
	if !strings.Contains(v.Thumbnail, "/thumbnails/") {
		t.Errorf("thumbnail stored outside thumbnails folder: %s", v.Thumbnail)
	}
}

func TestHandlePublishVideo_Validation(t *testing.T) {
	h, media := newTestHandler(t)
	alice := testutil.CreateUser(t, h.DB, "alice")
	testutil.CreateVideo(t, h.DB, alice, "Taken", true)

	files := map[string][]byte{"video_file": []byte("mp4"), "thumbnail": testutil.PNG(t)}
	tests := []struct {
		name   string
		fields map[string]string
		files  map[string][]byte
	}{
		{"blank title", map[string]string{"title": " ", "description": "d"}, files},
		{"bad duration", map[string]string{"title": "t", "description": "d", "duration": "-3"}, files},
		{"duplicate title", map[string]string{"title": "Taken", "description": "d"}, files},
		{"missing thumbnail", map[string]string{"title": "t", "description": "d"}, map[string][]byte{"video_file": []byte("mp4")}},
		{"thumbnail not an image", map[string]string{"title": "t", "description": "d"}, map[string][]byte{"video_file": []byte("mp4"), "thumbnail": []byte("text")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.HandlePublishVideo(rec, asUser(testutil.MultipartRequest(t, "POST", "/", tt.fields, tt.files), alice))
			if rec.Code != 400 {
				t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
	if media.Len() != 0 {
		t.Errorf("expected failed publishes to leave no media, found %d objects", media.Len())
	}
}

func TestHandleGetVideo_RecordsView(t *testing.T) {
	h, _ := newTestHandler(t)
	alice := testutil.CreateUser(t, h.DB, "alice")
	bob := testutil.CreateUser(t, h.DB, "bob")
	vid := testutil.CreateVideo(t, h.DB, alice, "clip", true)
	testutil.Like(t, h.DB, bob, views.TargetVideo, vid)
	testutil.Subscribe(t, h.DB, bob, alice)

	get := func() views.VideoDetail {
		t.Helper()
		req := testutil.WithURLParams(httptest.NewRequest("GET", "/", nil), "videoId", vid)
		rec := httptest.NewRecorder()
		h.HandleGetVideo(rec, asUser(req, bob))
		if rec.Code != 200 {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var d views.VideoDetail
		testutil.Decode(t, rec, &d)
		return d
	}

	d := get()
	if d.Views != 1 || d.LikesCount != 1 || !d.IsLiked {
		t.Errorf("unexpected detail: %+v", d)
	}
	if d.Owner.Username != "alice" || d.Owner.SubscribersCount != 1 || !d.Owner.IsSubscribed {
		t.Errorf("unexpected owner: %+v", d.Owner)
	}
	if d = get(); d.Views != 2 {
		t.Errorf("expected 2 views, got %d", d.Views)
	}
	if n := testutil.Count(t, h.DB, `SELECT COUNT(*) FROM watch_history WHERE user_id = ?`, bob); n != 1 {
		t.Errorf("expected one history row, got %d", n)
	}
}

func TestHandleGetVideo_AnonymousAndUnpublished(t *testing.T) {
	h, _ := newTestHandler(t)
	alice := testutil.CreateUser(t, h.DB, "alice")
	pub := testutil.CreateVideo(t, h.DB, alice, "public", true)
	draft := testutil.CreateVideo(t, h.DB, alice, "draft", false)

	rec := httptest.NewRecorder()
	h.HandleGetVideo(rec, testutil.WithURLParams(httptest.NewRequest("GET", "/", nil), "videoId", pub))
	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if n := testutil.Count(t, h.DB, `SELECT views FROM videos WHERE id = ?`, pub); n != 0 {
		t.Errorf("anonymous view should not be counted, got %d", n)
	}

	rec = httptest.NewRecorder()
	h.HandleGetVideo(rec, testutil.WithURLParams(httptest.NewRequest("GET", "/", nil), "videoId", draft))
	if rec.Code != 404 {
		t.Errorf("draft for anonymous: expected 404, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.HandleGetVideo(rec, asUser(testutil.WithURLParams(httptest.NewRequest("GET", "/", nil), "videoId", draft), alice))
	if rec.Code != 200 {
		t.Errorf("draft for owner: expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.HandleGetVideo(rec, testutil.WithURLParams(httptest.NewRequest("GET", "/", nil), "videoId", "nope"))
	if rec.Code != 400 {
		t.Errorf("malformed id: expected 400, got %d", rec.Code)
	}
}

func TestHandleUpdateVideo(t *testing.T) {
	h, media := newTestHandler(t)
	alice := testutil.CreateUser(t, h.DB, "alice")
	bob := testutil.CreateUser(t, h.DB, "bob")
	vid := testutil.CreateVideo(t, h.DB, alice, "old title", true)

	newReq := func(fields map[string]string, files map[string][]byte) *http.Request {
		return testutil.WithURLParams(testutil.MultipartRequest(t, "PATCH", "/", fields, files), "videoId", vid)
	}

	rec := httptest.NewRecorder()
	h.HandleUpdateVideo(rec, asUser(newReq(map[string]string{"title": "hijack"}, nil), bob))
	if rec.Code != 403 {
		t.Errorf("non-owner: expected 403, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.HandleUpdateVideo(rec, asUser(newReq(map[string]string{}, nil), alice))
	if rec.Code != 400 {
		t.Errorf("empty update: expected 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.HandleUpdateVideo(rec, asUser(newReq(
		map[string]string{"title": "new title"},
		map[string][]byte{"thumbnail": testutil.PNG(t)},
	), alice))
	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var v views.Video
	testutil.Decode(t, rec, &v)
	if v.Title != "new title" || v.Description != "about old title" {
		t.Errorf("unexpected video after update: %+v", v)
	}
	if !media.Has(v.Thumbnail) {
		t.Error("new thumbnail not stored")
	}
}

func TestHandleDeleteVideo(t *testing.T) {
	h, _ := newTestHandler(t)
	alice := testutil.CreateUser(t, h.DB, "alice")
	bob := testutil.CreateUser(t, h.DB, "bob")
	vid := testutil.CreateVideo(t, h.DB, alice, "clip", true)
	c := testutil.CreateComment(t, h.DB, vid, bob, "nice")
	testutil.Like(t, h.DB, bob, views.TargetVideo, vid)
	testutil.Like(t, h.DB, alice, views.TargetComment, c)
	pl := testutil.CreatePlaylist(t, h.DB, bob, "faves")
	testutil.AddToPlaylist(t, h.DB, pl, vid, 1)

	req := func(user string) *http.Request {
		return asUser(testutil.WithURLParams(httptest.NewRequest("DELETE", "/", nil), "videoId", vid), user)
	}

	rec := httptest.NewRecorder()
	h.HandleDeleteVideo(rec, req(bob))
	if rec.Code != 403 {
		t.Fatalf("non-owner: expected 403, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.HandleDeleteVideo(rec, req(alice))
	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	for query, want := range map[string]int{
		`SELECT COUNT(*) FROM videos`:          0,
		`SELECT COUNT(*) FROM comments`:        0,
		`SELECT COUNT(*) FROM likes`:           0,
		`SELECT COUNT(*) FROM playlist_videos`: 0,
		`SELECT COUNT(*) FROM playlists`:       1,
	} {
		if n := testutil.Count(t, h.DB, query); n != want {
			t.Errorf("%s: expected %d, got %d", query, want, n)
		}
	}

	rec = httptest.NewRecorder()
	h.HandleDeleteVideo(rec, req(alice))
	if rec.Code != 404 {
		t.Errorf("second delete: expected 404, got %d", rec.Code)
	}
}

func TestHandleTogglePublish(t *testing.T) {
	h, _ := newTestHandler(t)
	alice := testutil.CreateUser(t, h.DB, "alice")
	vid := testutil.CreateVideo(t, h.DB, alice, "clip", true)

	for _, want := range []bool{false, true} {
		rec := httptest.NewRecorder()
		h.HandleTogglePublish(rec, asUser(testutil.WithURLParams(httptest.NewRequest("PATCH", "/", nil), "videoId", vid), alice))
		if rec.Code != 200 {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var got struct {
			IsPublished bool `json:"is_published"`
		}
		testutil.Decode(t, rec, &got)
		if got.IsPublished != want {
			t.Errorf("expected is_published=%v, got %v", want, got.IsPublished)
		}
	}
}
