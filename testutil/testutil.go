// Package testutil seeds in-memory databases for package tests.
package testutil

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"vidtube/db"

	"github.com/google/uuid"
)

var clock atomic.Int64

// Timestamp returns a strictly increasing ISO-8601 time, so rows seeded in
// sequence sort deterministically.
func Timestamp() string {
	n := clock.Add(1)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return base.Add(time.Duration(n) * time.Second).Format("2006-01-02T15:04:05.000Z")
}

// OpenDB returns a migrated in-memory SQLite database closed with the test.
func OpenDB(t testing.TB) *db.CompatDB {
	t.Helper()
	d, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	if err := db.RunMigrations(context.Background(), d); err != nil {
		t.Fatalf("schema migration: %v", err)
	}
	return d
}

// Exec runs a statement and fails the test on error.
func Exec(t testing.TB, d db.Querier, query string, args ...interface{}) {
	t.Helper()
	if _, err := d.ExecContext(context.Background(), query, args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}

// CreateUser inserts a user with a placeholder password hash.
func CreateUser(t testing.TB, d db.Querier, username string) string {
	t.Helper()
	id := uuid.NewString()
	ts := Timestamp()
	Exec(t, d, `INSERT INTO users (id, username, email, full_name, avatar, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 'x', ?, ?)`,
		id, username, username+"@test.com", "User "+username, "memory://media/avatars/"+username+".jpg", ts, ts)
	return id
}

// CreateVideo inserts a video owned by ownerID.
func CreateVideo(t testing.TB, d db.Querier, ownerID, title string, published bool) string {
	t.Helper()
	id := uuid.NewString()
	ts := Timestamp()
	pub := 0
	if published {
		pub = 1
	}
	Exec(t, d, `INSERT INTO videos (id, owner_id, video_file, thumbnail, title, description, duration, is_published, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 60, ?, ?, ?)`,
		id, ownerID, "memory://media/videos/"+id+".mp4", "memory://media/thumbnails/"+id+".jpg",
		title, "about "+title, pub, ts, ts)
	return id
}

// CreateComment inserts a comment on videoID.
func CreateComment(t testing.TB, d db.Querier, videoID, ownerID, content string) string {
	t.Helper()
	id := uuid.NewString()
	ts := Timestamp()
	Exec(t, d, `INSERT INTO comments (id, video_id, owner_id, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, videoID, ownerID, content, ts, ts)
	return id
}

// CreateTweet inserts a tweet.
func CreateTweet(t testing.TB, d db.Querier, ownerID, content string) string {
	t.Helper()
	id := uuid.NewString()
	ts := Timestamp()
	Exec(t, d, `INSERT INTO tweets (id, owner_id, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, ownerID, content, ts, ts)
	return id
}

// CreatePlaylist inserts an empty playlist.
func CreatePlaylist(t testing.TB, d db.Querier, ownerID, name string) string {
	t.Helper()
	id := uuid.NewString()
	ts := Timestamp()
	Exec(t, d, `INSERT INTO playlists (id, owner_id, name, description, created_at, updated_at) VALUES (?, ?, ?, '', ?, ?)`,
		id, ownerID, name, ts, ts)
	return id
}

// AddToPlaylist appends videoID to playlistID at position.
func AddToPlaylist(t testing.TB, d db.Querier, playlistID, videoID string, position int) {
	t.Helper()
	Exec(t, d, `INSERT INTO playlist_videos (playlist_id, video_id, position, added_at) VALUES (?, ?, ?, ?)`,
		playlistID, videoID, position, Timestamp())
}

// Like records a like by userID on the target.
func Like(t testing.TB, d db.Querier, userID, targetType, targetID string) {
	t.Helper()
	Exec(t, d, `INSERT INTO likes (id, target_type, target_id, liked_by, created_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), targetType, targetID, userID, Timestamp())
}

// Subscribe records subscriberID following channelID.
func Subscribe(t testing.TB, d db.Querier, subscriberID, channelID string) {
	t.Helper()
	Exec(t, d, `INSERT INTO subscriptions (id, subscriber_id, channel_id, created_at) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), subscriberID, channelID, Timestamp())
}

// Watch records userID watching videoID.
func Watch(t testing.TB, d db.Querier, userID, videoID string) {
	t.Helper()
	Exec(t, d, `INSERT INTO watch_history (user_id, video_id, watched_at) VALUES (?, ?, ?)`,
		userID, videoID, Timestamp())
}

// Count returns the result of a COUNT query.
func Count(t testing.TB, d db.Querier, query string, args ...interface{}) int {
	t.Helper()
	var n int
	if err := d.QueryRowContext(context.Background(), query, args...).Scan(&n); err != nil {
		t.Fatalf("count %q: %v", query, err)
	}
	return n
}
