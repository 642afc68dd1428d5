// Package views builds the denormalized read models served by the API. Each
// view composes one SQL statement (plus a count or a small follow-up query)
// and leaves joins, sorting and paging to the database.
package views

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"vidtube/db"
	"vidtube/telemetry"

	"go.opentelemetry.io/otel/attribute"
)

// ErrNotFound is returned when the root record of a view does not exist.
var ErrNotFound = errors.New("not found")

const tracerName = "vidtube/views"

func startSpan(ctx context.Context, view string, attrs ...attribute.KeyValue) (context.Context, func(*error)) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "views."+view, attrs...)
	return ctx, func(errp *error) {
		if errp != nil && !errors.Is(*errp, ErrNotFound) {
			telemetry.RecordError(span, *errp)
		}
		span.End()
	}
}

func exists(ctx context.Context, q db.Querier, table, id string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup %s: %w", table, err)
	}
	return true, nil
}

// UserExists reports whether a user with id exists.
func UserExists(ctx context.Context, q db.Querier, id string) (bool, error) {
	return exists(ctx, q, "users", id)
}

func requireUser(ctx context.Context, q db.Querier, id string) error {
	ok, err := exists(ctx, q, "users", id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// LoadChannelProfile loads the channel page for username as seen by viewerID,
// which may be empty.
func LoadChannelProfile(ctx context.Context, q db.Querier, username, viewerID string) (_ *ChannelProfile, err error) {
	ctx, finish := startSpan(ctx, "ChannelProfile", attribute.String("username", username))
	defer finish(&err)

	query, args := newSelect("users u").
		Columns("u.id", "u.username", "u.full_name", "u.email", "u.avatar", "u.cover_image").
		Column(subscribersCount("u.id")).
		Column(subscribedToCount("u.id")).
		Column(viewerSubscribed("u.id"), viewerID).
		Column("u.created_at").
		Where("u.username = ?", strings.ToLower(strings.TrimSpace(username))).
		SQL()

	var p ChannelProfile
	err = q.QueryRowContext(ctx, query, args...).Scan(
		&p.ID, &p.Username, &p.FullName, &p.Email, &p.Avatar, &p.CoverImage,
		&p.SubscribersCount, &p.ChannelsSubscribedToCount, &p.IsSubscribed, &p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("channel profile: %w", err)
	}
	return &p, nil
}

// WatchHistory lists the videos userID watched, most recent first.
func WatchHistory(ctx context.Context, q db.Querier, userID string) (_ []HistoryEntry, err error) {
	ctx, finish := startSpan(ctx, "WatchHistory")
	defer finish(&err)

	query, args := newSelect("watch_history wh").
		Columns(videoColumns("v")...).
		Columns(ownerColumns("u")...).
		Column("wh.watched_at").
		Join("JOIN videos v ON v.id = wh.video_id").
		Join("JOIN users u ON u.id = v.owner_id").
		Where("wh.user_id = ?", userID).
		Where(visibleTo("v"), userID).
		OrderBy("wh.watched_at DESC", "v.id").
		SQL()

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("watch history: %w", err)
	}
	defer rows.Close()

	out := make([]HistoryEntry, 0)
	for rows.Next() {
		var e HistoryEntry
		dest := append(e.Video.scanDest(), e.Owner.scanDest()...)
		if err := rows.Scan(append(dest, &e.WatchedAt)...); err != nil {
			return nil, fmt.Errorf("scan watch history: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Feed sort columns accepted by VideoFeed.
var feedSortColumns = map[string]string{
	"created_at": "v.created_at",
	"views":      "v.views",
	"duration":   "v.duration",
	"title":      "v.title",
}

// FeedFilter selects and orders the videos returned by VideoFeed.
type FeedFilter struct {
	Query    string
	SortBy   string
	SortAsc  bool
	OwnerID  string
	ViewerID string
	Limit    int
	Offset   int
}

// IsSortColumn reports whether VideoFeed can sort by name.
func IsSortColumn(name string) bool {
	_, ok := feedSortColumns[name]
	return ok
}

// likePattern builds a case-insensitive substring pattern with LIKE
// wildcards in term escaped.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(term)) + "%"
}

// VideoFeed returns one page of published videos with owners, and the total
// number of matches. Viewers listing their own channel also see unpublished
// videos.
func VideoFeed(ctx context.Context, q db.Querier, f FeedFilter) (_ []VideoCard, total int, err error) {
	ctx, finish := startSpan(ctx, "VideoFeed",
		attribute.String("sort_by", f.SortBy), attribute.Bool("search", f.Query != ""))
	defer finish(&err)

	sel := newSelect("videos v").
		Columns(videoColumns("v")...).
		Columns(ownerColumns("u")...).
		Join("JOIN users u ON u.id = v.owner_id")

	if f.OwnerID == "" || f.OwnerID != f.ViewerID {
		sel.Where("v.is_published = 1")
	}
	if term := strings.TrimSpace(f.Query); term != "" {
		pattern := likePattern(term)
		sel.Where(`(LOWER(v.title) LIKE ? ESCAPE '\' OR LOWER(v.description) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if f.OwnerID != "" {
		sel.Where("v.owner_id = ?", f.OwnerID)
	}

	col, ok := feedSortColumns[f.SortBy]
	if !ok {
		col = feedSortColumns["created_at"]
	}
	dir := "DESC"
	if f.SortAsc {
		dir = "ASC"
	}
	sel.OrderBy(col+" "+dir, "v.id "+dir).Page(f.Limit, f.Offset)

	countSQL, countArgs := sel.CountSQL()
	if err := q.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count feed: %w", err)
	}

	query, args := sel.SQL()
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("video feed: %w", err)
	}
	defer rows.Close()

	out := make([]VideoCard, 0)
	for rows.Next() {
		var c VideoCard
		if err := rows.Scan(append(c.Video.scanDest(), c.Owner.scanDest()...)...); err != nil {
			return nil, 0, fmt.Errorf("scan feed: %w", err)
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// LoadVideoDetail loads a video with like stats and its owner's channel stats.
// Visibility of unpublished videos is left to the caller.
func LoadVideoDetail(ctx context.Context, q db.Querier, videoID, viewerID string) (_ *VideoDetail, ownerID string, err error) {
	ctx, finish := startSpan(ctx, "VideoDetail", attribute.String("video_id", videoID))
	defer finish(&err)

	query, args := newSelect("videos v").
		Columns(videoColumns("v")...).
		Column(likesCount(TargetVideo, "v.id")).
		Column(viewerLiked(TargetVideo, "v.id"), viewerID).
		Columns(ownerColumns("u")...).
		Column(subscribersCount("u.id")).
		Column(viewerSubscribed("u.id"), viewerID).
		Join("JOIN users u ON u.id = v.owner_id").
		Where("v.id = ?", videoID).
		SQL()

	var d VideoDetail
	dest := d.Video.scanDest()
	dest = append(dest, &d.LikesCount, &d.IsLiked)
	dest = append(dest, d.Owner.Owner.scanDest()...)
	dest = append(dest, &d.Owner.SubscribersCount, &d.Owner.IsSubscribed)
	err = q.QueryRowContext(ctx, query, args...).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("video detail: %w", err)
	}
	return &d, d.Owner.ID, nil
}

func commentSelect(viewerID string) *selectQuery {
	return newSelect("comments c").
		Columns("c.id", "c.video_id", "c.content", "c.created_at", "c.updated_at").
		Columns(ownerColumns("u")...).
		Column(likesCount(TargetComment, "c.id")).
		Column(viewerLiked(TargetComment, "c.id"), viewerID).
		Join("JOIN users u ON u.id = c.owner_id")
}

func (c *Comment) scanDest() []interface{} {
	dest := []interface{}{&c.ID, &c.VideoID, &c.Content, &c.CreatedAt, &c.UpdatedAt}
	dest = append(dest, c.Owner.scanDest()...)
	return append(dest, &c.LikesCount, &c.IsLiked)
}

// CommentByID loads a single comment with its owner and like stats.
func CommentByID(ctx context.Context, q db.Querier, commentID, viewerID string) (_ *Comment, err error) {
	ctx, finish := startSpan(ctx, "CommentByID", attribute.String("comment_id", commentID))
	defer finish(&err)

	query, args := commentSelect(viewerID).Where("c.id = ?", commentID).SQL()
	var c Comment
	err = q.QueryRowContext(ctx, query, args...).Scan(c.scanDest()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("comment: %w", err)
	}
	return &c, nil
}

// VideoComments returns one page of a video's comments, newest first.
func VideoComments(ctx context.Context, q db.Querier, videoID, viewerID string, limit, offset int) (_ []Comment, total int, err error) {
	ctx, finish := startSpan(ctx, "VideoComments", attribute.String("video_id", videoID))
	defer finish(&err)

	ok, err := exists(ctx, q, "videos", videoID)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return nil, 0, ErrNotFound
	}

	sel := commentSelect(viewerID).
		Where("c.video_id = ?", videoID).
		OrderBy("c.created_at DESC", "c.id DESC").
		Page(limit, offset)

	countSQL, countArgs := sel.CountSQL()
	if err := q.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	query, args := sel.SQL()
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("video comments: %w", err)
	}
	defer rows.Close()

	out := make([]Comment, 0)
	for rows.Next() {
		var c Comment
		if err := rows.Scan(c.scanDest()...); err != nil {
			return nil, 0, fmt.Errorf("scan comment: %w", err)
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// LikedVideos lists videos userID liked that are visible to them, newest like first.
func LikedVideos(ctx context.Context, q db.Querier, userID string) (_ []LikedVideo, err error) {
	ctx, finish := startSpan(ctx, "LikedVideos")
	defer finish(&err)

	query, args := newSelect("likes l").
		Column("l.created_at").
		Columns(videoColumns("v")...).
		Columns(ownerColumns("u")...).
		Join("JOIN videos v ON v.id = l.target_id").
		Join("JOIN users u ON u.id = v.owner_id").
		Where("l.target_type = '"+TargetVideo+"'").
		Where("l.liked_by = ?", userID).
		Where(visibleTo("v"), userID).
		OrderBy("l.created_at DESC", "l.id").
		SQL()

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("liked videos: %w", err)
	}
	defer rows.Close()

	out := make([]LikedVideo, 0)
	for rows.Next() {
		var lv LikedVideo
		dest := []interface{}{&lv.LikedAt}
		dest = append(dest, lv.Video.Video.scanDest()...)
		if err := rows.Scan(append(dest, lv.Video.Owner.scanDest()...)...); err != nil {
			return nil, fmt.Errorf("scan liked video: %w", err)
		}
		out = append(out, lv)
	}
	return out, rows.Err()
}

func tweetSelect(viewerID string) *selectQuery {
	return newSelect("tweets t").
		Columns("t.id", "t.content", "t.created_at", "t.updated_at").
		Columns(ownerColumns("u")...).
		Column(likesCount(TargetTweet, "t.id")).
		Column(viewerLiked(TargetTweet, "t.id"), viewerID).
		Join("JOIN users u ON u.id = t.owner_id")
}

func (t *Tweet) scanDest() []interface{} {
	dest := []interface{}{&t.ID, &t.Content, &t.CreatedAt, &t.UpdatedAt}
	dest = append(dest, t.Owner.scanDest()...)
	return append(dest, &t.LikesCount, &t.IsLiked)
}

// TweetByID loads a single tweet with its owner and like stats.
func TweetByID(ctx context.Context, q db.Querier, tweetID, viewerID string) (_ *Tweet, err error) {
	ctx, finish := startSpan(ctx, "TweetByID", attribute.String("tweet_id", tweetID))
	defer finish(&err)

	query, args := tweetSelect(viewerID).Where("t.id = ?", tweetID).SQL()
	var t Tweet
	err = q.QueryRowContext(ctx, query, args...).Scan(t.scanDest()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("tweet: %w", err)
	}
	return &t, nil
}

// LikedTweets lists tweets userID liked, newest like first.
func LikedTweets(ctx context.Context, q db.Querier, userID string) (_ []LikedTweet, err error) {
	ctx, finish := startSpan(ctx, "LikedTweets")
	defer finish(&err)

	query, args := tweetSelect(userID).
		Column("l.created_at").
		Join("JOIN likes l ON l.target_id = t.id AND l.target_type = '"+TargetTweet+"'").
		Where("l.liked_by = ?", userID).
		OrderBy("l.created_at DESC", "l.id").
		SQL()

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("liked tweets: %w", err)
	}
	defer rows.Close()

	out := make([]LikedTweet, 0)
	for rows.Next() {
		var lt LikedTweet
		if err := rows.Scan(append(lt.Tweet.scanDest(), &lt.LikedAt)...); err != nil {
			return nil, fmt.Errorf("scan liked tweet: %w", err)
		}
		out = append(out, lt)
	}
	return out, rows.Err()
}

// UserTweets lists the tweets of ownerID, newest first.
func UserTweets(ctx context.Context, q db.Querier, ownerID, viewerID string) (_ []Tweet, err error) {
	ctx, finish := startSpan(ctx, "UserTweets", attribute.String("owner_id", ownerID))
	defer finish(&err)

	if err := requireUser(ctx, q, ownerID); err != nil {
		return nil, err
	}

	query, args := tweetSelect(viewerID).
		Where("t.owner_id = ?", ownerID).
		OrderBy("t.created_at DESC", "t.id DESC").
		SQL()

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("user tweets: %w", err)
	}
	defer rows.Close()

	out := make([]Tweet, 0)
	for rows.Next() {
		var t Tweet
		if err := rows.Scan(t.scanDest()...); err != nil {
			return nil, fmt.Errorf("scan tweet: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// maxPlaylistThumbnails is how many recent video thumbnails a playlist
// summary carries.
const maxPlaylistThumbnails = 4

// UserPlaylists lists the playlists of ownerID with totals and the
// thumbnails of the most recently added videos. Unpublished videos only
// count when viewerID owns them.
func UserPlaylists(ctx context.Context, q db.Querier, ownerID, viewerID string) (_ []PlaylistSummary, err error) {
	ctx, finish := startSpan(ctx, "UserPlaylists", attribute.String("owner_id", ownerID))
	defer finish(&err)

	if err := requireUser(ctx, q, ownerID); err != nil {
		return nil, err
	}

	query, args := newSelect("playlists p").
		Columns("p.id", "p.name", "p.description").
		Column("COUNT(v.id)").
		Column("COALESCE(SUM(v.views), 0)").
		Columns("p.created_at", "p.updated_at").
		Join("LEFT JOIN playlist_videos pv ON pv.playlist_id = p.id").
		Join("LEFT JOIN videos v ON v.id = pv.video_id AND "+visibleTo("v"), viewerID).
		Where("p.owner_id = ?", ownerID).
		GroupBy("p.id, p.name, p.description, p.created_at, p.updated_at").
		OrderBy("p.updated_at DESC", "p.id").
		SQL()

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("user playlists: %w", err)
	}
	out := make([]PlaylistSummary, 0)
	index := make(map[string]int)
	for rows.Next() {
		var p PlaylistSummary
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.TotalVideos, &p.TotalViews, &p.CreatedAt, &p.UpdatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		p.Thumbnails = []string{}
		index[p.ID] = len(out)
		out = append(out, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("user playlists: %w", err)
	}
	if len(out) == 0 {
		return out, nil
	}

	thumbs, args := newSelect(`(SELECT pv.playlist_id, v.thumbnail,
			ROW_NUMBER() OVER (PARTITION BY pv.playlist_id ORDER BY pv.added_at DESC, pv.position DESC) AS rn
		FROM playlist_videos pv
		JOIN videos v ON v.id = pv.video_id AND `+visibleTo("v")+`
		JOIN playlists p ON p.id = pv.playlist_id
		WHERE p.owner_id = ?) ranked`).
		Columns("ranked.playlist_id", "ranked.thumbnail").
		Where(fmt.Sprintf("ranked.rn <= %d", maxPlaylistThumbnails)).
		OrderBy("ranked.playlist_id", "ranked.rn").
		SQL()
	args = append([]interface{}{viewerID, ownerID}, args...)

	trows, err := q.QueryContext(ctx, thumbs, args...)
	if err != nil {
		return nil, fmt.Errorf("playlist thumbnails: %w", err)
	}
	defer trows.Close()
	for trows.Next() {
		var playlistID, thumb string
		if err := trows.Scan(&playlistID, &thumb); err != nil {
			return nil, fmt.Errorf("scan thumbnail: %w", err)
		}
		if i, ok := index[playlistID]; ok {
			out[i].Thumbnails = append(out[i].Thumbnails, thumb)
		}
	}
	return out, trows.Err()
}

// LoadPlaylistDetail loads a playlist with its owner and videos in position
// order. Unpublished videos are only included for their owner.
func LoadPlaylistDetail(ctx context.Context, q db.Querier, playlistID, viewerID string) (_ *PlaylistDetail, err error) {
	ctx, finish := startSpan(ctx, "PlaylistDetail", attribute.String("playlist_id", playlistID))
	defer finish(&err)

	query, args := newSelect("playlists p").
		Columns("p.id", "p.name", "p.description", "p.created_at", "p.updated_at").
		Columns(ownerColumns("u")...).
		Join("JOIN users u ON u.id = p.owner_id").
		Where("p.id = ?", playlistID).
		SQL()

	var d PlaylistDetail
	dest := []interface{}{&d.ID, &d.Name, &d.Description, &d.CreatedAt, &d.UpdatedAt}
	err = q.QueryRowContext(ctx, query, args...).Scan(append(dest, d.Owner.scanDest()...)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("playlist detail: %w", err)
	}

	sel := newSelect("playlist_videos pv").
		Columns(videoColumns("v")...).
		Columns(ownerColumns("u")...).
		Join("JOIN videos v ON v.id = pv.video_id").
		Join("JOIN users u ON u.id = v.owner_id").
		Where("pv.playlist_id = ?", playlistID).
		Where(visibleTo("v"), viewerID).
		OrderBy("pv.position", "pv.added_at")
	query, args = sel.SQL()

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("playlist videos: %w", err)
	}
	defer rows.Close()

	d.Videos = make([]VideoCard, 0)
	for rows.Next() {
		var c VideoCard
		if err := rows.Scan(append(c.Video.scanDest(), c.Owner.scanDest()...)...); err != nil {
			return nil, fmt.Errorf("scan playlist video: %w", err)
		}
		d.TotalViews += c.Views
		d.Videos = append(d.Videos, c)
	}
	d.TotalVideos = len(d.Videos)
	return &d, rows.Err()
}

// ChannelSubscribers lists the subscribers of channelID, newest first.
func ChannelSubscribers(ctx context.Context, q db.Querier, channelID string) (_ []Subscriber, err error) {
	ctx, finish := startSpan(ctx, "ChannelSubscribers", attribute.String("channel_id", channelID))
	defer finish(&err)

	if err := requireUser(ctx, q, channelID); err != nil {
		return nil, err
	}

	query, args := newSelect("subscriptions s").
		Columns(ownerColumns("u")...).
		Column("s.created_at").
		Join("JOIN users u ON u.id = s.subscriber_id").
		Where("s.channel_id = ?", channelID).
		OrderBy("s.created_at DESC", "s.id").
		SQL()

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("channel subscribers: %w", err)
	}
	defer rows.Close()

	out := make([]Subscriber, 0)
	for rows.Next() {
		var s Subscriber
		if err := rows.Scan(append(s.Owner.scanDest(), &s.SubscribedAt)...); err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SubscribedChannels lists the channels subscriberID subscribes to, each
// with its newest published video.
func SubscribedChannels(ctx context.Context, q db.Querier, subscriberID string) (_ []SubscribedChannel, err error) {
	ctx, finish := startSpan(ctx, "SubscribedChannels", attribute.String("subscriber_id", subscriberID))
	defer finish(&err)

	if err := requireUser(ctx, q, subscriberID); err != nil {
		return nil, err
	}

	query, args := newSelect("subscriptions s").
		Columns(ownerColumns("u")...).
		Column(subscribersCount("u.id")).
		Column("s.created_at").
		Columns("lv.id", "lv.title", "lv.thumbnail", "lv.duration", "lv.views", "lv.created_at").
		Join("JOIN users u ON u.id = s.channel_id").
		Join(`LEFT JOIN videos lv ON lv.id = (
			SELECT v.id FROM videos v
			WHERE v.owner_id = u.id AND v.is_published = 1
			ORDER BY v.created_at DESC, v.id DESC LIMIT 1)`).
		Where("s.subscriber_id = ?", subscriberID).
		OrderBy("s.created_at DESC", "s.id").
		SQL()

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("subscribed channels: %w", err)
	}
	defer rows.Close()

	out := make([]SubscribedChannel, 0)
	for rows.Next() {
		var c SubscribedChannel
		var vid, title, thumb, created sql.NullString
		var duration sql.NullFloat64
		var views sql.NullInt64
		dest := append(c.Owner.scanDest(), &c.SubscribersCount, &c.SubscribedAt)
		if err := rows.Scan(append(dest, &vid, &title, &thumb, &duration, &views, &created)...); err != nil {
			return nil, fmt.Errorf("scan subscribed channel: %w", err)
		}
		if vid.Valid {
			c.LatestVideo = &LatestVideo{
				ID:        vid.String,
				Title:     title.String,
				Thumbnail: thumb.String,
				Duration:  duration.Float64,
				Views:     views.Int64,
				CreatedAt: created.String,
			}
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
