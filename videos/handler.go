package videos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"vidtube/auth"
	"vidtube/db"
	"vidtube/httputil"
	"vidtube/logging"
	"vidtube/storage"
	"vidtube/views"

	"github.com/google/uuid"
)

// Handler holds dependencies for video endpoints.
type Handler struct {
	DB             *db.CompatDB
	Media          storage.MediaStore
	MaxUploadBytes int64
}

const videoColumns = `id, owner_id, video_file, thumbnail, title, description, duration, views, is_published, created_at, updated_at`

func loadVideo(ctx context.Context, q db.Querier, id string) (*views.Video, string, error) {
	var v views.Video
	var ownerID string
	err := q.QueryRowContext(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = ?`, id).Scan(
		&v.ID, &ownerID, &v.VideoFile, &v.Thumbnail, &v.Title, &v.Description,
		&v.Duration, &v.Views, &v.IsPublished, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", views.ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("load video: %w", err)
	}
	return &v, ownerID, nil
}

// ownedVideo loads the video named by the videoId URL param and checks that
// the authenticated user owns it.
func (h *Handler) ownedVideo(r *http.Request) (*views.Video, error) {
	videoID, err := httputil.IDParam(r, "videoId")
	if err != nil {
		return nil, err
	}
	v, ownerID, err := loadVideo(r.Context(), h.DB, videoID)
	if errors.Is(err, views.ErrNotFound) {
		return nil, httputil.NewError(http.StatusNotFound, "video not found")
	}
	if err != nil {
		return nil, err
	}
	if userID, _ := auth.ExtractUserID(r); userID != ownerID {
		return nil, httputil.NewError(http.StatusForbidden, "you are not the owner of this video")
	}
	return v, nil
}

// HandleListVideos returns a page of videos filtered by search text and owner.
func (h *Handler) HandleListVideos(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := httputil.ParsePage(r)
	viewerID, _ := auth.ExtractUserID(r)

	sortBy := strings.TrimSpace(q.Get("sort_by"))
	if sortBy == "" {
		sortBy = "created_at"
	}
	if !views.IsSortColumn(sortBy) {
		httputil.Fail(w, http.StatusBadRequest, "sort_by must be one of: created_at, views, duration, title")
		return
	}
	sortType := strings.ToLower(strings.TrimSpace(q.Get("sort_type")))
	if sortType != "" && sortType != "asc" && sortType != "desc" {
		httputil.Fail(w, http.StatusBadRequest, "sort_type must be asc or desc")
		return
	}

	filter := views.FeedFilter{
		Query:    q.Get("query"),
		SortBy:   sortBy,
		SortAsc:  sortType == "asc",
		ViewerID: viewerID,
		Limit:    page.Limit,
		Offset:   page.Offset(),
	}

	if raw := strings.TrimSpace(q.Get("user_id")); raw != "" {
		ownerID, err := uuid.Parse(raw)
		if err != nil {
			httputil.Fail(w, http.StatusBadRequest, "invalid user_id")
			return
		}
		ok, err := views.UserExists(r.Context(), h.DB, ownerID.String())
		if err != nil {
			httputil.FailErr(w, r, err)
			return
		}
		if !ok {
			httputil.Fail(w, http.StatusNotFound, "user not found")
			return
		}
		filter.OwnerID = ownerID.String()
	}

	docs, total, err := views.VideoFeed(r.Context(), h.DB, filter)
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	httputil.Respond(w, http.StatusOK, httputil.NewPaginated(docs, total, page), "videos fetched successfully")
}

type publishForm struct {
	Title       string `form:"title" validate:"notblank,max=200"`
	Description string `form:"description" validate:"notblank,max=5000"`
}

// HandlePublishVideo uploads a video file and thumbnail and creates the video.
func (h *Handler) HandlePublishVideo(w http.ResponseWriter, r *http.Request) {
	if err := httputil.ParseMultipart(w, r, h.MaxUploadBytes); err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	form := publishForm{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
	}
	if err := httputil.Validate(form); err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	var duration float64
	if raw := strings.TrimSpace(r.FormValue("duration")); raw != "" {
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil || d < 0 {
			httputil.Fail(w, http.StatusBadRequest, "duration must be a non-negative number of seconds")
			return
		}
		duration = d
	}

	ctx := r.Context()
	userID, _ := auth.ExtractUserID(r)

	var dup int
	err := h.DB.QueryRowContext(ctx,
		`SELECT 1 FROM videos WHERE owner_id = ? AND title = ? AND is_published = 1`, userID, form.Title).Scan(&dup)
	if err == nil {
		httputil.Fail(w, http.StatusBadRequest, "you already published a video with this title")
		return
	}
	if !errors.Is(err, sql.ErrNoRows) {
		httputil.FailErr(w, r, fmt.Errorf("check duplicate title: %w", err))
		return
	}

	videoFile := httputil.FormFile(r, "video_file")
	thumbFile := httputil.FormFile(r, "thumbnail")
	if videoFile == nil || thumbFile == nil {
		httputil.Fail(w, http.StatusBadRequest, "video_file and thumbnail are required")
		return
	}

	videoURL, err := storage.UploadFile(ctx, h.Media, storage.FolderVideos, videoFile)
	if err != nil {
		logging.FromContext(ctx).Warn("video upload failed", "err", err)
		httputil.Fail(w, http.StatusBadRequest, "failed to upload video file")
		return
	}
	thumbURL, err := storage.UploadImage(ctx, h.Media, storage.FolderThumbnails, thumbFile, storage.ThumbnailMaxW, storage.ThumbnailMaxH)
	if err != nil {
		storage.Discard(ctx, h.Media, videoURL)
		logging.FromContext(ctx).Warn("thumbnail upload failed", "err", err)
		httputil.Fail(w, http.StatusBadRequest, "failed to upload thumbnail")
		return
	}

	id := uuid.NewString()
	_, err = h.DB.ExecContext(ctx,
		`INSERT INTO videos (id, owner_id, video_file, thumbnail, title, description, duration) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, userID, videoURL, thumbURL, form.Title, form.Description, duration)
	if err != nil {
		storage.Discard(ctx, h.Media, videoURL, thumbURL)
		httputil.FailErr(w, r, fmt.Errorf("create video: %w", err))
		return
	}

	v, _, err := loadVideo(ctx, h.DB, id)
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	httputil.Respond(w, http.StatusCreated, v, "video published successfully")
}

// HandleGetVideo returns the video page. Authenticated viewers get the video
// added to their watch history and count as a view.
func (h *Handler) HandleGetVideo(w http.ResponseWriter, r *http.Request) {
	videoID, err := httputil.IDParam(r, "videoId")
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	ctx := r.Context()
	viewerID, _ := auth.ExtractUserID(r)

	detail, ownerID, err := views.LoadVideoDetail(ctx, h.DB, videoID, viewerID)
	if errors.Is(err, views.ErrNotFound) || (err == nil && !detail.IsPublished && viewerID != ownerID) {
		httputil.Fail(w, http.StatusNotFound, "video not found")
		return
	}
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}

	if viewerID != "" {
		if err := h.recordView(ctx, viewerID, videoID); err != nil {
			httputil.FailErr(w, r, err)
			return
		}
		detail.Views++
	}
	httputil.Respond(w, http.StatusOK, detail, "video fetched successfully")
}

func (h *Handler) recordView(ctx context.Context, userID, videoID string) error {
	return db.WithTx(ctx, h.DB, func(conn *db.CompatConn) error {
		if _, err := conn.ExecContext(ctx,
			`UPDATE videos SET views = views + 1 WHERE id = ?`, videoID); err != nil {
			return fmt.Errorf("increment views: %w", err)
		}
		if _, err := conn.ExecContext(ctx,
			`INSERT INTO watch_history (user_id, video_id) VALUES (?, ?)
			ON CONFLICT (user_id, video_id) DO UPDATE SET watched_at = `+conn.NowUTC(),
			userID, videoID); err != nil {
			return fmt.Errorf("record watch history: %w", err)
		}
		return nil
	})
}

// HandleUpdateVideo changes title and/or description and optionally replaces
// the thumbnail.
func (h *Handler) HandleUpdateVideo(w http.ResponseWriter, r *http.Request) {
	v, err := h.ownedVideo(r)
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	if err := httputil.ParseMultipart(w, r, h.MaxUploadBytes); err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	thumbFile := httputil.FormFile(r, "thumbnail")
	if title == "" && description == "" {
		httputil.Fail(w, http.StatusBadRequest, "title or description is required")
		return
	}
	if len(title) > 200 || len(description) > 5000 {
		httputil.Fail(w, http.StatusBadRequest, "title or description is too long")
		return
	}

	ctx := r.Context()
	sets := []string{"updated_at = " + h.DB.NowUTC()}
	var args []interface{}
	if title != "" {
		sets = append(sets, "title = ?")
		args = append(args, title)
	}
	if description != "" {
		sets = append(sets, "description = ?")
		args = append(args, description)
	}
	var newThumb string
	if thumbFile != nil {
		newThumb, err = storage.UploadImage(ctx, h.Media, storage.FolderThumbnails, thumbFile, storage.ThumbnailMaxW, storage.ThumbnailMaxH)
		if err != nil {
			logging.FromContext(ctx).Warn("thumbnail upload failed", "err", err)
			httputil.Fail(w, http.StatusBadRequest, "failed to upload thumbnail")
			return
		}
		sets = append(sets, "thumbnail = ?")
		args = append(args, newThumb)
	}
	args = append(args, v.ID)

	if _, err := h.DB.ExecContext(ctx,
		`UPDATE videos SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...); err != nil {
		storage.Discard(ctx, h.Media, newThumb)
		httputil.FailErr(w, r, fmt.Errorf("update video: %w", err))
		return
	}
	if newThumb != "" {
		storage.Discard(ctx, h.Media, v.Thumbnail)
	}

	updated, _, err := loadVideo(ctx, h.DB, v.ID)
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	httputil.Respond(w, http.StatusOK, updated, "video updated successfully")
}

// HandleDeleteVideo removes the media objects, then the video with its
// comments, likes, playlist entries and history rows.
func (h *Handler) HandleDeleteVideo(w http.ResponseWriter, r *http.Request) {
	v, err := h.ownedVideo(r)
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	ctx := r.Context()

	for _, url := range []string{v.VideoFile, v.Thumbnail} {
		if err := h.Media.Delete(ctx, url); err != nil {
			httputil.FailErr(w, r, fmt.Errorf("delete media: %w", err))
			return
		}
	}

	err = db.WithTx(ctx, h.DB, func(conn *db.CompatConn) error {
		if _, err := conn.ExecContext(ctx, `DELETE FROM likes
			WHERE (target_type = 'video' AND target_id = ?)
			   OR (target_type = 'comment' AND target_id IN (SELECT id FROM comments WHERE video_id = ?))`,
			v.ID, v.ID); err != nil {
			return fmt.Errorf("delete likes: %w", err)
		}
		if _, err := conn.ExecContext(ctx, `DELETE FROM videos WHERE id = ?`, v.ID); err != nil {
			return fmt.Errorf("delete video: %w", err)
		}
		return nil
	})
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	httputil.Respond(w, http.StatusOK, map[string]interface{}{}, "video deleted successfully")
}

// HandleTogglePublish flips the published flag.
func (h *Handler) HandleTogglePublish(w http.ResponseWriter, r *http.Request) {
	v, err := h.ownedVideo(r)
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	published := !v.IsPublished
	flag := 0
	if published {
		flag = 1
	}
	if _, err := h.DB.ExecContext(r.Context(),
		`UPDATE videos SET is_published = ?, updated_at = `+h.DB.NowUTC()+` WHERE id = ?`, flag, v.ID); err != nil {
		httputil.FailErr(w, r, fmt.Errorf("toggle publish: %w", err))
		return
	}
	httputil.Respond(w, http.StatusOK, map[string]bool{"is_published": published}, "publish status toggled successfully")
}
