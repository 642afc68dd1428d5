package playlists

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"vidtube/auth"
	"vidtube/db"
	"vidtube/httputil"
	"vidtube/views"

	"github.com/google/uuid"
)

// Handler holds dependencies for playlist endpoints.
type Handler struct {
	DB *db.CompatDB
}

type createRequest struct {
	Name        string `json:"name" validate:"notblank,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

type updateRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

func (h *Handler) respondDetail(w http.ResponseWriter, r *http.Request, status int, playlistID, message string) {
	viewerID, _ := auth.ExtractUserID(r)
	d, err := views.LoadPlaylistDetail(r.Context(), h.DB, playlistID, viewerID)
	if errors.Is(err, views.ErrNotFound) {
		httputil.Fail(w, http.StatusNotFound, "playlist not found")
		return
	}
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	httputil.Respond(w, status, d, message)
}

// HandleCreatePlaylist creates an empty playlist for the caller.
func (h *Handler) HandleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	userID, _ := auth.ExtractUserID(r)

	id := uuid.NewString()
	if _, err := h.DB.ExecContext(r.Context(),
		`INSERT INTO playlists (id, owner_id, name, description) VALUES (?, ?, ?, ?)`,
		id, userID, strings.TrimSpace(req.Name), strings.TrimSpace(req.Description)); err != nil {
		httputil.FailErr(w, r, fmt.Errorf("create playlist: %w", err))
		return
	}
	h.respondDetail(w, r, http.StatusCreated, id, "playlist created successfully")
}

// HandleUserPlaylists lists a user's playlists with totals and thumbnails.
func (h *Handler) HandleUserPlaylists(w http.ResponseWriter, r *http.Request) {
	ownerID, err := httputil.IDParam(r, "userId")
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	viewerID, _ := auth.ExtractUserID(r)
	lists, err := views.UserPlaylists(r.Context(), h.DB, ownerID, viewerID)
	if errors.Is(err, views.ErrNotFound) {
		httputil.Fail(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	httputil.Respond(w, http.StatusOK, lists, "playlists fetched successfully")
}

// HandleGetPlaylist returns a playlist with its videos.
func (h *Handler) HandleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	playlistID, err := httputil.IDParam(r, "playlistId")
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	h.respondDetail(w, r, http.StatusOK, playlistID, "playlist fetched successfully")
}

// ownedPlaylist resolves the playlistId URL param to a playlist owned by the
// authenticated user.
func (h *Handler) ownedPlaylist(r *http.Request) (string, error) {
	playlistID, err := httputil.IDParam(r, "playlistId")
	if err != nil {
		return "", err
	}
	var ownerID string
	err = h.DB.QueryRowContext(r.Context(), `SELECT owner_id FROM playlists WHERE id = ?`, playlistID).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", httputil.NewError(http.StatusNotFound, "playlist not found")
	}
	if err != nil {
		return "", fmt.Errorf("lookup playlist: %w", err)
	}
	if userID, _ := auth.ExtractUserID(r); userID != ownerID {
		return "", httputil.NewError(http.StatusForbidden, "you are not the owner of this playlist")
	}
	return playlistID, nil
}

// HandleAddVideo appends a video to the end of the caller's playlist.
func (h *Handler) HandleAddVideo(w http.ResponseWriter, r *http.Request) {
	playlistID, err := h.ownedPlaylist(r)
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	videoID, err := httputil.IDParam(r, "videoId")
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	ctx := r.Context()

	var found int
	err = h.DB.QueryRowContext(ctx, `SELECT 1 FROM videos WHERE id = ?`, videoID).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		httputil.Fail(w, http.StatusNotFound, "video not found")
		return
	}
	if err != nil {
		httputil.FailErr(w, r, fmt.Errorf("lookup video: %w", err))
		return
	}

	var added int64
	err = db.WithTx(ctx, h.DB, func(conn *db.CompatConn) error {
		res, err := conn.ExecContext(ctx, `
			INSERT INTO playlist_videos (playlist_id, video_id, position)
			VALUES (?, ?, COALESCE((SELECT MAX(position) + 1 FROM playlist_videos WHERE playlist_id = ?), 0))
			ON CONFLICT DO NOTHING
		`, playlistID, videoID, playlistID)
		if err != nil {
			return fmt.Errorf("add playlist video: %w", err)
		}
		if added, err = res.RowsAffected(); err != nil || added == 0 {
			return err
		}
		_, err = conn.ExecContext(ctx, `UPDATE playlists SET updated_at = `+conn.NowUTC()+` WHERE id = ?`, playlistID)
		return err
	})
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	if added == 0 {
		httputil.Fail(w, http.StatusConflict, "video already in playlist")
		return
	}
	h.respondDetail(w, r, http.StatusOK, playlistID, "video added to playlist successfully")
}

// HandleRemoveVideo takes a video out of the caller's playlist.
func (h *Handler) HandleRemoveVideo(w http.ResponseWriter, r *http.Request) {
	playlistID, err := h.ownedPlaylist(r)
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	videoID, err := httputil.IDParam(r, "videoId")
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	ctx := r.Context()

	var removed int64
	err = db.WithTx(ctx, h.DB, func(conn *db.CompatConn) error {
		res, err := conn.ExecContext(ctx,
			`DELETE FROM playlist_videos WHERE playlist_id = ? AND video_id = ?`, playlistID, videoID)
		if err != nil {
			return fmt.Errorf("remove playlist video: %w", err)
		}
		if removed, err = res.RowsAffected(); err != nil || removed == 0 {
			return err
		}
		_, err = conn.ExecContext(ctx, `UPDATE playlists SET updated_at = `+conn.NowUTC()+` WHERE id = ?`, playlistID)
		return err
	})
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	if removed == 0 {
		httputil.Fail(w, http.StatusNotFound, "video not in playlist")
		return
	}
	h.respondDetail(w, r, http.StatusOK, playlistID, "video removed from playlist successfully")
}

// HandleUpdatePlaylist changes the name and/or description.
func (h *Handler) HandleUpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	playlistID, err := h.ownedPlaylist(r)
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	var req updateRequest
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		httputil.FailErr(w, r, err)
		return
	}

	sets := []string{"updated_at = " + h.DB.NowUTC()}
	var args []interface{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			httputil.Fail(w, http.StatusBadRequest, "name cannot be blank")
			return
		}
		sets = append(sets, "name = ?")
		args = append(args, name)
	}
	if req.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, strings.TrimSpace(*req.Description))
	}
	if len(args) == 0 {
		httputil.Fail(w, http.StatusBadRequest, "name or description is required")
		return
	}
	args = append(args, playlistID)

	if _, err := h.DB.ExecContext(r.Context(),
		`UPDATE playlists SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...); err != nil {
		httputil.FailErr(w, r, fmt.Errorf("update playlist: %w", err))
		return
	}
	h.respondDetail(w, r, http.StatusOK, playlistID, "playlist updated successfully")
}

// HandleDeletePlaylist deletes the caller's playlist. Its videos are untouched.
func (h *Handler) HandleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	playlistID, err := h.ownedPlaylist(r)
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	if _, err := h.DB.ExecContext(r.Context(), `DELETE FROM playlists WHERE id = ?`, playlistID); err != nil {
		httputil.FailErr(w, r, fmt.Errorf("delete playlist: %w", err))
		return
	}
	httputil.Respond(w, http.StatusOK, map[string]interface{}{}, "playlist deleted successfully")
}
