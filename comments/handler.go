package comments

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

// Handler holds dependencies for comment endpoints.
type Handler struct {
	DB *db.CompatDB
}

type contentRequest struct {
	Content string `json:"content" validate:"notblank,max=2000"`
}

func decodeContent(r *http.Request) (string, error) {
	var req contentRequest
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		return "", err
	}
	return strings.TrimSpace(req.Content), nil
}

// HandleListComments returns a page of a video's comments.
func (h *Handler) HandleListComments(w http.ResponseWriter, r *http.Request) {
	videoID, err := httputil.IDParam(r, "videoId")
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	page := httputil.ParsePage(r)
	viewerID, _ := auth.ExtractUserID(r)

	docs, total, err := views.VideoComments(r.Context(), h.DB, videoID, viewerID, page.Limit, page.Offset())
	if errors.Is(err, views.ErrNotFound) {
		httputil.Fail(w, http.StatusNotFound, "video not found")
		return
	}
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	httputil.Respond(w, http.StatusOK, httputil.NewPaginated(docs, total, page), "comments fetched successfully")
}

// HandleAddComment comments on a video as the authenticated user.
func (h *Handler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	videoID, err := httputil.IDParam(r, "videoId")
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	content, err := decodeContent(r)
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	ctx := r.Context()
	userID, _ := auth.ExtractUserID(r)

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

	id := uuid.NewString()
	if _, err := h.DB.ExecContext(ctx,
		`INSERT INTO comments (id, video_id, owner_id, content) VALUES (?, ?, ?, ?)`,
		id, videoID, userID, content); err != nil {
		httputil.FailErr(w, r, fmt.Errorf("create comment: %w", err))
		return
	}

	c, err := views.CommentByID(ctx, h.DB, id, userID)
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	httputil.Respond(w, http.StatusCreated, c, "comment added successfully")
}

// ownedComment resolves the commentId URL param to a comment owned by the
// authenticated user.
func (h *Handler) ownedComment(r *http.Request) (string, error) {
	commentID, err := httputil.IDParam(r, "commentId")
	if err != nil {
		return "", err
	}
	var ownerID string
	err = h.DB.QueryRowContext(r.Context(), `SELECT owner_id FROM comments WHERE id = ?`, commentID).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", httputil.NewError(http.StatusNotFound, "comment not found")
	}
	if err != nil {
		return "", fmt.Errorf("lookup comment: %w", err)
	}
	if userID, _ := auth.ExtractUserID(r); userID != ownerID {
		return "", httputil.NewError(http.StatusForbidden, "you are not the owner of this comment")
	}
	return commentID, nil
}

// HandleUpdateComment replaces the content of the caller's comment.
func (h *Handler) HandleUpdateComment(w http.ResponseWriter, r *http.Request) {
	commentID, err := h.ownedComment(r)
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	content, err := decodeContent(r)
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	ctx := r.Context()
	if _, err := h.DB.ExecContext(ctx,
		`UPDATE comments SET content = ?, updated_at = `+h.DB.NowUTC()+` WHERE id = ?`,
		content, commentID); err != nil {
		httputil.FailErr(w, r, fmt.Errorf("update comment: %w", err))
		return
	}

	userID, _ := auth.ExtractUserID(r)
	c, err := views.CommentByID(ctx, h.DB, commentID, userID)
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	httputil.Respond(w, http.StatusOK, c, "comment updated successfully")
}

// HandleDeleteComment removes the caller's comment and its likes.
func (h *Handler) HandleDeleteComment(w http.ResponseWriter, r *http.Request) {
	commentID, err := h.ownedComment(r)
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	ctx := r.Context()
	err = db.WithTx(ctx, h.DB, func(conn *db.CompatConn) error {
		if _, err := conn.ExecContext(ctx,
			`DELETE FROM likes WHERE target_type = ? AND target_id = ?`, views.TargetComment, commentID); err != nil {
			return fmt.Errorf("delete comment likes: %w", err)
		}
		if _, err := conn.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, commentID); err != nil {
			return fmt.Errorf("delete comment: %w", err)
		}
		return nil
	})
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	httputil.Respond(w, http.StatusOK, map[string]interface{}{}, "comment deleted successfully")
}
