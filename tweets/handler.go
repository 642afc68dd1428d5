package tweets

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

// MaxContentLength is the longest tweet accepted, in characters.
const MaxContentLength = 280

// Handler holds dependencies for tweet endpoints.
type Handler struct {
	DB *db.CompatDB
}

type tweetRequest struct {
	Content string `json:"content" validate:"notblank,max=280"`
}

func decodeTweet(r *http.Request) (string, error) {
	var req tweetRequest
	if err := httputil.DecodeAndValidate(r, &req); err != nil {
		return "", err
	}
	return strings.TrimSpace(req.Content), nil
}

// HandleCreateTweet posts a tweet as the authenticated user.
func (h *Handler) HandleCreateTweet(w http.ResponseWriter, r *http.Request) {
	content, err := decodeTweet(r)
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	ctx := r.Context()
	userID, _ := auth.ExtractUserID(r)

	id := uuid.NewString()
	if _, err := h.DB.ExecContext(ctx,
		`INSERT INTO tweets (id, owner_id, content) VALUES (?, ?, ?)`, id, userID, content); err != nil {
		httputil.FailErr(w, r, fmt.Errorf("create tweet: %w", err))
		return
	}
	t, err := views.TweetByID(ctx, h.DB, id, userID)
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	httputil.Respond(w, http.StatusCreated, t, "tweet created successfully")
}

// HandleUserTweets lists a user's tweets.
func (h *Handler) HandleUserTweets(w http.ResponseWriter, r *http.Request) {
	ownerID, err := httputil.IDParam(r, "userId")
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	viewerID, _ := auth.ExtractUserID(r)
	tweets, err := views.UserTweets(r.Context(), h.DB, ownerID, viewerID)
	if errors.Is(err, views.ErrNotFound) {
		httputil.Fail(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	httputil.Respond(w, http.StatusOK, tweets, "tweets fetched successfully")
}

func (h *Handler) ownedTweet(r *http.Request) (string, error) {
	tweetID, err := httputil.IDParam(r, "tweetId")
	if err != nil {
		return "", err
	}
	var ownerID string
	err = h.DB.QueryRowContext(r.Context(), `SELECT owner_id FROM tweets WHERE id = ?`, tweetID).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", httputil.NewError(http.StatusNotFound, "tweet not found")
	}
	if err != nil {
		return "", fmt.Errorf("lookup tweet: %w", err)
	}
	if userID, _ := auth.ExtractUserID(r); userID != ownerID {
		return "", httputil.NewError(http.StatusForbidden, "you are not the owner of this tweet")
	}
	return tweetID, nil
}

// HandleUpdateTweet replaces the content of the caller's tweet.
func (h *Handler) HandleUpdateTweet(w http.ResponseWriter, r *http.Request) {
	tweetID, err := h.ownedTweet(r)
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	content, err := decodeTweet(r)
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	ctx := r.Context()
	if _, err := h.DB.ExecContext(ctx,
		`UPDATE tweets SET content = ?, updated_at = `+h.DB.NowUTC()+` WHERE id = ?`, content, tweetID); err != nil {
		httputil.FailErr(w, r, fmt.Errorf("update tweet: %w", err))
		return
	}
	userID, _ := auth.ExtractUserID(r)
	t, err := views.TweetByID(ctx, h.DB, tweetID, userID)
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	httputil.Respond(w, http.StatusOK, t, "tweet updated successfully")
}

// HandleDeleteTweet removes the caller's tweet and its likes.
func (h *Handler) HandleDeleteTweet(w http.ResponseWriter, r *http.Request) {
	tweetID, err := h.ownedTweet(r)
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	ctx := r.Context()
	err = db.WithTx(ctx, h.DB, func(conn *db.CompatConn) error {
		if _, err := conn.ExecContext(ctx,
			`DELETE FROM likes WHERE target_type = ? AND target_id = ?`, views.TargetTweet, tweetID); err != nil {
			return fmt.Errorf("delete tweet likes: %w", err)
		}
		if _, err := conn.ExecContext(ctx, `DELETE FROM tweets WHERE id = ?`, tweetID); err != nil {
			return fmt.Errorf("delete tweet: %w", err)
		}
		return nil
	})
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	httputil.Respond(w, http.StatusOK, map[string]interface{}{}, "tweet deleted successfully")
}
