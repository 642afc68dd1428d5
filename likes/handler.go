package likes

import (
	"errors"
	"net/http"

	"vidtube/auth"
	"vidtube/db"
	"vidtube/httputil"
	"vidtube/relation"
	"vidtube/views"
)

// Handler holds dependencies for like endpoints.
type Handler struct {
	DB *db.CompatDB
}

type likeTarget struct {
	kind     relation.Kind
	param    string
	notFound string
}

var (
	videoTarget   = likeTarget{relation.VideoLike, "videoId", "video not found"}
	commentTarget = likeTarget{relation.CommentLike, "commentId", "comment not found"}
	tweetTarget   = likeTarget{relation.TweetLike, "tweetId", "tweet not found"}
)

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request, target likeTarget) {
	targetID, err := httputil.IDParam(r, target.param)
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	ctx := r.Context()
	userID, _ := auth.ExtractUserID(r)

	if err := relation.CheckTarget(ctx, h.DB, target.kind, targetID); err != nil {
		if errors.Is(err, relation.ErrTargetNotFound) {
			httputil.Fail(w, http.StatusNotFound, target.notFound)
			return
		}
		httputil.FailErr(w, r, err)
		return
	}

	liked, err := relation.Toggle(ctx, h.DB, target.kind, userID, targetID)
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	msg := "like removed successfully"
	if liked {
		msg = "liked successfully"
	}
	httputil.Respond(w, http.StatusOK, map[string]bool{"is_liked": liked}, msg)
}

// HandleToggleVideoLike likes or unlikes a video.
func (h *Handler) HandleToggleVideoLike(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, videoTarget)
}

// HandleToggleCommentLike likes or unlikes a comment.
func (h *Handler) HandleToggleCommentLike(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, commentTarget)
}

// HandleToggleTweetLike likes or unlikes a tweet.
func (h *Handler) HandleToggleTweetLike(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, tweetTarget)
}

// HandleLikedVideos lists the videos the caller liked.
func (h *Handler) HandleLikedVideos(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.ExtractUserID(r)
	liked, err := views.LikedVideos(r.Context(), h.DB, userID)
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	httputil.Respond(w, http.StatusOK, liked, "liked videos fetched successfully")
}

// HandleLikedTweets lists the tweets the caller liked.
func (h *Handler) HandleLikedTweets(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.ExtractUserID(r)
	liked, err := views.LikedTweets(r.Context(), h.DB, userID)
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	httputil.Respond(w, http.StatusOK, liked, "liked tweets fetched successfully")
}
