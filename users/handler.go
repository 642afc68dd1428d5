package users

import (
	"errors"
	"net/http"
	"strings"

	"vidtube/auth"
	"vidtube/db"
	"vidtube/httputil"
	"vidtube/views"

	"github.com/go-chi/chi/v5"
)

// Handler serves channel pages and watch history.
type Handler struct {
	DB *db.CompatDB
}

// HandleChannelProfile returns the public channel page for a username.
func (h *Handler) HandleChannelProfile(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(chi.URLParam(r, "username"))
	if username == "" {
		httputil.Fail(w, http.StatusBadRequest, "username is missing")
		return
	}
	viewerID, _ := auth.ExtractUserID(r)

	profile, err := views.LoadChannelProfile(r.Context(), h.DB, username, viewerID)
	if errors.Is(err, views.ErrNotFound) {
		httputil.Fail(w, http.StatusNotFound, "channel does not exist")
		return
	}
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	httputil.Respond(w, http.StatusOK, profile, "user channel fetched successfully")
}

// HandleWatchHistory lists the videos the authenticated user watched.
func (h *Handler) HandleWatchHistory(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.ExtractUserID(r)
	history, err := views.WatchHistory(r.Context(), h.DB, userID)
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	httputil.Respond(w, http.StatusOK, history, "watch history fetched successfully")
}
