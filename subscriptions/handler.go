package subscriptions

import (
	"errors"
	"net/http"

	"vidtube/auth"
	"vidtube/db"
	"vidtube/httputil"
	"vidtube/relation"
	"vidtube/views"
)

// Handler holds dependencies for subscription endpoints.
type Handler struct {
	DB *db.CompatDB
}

// HandleToggleSubscription subscribes the caller to a channel, or
// unsubscribes when already subscribed.
func (h *Handler) HandleToggleSubscription(w http.ResponseWriter, r *http.Request) {
	channelID, err := httputil.IDParam(r, "channelId")
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	ctx := r.Context()
	userID, _ := auth.ExtractUserID(r)
	if channelID == userID {
		httputil.Fail(w, http.StatusBadRequest, "you cannot subscribe to your own channel")
		return
	}

	if err := relation.CheckTarget(ctx, h.DB, relation.Subscription, channelID); err != nil {
		if errors.Is(err, relation.ErrTargetNotFound) {
			httputil.Fail(w, http.StatusNotFound, "channel not found")
			return
		}
		httputil.FailErr(w, r, err)
		return
	}

	subscribed, err := relation.Toggle(ctx, h.DB, relation.Subscription, userID, channelID)
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	msg := "unsubscribed successfully"
	if subscribed {
		msg = "subscribed successfully"
	}
	httputil.Respond(w, http.StatusOK, map[string]bool{"is_subscribed": subscribed}, msg)
}

// HandleChannelSubscribers lists the users subscribed to a channel.
func (h *Handler) HandleChannelSubscribers(w http.ResponseWriter, r *http.Request) {
	channelID, err := httputil.IDParam(r, "channelId")
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	subs, err := views.ChannelSubscribers(r.Context(), h.DB, channelID)
	if errors.Is(err, views.ErrNotFound) {
		httputil.Fail(w, http.StatusNotFound, "channel not found")
		return
	}
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	httputil.Respond(w, http.StatusOK, subs, "subscribers fetched successfully")
}

// HandleSubscribedChannels lists the channels a user subscribes to.
func (h *Handler) HandleSubscribedChannels(w http.ResponseWriter, r *http.Request) {
	subscriberID, err := httputil.IDParam(r, "subscriberId")
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	channels, err := views.SubscribedChannels(r.Context(), h.DB, subscriberID)
	if errors.Is(err, views.ErrNotFound) {
		httputil.Fail(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		httputil.FailErr(w, r, err)
		return
	}
	httputil.Respond(w, http.StatusOK, channels, "subscribed channels fetched successfully")
}
