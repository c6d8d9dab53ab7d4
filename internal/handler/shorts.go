package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/afonsoproenca/tukano/internal/apperror"
	"github.com/afonsoproenca/tukano/internal/service"
)

// ShortHandler exposes shorts, the follow graph, likes and feeds, the whole
// social surface. One handler rather than three: the routes all hang off
// /rest/shorts and share the same parameter conventions.
type ShortHandler struct {
	shorts     *service.ShortService
	social     *service.SocialService
	engagement *service.EngagementService
	logger     *slog.Logger
}

func NewShortHandler(shorts *service.ShortService, social *service.SocialService, engagement *service.EngagementService, logger *slog.Logger) *ShortHandler {
	return &ShortHandler{
		shorts:     shorts,
		social:     social,
		engagement: engagement,
		logger:     logger,
	}
}

// HandleCreate mints a short for the user. The response carries the blob
// upload URL, token included.
//
// HTTP: POST /rest/shorts/{userId}?pwd=...
func (h *ShortHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	short, err := h.shorts.Create(r.Context(), r.PathValue("userId"), r.URL.Query().Get("pwd"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, short)
}

// HandleGet returns a short. Public, no credential.
//
// HTTP: GET /rest/shorts/{shortId}
func (h *ShortHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	short, err := h.shorts.Get(r.Context(), r.PathValue("shortId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, short)
}

// HandleDelete removes a short; owner only.
//
// HTTP: DELETE /rest/shorts/{shortId}?pwd=...
func (h *ShortHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.shorts.Delete(r.Context(), r.PathValue("shortId"), r.URL.Query().Get("pwd")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListByOwner returns the ids of a user's shorts. Public listing.
//
// HTTP: GET /rest/shorts/{userId}/shorts
func (h *ShortHandler) HandleListByOwner(w http.ResponseWriter, r *http.Request) {
	ids, err := h.shorts.ListByOwner(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

// HandleFollow sets or clears a follow edge. Body is a bare JSON boolean.
//
// HTTP: POST /rest/shorts/{followerId}/{followeeId}/followers?pwd=...
func (h *ShortHandler) HandleFollow(w http.ResponseWriter, r *http.Request) {
	var following bool
	if err := json.NewDecoder(r.Body).Decode(&following); err != nil {
		writeError(w, apperror.BadRequest("body", "body must be a JSON boolean"))
		return
	}

	err := h.social.SetFollowing(r.Context(),
		r.PathValue("followerId"), r.URL.Query().Get("pwd"),
		r.PathValue("followeeId"), following)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleFollowers lists who follows the user; subject only.
//
// HTTP: GET /rest/shorts/{userId}/followers?pwd=...
func (h *ShortHandler) HandleFollowers(w http.ResponseWriter, r *http.Request) {
	followers, err := h.social.Followers(r.Context(), r.PathValue("userId"), r.URL.Query().Get("pwd"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, followers)
}

// HandleLike sets or clears a like edge. Body is a bare JSON boolean.
//
// HTTP: POST /rest/shorts/{shortId}/{userId}/likes?pwd=...
func (h *ShortHandler) HandleLike(w http.ResponseWriter, r *http.Request) {
	var liked bool
	if err := json.NewDecoder(r.Body).Decode(&liked); err != nil {
		writeError(w, apperror.BadRequest("body", "body must be a JSON boolean"))
		return
	}

	err := h.engagement.SetLiked(r.Context(),
		r.PathValue("shortId"), r.PathValue("userId"),
		r.URL.Query().Get("pwd"), liked)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleLikes lists who liked a short; content owner only.
//
// HTTP: GET /rest/shorts/{shortId}/likes?pwd=...
func (h *ShortHandler) HandleLikes(w http.ResponseWriter, r *http.Request) {
	likers, err := h.engagement.Likes(r.Context(), r.PathValue("shortId"), r.URL.Query().Get("pwd"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, likers)
}

// HandleFeed returns the user's feed; subject only.
//
// HTTP: GET /rest/shorts/{userId}/feed?pwd=...
func (h *ShortHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	feed, err := h.shorts.Feed(r.Context(), r.PathValue("userId"), r.URL.Query().Get("pwd"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, feed)
}
