package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ProfileHandler exposes the derived account views.
type ProfileHandler struct {
	Profiles ProfileReader
}

// Channel handles GET /api/v1/users/c/{username}.
func (h ProfileHandler) Channel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profile, err := h.Profiles.ChannelProfile(ctx, AccountIDFromContext(ctx), chi.URLParam(r, "username"))
	if err != nil {
		respondWithError(ctx, w, err, "failed to fetch channel profile")
		return
	}

	respondJSON(ctx, w, http.StatusOK, profile, "channel fetched successfully")
}

// History handles GET /api/v1/users/history.
func (h ProfileHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entries, err := h.Profiles.WatchHistory(ctx, AccountIDFromContext(ctx))
	if err != nil {
		respondWithError(ctx, w, err, "failed to fetch watch history")
		return
	}

	respondJSON(ctx, w, http.StatusOK, entries, "watch history fetched successfully")
}
