package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/videotube/backend/internal/logging"
	"github.com/videotube/backend/internal/models"
)

// UserHandler implements profile retrieval and update endpoints for the
// authenticated account.
type UserHandler struct {
	Users  UserStore
	Assets AssetStore
}

// Me handles GET /api/v1/users/me.
func (h UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.Users.FindByID(ctx, AccountIDFromContext(ctx))
	if err != nil {
		respondWithError(ctx, w, err, "failed to fetch account")
		return
	}

	respondJSON(ctx, w, http.StatusOK, user.Profile(), "account fetched successfully")
}

// UpdateDetails handles PATCH /api/v1/users/me.
func (h UserHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID := AccountIDFromContext(ctx)

	var req updateDetailsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.FullName == "" {
		respondError(ctx, w, http.StatusBadRequest, "full name is required")
		return
	}

	if req.Email == "" {
		current, err := h.Users.FindByID(ctx, accountID)
		if err != nil {
			respondWithError(ctx, w, err, "failed to fetch account")
			return
		}
		req.Email = current.Email
	}

	user, err := h.Users.UpdateDetails(ctx, accountID, req.FullName, req.Email)
	if err != nil {
		respondWithError(ctx, w, err, "failed to update account details")
		return
	}

	respondJSON(ctx, w, http.StatusOK, user.Profile(), "account details updated successfully")
}

// UpdateAvatar handles PATCH /api/v1/users/me/avatar.
func (h UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "avatar", "avatars",
		func(u models.User) string { return u.AvatarURL },
		h.Users.UpdateAvatarURL,
	)
}

// UpdateCoverImage handles PATCH /api/v1/users/me/cover.
func (h UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "coverImage", "covers",
		func(u models.User) string { return u.CoverImageURL },
		h.Users.UpdateCoverImageURL,
	)
}

// replaceImage uploads the provided form file, persists its public URL on
// the account, and then removes the previously stored object. The old object
// is deleted only after the new URL is persisted, so a failed upload never
// leaves the account pointing at nothing.
func (h UserHandler) replaceImage(
	w http.ResponseWriter,
	r *http.Request,
	field, prefix string,
	currentURL func(models.User) string,
	persist func(ctx context.Context, id, url string) (models.User, error),
) {
	ctx := r.Context()
	accountID := AccountIDFromContext(ctx)

	current, err := h.Users.FindByID(ctx, accountID)
	if err != nil {
		respondWithError(ctx, w, err, "failed to fetch account")
		return
	}

	if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, fmt.Sprintf("%s file is missing", field))
		return
	}
	defer file.Close()

	key := fmt.Sprintf("%s/%s%s", prefix, uuid.NewString(), strings.ToLower(path.Ext(header.Filename)))
	url, err := h.Assets.Save(ctx, key, file)
	if err != nil {
		respondWithError(ctx, w, err, fmt.Sprintf("failed to upload %s", field))
		return
	}

	user, err := persist(ctx, accountID, url)
	if err != nil {
		// The account row was not updated; remove the orphaned upload.
		if delErr := h.Assets.Delete(ctx, url); delErr != nil {
			logging.FromContext(ctx).Warn("discard orphaned upload", "location", url, "error", delErr)
		}
		respondWithError(ctx, w, err, fmt.Sprintf("failed to update %s", field))
		return
	}

	if old := currentURL(current); old != "" {
		if err := h.Assets.Delete(ctx, old); err != nil {
			logging.FromContext(ctx).Warn("delete replaced image", "location", old, "error", err)
		}
	}

	respondJSON(ctx, w, http.StatusOK, user.Profile(), fmt.Sprintf("%s updated successfully", field))
}

type updateDetailsRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}
