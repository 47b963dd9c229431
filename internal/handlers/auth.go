package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/logging"
	"github.com/videotube/backend/internal/middleware"
	"github.com/videotube/backend/internal/models"
)

// maxImageUploadBytes bounds the multipart form memory for avatar and cover
// uploads.
const maxImageUploadBytes = 8 << 20

// AuthHandler implements the account lifecycle endpoints.
type AuthHandler struct {
	Flow    AccountFlow
	Limiter middleware.RateLimiter
	// SecureCookies should only be disabled for local development over
	// plain HTTP.
	SecureCookies bool
}

// Register handles POST /api/v1/users/register. The request is multipart:
// form fields plus an avatar image and an optional cover image.
func (h AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !allowRequest(h.Limiter, r, "register") {
		respondError(ctx, w, http.StatusTooManyRequests, "too many registration attempts")
		return
	}

	if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	in := auth.RegisterInput{
		FullName: r.FormValue("fullName"),
		Username: r.FormValue("username"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	}

	if file, header, err := r.FormFile("avatar"); err == nil {
		defer file.Close()
		in.Avatar = &auth.Upload{Filename: header.Filename, Content: file}
	}
	if file, header, err := r.FormFile("coverImage"); err == nil {
		defer file.Close()
		in.Cover = &auth.Upload{Filename: header.Filename, Content: file}
	}

	profile, err := h.Flow.Register(ctx, in)
	if err != nil {
		respondWithError(ctx, w, err, "failed to register account")
		return
	}

	logging.FromContext(ctx).Info("account registered", "username", profile.Username)
	respondJSON(ctx, w, http.StatusCreated, profile, "account registered successfully")
}

// Login handles POST /api/v1/users/login.
func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !allowRequest(h.Limiter, r, "login") {
		respondError(ctx, w, http.StatusTooManyRequests, "too many login attempts")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, tokens, err := h.Flow.Login(ctx, req.Email, req.Password)
	if err != nil {
		respondWithError(ctx, w, err, "failed to log in")
		return
	}

	setSessionCookies(w, tokens, h.SecureCookies)
	respondJSON(ctx, w, http.StatusOK, loginResponse{
		User:         profile,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, "logged in successfully")
}

// Refresh handles POST /api/v1/users/refresh-token. The refresh token is
// taken from the cookie when present, otherwise from the request body.
func (h AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !allowRequest(h.Limiter, r, "refresh") {
		respondError(ctx, w, http.StatusTooManyRequests, "too many refresh attempts")
		return
	}

	presented := ""
	if cookie, err := r.Cookie(refreshTokenCookie); err == nil {
		presented = cookie.Value
	}
	if presented == "" && r.Body != nil {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			presented = strings.TrimSpace(req.RefreshToken)
		}
	}

	tokens, err := h.Flow.Refresh(ctx, presented)
	if err != nil {
		respondWithError(ctx, w, err, "failed to refresh session")
		return
	}

	setSessionCookies(w, tokens, h.SecureCookies)
	respondJSON(ctx, w, http.StatusOK, tokens, "session refreshed")
}

// Logout handles POST /api/v1/users/logout.
func (h AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID := AccountIDFromContext(ctx)

	if err := h.Flow.Logout(ctx, accountID); err != nil {
		respondWithError(ctx, w, err, "failed to log out")
		return
	}

	clearSessionCookies(w, h.SecureCookies)
	respondJSON(ctx, w, http.StatusOK, struct{}{}, "logged out successfully")
}

// ChangePassword handles POST /api/v1/users/change-password.
func (h AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID := AccountIDFromContext(ctx)

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.Flow.ChangePassword(ctx, accountID, req.OldPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		respondWithError(ctx, w, err, "failed to change password")
		return
	}

	respondJSON(ctx, w, http.StatusOK, struct{}{}, "password changed successfully")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword     string `json:"oldPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type loginResponse struct {
	User         models.Profile `json:"user"`
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
}
