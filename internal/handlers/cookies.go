package handlers

import (
	"net/http"
	"time"

	"github.com/videotube/backend/internal/models"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

// setSessionCookies attaches the issued tokens as secure, HTTP-only cookies.
func setSessionCookies(w http.ResponseWriter, tokens models.SessionTokens, secure bool) {
	http.SetCookie(w, sessionCookie(accessTokenCookie, tokens.AccessToken, tokens.AccessExpiresAt, secure))
	http.SetCookie(w, sessionCookie(refreshTokenCookie, tokens.RefreshToken, tokens.RefreshExpiresAt, secure))
}

// clearSessionCookies expires both token cookies.
func clearSessionCookies(w http.ResponseWriter, secure bool) {
	expired := time.Unix(0, 0)
	http.SetCookie(w, sessionCookie(accessTokenCookie, "", expired, secure))
	http.SetCookie(w, sessionCookie(refreshTokenCookie, "", expired, secure))
}

func sessionCookie(name, value string, expires time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
