package handlers

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const accountContextKey = contextKey("accountID")

// RequireAuth authenticates requests with an access token taken from the
// accessToken cookie or, failing that, a bearer Authorization header. The
// resolved account identifier is stored on the request context.
func RequireAuth(verifier AccessVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := accessTokenFrom(r)
			if token == "" {
				respondError(ctx, w, http.StatusUnauthorized, "authentication required")
				return
			}

			accountID, err := verifier.VerifyAccess(token)
			if err != nil {
				respondError(ctx, w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(withAccountID(ctx, accountID)))
		})
	}
}

func accessTokenFrom(r *http.Request) string {
	if cookie, err := r.Cookie(accessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	if parts := strings.SplitN(header, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func withAccountID(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, accountContextKey, accountID)
}

// AccountIDFromContext returns the authenticated account identifier set by
// RequireAuth, or an empty string.
func AccountIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(accountContextKey).(string); ok {
		return id
	}
	return ""
}
