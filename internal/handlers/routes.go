package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/videotube/backend/internal/middleware"
)

// Dependencies aggregates collaborators required by the HTTP handlers.
type Dependencies struct {
	Flow        AccountFlow
	Users       UserStore
	Assets      AssetStore
	Profiles    ProfileReader
	Verifier    AccessVerifier
	AuthLimiter middleware.RateLimiter
	// SecureCookies toggles the Secure attribute on session cookies.
	SecureCookies bool
}

// NewRouter wires the HTTP routes into a chi router. Authentication
// endpoints are open (but rate limited); everything else under /users
// requires a valid access token.
func NewRouter(deps Dependencies) http.Handler {
	health := HealthHandler{}
	authHandler := AuthHandler{Flow: deps.Flow, Limiter: deps.AuthLimiter, SecureCookies: deps.SecureCookies}
	users := UserHandler{Users: deps.Users, Assets: deps.Assets}
	profiles := ProfileHandler{Profiles: deps.Profiles}

	r := chi.NewRouter()

	r.Get("/healthz", health.Handle)

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh-token", authHandler.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(deps.Verifier))

			r.Post("/logout", authHandler.Logout)
			r.Post("/change-password", authHandler.ChangePassword)
			r.Get("/me", users.Me)
			r.Patch("/me", users.UpdateDetails)
			r.Patch("/me/avatar", users.UpdateAvatar)
			r.Patch("/me/cover", users.UpdateCoverImage)
			r.Get("/c/{username}", profiles.Channel)
			r.Get("/history", profiles.History)
		})
	})

	return r
}
