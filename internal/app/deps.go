package app

import (
	"context"
	"fmt"
	"time"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/config"
	"github.com/videotube/backend/internal/db"
	"github.com/videotube/backend/internal/handlers"
	"github.com/videotube/backend/internal/middleware"
	"github.com/videotube/backend/internal/profiles"
	"github.com/videotube/backend/internal/repositories"
	"github.com/videotube/backend/internal/storage"
)

// buildDependencies wires together concrete implementations used by the HTTP
// handlers.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, error) {
	users := repositories.NewPostgresUserRepository(pool)
	sessions := repositories.NewPostgresSessionRepository(pool)
	subscriptions := repositories.NewPostgresSubscriptionRepository(pool)
	history := repositories.NewPostgresWatchHistoryRepository(pool)

	assets, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
	if err != nil {
		return handlers.Dependencies{}, fmt.Errorf("configure object store: %w", err)
	}

	issuer := auth.NewIssuer(
		cfg.Tokens.AccessSecret,
		cfg.Tokens.RefreshSecret,
		cfg.Tokens.AccessTTL,
		cfg.Tokens.RefreshTTL,
	)

	return handlers.Dependencies{
		Flow:          auth.NewManager(users, sessions, issuer, assets),
		Users:         users,
		Assets:        assets,
		Profiles:      profiles.NewAggregator(users, subscriptions, history),
		Verifier:      issuer,
		AuthLimiter:   middleware.NewIPRateLimiter(10, time.Minute, 5, 10*time.Minute),
		SecureCookies: cfg.SecureCookies,
	}, nil
}
