package repositories

import (
	"context"

	"github.com/videotube/backend/internal/models"
)

// UserRepository defines the data access contract for accounts.
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateDetails(ctx context.Context, id, fullName, email string) (models.User, error)
	UpdateAvatarURL(ctx context.Context, id, url string) (models.User, error)
	UpdateCoverImageURL(ctx context.Context, id, url string) (models.User, error)
}

// SessionRepository persists the per-account refresh-token slot.
type SessionRepository interface {
	Persist(ctx context.Context, accountID, token string) error
	Replace(ctx context.Context, accountID, old, new string) error
	Clear(ctx context.Context, accountID string) error
	Matches(ctx context.Context, accountID, token string) (bool, error)
}

// SubscriptionRepository reads subscriber/channel edges for derived views.
type SubscriptionRepository interface {
	CountForChannel(ctx context.Context, channelID string) (int64, error)
	CountForSubscriber(ctx context.Context, subscriberID string) (int64, error)
	IsSubscribed(ctx context.Context, subscriberID, channelID string) (bool, error)
}

// WatchHistoryRepository resolves an account's ordered watch history into
// video records with owner projections.
type WatchHistoryRepository interface {
	ForUser(ctx context.Context, accountID string) ([]models.WatchHistoryEntry, error)
}
