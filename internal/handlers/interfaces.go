package handlers

import (
	"context"
	"io"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/models"
)

// AccountFlow is the authentication/session lifecycle consumed by the auth
// handlers.
type AccountFlow interface {
	Register(ctx context.Context, in auth.RegisterInput) (models.Profile, error)
	Login(ctx context.Context, email, password string) (models.Profile, models.SessionTokens, error)
	Refresh(ctx context.Context, presented string) (models.SessionTokens, error)
	Logout(ctx context.Context, accountID string) error
	ChangePassword(ctx context.Context, accountID, oldPassword, newPassword, confirmation string) error
}

// UserStore captures the account operations required by the profile-update
// handlers.
type UserStore interface {
	FindByID(ctx context.Context, id string) (models.User, error)
	UpdateDetails(ctx context.Context, id, fullName, email string) (models.User, error)
	UpdateAvatarURL(ctx context.Context, id, url string) (models.User, error)
	UpdateCoverImageURL(ctx context.Context, id, url string) (models.User, error)
}

// AssetStore uploads and deletes account images.
type AssetStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Delete(ctx context.Context, location string) error
}

// ProfileReader computes the derived account views.
type ProfileReader interface {
	ChannelProfile(ctx context.Context, viewerID, username string) (models.ChannelProfile, error)
	WatchHistory(ctx context.Context, accountID string) ([]models.WatchHistoryEntry, error)
}

// AccessVerifier checks an access token and returns the account it belongs to.
type AccessVerifier interface {
	VerifyAccess(token string) (string, error)
}
