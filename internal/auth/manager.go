package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/videotube/backend/internal/logging"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/repositories"
)

// UserStore captures the account persistence operations the manager needs.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// AssetStore uploads and deletes avatar and cover images.
type AssetStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Delete(ctx context.Context, location string) error
}

// Upload is an image handed to the registration flow by the transport layer.
type Upload struct {
	Filename string
	Content  io.Reader
}

// RegisterInput carries the registration form fields and images.
type RegisterInput struct {
	FullName string
	Username string
	Email    string
	Password string
	Avatar   *Upload
	Cover    *Upload
}

// Manager orchestrates the account session lifecycle: registration, login,
// token refresh, logout, and password changes.
type Manager struct {
	users    UserStore
	sessions SessionStore
	tokens   *Issuer
	assets   AssetStore

	// NowFunc overrides the time source in tests.
	NowFunc func() time.Time
}

// NewManager wires the manager's collaborators together.
func NewManager(users UserStore, sessions SessionStore, tokens *Issuer, assets AssetStore) *Manager {
	if users == nil || sessions == nil || tokens == nil {
		panic("auth: manager requires users, sessions, and tokens")
	}
	return &Manager{users: users, sessions: sessions, tokens: tokens, assets: assets}
}

// Register validates the input, uploads the provided images, and creates the
// account. Registration does not authenticate: no tokens are issued. If
// account creation fails after an image was uploaded, the uploaded objects
// are deleted before the error is returned.
func (m *Manager) Register(ctx context.Context, in RegisterInput) (models.Profile, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if in.FullName == "" || in.Username == "" || in.Email == "" || strings.TrimSpace(in.Password) == "" {
		return models.Profile{}, ValidationError("all fields are required")
	}
	if in.Avatar == nil || in.Avatar.Content == nil {
		return models.Profile{}, ValidationError("avatar image is required")
	}

	if _, err := m.users.FindByEmail(ctx, in.Email); err == nil {
		return models.Profile{}, fmt.Errorf("email already registered: %w", repositories.ErrConflict)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return models.Profile{}, fmt.Errorf("check email: %w", err)
	}
	if _, err := m.users.FindByUsername(ctx, in.Username); err == nil {
		return models.Profile{}, fmt.Errorf("username already taken: %w", repositories.ErrConflict)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return models.Profile{}, fmt.Errorf("check username: %w", err)
	}

	avatarURL, err := m.upload(ctx, "avatars", in.Avatar)
	if err != nil {
		return models.Profile{}, fmt.Errorf("upload avatar: %w", err)
	}

	var coverURL string
	if in.Cover != nil && in.Cover.Content != nil {
		coverURL, err = m.upload(ctx, "covers", in.Cover)
		if err != nil {
			m.discard(ctx, avatarURL)
			return models.Profile{}, fmt.Errorf("upload cover image: %w", err)
		}
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		m.discard(ctx, avatarURL, coverURL)
		return models.Profile{}, fmt.Errorf("hash password: %w", err)
	}

	now := m.now()
	user := models.User{
		ID:            uuid.NewString(),
		Username:      in.Username,
		Email:         in.Email,
		FullName:      in.FullName,
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
		Password:      hash,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := m.users.Create(ctx, user); err != nil {
		m.discard(ctx, avatarURL, coverURL)
		return models.Profile{}, fmt.Errorf("create account: %w", err)
	}

	return user.Profile(), nil
}

// Login verifies the credentials and issues a fresh access/refresh pair,
// storing the refresh token as the account's only valid session.
func (m *Manager) Login(ctx context.Context, email, password string) (models.Profile, models.SessionTokens, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return models.Profile{}, models.SessionTokens{}, ValidationError("email and password are required")
	}

	user, err := m.users.FindByEmail(ctx, email)
	if err != nil {
		return models.Profile{}, models.SessionTokens{}, err
	}

	if !CheckPassword(password, user.Password) {
		return models.Profile{}, models.SessionTokens{}, ErrInvalidCredentials
	}

	tokens, err := m.issuePair(user.ID)
	if err != nil {
		return models.Profile{}, models.SessionTokens{}, err
	}

	if err := m.sessions.Persist(ctx, user.ID, tokens.RefreshToken); err != nil {
		return models.Profile{}, models.SessionTokens{}, fmt.Errorf("persist refresh token: %w", err)
	}

	return user.Profile(), tokens, nil
}

// Refresh exchanges a still-valid refresh token for a new access/refresh
// pair. The stored token is swapped with a compare-and-swap, so the old token
// is unusable the moment the exchange succeeds and a concurrent refresh with
// the same token loses with ErrSessionRevoked.
func (m *Manager) Refresh(ctx context.Context, presented string) (models.SessionTokens, error) {
	if strings.TrimSpace(presented) == "" {
		return models.SessionTokens{}, ErrSessionRevoked
	}

	accountID, err := m.tokens.VerifyRefresh(presented)
	if err != nil {
		return models.SessionTokens{}, err
	}

	tokens, err := m.issuePair(accountID)
	if err != nil {
		return models.SessionTokens{}, err
	}

	if err := m.sessions.Replace(ctx, accountID, presented, tokens.RefreshToken); err != nil {
		// A compare-and-swap miss means the slot no longer holds the
		// presented token: the account is gone, logged out, or a newer
		// session superseded this one.
		if errors.Is(err, repositories.ErrNotFound) {
			return models.SessionTokens{}, ErrSessionRevoked
		}
		return models.SessionTokens{}, err
	}

	return tokens, nil
}

// Logout revokes the account's current session by clearing the stored
// refresh token. The caller is expected to discard its cookies.
func (m *Manager) Logout(ctx context.Context, accountID string) error {
	return m.sessions.Clear(ctx, accountID)
}

// ChangePassword replaces the account's password hash after verifying the old
// password. The stored refresh token is deliberately left untouched: existing
// sessions remain valid after a password change.
func (m *Manager) ChangePassword(ctx context.Context, accountID, oldPassword, newPassword, confirmation string) error {
	user, err := m.users.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}

	if !CheckPassword(oldPassword, user.Password) {
		return ErrInvalidCredentials
	}
	if strings.TrimSpace(newPassword) == "" {
		return ValidationError("new password must not be empty")
	}
	if newPassword != confirmation {
		return ValidationError("password confirmation does not match")
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return m.users.UpdatePassword(ctx, accountID, hash)
}

func (m *Manager) issuePair(accountID string) (models.SessionTokens, error) {
	access, accessExp, err := m.tokens.IssueAccess(accountID)
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, refreshExp, err := m.tokens.IssueRefresh(accountID)
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("issue refresh token: %w", err)
	}
	return models.SessionTokens{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (m *Manager) upload(ctx context.Context, prefix string, u *Upload) (string, error) {
	if m.assets == nil {
		return "", errors.New("auth: asset store not configured")
	}
	key := fmt.Sprintf("%s/%s%s", prefix, uuid.NewString(), strings.ToLower(path.Ext(u.Filename)))
	return m.assets.Save(ctx, key, u.Content)
}

// discard is the compensating cleanup for uploads that preceded a failed
// registration. Failures here are logged, not surfaced: the original error is
// the one the caller needs.
func (m *Manager) discard(ctx context.Context, locations ...string) {
	if m.assets == nil {
		return
	}
	for _, loc := range locations {
		if loc == "" {
			continue
		}
		if err := m.assets.Delete(ctx, loc); err != nil {
			logging.FromContext(ctx).Warn("discard uploaded asset", "location", loc, "error", err)
		}
	}
}

func (m *Manager) now() time.Time {
	if m.NowFunc != nil {
		return m.NowFunc().UTC()
	}
	return time.Now().UTC()
}
