package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/repositories"
)

type fakeUserStore struct {
	users     map[string]models.User
	createErr error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]models.User)}
}

func (s *fakeUserStore) Create(_ context.Context, user models.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) FindByID(_ context.Context, id string) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (s *fakeUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *fakeUserStore) FindByUsername(_ context.Context, username string) (models.User, error) {
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *fakeUserStore) UpdatePassword(_ context.Context, id, passwordHash string) error {
	user, ok := s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.Password = passwordHash
	s.users[id] = user
	return nil
}

type fakeAssetStore struct {
	saved   []string
	deleted []string
	saveErr error
}

func (s *fakeAssetStore) Save(_ context.Context, name string, r io.Reader) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	url := "https://cdn.test/" + name
	s.saved = append(s.saved, url)
	return url, nil
}

func (s *fakeAssetStore) Delete(_ context.Context, location string) error {
	s.deleted = append(s.deleted, location)
	return nil
}

func newTestManager(users *fakeUserStore, assets *fakeAssetStore) (*Manager, *InMemorySessionStore) {
	sessions := NewInMemorySessionStore()
	manager := NewManager(users, sessions, newTestIssuer(), assets)
	return manager, sessions
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		FullName: "Alice Films",
		Username: "Alice",
		Email:    "Alice@Example.com",
		Password: "password123",
		Avatar:   &Upload{Filename: "avatar.PNG", Content: strings.NewReader("avatar-bytes")},
		Cover:    &Upload{Filename: "cover.jpg", Content: strings.NewReader("cover-bytes")},
	}
}

func TestManagerRegister(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserStore()
	assets := &fakeAssetStore{}
	manager, sessions := newTestManager(users, assets)

	profile, err := manager.Register(ctx, validRegisterInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if profile.Username != "alice" || profile.Email != "alice@example.com" {
		t.Fatalf("expected case-folded identifiers, got %+v", profile)
	}
	if profile.AvatarURL == "" || profile.CoverImageURL == "" {
		t.Fatalf("expected uploaded image URLs on the profile, got %+v", profile)
	}
	if !strings.HasSuffix(profile.AvatarURL, ".png") {
		t.Fatalf("expected the avatar extension to be lowercased, got %q", profile.AvatarURL)
	}

	stored, err := users.FindByID(ctx, profile.ID)
	if err != nil {
		t.Fatalf("expected the account to be stored: %v", err)
	}
	if stored.Password == "password123" {
		t.Fatal("stored password must be hashed")
	}
	if !CheckPassword("password123", stored.Password) {
		t.Fatal("stored hash does not verify the original password")
	}

	// Registration must not start a session.
	if ok, _ := sessions.Matches(ctx, profile.ID, stored.RefreshToken); ok {
		t.Fatal("registration must not issue tokens")
	}
}

func TestManagerRegisterValidatesBeforeUploading(t *testing.T) {
	ctx := context.Background()
	assets := &fakeAssetStore{}
	manager, _ := newTestManager(newFakeUserStore(), assets)

	in := validRegisterInput()
	in.FullName = "   "

	var validation ValidationError
	if _, err := manager.Register(ctx, in); !errors.As(err, &validation) {
		t.Fatalf("expected a validation error for a blank field, got %v", err)
	}

	if len(assets.saved) != 0 {
		t.Fatalf("no upload may happen before validation passes, saved %v", assets.saved)
	}
}

func TestManagerRegisterRequiresAvatar(t *testing.T) {
	ctx := context.Background()
	manager, _ := newTestManager(newFakeUserStore(), &fakeAssetStore{})

	in := validRegisterInput()
	in.Avatar = nil

	var validation ValidationError
	if _, err := manager.Register(ctx, in); !errors.As(err, &validation) {
		t.Fatalf("expected a validation error for a missing avatar, got %v", err)
	}
}

func TestManagerRegisterRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserStore()
	assets := &fakeAssetStore{}
	manager, _ := newTestManager(users, assets)

	if _, err := manager.Register(ctx, validRegisterInput()); err != nil {
		t.Fatalf("register first account: %v", err)
	}
	uploadsAfterFirst := len(assets.saved)

	dupEmail := validRegisterInput()
	dupEmail.Username = "someone-else"
	if _, err := manager.Register(ctx, dupEmail); !errors.Is(err, repositories.ErrConflict) {
		t.Fatalf("expected ErrConflict for a duplicate email, got %v", err)
	}

	dupUsername := validRegisterInput()
	dupUsername.Email = "other@example.com"
	if _, err := manager.Register(ctx, dupUsername); !errors.Is(err, repositories.ErrConflict) {
		t.Fatalf("expected ErrConflict for a duplicate username, got %v", err)
	}

	if len(assets.saved) != uploadsAfterFirst {
		t.Fatalf("uniqueness checks must run before uploads, saved %v", assets.saved)
	}
}

func TestManagerRegisterDiscardsUploadsOnCreateFailure(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserStore()
	users.createErr = fmt.Errorf("insert user: %w", errors.New("connection reset"))
	assets := &fakeAssetStore{}
	manager, _ := newTestManager(users, assets)

	if _, err := manager.Register(ctx, validRegisterInput()); err == nil {
		t.Fatal("expected registration to fail")
	}

	if len(assets.saved) != 2 {
		t.Fatalf("expected avatar and cover uploads, saved %v", assets.saved)
	}
	if len(assets.deleted) != 2 {
		t.Fatalf("expected both uploads to be discarded, deleted %v", assets.deleted)
	}
	for _, url := range assets.saved {
		found := false
		for _, deleted := range assets.deleted {
			if deleted == url {
				found = true
			}
		}
		if !found {
			t.Fatalf("uploaded object %q was not discarded", url)
		}
	}
}

func TestManagerLoginIssuesSession(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserStore()
	manager, sessions := newTestManager(users, &fakeAssetStore{})

	profile, err := manager.Register(ctx, validRegisterInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	loggedIn, tokens, err := manager.Login(ctx, "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loggedIn.ID != profile.ID {
		t.Fatalf("expected profile for the registered account, got %+v", loggedIn)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("expected both tokens to be issued, got %+v", tokens)
	}

	ok, err := sessions.Matches(ctx, profile.ID, tokens.RefreshToken)
	if err != nil {
		t.Fatalf("match refresh token: %v", err)
	}
	if !ok {
		t.Fatal("expected the refresh token to be stored as the account session")
	}
}

func TestManagerLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	manager, _ := newTestManager(newFakeUserStore(), &fakeAssetStore{})

	if _, err := manager.Register(ctx, validRegisterInput()); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := manager.Login(ctx, "alice@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for a wrong password, got %v", err)
	}

	if _, _, err := manager.Login(ctx, "nobody@example.com", "password123"); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for an unknown email, got %v", err)
	}

	var validation ValidationError
	if _, _, err := manager.Login(ctx, "", ""); !errors.As(err, &validation) {
		t.Fatalf("expected a validation error for blank credentials, got %v", err)
	}
}

func TestManagerRefreshRotatesToken(t *testing.T) {
	ctx := context.Background()
	manager, sessions := newTestManager(newFakeUserStore(), &fakeAssetStore{})

	profile, err := manager.Register(ctx, validRegisterInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	_, tokens, err := manager.Login(ctx, "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	// JWT timestamps have second precision; a rotated token signed in the
	// same second would be byte-identical.
	manager.tokens.NowFunc = func() time.Time { return time.Now().Add(2 * time.Second) }

	rotated, err := manager.Refresh(ctx, tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if rotated.RefreshToken == tokens.RefreshToken {
		t.Fatal("expected the refresh token to rotate")
	}

	if ok, _ := sessions.Matches(ctx, profile.ID, rotated.RefreshToken); !ok {
		t.Fatal("expected the rotated token to be the stored session")
	}

	// The superseded token lost the compare-and-swap.
	if _, err := manager.Refresh(ctx, tokens.RefreshToken); !errors.Is(err, ErrSessionRevoked) {
		t.Fatalf("expected ErrSessionRevoked for the superseded token, got %v", err)
	}
}

func TestManagerRefreshAfterLogout(t *testing.T) {
	ctx := context.Background()
	manager, _ := newTestManager(newFakeUserStore(), &fakeAssetStore{})

	profile, err := manager.Register(ctx, validRegisterInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	_, tokens, err := manager.Login(ctx, "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := manager.Logout(ctx, profile.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if _, err := manager.Refresh(ctx, tokens.RefreshToken); !errors.Is(err, ErrSessionRevoked) {
		t.Fatalf("expected ErrSessionRevoked after logout, got %v", err)
	}
}

func TestManagerRefreshRejectsBadTokens(t *testing.T) {
	ctx := context.Background()
	manager, _ := newTestManager(newFakeUserStore(), &fakeAssetStore{})

	if _, err := manager.Refresh(ctx, ""); !errors.Is(err, ErrSessionRevoked) {
		t.Fatalf("expected ErrSessionRevoked for a blank token, got %v", err)
	}
	if _, err := manager.Refresh(ctx, "not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for a malformed token, got %v", err)
	}
}

func TestManagerChangePassword(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserStore()
	manager, sessions := newTestManager(users, &fakeAssetStore{})

	profile, err := manager.Register(ctx, validRegisterInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	_, tokens, err := manager.Login(ctx, "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := manager.ChangePassword(ctx, profile.ID, "password123", "newpassword", "newpassword"); err != nil {
		t.Fatalf("change password: %v", err)
	}

	stored, err := users.FindByID(ctx, profile.ID)
	if err != nil {
		t.Fatalf("fetch account: %v", err)
	}
	if !CheckPassword("newpassword", stored.Password) {
		t.Fatal("expected the new password to verify against the stored hash")
	}
	if CheckPassword("password123", stored.Password) {
		t.Fatal("expected the old password to stop verifying")
	}

	// Existing sessions survive a password change.
	if ok, _ := sessions.Matches(ctx, profile.ID, tokens.RefreshToken); !ok {
		t.Fatal("expected the refresh token to remain valid after a password change")
	}
}

func TestManagerChangePasswordValidation(t *testing.T) {
	ctx := context.Background()
	manager, _ := newTestManager(newFakeUserStore(), &fakeAssetStore{})

	profile, err := manager.Register(ctx, validRegisterInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := manager.ChangePassword(ctx, profile.ID, "wrong", "newpassword", "newpassword"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for a wrong old password, got %v", err)
	}

	var validation ValidationError
	if err := manager.ChangePassword(ctx, profile.ID, "password123", "newpassword", "different"); !errors.As(err, &validation) {
		t.Fatalf("expected a validation error for a confirmation mismatch, got %v", err)
	}
	if err := manager.ChangePassword(ctx, profile.ID, "password123", "   ", "   "); !errors.As(err, &validation) {
		t.Fatalf("expected a validation error for a blank new password, got %v", err)
	}

	if err := manager.ChangePassword(ctx, "missing-account", "password123", "newpassword", "newpassword"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for an unknown account, got %v", err)
	}
}
