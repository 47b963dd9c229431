package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/profiles"
	"github.com/videotube/backend/internal/repositories"
)

// memoryUsers backs both the auth flow and the profile-update handlers in
// tests.
type memoryUsers struct {
	users map[string]models.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: make(map[string]models.User)}
}

func (s *memoryUsers) Create(_ context.Context, user models.User) error {
	for _, existing := range s.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return repositories.ErrConflict
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *memoryUsers) FindByID(_ context.Context, id string) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (s *memoryUsers) FindByEmail(_ context.Context, email string) (models.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *memoryUsers) FindByUsername(_ context.Context, username string) (models.User, error) {
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *memoryUsers) UpdatePassword(_ context.Context, id, passwordHash string) error {
	user, ok := s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.Password = passwordHash
	s.users[id] = user
	return nil
}

func (s *memoryUsers) UpdateDetails(_ context.Context, id, fullName, email string) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	user.FullName = fullName
	user.Email = email
	s.users[id] = user
	return user, nil
}

func (s *memoryUsers) UpdateAvatarURL(_ context.Context, id, url string) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	user.AvatarURL = url
	s.users[id] = user
	return user, nil
}

func (s *memoryUsers) UpdateCoverImageURL(_ context.Context, id, url string) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	user.CoverImageURL = url
	s.users[id] = user
	return user, nil
}

// recordingAssets records uploads and deletes instead of talking to S3.
type recordingAssets struct {
	saved   []string
	deleted []string
}

func (s *recordingAssets) Save(_ context.Context, name string, r io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	url := "https://cdn.test/" + name
	s.saved = append(s.saved, url)
	return url, nil
}

func (s *recordingAssets) Delete(_ context.Context, location string) error {
	s.deleted = append(s.deleted, location)
	return nil
}

type memorySubscriptions struct {
	edges []models.Subscription
}

func (s *memorySubscriptions) CountForChannel(_ context.Context, channelID string) (int64, error) {
	var count int64
	for _, edge := range s.edges {
		if edge.ChannelID == channelID {
			count++
		}
	}
	return count, nil
}

func (s *memorySubscriptions) CountForSubscriber(_ context.Context, subscriberID string) (int64, error) {
	var count int64
	for _, edge := range s.edges {
		if edge.SubscriberID == subscriberID {
			count++
		}
	}
	return count, nil
}

func (s *memorySubscriptions) IsSubscribed(_ context.Context, subscriberID, channelID string) (bool, error) {
	for _, edge := range s.edges {
		if edge.SubscriberID == subscriberID && edge.ChannelID == channelID {
			return true, nil
		}
	}
	return false, nil
}

type memoryHistory struct {
	entries map[string][]models.WatchHistoryEntry
}

func (h *memoryHistory) ForUser(_ context.Context, accountID string) ([]models.WatchHistoryEntry, error) {
	return h.entries[accountID], nil
}

// testEnv wires real auth and profile components over in-memory stores
// behind the production router.
type testEnv struct {
	users         *memoryUsers
	assets        *recordingAssets
	subscriptions *memorySubscriptions
	history       *memoryHistory
	manager       *auth.Manager
	issuer        *auth.Issuer
	router        http.Handler
}

func newTestEnv() *testEnv {
	users := newMemoryUsers()
	assets := &recordingAssets{}
	subscriptions := &memorySubscriptions{}
	history := &memoryHistory{entries: make(map[string][]models.WatchHistoryEntry)}

	issuer := auth.NewIssuer("access-secret", "refresh-secret", 15*time.Minute, 10*24*time.Hour)
	manager := auth.NewManager(users, auth.NewInMemorySessionStore(), issuer, assets)
	aggregator := profiles.NewAggregator(users, subscriptions, history)

	router := NewRouter(Dependencies{
		Flow:     manager,
		Users:    users,
		Assets:   assets,
		Profiles: aggregator,
		Verifier: issuer,
	})

	return &testEnv{
		users:         users,
		assets:        assets,
		subscriptions: subscriptions,
		history:       history,
		manager:       manager,
		issuer:        issuer,
		router:        router,
	}
}

// envelope mirrors the JSON response shell without committing to a data type.
type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode response envelope: %v", err)
	}
	return env
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("write form field %s: %v", name, err)
		}
	}
	for field, filename := range files {
		part, err := writer.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("create form file %s: %v", field, err)
		}
		if _, err := part.Write([]byte("image-bytes")); err != nil {
			t.Fatalf("write form file %s: %v", field, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	return body, writer.FormDataContentType()
}

func registerAccount(t *testing.T, env *testEnv) models.Profile {
	t.Helper()
	profile, err := env.manager.Register(context.Background(), auth.RegisterInput{
		FullName: "Alice Films",
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password123",
		Avatar:   &auth.Upload{Filename: "avatar.png", Content: strings.NewReader("avatar-bytes")},
	})
	if err != nil {
		t.Fatalf("register test account: %v", err)
	}
	return profile
}

// loginAccount logs in through the router and returns the session cookies.
func loginAccount(t *testing.T, env *testEnv) (models.Profile, []*http.Cookie) {
	t.Helper()
	profile := registerAccount(t, env)

	body, _ := json.Marshal(loginRequest{Email: "alice@example.com", Password: "password123"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("login test account: status %d body %s", rec.Code, rec.Body.String())
	}
	return profile, rec.Result().Cookies()
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}
