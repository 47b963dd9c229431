package models

import "time"

// User represents an account on the VideoTube platform. Username and email
// are stored case-folded and trimmed. The password hash and the single
// refresh-token slot never leave the backend; handlers return the Profile
// projection instead.
type User struct {
	ID            string
	Username      string
	Email         string
	FullName      string
	AvatarURL     string
	CoverImageURL string
	Password      string
	RefreshToken  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Profile is the password- and token-stripped projection of a User.
type Profile struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	FullName      string `json:"fullName"`
	AvatarURL     string `json:"avatar"`
	CoverImageURL string `json:"coverImage,omitempty"`
}

// Profile returns the public projection of the user.
func (u User) Profile() Profile {
	return Profile{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
	}
}

// Video is a video record owned by an account. Rows are written by the upload
// pipeline; this service only reads them.
type Video struct {
	ID           string
	OwnerID      string
	Title        string
	Description  string
	ThumbnailURL string
	VideoURL     string
	Duration     int64
	Views        int64
	CreatedAt    time.Time
}

// Subscription is a directed "subscriber follows channel" edge between two
// accounts.
type Subscription struct {
	SubscriberID string
	ChannelID    string
	CreatedAt    time.Time
}

// ChannelProfile is the derived channel view: the channel's public fields
// plus subscription counts scoped to the requesting viewer.
type ChannelProfile struct {
	Username          string `json:"username"`
	Email             string `json:"email"`
	FullName          string `json:"fullName"`
	AvatarURL         string `json:"avatar"`
	CoverImageURL     string `json:"coverImage,omitempty"`
	SubscribersCount  int64  `json:"subscribersCount"`
	SubscribedToCount int64  `json:"channelsSubscribedToCount"`
	IsSubscribed      bool   `json:"isSubscribed"`
}

// VideoOwner is the minimal owner projection embedded in watch-history
// entries.
type VideoOwner struct {
	FullName  string `json:"fullName"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar"`
}

// WatchHistoryEntry is a watched video joined with its owner projection.
type WatchHistoryEntry struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	ThumbnailURL string     `json:"thumbnail"`
	VideoURL     string     `json:"videoFile"`
	Duration     int64      `json:"duration"`
	Views        int64      `json:"views"`
	Owner        VideoOwner `json:"owner"`
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
