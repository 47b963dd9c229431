// Package profiles computes the read-only derived views: the channel profile
// with subscription counts and the populated watch history. Both are joined
// at request time; nothing here is cached or persisted.
package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/videotube/backend/internal/logging"
	"github.com/videotube/backend/internal/models"
)

// ErrMissingUsername indicates a channel lookup without a username.
var ErrMissingUsername = errors.New("username is required")

// UserDirectory resolves accounts by their case-folded username.
type UserDirectory interface {
	FindByUsername(ctx context.Context, username string) (models.User, error)
}

// SubscriptionStore reads subscriber/channel edges.
type SubscriptionStore interface {
	CountForChannel(ctx context.Context, channelID string) (int64, error)
	CountForSubscriber(ctx context.Context, subscriberID string) (int64, error)
	IsSubscribed(ctx context.Context, subscriberID, channelID string) (bool, error)
}

// HistoryStore resolves an account's ordered watch history.
type HistoryStore interface {
	ForUser(ctx context.Context, accountID string) ([]models.WatchHistoryEntry, error)
}

// Aggregator builds derived account views from the underlying stores.
type Aggregator struct {
	users         UserDirectory
	subscriptions SubscriptionStore
	history       HistoryStore
}

// NewAggregator wires the aggregator's stores together.
func NewAggregator(users UserDirectory, subscriptions SubscriptionStore, history HistoryStore) *Aggregator {
	if users == nil || subscriptions == nil || history == nil {
		panic("profiles: aggregator requires users, subscriptions, and history")
	}
	return &Aggregator{users: users, subscriptions: subscriptions, history: history}
}

// ChannelProfile resolves the channel by username and decorates it with the
// subscriber count, the subscribed-to count, and whether the viewer is among
// the channel's subscribers. Only whitelisted account fields appear in the
// result; password and token fields never leave this path.
func (a *Aggregator) ChannelProfile(ctx context.Context, viewerID, username string) (models.ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return models.ChannelProfile{}, ErrMissingUsername
	}

	channel, err := a.users.FindByUsername(ctx, username)
	if err != nil {
		return models.ChannelProfile{}, err
	}

	subscribers, err := a.subscriptions.CountForChannel(ctx, channel.ID)
	if err != nil {
		return models.ChannelProfile{}, fmt.Errorf("count subscribers: %w", err)
	}

	subscribedTo, err := a.subscriptions.CountForSubscriber(ctx, channel.ID)
	if err != nil {
		return models.ChannelProfile{}, fmt.Errorf("count subscribed channels: %w", err)
	}

	var isSubscribed bool
	if viewerID != "" {
		isSubscribed, err = a.subscriptions.IsSubscribed(ctx, viewerID, channel.ID)
		if err != nil {
			return models.ChannelProfile{}, fmt.Errorf("check viewer subscription: %w", err)
		}
	}

	logging.FromContext(ctx).Debug("channel profile aggregated",
		"channel", channel.Username,
		"subscribers", subscribers,
	)

	return models.ChannelProfile{
		Username:          channel.Username,
		Email:             channel.Email,
		FullName:          channel.FullName,
		AvatarURL:         channel.AvatarURL,
		CoverImageURL:     channel.CoverImageURL,
		SubscribersCount:  subscribers,
		SubscribedToCount: subscribedTo,
		IsSubscribed:      isSubscribed,
	}, nil
}

// WatchHistory resolves the account's watch history in stored insertion
// order. Each entry carries the owning channel's minimal projection; the join
// is single-level and never recurses into the owner's own history.
func (a *Aggregator) WatchHistory(ctx context.Context, accountID string) ([]models.WatchHistoryEntry, error) {
	entries, err := a.history.ForUser(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("resolve watch history: %w", err)
	}
	if entries == nil {
		entries = []models.WatchHistoryEntry{}
	}
	return entries, nil
}
