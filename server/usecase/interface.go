package usecase

import (
	"context"

	"github.com/ponyo877/pushy/server/domain"
)

// Repository is the Channel Directory and Subscription Store. Each call is
// its own transaction.
type Repository interface {
	// Channel
	CreateChannel(ctx context.Context, channel domain.Channel) error
	GetChannel(ctx context.Context, id domain.ChannelID) (domain.Channel, error)

	// Subscription
	CreateSubscription(ctx context.Context, subscription domain.Subscription) error
	ListSubscriberIDs(ctx context.Context, publisherID domain.ChannelID) ([]domain.ChannelID, error)
}
