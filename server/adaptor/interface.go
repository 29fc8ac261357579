package adaptor

import (
	"context"

	"github.com/ponyo877/pushy/server/domain"
)

type Usecase interface {
	Register(ctx context.Context, id domain.ChannelID, name, password string) (domain.Channel, error)
	Identify(ctx context.Context, id domain.ChannelID, password string) (domain.Channel, error)
	Subscribe(ctx context.Context, publisherID, subscriberID domain.ChannelID) error
	Subscribers(ctx context.Context, publisherID domain.ChannelID) ([]domain.ChannelID, error)
}
