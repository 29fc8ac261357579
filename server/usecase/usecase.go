package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ponyo877/pushy/server/domain"
)

type Usecase struct {
	repo Repository
	now  func() time.Time
}

func NewUsecase(repo Repository) *Usecase {
	return &Usecase{
		repo: repo,
		now:  time.Now,
	}
}

func (u *Usecase) Register(ctx context.Context, id domain.ChannelID, name, password string) (domain.Channel, error) {
	if name == "" || password == "" {
		return domain.Channel{}, fmt.Errorf("register channel %d: name and password are required: %w", id, ErrInvalidArgument)
	}
	channel := domain.NewChannel(id, name, password, u.now().UTC())
	if err := u.repo.CreateChannel(ctx, channel); err != nil {
		return domain.Channel{}, fmt.Errorf("error registering channel %d: %w", id, err)
	}
	return channel, nil
}

// Identify succeeds only when channel id exists and password matches its
// stored digest. A missing channel and a wrong password are both reported
// as ErrAuthentication.
func (u *Usecase) Identify(ctx context.Context, id domain.ChannelID, password string) (domain.Channel, error) {
	channel, err := u.repo.GetChannel(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return domain.Channel{}, fmt.Errorf("channel %d: %w", id, ErrAuthentication)
		}
		return domain.Channel{}, fmt.Errorf("error getting channel %d: %w", id, err)
	}
	if !channel.Authenticate(password) {
		return domain.Channel{}, fmt.Errorf("channel %d: %w", id, ErrAuthentication)
	}
	return channel, nil
}

func (u *Usecase) Subscribe(ctx context.Context, publisherID, subscriberID domain.ChannelID) error {
	subscription := domain.NewSubscription(publisherID, subscriberID, u.now().UTC())
	if err := u.repo.CreateSubscription(ctx, subscription); err != nil {
		return fmt.Errorf("error subscribing %d to %d: %w", subscriberID, publisherID, err)
	}
	return nil
}

// Subscribers returns every subscriber of publisherID read in one
// transaction; on error nothing is returned.
func (u *Usecase) Subscribers(ctx context.Context, publisherID domain.ChannelID) ([]domain.ChannelID, error) {
	ids, err := u.repo.ListSubscriberIDs(ctx, publisherID)
	if err != nil {
		return nil, fmt.Errorf("error listing subscribers of %d: %w", publisherID, err)
	}
	return ids, nil
}
