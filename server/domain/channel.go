package domain

import (
	"strconv"
	"time"
)

type ChannelID int64

func ParseChannelID(s string) (ChannelID, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return ChannelID(id), nil
}

func (id ChannelID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

type Channel struct {
	ID           ChannelID
	Name         string
	PasswordHash PasswordHash
	CreatedAt    time.Time
}

func NewChannel(id ChannelID, name, password string, createdAt time.Time) Channel {
	return Channel{
		ID:           id,
		Name:         name,
		PasswordHash: HashPassword(password),
		CreatedAt:    createdAt,
	}
}

// Authenticate reports whether password digests to the stored hash.
func (c Channel) Authenticate(password string) bool {
	return c.PasswordHash.Matches(password)
}

type Subscription struct {
	PublisherID  ChannelID
	SubscriberID ChannelID
	SubscribedAt time.Time
}

func NewSubscription(publisherID, subscriberID ChannelID, subscribedAt time.Time) Subscription {
	return Subscription{
		PublisherID:  publisherID,
		SubscriberID: subscriberID,
		SubscribedAt: subscribedAt,
	}
}
