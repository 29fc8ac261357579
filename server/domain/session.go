package domain

import "time"

// Session is the identification state of one live connection. It starts
// Anonymous and becomes Identified after a successful identify; a later
// successful identify replaces the channel.
type Session struct {
	ID          string
	Remote      string
	ConnectedAt time.Time

	channelID  ChannelID
	identified bool
}

func NewSession(id, remote string, connectedAt time.Time) *Session {
	return &Session{
		ID:          id,
		Remote:      remote,
		ConnectedAt: connectedAt,
	}
}

func (s *Session) Identify(id ChannelID) {
	s.channelID = id
	s.identified = true
}

func (s *Session) ChannelID() (ChannelID, bool) {
	return s.channelID, s.identified
}

func (s *Session) String() string {
	if !s.identified {
		return s.ID + "@" + s.Remote + "(anonymous)"
	}
	return s.ID + "@" + s.Remote + "(channel " + s.channelID.String() + ")"
}
