package adaptor

import "github.com/ponyo877/pushy/server/domain"

// Registry is the live set of open connections. It is owned by the event
// loop and is not safe for concurrent use.
type Registry struct {
	connections map[string]*Connection
}

func NewRegistry() *Registry {
	return &Registry{
		connections: make(map[string]*Connection),
	}
}

func (r *Registry) Add(c *Connection) {
	r.connections[c.ID()] = c
}

func (r *Registry) Contains(c *Connection) bool {
	registered, ok := r.connections[c.ID()]
	return ok && registered == c
}

// Drop removes c and closes its stream. It reports false when c was
// already gone.
func (r *Registry) Drop(c *Connection) bool {
	if !r.Contains(c) {
		return false
	}
	delete(r.connections, c.ID())
	c.Close()
	return true
}

func (r *Registry) Len() int {
	return len(r.connections)
}

// Subscribed returns every identified connection whose channel is in ids.
// Order is unspecified.
func (r *Registry) Subscribed(ids []domain.ChannelID) []*Connection {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[domain.ChannelID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	var targets []*Connection
	for _, c := range r.connections {
		id, ok := c.Session().ChannelID()
		if !ok {
			continue
		}
		if _, ok := set[id]; ok {
			targets = append(targets, c)
		}
	}
	return targets
}

// IdentifiedChannels lists the channel of every identified connection,
// once per connection.
func (r *Registry) IdentifiedChannels() []domain.ChannelID {
	var ids []domain.ChannelID
	for _, c := range r.connections {
		if id, ok := c.Session().ChannelID(); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// CloseAll drops every connection and returns how many there were.
func (r *Registry) CloseAll() int {
	n := len(r.connections)
	for id, c := range r.connections {
		delete(r.connections, id)
		c.Close()
	}
	return n
}
