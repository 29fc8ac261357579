package adaptor

import (
	"log/slog"
	"time"

	"github.com/ponyo877/pushy/server/domain"
)

// Router fans a published message out to the live connections of its
// subscribers.
type Router struct {
	registry     *Registry
	writeTimeout time.Duration
	logger       *slog.Logger
}

func NewRouter(registry *Registry, writeTimeout time.Duration, logger *slog.Logger) *Router {
	return &Router{
		registry:     registry,
		writeTimeout: writeTimeout,
		logger:       logger,
	}
}

type failedDelivery struct {
	conn *Connection
	err  error
}

// Fanout writes "<publisher>: <message>" to every identified connection
// whose channel is in subscribers and returns how many writes succeeded.
// A connection whose write fails is dropped after the loop; it never stops
// delivery to the rest.
func (r *Router) Fanout(publisherID domain.ChannelID, message string, subscribers []domain.ChannelID) int {
	targets := r.registry.Subscribed(subscribers)
	line := domain.FormatDelivery(publisherID, message)

	var failed []failedDelivery
	delivered := 0
	for _, c := range targets {
		if err := c.Send(line, r.writeTimeout); err != nil {
			failed = append(failed, failedDelivery{conn: c, err: err})
			continue
		}
		delivered++
	}
	r.dropFailed(failed)

	r.logger.Debug("fanned out message",
		"publisher", publisherID,
		"subscribers", len(subscribers),
		"targets", len(targets),
		"delivered", delivered)
	return delivered
}

func (r *Router) dropFailed(failed []failedDelivery) {
	for _, f := range failed {
		if !r.registry.Drop(f.conn) {
			continue
		}
		r.logger.Warn("dropped subscriber after write fault",
			"connection", f.conn.ID(),
			"remote", f.conn.Session().Remote,
			"error", f.err)
	}
}
