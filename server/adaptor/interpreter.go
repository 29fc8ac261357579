package adaptor

import (
	"context"
	"errors"
	"fmt"

	"github.com/ponyo877/pushy/server/domain"
	"github.com/ponyo877/pushy/server/usecase"
)

const (
	replyNotIdentified = "not identified: use /id <channel_id> <password> first"
	replyStoreFault    = "internal error: command failed, nothing was changed"
)

// interpret runs one command payload to completion. Every outcome,
// including store faults, becomes a reply line to c; nothing is returned
// to the loop.
func (a *Adaptor) interpret(ctx context.Context, c *Connection, payload []byte) {
	cmd, ok := domain.ParseCommand(payload)
	if !ok {
		a.logger.Debug("ignoring non-command payload", "connection", c.ID(), "bytes", len(payload))
		return
	}
	// argument values are never logged; they carry passwords
	a.logger.Info("executing command", "connection", c.ID(), "command", cmd.Name, "args", len(cmd.Args))

	if cmd.Kind != domain.CommandUnknown && !cmd.HasMinArgs() {
		a.reply(c, cmd.Kind.Usage())
		return
	}

	// an interrupt must not abort a store transaction half way
	storeCtx := context.WithoutCancel(ctx)

	var reply string
	switch cmd.Kind {
	case domain.CommandRegister:
		reply = a.register(storeCtx, c, cmd.Args)
	case domain.CommandIdentify:
		reply = a.identify(storeCtx, c, cmd.Args)
	case domain.CommandPublish:
		reply = a.publish(storeCtx, c, cmd.Args)
	case domain.CommandSubscribe:
		reply = a.subscribe(storeCtx, c, cmd.Args)
	default:
		reply = fmt.Sprintf("invalid command %q; %s", cmd.Name, domain.CommandUnknown.Usage())
	}
	a.reply(c, reply)
}

func (a *Adaptor) reply(c *Connection, line string) {
	if err := c.Send(line, a.cfg.WriteTimeout); err != nil {
		a.drop(c, err)
	}
}

func (a *Adaptor) register(ctx context.Context, c *Connection, args []string) string {
	id, err := domain.ParseChannelID(args[0])
	if err != nil {
		return invalidChannelID(args[0])
	}
	channel, err := a.uc.Register(ctx, id, args[1], args[2])
	switch {
	case err == nil:
		return fmt.Sprintf("registered channel %d (%s)", channel.ID, channel.Name)
	case errors.Is(err, usecase.ErrAlreadyExists):
		return fmt.Sprintf("channel %d is already registered", id)
	case errors.Is(err, usecase.ErrInvalidArgument):
		return domain.CommandRegister.Usage()
	default:
		return a.storeFault(c, domain.CommandRegister, err)
	}
}

func (a *Adaptor) identify(ctx context.Context, c *Connection, args []string) string {
	id, err := domain.ParseChannelID(args[0])
	if err != nil {
		return invalidChannelID(args[0])
	}
	channel, err := a.uc.Identify(ctx, id, args[1])
	switch {
	case err == nil:
		c.Session().Identify(channel.ID)
		a.logger.Info("session identified", "connection", c.ID(), "channel", channel.ID)
		return fmt.Sprintf("identified as channel %d (%s)", channel.ID, channel.Name)
	case errors.Is(err, usecase.ErrAuthentication):
		a.logger.Info("identification failed", "connection", c.ID(), "channel", id)
		return fmt.Sprintf("identification failed for channel %d", id)
	default:
		return a.storeFault(c, domain.CommandIdentify, err)
	}
}

func (a *Adaptor) publish(ctx context.Context, c *Connection, args []string) string {
	channelID, ok := c.Session().ChannelID()
	if !ok {
		return replyNotIdentified
	}
	message := domain.JoinMessage(args)
	subscribers, err := a.uc.Subscribers(ctx, channelID)
	if err != nil {
		return a.storeFault(c, domain.CommandPublish, err)
	}
	delivered := a.router.Fanout(channelID, message, subscribers)
	return fmt.Sprintf("published to %d subscriber(s)", delivered)
}

func (a *Adaptor) subscribe(ctx context.Context, c *Connection, args []string) string {
	subscriberID, ok := c.Session().ChannelID()
	if !ok {
		return replyNotIdentified
	}
	publisherID, err := domain.ParseChannelID(args[0])
	if err != nil {
		return invalidChannelID(args[0])
	}
	err = a.uc.Subscribe(ctx, publisherID, subscriberID)
	switch {
	case err == nil:
		return fmt.Sprintf("subscribed to channel %d", publisherID)
	case errors.Is(err, usecase.ErrAlreadyExists):
		return fmt.Sprintf("already subscribed to channel %d", publisherID)
	case errors.Is(err, usecase.ErrNotFound):
		return fmt.Sprintf("channel %d does not exist", publisherID)
	default:
		return a.storeFault(c, domain.CommandSubscribe, err)
	}
}

func (a *Adaptor) storeFault(c *Connection, kind domain.CommandKind, err error) string {
	a.logger.Error("command failed", "connection", c.ID(), "command", kind.String(), "error", err)
	return replyStoreFault
}

func invalidChannelID(arg string) string {
	return fmt.Sprintf("invalid channel id %q", arg)
}
