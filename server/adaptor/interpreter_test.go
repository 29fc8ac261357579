package adaptor

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ponyo877/pushy/server/domain"
	"github.com/ponyo877/pushy/server/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsecase struct {
	channels    map[domain.ChannelID]domain.Channel
	subscribers map[domain.ChannelID][]domain.ChannelID
	err         error
	calls       int
	ctxErrs     []error
}

func newStubUsecase() *stubUsecase {
	return &stubUsecase{
		channels:    make(map[domain.ChannelID]domain.Channel),
		subscribers: make(map[domain.ChannelID][]domain.ChannelID),
	}
}

func (s *stubUsecase) Register(ctx context.Context, id domain.ChannelID, name, password string) (domain.Channel, error) {
	s.calls++
	s.ctxErrs = append(s.ctxErrs, ctx.Err())
	if s.err != nil {
		return domain.Channel{}, s.err
	}
	if _, ok := s.channels[id]; ok {
		return domain.Channel{}, usecase.ErrAlreadyExists
	}
	s.channels[id] = domain.NewChannel(id, name, password, time.Now())
	return s.channels[id], nil
}

func (s *stubUsecase) Identify(ctx context.Context, id domain.ChannelID, password string) (domain.Channel, error) {
	s.calls++
	s.ctxErrs = append(s.ctxErrs, ctx.Err())
	if s.err != nil {
		return domain.Channel{}, s.err
	}
	channel, ok := s.channels[id]
	if !ok || !channel.Authenticate(password) {
		return domain.Channel{}, usecase.ErrAuthentication
	}
	return channel, nil
}

func (s *stubUsecase) Subscribe(ctx context.Context, publisherID, subscriberID domain.ChannelID) error {
	s.calls++
	s.ctxErrs = append(s.ctxErrs, ctx.Err())
	if s.err != nil {
		return s.err
	}
	s.subscribers[publisherID] = append(s.subscribers[publisherID], subscriberID)
	return nil
}

func (s *stubUsecase) Subscribers(ctx context.Context, publisherID domain.ChannelID) ([]domain.ChannelID, error) {
	s.calls++
	s.ctxErrs = append(s.ctxErrs, ctx.Err())
	if s.err != nil {
		return nil, s.err
	}
	return s.subscribers[publisherID], nil
}

func newTestAdaptor(uc Usecase) *Adaptor {
	cfg := domain.NewConfig()
	return NewAdaptor(uc, cfg, discardLogger())
}

func (a *Adaptor) addFake(identified bool, id domain.ChannelID) (*Connection, *fakeConn) {
	return addConnection(a.registry, identified, id)
}

func lastReply(fc *fakeConn) string {
	out := fc.written.String()
	fc.written.Reset()
	return out
}

func TestInterpretIgnoresNonCommands(t *testing.T) {
	uc := newStubUsecase()
	a := newTestAdaptor(uc)
	c, fc := a.addFake(false, 0)

	a.interpret(context.Background(), c, []byte("hello everyone\n"))
	assert.Empty(t, fc.written.String())
	assert.Zero(t, uc.calls)
}

func TestInterpretProtocolErrors(t *testing.T) {
	uc := newStubUsecase()
	a := newTestAdaptor(uc)
	c, fc := a.addFake(false, 0)
	ctx := context.Background()

	a.interpret(ctx, c, []byte("/nick bob"))
	assert.Contains(t, lastReply(fc), `invalid command "nick"`)

	a.interpret(ctx, c, []byte("/reg 1 alice"))
	assert.Equal(t, domain.CommandRegister.Usage()+"\n", lastReply(fc))

	a.interpret(ctx, c, []byte("/id one p1"))
	assert.Equal(t, `invalid channel id "one"`+"\n", lastReply(fc))

	assert.Zero(t, uc.calls)
	assert.True(t, a.registry.Contains(c))
}

func TestInterpretAuthorization(t *testing.T) {
	uc := newStubUsecase()
	a := newTestAdaptor(uc)
	c, fc := a.addFake(false, 0)
	ctx := context.Background()

	a.interpret(ctx, c, []byte("/pub x"))
	assert.Equal(t, replyNotIdentified+"\n", lastReply(fc))
	a.interpret(ctx, c, []byte("/sub 1"))
	assert.Equal(t, replyNotIdentified+"\n", lastReply(fc))
	assert.Zero(t, uc.calls)
}

func TestInterpretIdentifyKeepsPriorStateOnFailure(t *testing.T) {
	uc := newStubUsecase()
	a := newTestAdaptor(uc)
	c, fc := a.addFake(false, 0)
	ctx := context.Background()

	a.interpret(ctx, c, []byte("/reg 1 alice p1"))
	assert.Equal(t, "registered channel 1 (alice)\n", lastReply(fc))
	a.interpret(ctx, c, []byte("/id 1 p1"))
	assert.Equal(t, "identified as channel 1 (alice)\n", lastReply(fc))

	a.interpret(ctx, c, []byte("/id 1 wrong"))
	assert.Equal(t, "identification failed for channel 1\n", lastReply(fc))
	id, ok := c.Session().ChannelID()
	require.True(t, ok)
	assert.Equal(t, domain.ChannelID(1), id)
}

func TestInterpretPublishStoreFaultDeliversNothing(t *testing.T) {
	uc := newStubUsecase()
	a := newTestAdaptor(uc)
	pub, fpub := a.addFake(true, 1)
	_, fsub := a.addFake(true, 2)
	uc.subscribers[1] = []domain.ChannelID{2}
	uc.err = fmt.Errorf("%w: database is locked", usecase.ErrStore)

	a.interpret(context.Background(), pub, []byte("/pub hello"))
	assert.Equal(t, replyStoreFault+"\n", lastReply(fpub))
	assert.Empty(t, fsub.written.String())
	assert.Equal(t, 2, a.registry.Len())
}

func TestInterpretPublish(t *testing.T) {
	uc := newStubUsecase()
	a := newTestAdaptor(uc)
	pub, fpub := a.addFake(true, 1)
	_, fsub := a.addFake(true, 2)
	_, fother := a.addFake(true, 3)
	uc.subscribers[1] = []domain.ChannelID{2}

	a.interpret(context.Background(), pub, []byte("/pub hello   world\n"))
	assert.Equal(t, "published to 1 subscriber(s)\n", lastReply(fpub))
	assert.Equal(t, "1: hello world\n", fsub.written.String())
	assert.Empty(t, fother.written.String())
}

func TestInterpretReplyWriteFaultDropsCaller(t *testing.T) {
	uc := newStubUsecase()
	a := newTestAdaptor(uc)
	c, fc := a.addFake(false, 0)
	fc.writeErr = fmt.Errorf("write: broken pipe")

	a.interpret(context.Background(), c, []byte("/nick"))
	assert.False(t, a.registry.Contains(c))
	assert.True(t, fc.closed)
}

func TestInterpretRegisterInvalidArgument(t *testing.T) {
	uc := newStubUsecase()
	a := newTestAdaptor(uc)
	c, fc := a.addFake(false, 0)
	uc.err = fmt.Errorf("register channel 1: %w", usecase.ErrInvalidArgument)

	a.interpret(context.Background(), c, []byte("/reg 1 alice p1"))
	assert.Equal(t, domain.CommandRegister.Usage()+"\n", lastReply(fc))
	assert.True(t, a.registry.Contains(c))
}

func TestInterpretStoreCallsOutliveCancellation(t *testing.T) {
	uc := newStubUsecase()
	a := newTestAdaptor(uc)
	pub, fpub := a.addFake(false, 0)
	_, fsub := a.addFake(true, 2)
	uc.subscribers[1] = []domain.ChannelID{2}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a.interpret(ctx, pub, []byte("/reg 1 alice p1"))
	assert.Equal(t, "registered channel 1 (alice)\n", lastReply(fpub))
	a.interpret(ctx, pub, []byte("/id 1 p1"))
	assert.Equal(t, "identified as channel 1 (alice)\n", lastReply(fpub))
	a.interpret(ctx, pub, []byte("/sub 2"))
	assert.Equal(t, "subscribed to channel 2\n", lastReply(fpub))
	a.interpret(ctx, pub, []byte("/pub still here"))
	assert.Equal(t, "published to 1 subscriber(s)\n", lastReply(fpub))
	assert.Equal(t, "1: still here\n", fsub.written.String())

	require.Len(t, uc.ctxErrs, 4)
	for _, err := range uc.ctxErrs {
		assert.NoError(t, err)
	}
}
