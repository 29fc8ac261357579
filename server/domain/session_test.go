package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionIdentify(t *testing.T) {
	s := NewSession("01J", "127.0.0.1:4000", time.Now())

	_, ok := s.ChannelID()
	assert.False(t, ok)
	assert.Contains(t, s.String(), "anonymous")

	s.Identify(1)
	id, ok := s.ChannelID()
	assert.True(t, ok)
	assert.Equal(t, ChannelID(1), id)

	// re-identify overwrites
	s.Identify(2)
	id, _ = s.ChannelID()
	assert.Equal(t, ChannelID(2), id)
	assert.Contains(t, s.String(), "channel 2")
}

func TestFormatDelivery(t *testing.T) {
	assert.Equal(t, "1: hello world", FormatDelivery(1, JoinMessage([]string{"hello", "world"})))
}

func TestParseChannelID(t *testing.T) {
	id, err := ParseChannelID("42")
	assert.NoError(t, err)
	assert.Equal(t, ChannelID(42), id)

	_, err = ParseChannelID("abc")
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	cfg := NewConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "0.0.0.0:5000", cfg.Address())

	cfg.Port = 70000
	cfg.Backlog = 0
	cfg.DatabasePath = ""
	err := cfg.Validate()
	assert.ErrorContains(t, err, "port 70000")
	assert.ErrorContains(t, err, "backlog")
	assert.ErrorContains(t, err, "database path")
}
