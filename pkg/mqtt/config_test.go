package mqtt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientValidatesConfig(t *testing.T) {
	_, err := NewClient(nil)
	assert.Error(t, err)

	_, err = NewClient(&ClientConfig{})
	assert.ErrorContains(t, err, "broker url is required")

	_, err = NewClient(&ClientConfig{BrokerURL: "localhost"})
	assert.ErrorContains(t, err, "has no host")

	_, err = NewClient(&ClientConfig{BrokerURL: "tcp://localhost:1883", WillTopic: "x", WillQoS: 3})
	assert.ErrorContains(t, err, "invalid will qos")
}

func TestNewClientAppliesDefaults(t *testing.T) {
	cfg := &ClientConfig{BrokerURL: "tcp://localhost:1883"}
	c, err := NewClient(cfg)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.ConnectTimeout)
	assert.EqualValues(t, 60, cfg.KeepAlive)
	assert.False(t, c.IsConnected())
}

func TestOperationsBeforeStart(t *testing.T) {
	c, err := NewClient(&ClientConfig{BrokerURL: "tcp://localhost:1883"})
	require.NoError(t, err)

	assert.ErrorIs(t, c.Publish(t.Context(), "a/b", 1, false, nil), ErrNotStarted)
	assert.ErrorIs(t, c.AwaitConnection(t.Context()), ErrNotStarted)
	c.Disconnect(t.Context())
}

func TestWillMessage(t *testing.T) {
	c := &pahoClient{cfg: &ClientConfig{BrokerURL: "tcp://localhost:1883"}}
	assert.Nil(t, c.willMessage())

	c.cfg.WillTopic = "livemapper/v1/presence/a"
	c.cfg.WillPayload = []byte("offline")
	c.cfg.WillQoS = 1
	c.cfg.WillRetain = true

	w := c.willMessage()
	require.NotNil(t, w)
	assert.Equal(t, "livemapper/v1/presence/a", w.Topic)
	assert.Equal(t, []byte("offline"), w.Payload)
	assert.True(t, w.Retain)
}
