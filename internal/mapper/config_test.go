package mapper

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopeer-io/livemapper/pkg/options"
)

func newTestConfig() *Config {
	return &Config{
		HttpOptions:     options.NewHttpOptions(),
		CorsOptions:     options.NewCorsOptions(),
		CartrackOptions: options.NewCartrackOptions(),
		MqttOptions:     options.NewMqttOptions(),
	}
}

func TestNewMapperServerWithoutBroker(t *testing.T) {
	s, err := newTestConfig().NewMapperServer()
	require.NoError(t, err)
	assert.Equal(t, options.DefaultCartrackVehicleID, s.vehicleID)
}

func TestNewMapperServerRejectsBadBroker(t *testing.T) {
	cfg := newTestConfig()
	cfg.MqttOptions.Broker = "not-a-url"

	_, err := cfg.NewMapperServer()
	assert.Error(t, err)
}

func TestRunStopsOnCancel(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := lis.Addr().String()
	require.NoError(t, lis.Close())

	cfg := newTestConfig()
	cfg.HttpOptions.Addr = addr
	s, err := cfg.NewMapperServer()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	assert.NoError(t, s.Run(ctx))
}
