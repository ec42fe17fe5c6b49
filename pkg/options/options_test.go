package options

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		addr    string
		wantErr bool
	}{
		{"0.0.0.0:8000", false},
		{":8000", false},
		{"localhost:8080", false},
		{"[::1]:443", false},
		{"8000", true},
		{"0.0.0.0:http", true},
		{"0.0.0.0:70000", true},
		{"bad_host!:80", true},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			err := ValidateAddress(tt.addr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCartrackOptionsDefaults(t *testing.T) {
	o := NewCartrackOptions()
	assert.Equal(t, "https://fleetapi-za.cartrack.com/rest", o.APIURL)
	assert.Equal(t, "CAA649529", o.VehicleID)
	assert.Empty(t, o.AuthToken)
	assert.Empty(t, o.Validate())
}

func TestCartrackOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *CartrackOptions)
		errs   int
	}{
		{"ftp scheme", func(o *CartrackOptions) { o.APIURL = "ftp://example.com" }, 1},
		{"relative url", func(o *CartrackOptions) { o.APIURL = "/rest" }, 1},
		{"missing host", func(o *CartrackOptions) { o.APIURL = "https://" }, 1},
		{"empty vehicle", func(o *CartrackOptions) { o.VehicleID = "" }, 1},
		{"both broken", func(o *CartrackOptions) { o.APIURL = "::"; o.VehicleID = "" }, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewCartrackOptions()
			tt.mutate(o)
			assert.Len(t, o.Validate(), tt.errs)
		})
	}
}

func TestCartrackOptionsFlags(t *testing.T) {
	o := NewCartrackOptions()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.AddFlags(fs)

	require.NoError(t, fs.Parse([]string{
		"--cartrack.api-url=http://127.0.0.1:9000/rest",
		"--cartrack.vehicle-id=XYZ123",
		"--cartrack.auth-token=Basic abc",
	}))

	assert.Equal(t, "http://127.0.0.1:9000/rest", o.APIURL)
	assert.Equal(t, "XYZ123", o.VehicleID)
	assert.Equal(t, "Basic abc", o.AuthToken)
}

func TestHttpOptionsValidate(t *testing.T) {
	o := NewHttpOptions()
	assert.Empty(t, o.Validate())

	o.Network = "unix"
	o.Addr = "nope"
	o.ShutdownTimeout = 0
	assert.Len(t, o.Validate(), 3)
}

func TestMqttOptionsDisabledByDefault(t *testing.T) {
	o := NewMqttOptions()
	assert.False(t, o.Enabled())
	assert.Empty(t, o.Validate())

	o.Broker = "broker-without-scheme"
	assert.True(t, o.Enabled())
	assert.Len(t, o.Validate(), 1)

	o.Broker = "tcp://localhost:1883"
	assert.Empty(t, o.Validate())

	cfg := o.ToClientConfig()
	assert.Equal(t, "tcp://localhost:1883", cfg.BrokerURL)
	assert.EqualValues(t, 60, cfg.KeepAlive)
}

func TestCorsOptionsValidate(t *testing.T) {
	o := NewCorsOptions()
	assert.Equal(t, []string{"*"}, o.AllowedOrigins)
	assert.Empty(t, o.Validate())

	o.AllowedOrigins = nil
	assert.Len(t, o.Validate(), 1)
}
