package mapper

import (
	"fmt"

	"k8s.io/utils/clock"

	"github.com/autopeer-io/livemapper/internal/mapper/cartrack"
	"github.com/autopeer-io/livemapper/internal/mapper/core"
	"github.com/autopeer-io/livemapper/internal/mapper/core/service"
	"github.com/autopeer-io/livemapper/internal/mapper/notifier"
	"github.com/autopeer-io/livemapper/internal/mapper/server"
	"github.com/autopeer-io/livemapper/internal/mapper/server/http"
	"github.com/autopeer-io/livemapper/internal/mapper/statuscache"
	"github.com/autopeer-io/livemapper/pkg/options"
)

type Config struct {
	HttpOptions     *options.HttpOptions
	CorsOptions     *options.CorsOptions
	CartrackOptions *options.CartrackOptions
	MqttOptions     *options.MqttOptions
}

func (cfg *Config) NewMapperServer() (*MapperServer, error) {
	// 1. Outbound adapters
	fetcher := cartrack.NewClient(cfg.CartrackOptions)
	cache := statuscache.New(statuscache.DefaultTTL, clock.RealClock{})

	servers := []server.Server{}

	var statusNotifier core.StatusNotifier = notifier.Nop{}
	if cfg.MqttOptions.Enabled() {
		mqttNotifier, err := notifier.NewMQTTNotifier(cfg.MqttOptions)
		if err != nil {
			return nil, fmt.Errorf("failed to init notifier: %w", err)
		}
		statusNotifier = mqttNotifier
		// The notifier owns its broker connection, so it runs alongside the HTTP server.
		servers = append(servers, mqttNotifier)
	}

	// 2. Core
	svc := service.New(cfg.CartrackOptions.VehicleID, cache, fetcher, statusNotifier)

	// 3. Ingress
	servers = append(servers, http.NewServer(cfg.HttpOptions, cfg.CorsOptions, svc))

	return &MapperServer{
		serverManager: server.NewManager(servers...),
		vehicleID:     cfg.CartrackOptions.VehicleID,
		apiURL:        cfg.CartrackOptions.APIURL,
	}, nil
}
