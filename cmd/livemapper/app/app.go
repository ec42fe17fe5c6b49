package app

import (
	"fmt"

	genericapiserver "k8s.io/apiserver/pkg/server"
	"k8s.io/klog/v2"

	"github.com/autopeer-io/livemapper/cmd/livemapper/app/options"
	"github.com/autopeer-io/livemapper/pkg/app"
	"github.com/autopeer-io/livemapper/pkg/log"
)

const (
	commandName = "livemapper"
	commandDesc = `The Live Mapper proxies the status of one Cartrack-tracked vehicle to
browser clients. It keeps the Cartrack token on the server side, caches the
last successful answer for 10 seconds and optionally republishes every fresh
status to an MQTT broker.

Every flag can also be set through the environment, e.g. --cartrack.api-url
as CARTRACK_API_URL, or through a .env file.`
)

func NewApp() *app.App {
	opts := options.NewMapperOptions()
	application := app.NewApp(
		commandName,
		"Launch the Live Mapper vehicle status proxy",
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithDefaultValidArgs(),
		app.WithRunFunc(run(opts)),
	)
	return application
}

func run(opts *options.MapperOptions) app.RunFunc {
	return func() error {
		log.Init(opts.Log)
		defer log.Sync()

		// Route client-go style logging of the k8s helpers through zap.
		klog.SetLogger(log.Logr())

		ctx := genericapiserver.SetupSignalContext()

		cfg, err := opts.Config()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		server, err := cfg.NewMapperServer()
		if err != nil {
			return fmt.Errorf("failed to create mapper server: %w", err)
		}

		return server.Run(ctx)
	}
}
