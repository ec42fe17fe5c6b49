package mapper

import (
	"context"

	"github.com/autopeer-io/livemapper/internal/mapper/server"
	"github.com/autopeer-io/livemapper/pkg/log"
)

// MapperServer is the main application struct for livemapper.
type MapperServer struct {
	serverManager *server.Manager
	vehicleID     string
	apiURL        string
}

// Run starts every server and blocks until ctx is cancelled or one of them fails.
func (s *MapperServer) Run(ctx context.Context) error {
	log.Info("Starting Live Mapper...", "vehicleID", s.vehicleID, "apiURL", s.apiURL)

	if err := s.serverManager.Start(ctx); err != nil {
		log.Error(err, "Live Mapper stopped with error")
		return err
	}

	log.Info("Live Mapper stopped gracefully")
	return nil
}
