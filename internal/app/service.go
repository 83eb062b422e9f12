package app

import (
	"time"

	"github.com/rs/zerolog"

	"aptly-ctl/internal/ports"
	"aptly-ctl/internal/types"
)

const defaultStagingWorkers = 4

// Service drives the put/remove/copy/search workflows against one remote
// aptly endpoint. The logger is injected so tests can capture events; the
// profile is loaded once per invocation and read-only afterwards.
type Service struct {
	Aptly   ports.AptlyPort
	Profile types.Profile
	Logger  zerolog.Logger
	Clock   func() time.Time
	Workers int
}

func NewService(aptly ports.AptlyPort, profile types.Profile, logger zerolog.Logger) Service {
	return Service{
		Aptly:   aptly,
		Profile: profile,
		Logger:  logger,
		Clock:   time.Now,
		Workers: defaultStagingWorkers,
	}
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock().UTC()
}
