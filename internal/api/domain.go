package api

import (
	"github.com/JaimeStill/plagiat/internal/config"
	"github.com/JaimeStill/plagiat/internal/sessions"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Sessions sessions.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(cfg *config.Config, runtime *Runtime) *Domain {
	sessionsSystem := sessions.New(
		runtime.Checker,
		&cfg.Workflow,
		sessions.Config{
			TTL:           cfg.Sessions.TTLDuration(),
			PurgeInterval: cfg.Sessions.PurgeIntervalDuration(),
		},
		runtime.Logger,
	)

	return &Domain{
		Sessions: sessionsSystem,
	}
}
