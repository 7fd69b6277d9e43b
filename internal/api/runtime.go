package api

import (
	"github.com/gorilla/websocket"

	"github.com/JaimeStill/plagiat/internal/config"
	"github.com/JaimeStill/plagiat/internal/infrastructure"
	"github.com/JaimeStill/plagiat/pkg/middleware"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Upgrader *websocket.Upgrader
}

// NewRuntime creates an API runtime with a module-scoped logger and a
// websocket upgrader that honors the CORS origin list.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Checker:   infra.Checker,
		},
		Upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     middleware.CheckOrigin(&cfg.API.CORS),
		},
	}
}
