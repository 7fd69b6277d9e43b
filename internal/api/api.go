// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/JaimeStill/plagiat/internal/config"
	"github.com/JaimeStill/plagiat/internal/infrastructure"
	"github.com/JaimeStill/plagiat/pkg/middleware"
	"github.com/JaimeStill/plagiat/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// Sessions are closed when the lifecycle shuts down.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(cfg, runtime)

	runtime.Lifecycle.OnShutdown(func() {
		<-runtime.Lifecycle.Context().Done()
		domain.Sessions.Close()
	})

	mux := http.NewServeMux()
	if err := registerRoutes(mux, domain, cfg, runtime); err != nil {
		return nil, err
	}

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(middleware.Recover(runtime.Logger))

	return m, nil
}
