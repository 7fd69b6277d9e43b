package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/plagiat/internal/config"
	"github.com/JaimeStill/plagiat/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) error {
	groups := []routes.Group{
		domain.Sessions.Handler(cfg.API.MaxUploadSizeBytes(), runtime.Upgrader).Routes(),
		newServiceHandler(runtime.Checker, cfg.Service.BaseURL, runtime.Logger).routes(),
	}

	spec, err := specHandler(cfg)
	if err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	groups = append(groups, routes.Group{
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/openapi.json", Handler: spec},
		},
	})

	routes.Register(mux, groups...)

	for _, pattern := range routes.Patterns(groups...) {
		runtime.Logger.Debug("route registered", "pattern", pattern)
	}

	return nil
}
