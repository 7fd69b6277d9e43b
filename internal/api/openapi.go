package api

import (
	"net/http"

	"github.com/JaimeStill/plagiat/internal/config"
	"github.com/JaimeStill/plagiat/internal/sessions"
	"github.com/JaimeStill/plagiat/pkg/openapi"
)

func buildSpec(cfg *config.Config) *openapi.Spec {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)

	sessions.RegisterSpec(spec)

	spec.Components.AddSchemas(map[string]*openapi.Schema{
		"ServiceStatus": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"base_url":  {Type: "string"},
				"reachable": {Type: "boolean"},
				"error":     {Type: "string"},
			},
		},
	})
	spec.AddOperation(http.MethodGet, "/service/health", &openapi.Operation{
		Summary: "Probe the analysis service",
		Tags:    []string{"Service"},
		Responses: map[int]*openapi.Response{
			http.StatusOK:         openapi.ResponseJSON("Service reachable", "ServiceStatus"),
			http.StatusBadGateway: openapi.ResponseJSON("Service unreachable", "ServiceStatus"),
		},
	})

	return spec
}

// specHandler serializes the document once and serves the cached bytes.
func specHandler(cfg *config.Config) (http.HandlerFunc, error) {
	data, err := openapi.MarshalJSON(buildSpec(cfg))
	if err != nil {
		return nil, err
	}
	return openapi.ServeSpec(data), nil
}
