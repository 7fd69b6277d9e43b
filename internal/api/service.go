package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/JaimeStill/plagiat/internal/checker"
	"github.com/JaimeStill/plagiat/pkg/handlers"
	"github.com/JaimeStill/plagiat/pkg/routes"
)

const serviceProbeTimeout = 5 * time.Second

// serviceStatus reports whether the analysis service answered a probe.
type serviceStatus struct {
	BaseURL   string `json:"base_url"`
	Reachable bool   `json:"reachable"`
	Error     string `json:"error,omitempty"`
}

type serviceHandler struct {
	client  checker.Client
	baseURL string
	logger  *slog.Logger
}

func newServiceHandler(client checker.Client, baseURL string, logger *slog.Logger) *serviceHandler {
	return &serviceHandler{
		client:  client,
		baseURL: baseURL,
		logger:  logger.With("handler", "service"),
	}
}

func (h *serviceHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/service",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/health", Handler: h.health},
		},
	}
}

func (h *serviceHandler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), serviceProbeTimeout)
	defer cancel()

	status := serviceStatus{BaseURL: h.baseURL, Reachable: true}

	if err := h.client.Health(ctx); err != nil {
		h.logger.Warn("analysis service probe failed", "error", err)
		status.Reachable = false
		status.Error = err.Error()
		handlers.RespondJSON(w, http.StatusBadGateway, status)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, status)
}
