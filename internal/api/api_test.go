package api_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/plagiat/internal/api"
	"github.com/JaimeStill/plagiat/internal/config"
	"github.com/JaimeStill/plagiat/internal/infrastructure"
	"github.com/JaimeStill/plagiat/internal/sessions"
	"github.com/JaimeStill/plagiat/internal/workflow"
	"github.com/JaimeStill/plagiat/pkg/module"
)

func fakeService(t *testing.T, healthy bool) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /check", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"plagiarism_score": 35, "sources": [{"url": "https://example.com", "score": 35}]}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func loadConfig(t *testing.T, serviceURL string) *config.Config {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := fmt.Sprintf(`
version = "test"

[service]
base_url = %q
timeout = "5s"

[workflow]
tick_interval = "1ms"
settle_delay = "0s"
`, serviceURL)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}

func setup(t *testing.T, healthy bool) (*module.Router, *infrastructure.Infrastructure) {
	t.Helper()

	cfg := loadConfig(t, fakeService(t, healthy).URL)

	infra, err := infrastructure.NewWithOutput(cfg, io.Discard)
	if err != nil {
		t.Fatalf("infrastructure: %v", err)
	}

	m, err := api.NewModule(cfg, infra)
	if err != nil {
		t.Fatalf("NewModule: %v", err)
	}
	if m.Prefix() != "/api" {
		t.Errorf("prefix = %s, want /api", m.Prefix())
	}

	t.Cleanup(func() {
		infra.Lifecycle.Shutdown(time.Second)
	})

	router := module.NewRouter()
	router.Mount(m)
	return router, infra
}

func TestSessionLifecycleThroughModule(t *testing.T) {
	router, _ := setup(t, true)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/sessions", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", rec.Code)
	}

	var created sessions.View
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	path := "/api/sessions/" + created.ID.String()

	rec = httptest.NewRecorder()
	req := httptest.NewRequest("POST", path+"/check", strings.NewReader(`{"text":"some text"}`))
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("check status = %d, want 202: %s", rec.Code, rec.Body.String())
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))

		var v sessions.View
		if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if v.Phase == workflow.PhaseResultReady {
			if v.Analysis == nil || v.Analysis.Score != 35 {
				t.Errorf("analysis = %+v", v.Analysis)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("analysis never completed: %+v", v)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestShutdownClosesSessions(t *testing.T) {
	router, infra := setup(t, true)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/sessions", nil))

	var created sessions.View
	json.NewDecoder(rec.Body).Decode(&created)

	if err := infra.Lifecycle.Shutdown(time.Second); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/sessions/"+created.ID.String(), nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("session after shutdown: status = %d, want 404", rec.Code)
	}
}

func TestServiceHealth(t *testing.T) {
	tests := []struct {
		name      string
		healthy   bool
		wantCode  int
		reachable bool
	}{
		{"reachable", true, http.StatusOK, true},
		{"unavailable", false, http.StatusBadGateway, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := setup(t, tt.healthy)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/service/health", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}

			var body struct {
				Reachable bool `json:"reachable"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Reachable != tt.reachable {
				t.Errorf("reachable = %v, want %v", body.Reachable, tt.reachable)
			}
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	router, _ := setup(t, true)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/unknown", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestOpenAPIDocument(t *testing.T) {
	router, _ := setup(t, true)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/openapi.json", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var doc struct {
		Info struct {
			Title   string `json:"title"`
			Version string `json:"version"`
		} `json:"info"`
		Servers []struct {
			URL string `json:"url"`
		} `json:"servers"`
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&doc); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if doc.Info.Title != "Plagiat API" || doc.Info.Version != "test" {
		t.Errorf("info = %+v", doc.Info)
	}
	if len(doc.Servers) != 1 || doc.Servers[0].URL != "/api" {
		t.Errorf("servers = %+v", doc.Servers)
	}

	for path, method := range map[string]string{
		"/sessions":                          "post",
		"/sessions/{id}/check":               "post",
		"/sessions/{id}/watch":               "get",
		"/sessions/{id}/reformulation/adopt": "post",
		"/service/health":                    "get",
	} {
		if _, ok := doc.Paths[path][method]; !ok {
			t.Errorf("document missing %s %s", method, path)
		}
	}
}
