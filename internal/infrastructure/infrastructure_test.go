package infrastructure_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/plagiat/internal/config"
	"github.com/JaimeStill/plagiat/internal/infrastructure"
)

func validConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	cfg := &config.Config{Version: "0.1.0"}
	cfg.Service.BaseURL = baseURL
	if err := cfg.Service.Finalize(nil); err != nil {
		t.Fatalf("service finalize: %v", err)
	}
	if err := cfg.Logging.Finalize(); err != nil {
		t.Fatalf("logging finalize: %v", err)
	}
	return cfg
}

func TestNew(t *testing.T) {
	infra, err := infrastructure.NewWithOutput(validConfig(t, "http://localhost:8000"), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer infra.Close()

	if infra.Lifecycle == nil {
		t.Error("Lifecycle is nil")
	}
	if infra.Logger == nil {
		t.Error("Logger is nil")
	}
	if infra.Checker == nil {
		t.Error("Checker is nil")
	}
}

func TestStartRegistersServiceProbe(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	infra, err := infrastructure.NewWithOutput(validConfig(t, srv.URL), &out)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := infra.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	infra.Lifecycle.WaitForStartup()

	if err := infra.Lifecycle.CheckReady(context.Background()); err != nil {
		t.Errorf("expected ready, got %v", err)
	}
	if !strings.Contains(out.String(), "analysis service reachable") {
		t.Errorf("startup log missing, got %q", out.String())
	}

	healthy.Store(false)
	err = infra.Lifecycle.CheckReady(context.Background())
	if err == nil || !strings.Contains(err.Error(), "analysis_service") {
		t.Errorf("expected analysis_service failure, got %v", err)
	}

	if err := infra.Lifecycle.Shutdown(time.Second); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestLoggerJSONFormat(t *testing.T) {
	cfg := &config.LoggingConfig{Format: "json", Level: "debug"}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	var out bytes.Buffer
	logger, sink := infrastructure.NewLogger(cfg, &out)
	if sink != nil {
		t.Error("no file sink expected without a file")
	}

	logger.Debug("hello", "key", "value")

	var record map[string]any
	if err := json.Unmarshal(out.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, out.String())
	}
	if record["msg"] != "hello" || record["key"] != "value" {
		t.Errorf("record: got %v", record)
	}
}

func TestLoggerLevelFilters(t *testing.T) {
	cfg := &config.LoggingConfig{Level: "warn"}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	var out bytes.Buffer
	logger, _ := infrastructure.NewLogger(cfg, &out)

	logger.Info("dropped")
	logger.Warn("kept")

	if strings.Contains(out.String(), "dropped") {
		t.Error("info record should be filtered at warn level")
	}
	if !strings.Contains(out.String(), "kept") {
		t.Error("warn record should be written")
	}
}

func TestLoggerFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plagiat.log")
	cfg := &config.LoggingConfig{File: path}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	var out bytes.Buffer
	logger, sink := infrastructure.NewLogger(cfg, &out)
	if sink == nil {
		t.Fatal("file sink expected")
	}

	logger.Info("persisted")
	if err := sink.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "persisted") {
		t.Errorf("log file missing record: %q", data)
	}
	if !strings.Contains(out.String(), "persisted") {
		t.Error("console output missing record")
	}
}
