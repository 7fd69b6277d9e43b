package checker_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/plagiat/internal/analysis"
	"github.com/JaimeStill/plagiat/internal/checker"
)

func newClient(t *testing.T, handler http.HandlerFunc) checker.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &checker.Config{BaseURL: srv.URL + "/"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	return checker.New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func TestCheckText(t *testing.T) {
	var gotPath, gotText string
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		gotText = body["text"]
		writeJSON(w, http.StatusOK, `{"plagiarism_score": 45, "sources": [{"url": "http://example.com", "score": 67}]}`)
	})

	result, err := client.CheckText(context.Background(), "some text")
	if err != nil {
		t.Fatalf("CheckText error: %v", err)
	}

	if gotPath != "/check" {
		t.Errorf("path: got %s, want /check", gotPath)
	}
	if gotText != "some text" {
		t.Errorf("text: got %q", gotText)
	}
	if result.Score != 45 {
		t.Errorf("score: got %v, want 45", result.Score)
	}
	if len(result.Sources) != 1 {
		t.Fatalf("sources: got %d, want 1", len(result.Sources))
	}
	if result.Sources[0].URL != "http://example.com" || result.Sources[0].Score != 67 {
		t.Errorf("source: got %+v", result.Sources[0])
	}
}

func TestCheckTextNullSources(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"plagiarism_score": 0, "sources": null}`)
	})

	result, err := client.CheckText(context.Background(), "x")
	if err != nil {
		t.Fatalf("CheckText error: %v", err)
	}
	if result.Sources == nil || len(result.Sources) != 0 {
		t.Errorf("sources: got %#v, want empty slice", result.Sources)
	}
}

func TestCheckFileMultipart(t *testing.T) {
	var (
		gotName    string
		gotContent string
	)
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/upload" {
			t.Errorf("path: got %s, want /upload", r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		gotName = header.Filename
		gotContent = string(data)
		writeJSON(w, http.StatusOK, `{"plagiarism_score": 12, "sources": []}`)
	})

	result, err := client.CheckFile(context.Background(), "thesis.pdf", []byte("%PDF-1.7 body"))
	if err != nil {
		t.Fatalf("CheckFile error: %v", err)
	}

	if gotName != "thesis.pdf" {
		t.Errorf("filename: got %s", gotName)
	}
	if gotContent != "%PDF-1.7 body" {
		t.Errorf("content: got %q", gotContent)
	}
	if result.Score != 12 {
		t.Errorf("score: got %v, want 12", result.Score)
	}
}

func TestCheckFileRejected(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"detail": "Format non supporté"}`)
	})

	_, err := client.CheckFile(context.Background(), "notes.txt", []byte("plain"))
	if !errors.Is(err, checker.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}

	var se *checker.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Code != http.StatusBadRequest {
		t.Errorf("code: got %d, want 400", se.Code)
	}
	if se.Detail != "Format non supporté" {
		t.Errorf("detail: got %q", se.Detail)
	}
}

func TestShapeErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing score", `{"sources": []}`},
		{"source without score", `{"plagiarism_score": 10, "sources": [{"url": "http://a"}]}`},
		{"not json", `<html>oops</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, tt.body)
			})

			_, err := client.CheckText(context.Background(), "x")
			if !errors.Is(err, checker.ErrShape) {
				t.Errorf("expected ErrShape, got %v", err)
			}
		})
	}
}

func TestReformulate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantText   string
		wantMethod analysis.Method
	}{
		{"ai method", `{"original": "o", "reformulated": "X", "method": "AI"}`, "X", analysis.MethodAI},
		{"basic method", `{"reformulated": "Y", "method": "Basic"}`, "Y", analysis.MethodBasic},
		{"lowercase method", `{"reformulated": "Z", "method": "basic"}`, "Z", analysis.MethodBasic},
		{"missing method", `{"reformulated": "W"}`, "W", analysis.MethodUnset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUseAI bool
			client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				var body struct {
					Text  string `json:"text"`
					UseAI bool   `json:"use_ai"`
				}
				json.NewDecoder(r.Body).Decode(&body)
				gotUseAI = body.UseAI
				writeJSON(w, http.StatusOK, tt.body)
			})

			rw, err := client.Reformulate(context.Background(), "text", true)
			if err != nil {
				t.Fatalf("Reformulate error: %v", err)
			}
			if !gotUseAI {
				t.Error("use_ai should be sent as true")
			}
			if rw.Text != tt.wantText {
				t.Errorf("text: got %q, want %q", rw.Text, tt.wantText)
			}
			if rw.Method != tt.wantMethod {
				t.Errorf("method: got %q, want %q", rw.Method, tt.wantMethod)
			}
		})
	}
}

func TestReformulateMissingText(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"method": "AI"}`)
	})

	_, err := client.Reformulate(context.Background(), "text", true)
	if !errors.Is(err, checker.ErrShape) {
		t.Errorf("expected ErrShape, got %v", err)
	}
}

func TestServerError(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.CheckText(context.Background(), "x")
	if !errors.Is(err, checker.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	if got := checker.MapHTTPStatus(err); got != http.StatusBadGateway {
		t.Errorf("MapHTTPStatus: got %d, want 502", got)
	}
}

func TestUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	cfg := &checker.Config{BaseURL: url}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	client := checker.New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))

	if _, err := client.CheckText(context.Background(), "x"); !errors.Is(err, checker.ErrTransport) {
		t.Errorf("expected ErrTransport, got %v", err)
	}
	if err := client.Health(context.Background()); !errors.Is(err, checker.ErrTransport) {
		t.Errorf("health: expected ErrTransport, got %v", err)
	}
}

func TestHealth(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, `{"status": "healthy"}`)
	})

	if err := client.Health(context.Background()); err != nil {
		t.Errorf("Health error: %v", err)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"client error passes through", &checker.StatusError{Code: 400}, http.StatusBadRequest},
		{"shape", checker.ErrShape, http.StatusBadGateway},
		{"transport", checker.ErrTransport, http.StatusBadGateway},
		{"other", errors.New("x"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checker.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}
