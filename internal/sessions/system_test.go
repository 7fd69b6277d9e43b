package sessions_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/plagiat/internal/analysis"
	"github.com/JaimeStill/plagiat/internal/checker"
	"github.com/JaimeStill/plagiat/internal/documents"
	"github.com/JaimeStill/plagiat/internal/sessions"
	"github.com/JaimeStill/plagiat/internal/workflow"
)

type fakeChecker struct {
	mu      sync.Mutex
	gate    chan struct{}
	result  *analysis.Result
	rewrite *analysis.Rewrite
	files   []string
}

func (f *fakeChecker) wait(ctx context.Context) error {
	f.mu.Lock()
	gate := f.gate
	f.mu.Unlock()

	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeChecker) CheckText(ctx context.Context, text string) (*analysis.Result, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.result, nil
}

func (f *fakeChecker) CheckFile(ctx context.Context, filename string, data []byte) (*analysis.Result, error) {
	f.mu.Lock()
	f.files = append(f.files, filename)
	f.mu.Unlock()

	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.result, nil
}

func (f *fakeChecker) Reformulate(ctx context.Context, text string, useAI bool) (*analysis.Rewrite, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.rewrite, nil
}

func (f *fakeChecker) Health(ctx context.Context) error {
	return nil
}

func newFakeChecker() *fakeChecker {
	return &fakeChecker{
		result: &analysis.Result{
			Score: 82,
			Sources: []analysis.Source{
				{URL: "https://example.com/articles/2024/a-very-long-path-that-keeps-going-and-going", Score: 82},
				{URL: "https://example.org/short", Score: 12},
			},
		},
		rewrite: &analysis.Rewrite{Original: "hello", Text: "greetings", Method: analysis.MethodAI},
	}
}

func workflowConfig(t *testing.T) *workflow.Config {
	t.Helper()

	cfg := &workflow.Config{TickInterval: "1ms", SettleDelay: "0s"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize workflow config: %v", err)
	}
	return cfg
}

func newSystem(t *testing.T, client checker.Client, cfg sessions.Config) sessions.System {
	t.Helper()

	sys := sessions.New(client, workflowConfig(t), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(sys.Close)
	return sys
}

func defaultConfig() sessions.Config {
	return sessions.Config{TTL: time.Hour, PurgeInterval: time.Minute}
}

func TestSystemCreateFindDelete(t *testing.T) {
	sys := newSystem(t, newFakeChecker(), defaultConfig())

	sess := sys.Create()
	if sess.ID == uuid.Nil {
		t.Fatal("session id should be set")
	}
	if sys.Count() != 1 {
		t.Errorf("count = %d, want 1", sys.Count())
	}

	found, err := sys.Find(sess.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found != sess {
		t.Error("find should return the created session")
	}

	if err := sys.Delete(sess.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !sess.Controller.Closed() {
		t.Error("delete should close the controller")
	}
	if _, err := sys.Find(sess.ID); !errors.Is(err, sessions.ErrNotFound) {
		t.Errorf("find after delete: got %v, want ErrNotFound", err)
	}
	if err := sys.Delete(sess.ID); !errors.Is(err, sessions.ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
}

func TestSystemEvictsIdleSessions(t *testing.T) {
	sys := newSystem(t, newFakeChecker(), sessions.Config{
		TTL:           20 * time.Millisecond,
		PurgeInterval: 5 * time.Millisecond,
	})

	sess := sys.Create()

	deadline := time.Now().Add(2 * time.Second)
	for !sess.Controller.Closed() {
		if time.Now().After(deadline) {
			t.Fatal("expired session was never evicted")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if _, err := sys.Find(sess.ID); !errors.Is(err, sessions.ErrNotFound) {
		t.Errorf("find after eviction: got %v, want ErrNotFound", err)
	}
}

func TestSystemFindSkipsClosedSession(t *testing.T) {
	sys := newSystem(t, newFakeChecker(), defaultConfig())

	sess := sys.Create()
	sess.Controller.Close()

	if _, err := sys.Find(sess.ID); !errors.Is(err, sessions.ErrNotFound) {
		t.Errorf("find closed session: got %v, want ErrNotFound", err)
	}
	if sys.Count() != 0 {
		t.Errorf("count = %d, want 0", sys.Count())
	}
}

func TestSystemFindDuringEviction(t *testing.T) {
	sys := newSystem(t, newFakeChecker(), sessions.Config{
		TTL:           time.Millisecond,
		PurgeInterval: time.Millisecond,
	})

	for range 20 {
		sess := sys.Create()

		deadline := time.Now().Add(time.Second)
		for {
			found, err := sys.Find(sess.ID)
			if err != nil {
				break
			}
			if found.Controller.Closed() {
				t.Fatal("find returned a closed session")
			}
			if time.Now().After(deadline) {
				t.Fatal("session never expired")
			}
			time.Sleep(2 * time.Millisecond)
		}

		for !sess.Controller.Closed() {
			if time.Now().After(deadline) {
				t.Fatal("expired session was never evicted")
			}
			time.Sleep(time.Millisecond)
		}

		if _, err := sys.Find(sess.ID); !errors.Is(err, sessions.ErrNotFound) {
			t.Errorf("find after eviction: got %v, want ErrNotFound", err)
		}
	}
}

func TestSystemCloseCancelsInFlightWork(t *testing.T) {
	client := newFakeChecker()
	client.gate = make(chan struct{})

	sys := sessions.New(client, workflowConfig(t), defaultConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	a := sys.Create()
	b := sys.Create()
	if !a.Controller.SubmitText("pending") {
		t.Fatal("submit should be accepted")
	}

	done := make(chan struct{})
	go func() {
		sys.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("close blocked on in-flight work")
	}

	if !a.Controller.Closed() || !b.Controller.Closed() {
		t.Error("close should close every controller")
	}
	if sys.Count() != 0 {
		t.Errorf("count = %d, want 0", sys.Count())
	}

	sys.Close()
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{sessions.ErrNotFound, http.StatusNotFound},
		{sessions.ErrInvalidID, http.StatusBadRequest},
		{fmt.Errorf("%w: bad json", sessions.ErrInvalidRequest), http.StatusBadRequest},
		{sessions.ErrEmptyText, http.StatusUnprocessableEntity},
		{sessions.ErrBusy, http.StatusConflict},
		{sessions.ErrNoReformulation, http.StatusConflict},
		{sessions.ErrClosed, http.StatusGone},
		{documents.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{documents.ErrInvalidFile, http.StatusBadRequest},
		{checker.ErrTransport, http.StatusBadGateway},
		{errors.New("unexpected"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := sessions.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}
