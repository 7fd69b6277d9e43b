// Package sessions exposes workflow controllers over HTTP. Each session owns
// one controller held in memory until it is deleted or sits idle past its TTL.
package sessions

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/patrickmn/go-cache"

	"github.com/JaimeStill/plagiat/internal/checker"
	"github.com/JaimeStill/plagiat/internal/workflow"
)

// Session pairs an identifier with its workflow controller.
type Session struct {
	ID         uuid.UUID
	CreatedAt  time.Time
	Controller *workflow.Controller
}

// View returns the client-facing representation of the session's current state.
func (s *Session) View() View {
	return NewView(s.ID, s.CreatedAt, s.Controller.Snapshot())
}

// System manages the set of live sessions.
type System interface {
	Create() *Session
	Find(id uuid.UUID) (*Session, error)
	Delete(id uuid.UUID) error
	Count() int
	Close()
	Handler(maxUploadSize int64, upgrader *websocket.Upgrader) *Handler
}

// Config holds session retention settings.
type Config struct {
	TTL           time.Duration
	PurgeInterval time.Duration
}

type system struct {
	client   checker.Client
	workflow *workflow.Config
	logger   *slog.Logger
	cache    *cache.Cache

	closeOnce sync.Once
}

// New creates a System whose sessions drive client with the given workflow
// configuration. Sessions untouched for cfg.TTL are evicted and their
// controllers closed.
func New(client checker.Client, wf *workflow.Config, cfg Config, logger *slog.Logger) System {
	s := &system{
		client:   client,
		workflow: wf,
		logger:   logger.With("system", "sessions"),
		cache:    cache.New(cfg.TTL, cfg.PurgeInterval),
	}

	s.cache.OnEvicted(func(key string, value any) {
		if sess, ok := value.(*Session); ok {
			sess.Controller.Close()
			s.logger.Debug("session evicted", "id", key)
		}
	})

	return s
}

func (s *system) Create() *Session {
	sess := &Session{
		ID:         uuid.New(),
		CreatedAt:  time.Now().UTC(),
		Controller: workflow.New(s.client, s.workflow, s.logger),
	}

	s.cache.SetDefault(sess.ID.String(), sess)
	s.logger.Info("session created", "id", sess.ID)
	return sess
}

// Find returns the session and extends its lifetime. A session evicted
// while it is being looked up is reported as not found rather than re-armed.
func (s *system) Find(id uuid.UUID) (*Session, error) {
	key := id.String()

	v, found := s.cache.Get(key)
	if !found {
		return nil, ErrNotFound
	}

	sess := v.(*Session)
	if sess.Controller.Closed() {
		s.cache.Delete(key)
		return nil, ErrNotFound
	}

	// Replace fails once the janitor has removed the key.
	if err := s.cache.Replace(key, sess, cache.DefaultExpiration); err != nil {
		return nil, ErrNotFound
	}
	return sess, nil
}

func (s *system) Delete(id uuid.UUID) error {
	key := id.String()
	if _, found := s.cache.Get(key); !found {
		return ErrNotFound
	}

	s.cache.Delete(key)
	s.logger.Info("session deleted", "id", id)
	return nil
}

func (s *system) Count() int {
	return s.cache.ItemCount()
}

// Close evicts every session, closing its controller.
func (s *system) Close() {
	s.closeOnce.Do(func() {
		for key := range s.cache.Items() {
			s.cache.Delete(key)
		}
		s.logger.Info("sessions closed")
	})
}

func (s *system) Handler(maxUploadSize int64, upgrader *websocket.Upgrader) *Handler {
	return NewHandler(s, s.logger, maxUploadSize, upgrader)
}
