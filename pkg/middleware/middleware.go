package middleware

import "net/http"

// Middleware wraps a handler with cross-cutting behavior.
type Middleware = func(http.Handler) http.Handler

// System is an ordered middleware stack. The first middleware added is the
// outermost wrapper, so it sees each request first.
type System interface {
	Use(mw Middleware)
	Apply(handler http.Handler) http.Handler
}

type stack struct {
	layers []Middleware
}

// New returns an empty stack.
func New() System {
	return &stack{}
}

func (s *stack) Use(mw Middleware) {
	s.layers = append(s.layers, mw)
}

func (s *stack) Apply(handler http.Handler) http.Handler {
	for i := len(s.layers) - 1; i >= 0; i-- {
		handler = s.layers[i](handler)
	}
	return handler
}
