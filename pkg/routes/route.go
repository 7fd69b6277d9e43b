package routes

import "net/http"

// Route is one ServeMux entry. Pattern is relative to the enclosing group's
// prefix and may be empty to match the prefix itself.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// pattern returns the method-qualified ServeMux pattern under prefix.
func (r Route) pattern(prefix string) string {
	return r.Method + " " + prefix + r.Pattern
}
