package routes

import "net/http"

// Group organizes routes under a common prefix. Children inherit the
// parent's full prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	walk(groups, func(pattern string, handler http.HandlerFunc) {
		mux.HandleFunc(pattern, handler)
	})
}

// Patterns returns the ServeMux patterns the given groups register, in
// registration order.
func Patterns(groups ...Group) []string {
	var patterns []string
	walk(groups, func(pattern string, _ http.HandlerFunc) {
		patterns = append(patterns, pattern)
	})
	return patterns
}

func walk(groups []Group, fn func(pattern string, handler http.HandlerFunc)) {
	for _, group := range groups {
		walkGroup("", group, fn)
	}
}

func walkGroup(parentPrefix string, group Group, fn func(string, http.HandlerFunc)) {
	fullPrefix := parentPrefix + group.Prefix
	for _, route := range group.Routes {
		fn(route.pattern(fullPrefix), route.Handler)
	}
	for _, child := range group.Children {
		walkGroup(fullPrefix, child, fn)
	}
}
