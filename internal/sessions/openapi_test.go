package sessions_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/JaimeStill/plagiat/internal/sessions"
	"github.com/JaimeStill/plagiat/pkg/openapi"
	"github.com/JaimeStill/plagiat/pkg/routes"
)

func TestRegisterSpecCoversRoutes(t *testing.T) {
	spec := openapi.NewSpec("test", "1")
	sessions.RegisterSpec(spec)

	sys := newSystem(t, &fakeChecker{}, defaultConfig())
	group := sys.Handler(1<<20, nil).Routes()

	for _, pattern := range routes.Patterns(group) {
		method, path, _ := strings.Cut(pattern, " ")
		item, ok := spec.Paths[path]
		if !ok {
			t.Errorf("no document entry for %s", path)
			continue
		}

		var op *openapi.Operation
		switch method {
		case http.MethodGet:
			op = item.Get
		case http.MethodPost:
			op = item.Post
		case http.MethodPut:
			op = item.Put
		case http.MethodDelete:
			op = item.Delete
		}
		if op == nil {
			t.Errorf("no %s operation for %s", method, path)
		}
	}
}

func TestRegisterSpecSchemas(t *testing.T) {
	spec := openapi.NewSpec("test", "1")
	sessions.RegisterSpec(spec)

	for _, name := range []string{"Error", "SessionView", "AnalysisView", "SourceView", "Reformulation", "UploadResponse"} {
		if _, ok := spec.Components.Schemas[name]; !ok {
			t.Errorf("schema %s missing", name)
		}
	}

	check := spec.Paths["/sessions/{id}/check"].Post
	if check.Responses[http.StatusUnprocessableEntity] == nil {
		t.Error("check should document the empty text response")
	}
	if len(check.Parameters) != 1 || check.Parameters[0].Name != "id" {
		t.Errorf("check parameters = %+v", check.Parameters)
	}
}
