package sessions

import (
	"net/http"

	"github.com/JaimeStill/plagiat/pkg/openapi"
)

func schemaList(name string) *openapi.Schema {
	return &openapi.Schema{Type: "array", Items: openapi.SchemaRef(name)}
}

func tierSchema() *openapi.Schema {
	return &openapi.Schema{Type: "string", Enum: []any{"LOW", "MEDIUM", "HIGH"}}
}

var schemas = map[string]*openapi.Schema{
	"SessionView": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id":                 {Type: "string", Format: "uuid"},
			"created_at":         {Type: "string", Format: "date-time"},
			"input_text":         {Type: "string"},
			"selected_file_name": {Type: "string"},
			"phase":              {Type: "string", Enum: []any{"idle", "submitting", "result_ready"}},
			"progress":           {Type: "number", Description: "Estimated progress of the running check, 0-100"},
			"analysis":           openapi.SchemaRef("AnalysisView"),
			"reformulation":      openapi.SchemaRef("Reformulation"),
			"reformulating":      {Type: "boolean"},
		},
	},
	"AnalysisView": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"score":                {Type: "number", Example: 45},
			"tier":                 tierSchema(),
			"advise_reformulation": {Type: "boolean", Description: "True when the score is above 50"},
			"sources":              schemaList("SourceView"),
		},
	},
	"SourceView": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"url":         {Type: "string"},
			"display_url": {Type: "string", Description: "URL truncated to 60 characters"},
			"score":       {Type: "number"},
			"tier":        tierSchema(),
		},
	},
	"Reformulation": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"status":   {Type: "string", Enum: []any{"idle", "pending", "ready"}},
			"text":     {Type: "string"},
			"original": {Type: "string"},
			"method":   {Type: "string", Enum: []any{"", "AI", "Basic"}},
			"visible":  {Type: "boolean"},
			"pending":  {Type: "boolean"},
		},
	},
	"Document": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"filename":     {Type: "string"},
			"content_type": {Type: "string"},
			"size_bytes":   {Type: "integer"},
			"supported":    {Type: "boolean"},
			"page_count":   {Type: "integer"},
		},
	},
	"UploadResponse": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"document": openapi.SchemaRef("Document"),
			"session":  openapi.SchemaRef("SessionView"),
		},
	},
	"TextRequest": {
		Type:     "object",
		Required: []string{"text"},
		Properties: map[string]*openapi.Schema{
			"text": {Type: "string"},
		},
	},
	"CheckRequest": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"text": {Type: "string", Description: "Replaces the session text before checking. Omit to check the current text."},
		},
	},
	"ReformulateRequest": {
		Type:     "object",
		Required: []string{"use_ai"},
		Properties: map[string]*openapi.Schema{
			"use_ai": {Type: "boolean"},
		},
	},
}

func op(summary string, body *openapi.RequestBody, ok int, okSchema string, errs ...int) *openapi.Operation {
	o := &openapi.Operation{
		Summary:   summary,
		Tags:      []string{"Sessions"},
		Responses: make(map[int]*openapi.Response, len(errs)+1),
	}
	if body != nil {
		o.RequestBody = body
	}
	if okSchema == "" {
		o.Responses[ok] = &openapi.Response{Description: http.StatusText(ok)}
	} else {
		o.Responses[ok] = openapi.ResponseJSON(http.StatusText(ok), okSchema)
	}
	for _, status := range errs {
		o.Responses[status] = openapi.ErrorResponse(status)
	}
	return o
}

func withID(o *openapi.Operation) *openapi.Operation {
	o.Parameters = append(o.Parameters, openapi.PathParam("id", "Session ID"))
	return o
}

// RegisterSpec adds the session schemas and operations to spec.
func RegisterSpec(spec *openapi.Spec) {
	spec.Components.AddSchemas(schemas)

	const base = "/sessions"
	const item = base + "/{id}"

	upload := &openapi.RequestBody{
		Required: true,
		Content: map[string]*openapi.MediaType{
			"multipart/form-data": {
				Schema: &openapi.Schema{
					Type:     "object",
					Required: []string{"file"},
					Properties: map[string]*openapi.Schema{
						"file": {Type: "string", Format: "binary"},
					},
				},
			},
		},
	}

	spec.AddOperation("POST", base, op("Create a session", nil, http.StatusCreated, "SessionView"))
	spec.AddOperation("GET", item, withID(op("Get session state", nil, http.StatusOK, "SessionView",
		http.StatusBadRequest, http.StatusNotFound)))
	spec.AddOperation("DELETE", item, withID(op("Close a session", nil, http.StatusNoContent, "",
		http.StatusBadRequest, http.StatusNotFound)))
	spec.AddOperation("PUT", item+"/text", withID(op("Replace the input text",
		openapi.RequestBodyJSON("TextRequest", true), http.StatusOK, "SessionView",
		http.StatusBadRequest, http.StatusNotFound)))
	spec.AddOperation("POST", item+"/check", withID(op("Check text",
		openapi.RequestBodyJSON("CheckRequest", false), http.StatusAccepted, "SessionView",
		http.StatusBadRequest, http.StatusNotFound, http.StatusConflict, http.StatusGone, http.StatusUnprocessableEntity)))
	spec.AddOperation("POST", item+"/upload", withID(op("Check a document",
		upload, http.StatusAccepted, "UploadResponse",
		http.StatusBadRequest, http.StatusNotFound, http.StatusConflict, http.StatusGone, http.StatusRequestEntityTooLarge)))
	spec.AddOperation("POST", item+"/reformulate", withID(op("Request a reformulation",
		openapi.RequestBodyJSON("ReformulateRequest", true), http.StatusAccepted, "SessionView",
		http.StatusBadRequest, http.StatusNotFound, http.StatusConflict, http.StatusGone, http.StatusUnprocessableEntity)))
	spec.AddOperation("POST", item+"/reformulation/adopt", withID(op("Adopt the reformulation", nil, http.StatusOK, "SessionView",
		http.StatusNotFound, http.StatusConflict)))
	spec.AddOperation("POST", item+"/reformulation/dismiss", withID(op("Hide the reformulation", nil, http.StatusOK, "SessionView",
		http.StatusNotFound)))
	spec.AddOperation("POST", item+"/reformulation/show", withID(op("Show the reformulation", nil, http.StatusOK, "SessionView",
		http.StatusNotFound, http.StatusConflict)))

	watch := withID(op("Stream session events over a websocket", nil, http.StatusSwitchingProtocols, "",
		http.StatusBadRequest, http.StatusNotFound))
	watch.Description = "Sends a snapshot message, then one message per state change, progress tick, or failure."
	spec.AddOperation("GET", item+"/watch", watch)
}
