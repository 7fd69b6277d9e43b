package openapi

import (
	"maps"
	"net/http"
)

// Shared error responses registered by NewComponents, keyed by status.
var errorResponses = map[int]string{
	http.StatusBadRequest:            "BadRequest",
	http.StatusNotFound:              "NotFound",
	http.StatusConflict:              "Conflict",
	http.StatusGone:                  "Gone",
	http.StatusRequestEntityTooLarge: "TooLarge",
	http.StatusUnprocessableEntity:   "Unprocessable",
	http.StatusBadGateway:            "BadGateway",
}

// NewComponents creates Components with the shared Error schema and one
// response per shared error status.
func NewComponents() *Components {
	c := &Components{
		Schemas: map[string]*Schema{
			"Error": {
				Type:     "object",
				Required: []string{"error"},
				Properties: map[string]*Schema{
					"error": {Type: "string", Description: "Error message"},
				},
			},
		},
		Responses: make(map[string]*Response, len(errorResponses)),
	}

	for status, name := range errorResponses {
		c.Responses[name] = ResponseJSON(http.StatusText(status), "Error")
	}
	return c
}

// ErrorResponse returns a reference to the shared response for status.
// Statuses without a shared response get an inline Error body.
func ErrorResponse(status int) *Response {
	if name, ok := errorResponses[status]; ok {
		return ResponseRef(name)
	}
	return ResponseJSON(http.StatusText(status), "Error")
}

// AddSchemas merges the given schemas into the component schemas.
func (c *Components) AddSchemas(schemas map[string]*Schema) {
	maps.Copy(c.Schemas, schemas)
}

// AddResponses merges the given responses into the component responses.
func (c *Components) AddResponses(responses map[string]*Response) {
	maps.Copy(c.Responses, responses)
}
