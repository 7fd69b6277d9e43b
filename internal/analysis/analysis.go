// Package analysis defines the result types exchanged with the remote
// content-analysis service: similarity reports and text rewrites.
package analysis

import "github.com/JaimeStill/plagiat/internal/severity"

// Method identifies how a rewrite was produced.
type Method string

// Rewrite methods reported by the analysis service.
const (
	MethodUnset Method = ""
	MethodAI    Method = "AI"
	MethodBasic Method = "Basic"
)

// MethodFor returns the method implied by the use_ai request flag.
func MethodFor(useAI bool) Method {
	if useAI {
		return MethodAI
	}
	return MethodBasic
}

// Source is one externally detected similar document.
type Source struct {
	URL   string  `json:"url"`
	Score float64 `json:"score"`
}

// Tier returns the severity tier of the source's score.
func (s Source) Tier() severity.Tier {
	return severity.Classify(s.Score)
}

// Result is the outcome of one completed analysis. A Result is never
// modified after creation; the next analysis replaces it wholesale.
type Result struct {
	Score   float64  `json:"score"`
	Sources []Source `json:"sources"`
}

// Tier returns the severity tier of the overall score.
func (r *Result) Tier() severity.Tier {
	return severity.Classify(r.Score)
}

// Clone returns a deep copy so snapshots never share the sources slice.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	c := &Result{Score: r.Score}
	if r.Sources != nil {
		c.Sources = make([]Source, len(r.Sources))
		copy(c.Sources, r.Sources)
	}
	return c
}

// Rewrite is a reformulated version of submitted text.
type Rewrite struct {
	Original string `json:"original,omitempty"`
	Text     string `json:"reformulated"`
	Method   Method `json:"method,omitempty"`
}
