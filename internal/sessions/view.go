package sessions

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/plagiat/internal/analysis"
	"github.com/JaimeStill/plagiat/internal/reformulation"
	"github.com/JaimeStill/plagiat/internal/severity"
	"github.com/JaimeStill/plagiat/internal/workflow"
	"github.com/JaimeStill/plagiat/pkg/formatting"
)

// DisplayURLLength is the number of characters of a source URL shown before
// it is truncated.
const DisplayURLLength = 60

// View is the client-facing session state.
type View struct {
	ID               uuid.UUID           `json:"id"`
	CreatedAt        time.Time           `json:"created_at"`
	InputText        string              `json:"input_text"`
	SelectedFileName string              `json:"selected_file_name,omitempty"`
	Phase            workflow.Phase      `json:"phase"`
	Progress         float64             `json:"progress"`
	Analysis         *AnalysisView       `json:"analysis"`
	Reformulation    reformulation.State `json:"reformulation"`
	Reformulating    bool                `json:"reformulating"`
}

// AnalysisView is an analysis result annotated with severity tiers.
type AnalysisView struct {
	Score               float64       `json:"score"`
	Tier                severity.Tier `json:"tier"`
	AdviseReformulation bool          `json:"advise_reformulation"`
	Sources             []SourceView  `json:"sources"`
}

// SourceView is a detected source annotated for display.
type SourceView struct {
	URL        string        `json:"url"`
	DisplayURL string        `json:"display_url"`
	Score      float64       `json:"score"`
	Tier       severity.Tier `json:"tier"`
}

// NewView builds a View from a controller snapshot.
func NewView(id uuid.UUID, createdAt time.Time, s workflow.Session) View {
	return View{
		ID:               id,
		CreatedAt:        createdAt,
		InputText:        s.InputText,
		SelectedFileName: s.SelectedFileName,
		Phase:            s.Phase,
		Progress:         s.Progress,
		Analysis:         newAnalysisView(s.Analysis),
		Reformulation:    s.Reformulation,
		Reformulating:    s.Reformulating(),
	}
}

func newAnalysisView(r *analysis.Result) *AnalysisView {
	if r == nil {
		return nil
	}

	sources := make([]SourceView, len(r.Sources))
	for i, src := range r.Sources {
		sources[i] = SourceView{
			URL:        src.URL,
			DisplayURL: formatting.Truncate(src.URL, DisplayURLLength),
			Score:      src.Score,
			Tier:       src.Tier(),
		}
	}

	return &AnalysisView{
		Score:               r.Score,
		Tier:                r.Tier(),
		AdviseReformulation: severity.AdviseReformulation(r.Score),
		Sources:             sources,
	}
}

// EventMessage is a session event as sent to websocket watchers.
type EventMessage struct {
	Type    workflow.EventKind `json:"type"`
	Op      workflow.Operation `json:"op,omitempty"`
	Error   string             `json:"error,omitempty"`
	Session View               `json:"session"`
}

func newEventMessage(sess *Session, ev workflow.Event) EventMessage {
	msg := EventMessage{
		Type:    ev.Kind,
		Op:      ev.Op,
		Session: NewView(sess.ID, sess.CreatedAt, ev.Session),
	}
	if ev.Err != nil {
		msg.Error = ev.Err.Error()
	}
	return msg
}
