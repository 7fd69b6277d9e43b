package sessions

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/JaimeStill/plagiat/internal/documents"
	"github.com/JaimeStill/plagiat/pkg/handlers"
	"github.com/JaimeStill/plagiat/pkg/routes"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// TextRequest replaces the session's input text.
type TextRequest struct {
	Text string `json:"text" validate:"max=1000000"`
}

// CheckRequest starts a text analysis. A missing text analyzes the
// session's current input text.
type CheckRequest struct {
	Text *string `json:"text" validate:"omitempty,max=1000000"`
}

// ReformulateRequest starts a rewrite of the session's input text.
type ReformulateRequest struct {
	UseAI *bool `json:"use_ai" validate:"required"`
}

// UploadResponse describes an accepted document submission.
type UploadResponse struct {
	Document documents.Document `json:"document"`
	Session  View               `json:"session"`
}

// Handler provides HTTP endpoints for session operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	maxUploadSize int64
	upgrader      *websocket.Upgrader
}

// NewHandler creates a Handler with the given system, logger, upload size
// limit, and websocket upgrader.
func NewHandler(sys System, logger *slog.Logger, maxUploadSize int64, upgrader *websocket.Upgrader) *Handler {
	if upgrader == nil {
		upgrader = &websocket.Upgrader{}
	}
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "sessions"),
		maxUploadSize: maxUploadSize,
		upgrader:      upgrader,
	}
}

// Routes returns the route group definition for session endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/sessions",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
			{Method: "PUT", Pattern: "/{id}/text", Handler: h.SetText},
			{Method: "POST", Pattern: "/{id}/check", Handler: h.Check},
			{Method: "POST", Pattern: "/{id}/upload", Handler: h.Upload},
			{Method: "POST", Pattern: "/{id}/reformulate", Handler: h.Reformulate},
			{Method: "GET", Pattern: "/{id}/watch", Handler: h.Watch},
		},
		Children: []routes.Group{
			{
				Prefix: "/{id}/reformulation",
				Routes: []routes.Route{
					{Method: "POST", Pattern: "/adopt", Handler: h.Adopt},
					{Method: "POST", Pattern: "/dismiss", Handler: h.Dismiss},
					{Method: "POST", Pattern: "/show", Handler: h.Show},
				},
			},
		},
	}
}

// Create starts a new idle session.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	sess := h.sys.Create()
	handlers.RespondJSON(w, http.StatusCreated, sess.View())
}

// Find returns the current state of a session.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, sess.View())
}

// Delete closes a session and cancels its in-flight requests.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	if err := h.sys.Delete(id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetText replaces the input text.
func (h *Handler) SetText(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	var req TextRequest
	if err := decode(r, &req, false); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	sess.Controller.SetText(req.Text)
	handlers.RespondJSON(w, http.StatusOK, sess.View())
}

// Check submits text for analysis and returns immediately. Progress and
// the result are observed through Find or Watch.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	var req CheckRequest
	if err := decode(r, &req, true); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	text := sess.Controller.Snapshot().InputText
	if req.Text != nil {
		text = *req.Text
	}

	if strings.TrimSpace(text) == "" {
		handlers.RespondError(w, h.logger, http.StatusUnprocessableEntity, ErrEmptyText)
		return
	}
	if !sess.Controller.SubmitText(text) {
		h.refused(w, sess, ErrBusy)
		return
	}

	handlers.RespondJSON(w, http.StatusAccepted, sess.View())
}

// Upload submits a multipart "file" document for analysis.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	up, err := documents.FromRequest(r, h.maxUploadSize)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	doc := documents.Describe(h.logger, up.Filename, up.ContentType, up.Data)

	if !sess.Controller.SubmitFile(up.Filename, up.Data) {
		h.refused(w, sess, ErrBusy)
		return
	}

	h.logger.Info("document submitted",
		"session", sess.ID,
		"filename", doc.Filename,
		"content_type", doc.ContentType,
		"size", doc.SizeBytes,
	)

	handlers.RespondJSON(w, http.StatusAccepted, UploadResponse{
		Document: doc,
		Session:  sess.View(),
	})
}

// Reformulate requests a rewrite of the input text.
func (h *Handler) Reformulate(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	var req ReformulateRequest
	if err := decode(r, &req, false); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if strings.TrimSpace(sess.Controller.Snapshot().InputText) == "" {
		handlers.RespondError(w, h.logger, http.StatusUnprocessableEntity, ErrEmptyText)
		return
	}
	if !sess.Controller.RequestReformulation(*req.UseAI) {
		h.refused(w, sess, ErrBusy)
		return
	}

	handlers.RespondJSON(w, http.StatusAccepted, sess.View())
}

// Adopt replaces the input text with the visible rewrite.
func (h *Handler) Adopt(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if !sess.Controller.AdoptReformulation() {
		h.refused(w, sess, ErrNoReformulation)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, sess.View())
}

// Dismiss hides the rewrite.
func (h *Handler) Dismiss(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	sess.Controller.DismissReformulation()
	handlers.RespondJSON(w, http.StatusOK, sess.View())
}

// Show reopens a dismissed rewrite.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if !sess.Controller.ShowReformulation() {
		h.refused(w, sess, ErrNoReformulation)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, sess.View())
}

// refused responds to an operation the controller declined. A closed
// controller means the session was evicted after it was found.
func (h *Handler) refused(w http.ResponseWriter, sess *Session, err error) {
	if sess.Controller.Closed() {
		err = ErrClosed
	}
	handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
}

func (h *Handler) session(r *http.Request) (*Session, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return nil, ErrInvalidID
	}
	return h.sys.Find(id)
}

func decode(r *http.Request, dst any, optional bool) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if !(optional && errors.Is(err, io.EOF)) {
			return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
	}

	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}
