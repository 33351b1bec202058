package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"

	"github.com/derivativegenius/backend/internal/service"
)

// ContactHandler handles public contact form submissions.
type ContactHandler struct {
	submissions   service.SubmissionService
	operatorEmail string
}

// NewContactHandler creates a ContactHandler. operatorEmail appears in
// the generic failure message shown to callers as a fallback contact.
func NewContactHandler(submissions service.SubmissionService, operatorEmail string) *ContactHandler {
	return &ContactHandler{submissions: submissions, operatorEmail: operatorEmail}
}

// submitRequest is the expected JSON body for POST /api/contact.
type submitRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// statusForKind maps the pipeline error taxonomy to HTTP status codes.
// This is the only place codes are derived; message text is never
// inspected.
func statusForKind(kind service.Kind) int {
	switch kind {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindRateLimit:
		return http.StatusTooManyRequests
	default:
		// KindPersistence, KindTransport, KindNotification — internal.
		return http.StatusInternalServerError
	}
}

// Submit handles POST /api/contact: the full submission pipeline.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	if mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err != nil || mt != "application/json" {
		writeJSON(w, http.StatusUnsupportedMediaType, map[string]string{"error": "Content-Type must be application/json"})
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	sub, err := h.submissions.Process(r.Context(), service.SubmissionInput{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Message:   req.Message,
		IP:        clientIP(r, 1),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"ok": "true", "id": sub.ID})
}

// writeError surfaces 4xx kinds with their specific message; everything
// else is logged with full detail and answered with a generic message
// pointing at the fallback contact address.
func (h *ContactHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := service.KindOf(err)
	code := statusForKind(kind)

	if code < http.StatusInternalServerError {
		var pe *service.PipelineError
		msg := err.Error()
		if errors.As(err, &pe) {
			msg = pe.Msg
		}
		writeJSON(w, code, map[string]string{"error": msg})
		return
	}

	slog.Error("submission pipeline failed",
		"kind", int(kind),
		"error", err,
		"remote_addr", r.RemoteAddr,
		"user_agent", r.UserAgent(),
	)
	writeJSON(w, code, map[string]string{
		"error": fmt.Sprintf(
			"We encountered an error processing your request. Please try again later or contact us directly at %s",
			h.operatorEmail),
	})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
