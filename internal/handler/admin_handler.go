package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/derivativegenius/backend/internal/model"
	"github.com/derivativegenius/backend/internal/repository"
	"github.com/derivativegenius/backend/internal/service"
	"github.com/derivativegenius/backend/pkg/auth"
)

// AdminHandler exposes the operator dashboard endpoints for stored
// submissions.
type AdminHandler struct {
	submissions service.SubmissionService
}

// NewAdminHandler creates an AdminHandler with the given service.
func NewAdminHandler(submissions service.SubmissionService) *AdminHandler {
	return &AdminHandler{submissions: submissions}
}

// listResponse is the JSON response for GET /api/admin/submissions.
type listResponse struct {
	Submissions []*model.Submission `json:"submissions"`
}

// List handles GET /api/admin/submissions.
// Supports query params: status (all/pending/processing/completed/error),
// limit, offset.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserIDFromContext(r.Context()); !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	opts := model.SubmissionListOptions{
		Status: r.URL.Query().Get("status"),
		Limit:  20,
		Offset: 0,
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 100 {
			opts.Limit = n
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			opts.Offset = n
		}
	}

	subs, err := h.submissions.List(r.Context(), opts)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list_failed"})
		return
	}

	// Return [] not null for empty lists
	if subs == nil {
		subs = []*model.Submission{}
	}
	writeJSON(w, http.StatusOK, listResponse{Submissions: subs})
}

// archiveRequest is the expected JSON body for the archive endpoint.
type archiveRequest struct {
	Archived bool `json:"archived"`
}

// Archive handles PATCH /api/admin/submissions/{id}/archive.
func (h *AdminHandler) Archive(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserIDFromContext(r.Context()); !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "id_required"})
		return
	}

	var req archiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := h.submissions.SetArchived(r.Context(), id, req.Archived); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "update_failed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"ok": "true"})
}
