package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/derivativegenius/backend/internal/model"
	"github.com/derivativegenius/backend/internal/service"
)

// mockSubmissionService is a mock implementation of service.SubmissionService.
type mockSubmissionService struct {
	processFunc     func(ctx context.Context, in service.SubmissionInput) (*model.Submission, error)
	listFunc        func(ctx context.Context, opts model.SubmissionListOptions) ([]*model.Submission, error)
	setArchivedFunc func(ctx context.Context, id string, archived bool) error
}

func (m *mockSubmissionService) Process(ctx context.Context, in service.SubmissionInput) (*model.Submission, error) {
	if m.processFunc != nil {
		return m.processFunc(ctx, in)
	}
	return &model.Submission{ID: "sub-1", Status: model.StatusCompleted}, nil
}

func (m *mockSubmissionService) List(ctx context.Context, opts model.SubmissionListOptions) ([]*model.Submission, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, opts)
	}
	return nil, nil
}

func (m *mockSubmissionService) SetArchived(ctx context.Context, id string, archived bool) error {
	if m.setArchivedFunc != nil {
		return m.setArchivedFunc(ctx, id, archived)
	}
	return nil
}

var _ service.SubmissionService = (*mockSubmissionService)(nil)

const testOperator = "joe@derivativegenius.com"

func postContact(h *ContactHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Submit(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return body
}

func TestSubmit_Success(t *testing.T) {
	var got service.SubmissionInput
	svc := &mockSubmissionService{
		processFunc: func(ctx context.Context, in service.SubmissionInput) (*model.Submission, error) {
			got = in
			return &model.Submission{ID: "sub-42", Status: model.StatusCompleted}, nil
		},
	}
	h := NewContactHandler(svc, testOperator)

	w := postContact(h, `{"name":"Jane","email":"jane@example.com","message":"Hello"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}
	body := decodeBody(t, w)
	if body["ok"] != "true" || body["id"] != "sub-42" {
		t.Errorf("unexpected response body: %v", body)
	}
	if got.Name != "Jane" || got.Email != "jane@example.com" {
		t.Errorf("unexpected forwarded input: %+v", got)
	}
	if got.UserAgent == "" && got.IP == "" {
		t.Error("expected request metadata to be forwarded")
	}
}

func TestSubmit_MethodNotAllowed(t *testing.T) {
	h := NewContactHandler(&mockSubmissionService{}, testOperator)

	req := httptest.NewRequest(http.MethodGet, "/api/contact", nil)
	w := httptest.NewRecorder()
	h.Submit(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}

func TestSubmit_UnsupportedMediaType(t *testing.T) {
	h := NewContactHandler(&mockSubmissionService{}, testOperator)

	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader("name=Jane"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.Submit(w, req)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", w.Code)
	}
}

func TestSubmit_InvalidBody(t *testing.T) {
	h := NewContactHandler(&mockSubmissionService{}, testOperator)

	w := postContact(h, `{"name":`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if decodeBody(t, w)["error"] != "invalid request body" {
		t.Errorf("unexpected error message: %s", w.Body.String())
	}
}

func TestSubmit_ValidationErrorSurfacesMessage(t *testing.T) {
	svc := &mockSubmissionService{
		processFunc: func(ctx context.Context, in service.SubmissionInput) (*model.Submission, error) {
			return nil, &service.PipelineError{Kind: service.KindValidation, Field: "email", Msg: "please provide a valid email address"}
		},
	}
	h := NewContactHandler(svc, testOperator)

	w := postContact(h, `{"name":"Jane","email":"bad","message":"Hello"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if decodeBody(t, w)["error"] != "please provide a valid email address" {
		t.Errorf("expected the validation message verbatim, got %s", w.Body.String())
	}
}

func TestSubmit_RateLimited(t *testing.T) {
	svc := &mockSubmissionService{
		processFunc: func(ctx context.Context, in service.SubmissionInput) (*model.Submission, error) {
			return nil, &service.PipelineError{Kind: service.KindRateLimit, Msg: "Too many requests. Please try again in a few minutes."}
		},
	}
	h := NewContactHandler(svc, testOperator)

	w := postContact(h, `{"name":"Jane","email":"jane@example.com","message":"Hello"}`)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
}

func TestSubmit_InternalErrorsAreGeneric(t *testing.T) {
	kinds := []service.Kind{service.KindPersistence, service.KindTransport, service.KindNotification}
	for _, kind := range kinds {
		svc := &mockSubmissionService{
			processFunc: func(ctx context.Context, in service.SubmissionInput) (*model.Submission, error) {
				return nil, &service.PipelineError{Kind: kind, Msg: "store submission failed", Err: errors.New("pq: relation does not exist")}
			},
		}
		h := NewContactHandler(svc, testOperator)

		w := postContact(h, `{"name":"Jane","email":"jane@example.com","message":"Hello"}`)

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("kind %d: expected 500, got %d", kind, w.Code)
		}
		msg := decodeBody(t, w)["error"]
		if strings.Contains(msg, "pq:") || strings.Contains(msg, "store submission failed") {
			t.Errorf("kind %d: internal detail leaked to caller: %q", kind, msg)
		}
		if !strings.Contains(msg, testOperator) {
			t.Errorf("kind %d: expected fallback contact address in message, got %q", kind, msg)
		}
	}
}
