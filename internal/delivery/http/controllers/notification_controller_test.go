package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"communityhub/internal/domain"
)

type mockNotificationService struct {
	job    *domain.NotificationJob
	result *domain.NotificationResult
	err    error
}

func (m *mockNotificationService) Process(ctx context.Context, job *domain.NotificationJob) (*domain.NotificationResult, error) {
	m.job = job
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

const testCollabID = "7f2a1c34-9b1d-4f6e-8a3b-2c5d6e7f8a9b"

func postNotification(ctrl *NotificationController, secret, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/internal/notifications", strings.NewReader(body))
	if secret != "" {
		req.Header.Set("X-Internal-Secret", secret)
	}
	w := httptest.NewRecorder()
	ctrl.Process(w, req)
	return w
}

func TestNotificationController_Process_Success(t *testing.T) {
	svc := &mockNotificationService{result: &domain.NotificationResult{Notified: 5}}
	ctrl := NewNotificationController(testLogger(), svc, "internal-secret")

	body := `{"type":"collaboration-accepted-new-event","collaboration_id":"` + testCollabID + `"}`
	w := postNotification(ctrl, "internal-secret", body)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if svc.job == nil || svc.job.Type != domain.NotifyCollabAcceptedNewEvent {
		t.Fatalf("unexpected job: %+v", svc.job)
	}
	var resp ProcessNotificationSuccessResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Data == nil || resp.Data.Notified != 5 {
		t.Fatalf("unexpected data: %+v", resp.Data)
	}
}

func TestNotificationController_Process_BadSecret(t *testing.T) {
	svc := &mockNotificationService{result: &domain.NotificationResult{}}
	ctrl := NewNotificationController(testLogger(), svc, "internal-secret")

	body := `{"type":"collaboration-accepted-new-event","collaboration_id":"` + testCollabID + `"}`
	w := postNotification(ctrl, "wrong", body)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
	if svc.job != nil {
		t.Fatalf("service must not be called with a bad secret")
	}
}

func TestNotificationController_Process_UnknownType(t *testing.T) {
	svc := &mockNotificationService{result: &domain.NotificationResult{}}
	ctrl := NewNotificationController(testLogger(), svc, "internal-secret")

	w := postNotification(ctrl, "internal-secret", `{"type":"weekly-digest"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestNotificationController_Process_MissingID(t *testing.T) {
	svc := &mockNotificationService{result: &domain.NotificationResult{}}
	ctrl := NewNotificationController(testLogger(), svc, "internal-secret")

	// Registration jobs need registration_id, not collaboration_id.
	body := `{"type":"registration-notification","collaboration_id":"` + testCollabID + `"}`
	w := postNotification(ctrl, "internal-secret", body)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}
