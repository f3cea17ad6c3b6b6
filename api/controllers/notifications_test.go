package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/mariaquintana/insurecrm-backend/internal/notifications"
	"github.com/mariaquintana/insurecrm-backend/pkg/enums"
)

type testNotificationsService struct {
	listFn        func(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error)
	markReadFn    func(ctx context.Context, recipient notifications.Recipient, notificationID uuid.UUID) error
	markAllReadFn func(ctx context.Context, recipient notifications.Recipient) (int64, error)
}

func (s *testNotificationsService) List(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
	if s.listFn != nil {
		return s.listFn(ctx, params)
	}
	return &notifications.ListResult{}, nil
}

func (s *testNotificationsService) MarkRead(ctx context.Context, recipient notifications.Recipient, notificationID uuid.UUID) error {
	if s.markReadFn != nil {
		return s.markReadFn(ctx, recipient, notificationID)
	}
	return nil
}

func (s *testNotificationsService) MarkAllRead(ctx context.Context, recipient notifications.Recipient) (int64, error) {
	if s.markAllReadFn != nil {
		return s.markAllReadFn(ctx, recipient)
	}
	return 0, nil
}

func TestListNotificationsUsesActorRecipient(t *testing.T) {
	actorID := uuid.New()
	var captured notifications.ListParams
	svc := &testNotificationsService{
		listFn: func(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
			captured = params
			return &notifications.ListResult{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications?limit=10&unreadOnly=true", nil)
	req = withActor(req, enums.CreatorTypeAgent, actorID)

	resp := httptest.NewRecorder()
	ListNotifications(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if captured.Recipient.Type != enums.CreatorTypeAgent || captured.Recipient.ID != actorID {
		t.Fatalf("unexpected recipient %+v", captured.Recipient)
	}
	if captured.Limit != 10 || !captured.UnreadOnly {
		t.Fatalf("unexpected params %+v", captured)
	}
}

func TestListNotificationsRejectsMissingActor(t *testing.T) {
	svc := &testNotificationsService{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)
	resp := httptest.NewRecorder()
	ListNotifications(svc, testLogger())(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without actor got %d", resp.Code)
	}
}

func TestMarkNotificationReadSuccess(t *testing.T) {
	actorID := uuid.New()
	notificationID := uuid.New()
	called := false
	svc := &testNotificationsService{
		markReadFn: func(ctx context.Context, recipient notifications.Recipient, nid uuid.UUID) error {
			called = true
			if recipient.ID != actorID {
				t.Fatalf("unexpected recipient %s", recipient.ID)
			}
			if nid != notificationID {
				t.Fatalf("unexpected notification %s", nid)
			}
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/"+notificationID.String()+"/read", nil)
	req = withActor(req, enums.CreatorTypeEmployee, actorID)
	req = withURLParam(req, "notificationId", notificationID.String())

	resp := httptest.NewRecorder()
	MarkNotificationRead(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if !called {
		t.Fatal("expected service called")
	}
}

func TestMarkAllNotificationsReadReturnsCount(t *testing.T) {
	svc := &testNotificationsService{
		markAllReadFn: func(ctx context.Context, recipient notifications.Recipient) (int64, error) {
			return 4, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/read-all", nil)
	req = withActor(req, enums.CreatorTypeAgent, uuid.New())

	resp := httptest.NewRecorder()
	MarkAllNotificationsRead(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data struct {
			Count int64 `json:"count"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Count != 4 {
		t.Fatalf("expected count 4 got %d", envelope.Data.Count)
	}
}
