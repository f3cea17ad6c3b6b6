package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mariaquintana/insurecrm-backend/api/middleware"
	"github.com/mariaquintana/insurecrm-backend/internal/policies"
	"github.com/mariaquintana/insurecrm-backend/pkg/enums"
	"github.com/mariaquintana/insurecrm-backend/pkg/logger"
)

type testPolicyService struct {
	createFn   func(ctx context.Context, input policies.CreatePolicyInput) (*policies.PolicyDTO, error)
	listFn     func(ctx context.Context, params policies.ListParams) (*policies.ListResult, error)
	getFn      func(ctx context.Context, id uuid.UUID) (*policies.PolicyDTO, error)
	cancelFn   func(ctx context.Context, id uuid.UUID, reason string) (*policies.PolicyDTO, error)
	activateFn func(ctx context.Context, id uuid.UUID) (*policies.PolicyDTO, error)
}

func (s *testPolicyService) Create(ctx context.Context, input policies.CreatePolicyInput) (*policies.PolicyDTO, error) {
	if s.createFn != nil {
		return s.createFn(ctx, input)
	}
	return &policies.PolicyDTO{}, nil
}

func (s *testPolicyService) Get(ctx context.Context, id uuid.UUID) (*policies.PolicyDTO, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return &policies.PolicyDTO{ID: id}, nil
}

func (s *testPolicyService) GetByNumber(ctx context.Context, number string) (*policies.PolicyDTO, error) {
	return nil, nil
}

func (s *testPolicyService) List(ctx context.Context, params policies.ListParams) (*policies.ListResult, error) {
	if s.listFn != nil {
		return s.listFn(ctx, params)
	}
	return &policies.ListResult{}, nil
}

func (s *testPolicyService) Activate(ctx context.Context, id uuid.UUID) (*policies.PolicyDTO, error) {
	if s.activateFn != nil {
		return s.activateFn(ctx, id)
	}
	return &policies.PolicyDTO{ID: id}, nil
}

func (s *testPolicyService) Cancel(ctx context.Context, id uuid.UUID, reason string) (*policies.PolicyDTO, error) {
	if s.cancelFn != nil {
		return s.cancelFn(ctx, id, reason)
	}
	return &policies.PolicyDTO{ID: id}, nil
}

func (s *testPolicyService) Escalate(ctx context.Context, id uuid.UUID) (bool, error) {
	return false, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func mustDecimal(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", value, err)
	}
	return d
}

func withActor(req *http.Request, role enums.CreatorType, actorID uuid.UUID) *http.Request {
	ctx := middleware.WithActorID(req.Context(), actorID.String())
	ctx = middleware.WithRole(ctx, string(role))
	return req.WithContext(ctx)
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestCreatePolicyUsesActorAsCreator(t *testing.T) {
	actorID := uuid.New()
	productID := uuid.New()
	var captured policies.CreatePolicyInput
	svc := &testPolicyService{
		createFn: func(ctx context.Context, input policies.CreatePolicyInput) (*policies.PolicyDTO, error) {
			captured = input
			return &policies.PolicyDTO{ID: uuid.New(), PolicyNumber: "POL-2026-00042"}, nil
		},
	}

	body := `{"productId":"` + productID.String() + `","customerName":"Luz Herrera","premiumAmount":"1250.50","lineOfBusiness":"auto"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/policies", strings.NewReader(body))
	req = withActor(req, enums.CreatorTypeAgent, actorID)

	resp := httptest.NewRecorder()
	CreatePolicy(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if captured.CreatedBy.Type != enums.CreatorTypeAgent {
		t.Fatalf("expected agent creator got %s", captured.CreatedBy.Type)
	}
	if captured.CreatedBy.ID != actorID.String() {
		t.Fatalf("expected creator %s got %s", actorID, captured.CreatedBy.ID)
	}
	if captured.ProductID != productID {
		t.Fatalf("unexpected product %s", captured.ProductID)
	}
	if !captured.PremiumAmount.Equal(mustDecimal(t, "1250.50")) {
		t.Fatalf("unexpected premium %s", captured.PremiumAmount)
	}
}

func TestCreatePolicyTreatsPlaceholderNumberAsTempID(t *testing.T) {
	var captured policies.CreatePolicyInput
	svc := &testPolicyService{
		createFn: func(ctx context.Context, input policies.CreatePolicyInput) (*policies.PolicyDTO, error) {
			captured = input
			return &policies.PolicyDTO{}, nil
		},
	}

	body := `{"policyNumber":"TMP-1756600000000-a1b2","productId":"` + uuid.NewString() + `","customerName":"Luz","premiumAmount":"100","lineOfBusiness":"life"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/policies", strings.NewReader(body))
	req = withActor(req, enums.CreatorTypeEmployee, uuid.New())

	resp := httptest.NewRecorder()
	CreatePolicy(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if captured.TempID != "TMP-1756600000000-a1b2" {
		t.Fatalf("expected placeholder carried as temp id, got %q", captured.TempID)
	}
	if captured.PolicyNumber != "" {
		t.Fatalf("expected empty policy number, got %q", captured.PolicyNumber)
	}
}

func TestCreatePolicyRejectsMissingRole(t *testing.T) {
	svc := &testPolicyService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/policies", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	CreatePolicy(svc, testLogger())(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without actor got %d", resp.Code)
	}
}

func TestCreatePolicyRejectsBadPremium(t *testing.T) {
	svc := &testPolicyService{}
	body := `{"productId":"` + uuid.NewString() + `","customerName":"Luz","premiumAmount":"not-a-number","lineOfBusiness":"auto"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/policies", strings.NewReader(body))
	req = withActor(req, enums.CreatorTypeAgent, uuid.New())

	resp := httptest.NewRecorder()
	CreatePolicy(svc, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad premium got %d", resp.Code)
	}
}

func TestListPoliciesParsesFilters(t *testing.T) {
	var captured policies.ListParams
	svc := &testPolicyService{
		listFn: func(ctx context.Context, params policies.ListParams) (*policies.ListResult, error) {
			captured = params
			return &policies.ListResult{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/policies?status=underwriting&lineOfBusiness=auto&limit=25&cursor=abc", nil)
	req = withActor(req, enums.CreatorTypeEmployee, uuid.New())

	resp := httptest.NewRecorder()
	ListPolicies(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if captured.Status == nil || *captured.Status != enums.PolicyStatusUnderwriting {
		t.Fatalf("expected underwriting filter got %v", captured.Status)
	}
	if captured.LineOfBusiness != "auto" || captured.Limit != 25 || captured.Cursor != "abc" {
		t.Fatalf("unexpected params %+v", captured)
	}
	if captured.AgentID != nil {
		t.Fatal("employee listing should not be agent scoped")
	}
}

func TestListPoliciesScopesAgents(t *testing.T) {
	actorID := uuid.New()
	var captured policies.ListParams
	svc := &testPolicyService{
		listFn: func(ctx context.Context, params policies.ListParams) (*policies.ListResult, error) {
			captured = params
			return &policies.ListResult{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/policies", nil)
	req = withActor(req, enums.CreatorTypeAgent, actorID)

	resp := httptest.NewRecorder()
	ListPolicies(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if captured.AgentID == nil || *captured.AgentID != actorID {
		t.Fatalf("expected listing scoped to agent %s", actorID)
	}
}

func TestListPoliciesRejectsUnknownStatus(t *testing.T) {
	svc := &testPolicyService{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/policies?status=paused", nil)
	req = withActor(req, enums.CreatorTypeEmployee, uuid.New())

	resp := httptest.NewRecorder()
	ListPolicies(svc, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status got %d", resp.Code)
	}
}

func TestCancelPolicyPassesReason(t *testing.T) {
	policyID := uuid.New()
	var gotID uuid.UUID
	var gotReason string
	svc := &testPolicyService{
		cancelFn: func(ctx context.Context, id uuid.UUID, reason string) (*policies.PolicyDTO, error) {
			gotID = id
			gotReason = reason
			return &policies.PolicyDTO{ID: id}, nil
		},
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/policies/"+policyID.String(), strings.NewReader(`{"reason":"customer request"}`))
	req = withActor(req, enums.CreatorTypeEmployee, uuid.New())
	req = withURLParam(req, "policyId", policyID.String())

	resp := httptest.NewRecorder()
	CancelPolicy(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if gotID != policyID {
		t.Fatalf("expected cancel of %s got %s", policyID, gotID)
	}
	if gotReason != "customer request" {
		t.Fatalf("unexpected reason %q", gotReason)
	}
}

func TestGetPolicyRejectsBadID(t *testing.T) {
	svc := &testPolicyService{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/policies/not-a-uuid", nil)
	req = withURLParam(req, "policyId", "not-a-uuid")

	resp := httptest.NewRecorder()
	GetPolicy(svc, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id got %d", resp.Code)
	}
}

func TestGetPolicyReturnsDTO(t *testing.T) {
	policyID := uuid.New()
	svc := &testPolicyService{
		getFn: func(ctx context.Context, id uuid.UUID) (*policies.PolicyDTO, error) {
			return &policies.PolicyDTO{ID: id, PolicyNumber: "POL-2026-00007", CreatedAt: time.Now()}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/policies/"+policyID.String(), nil)
	req = withURLParam(req, "policyId", policyID.String())

	resp := httptest.NewRecorder()
	GetPolicy(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data policies.PolicyDTO `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.PolicyNumber != "POL-2026-00007" {
		t.Fatalf("unexpected policy number %s", envelope.Data.PolicyNumber)
	}
}
