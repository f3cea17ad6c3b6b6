package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/mariaquintana/insurecrm-backend/internal/customers"
	"github.com/mariaquintana/insurecrm-backend/pkg/enums"
)

type testCustomerService struct {
	createFn func(ctx context.Context, input customers.CreateCustomerInput) (*customers.CustomerDTO, error)
	searchFn func(ctx context.Context, params customers.SearchParams) (*customers.SearchResult, error)
	updateFn func(ctx context.Context, id uuid.UUID, input customers.UpdateCustomerInput) (*customers.CustomerDTO, error)
}

func (s *testCustomerService) Create(ctx context.Context, input customers.CreateCustomerInput) (*customers.CustomerDTO, error) {
	if s.createFn != nil {
		return s.createFn(ctx, input)
	}
	return &customers.CustomerDTO{}, nil
}

func (s *testCustomerService) Get(ctx context.Context, id uuid.UUID) (*customers.CustomerDTO, error) {
	return &customers.CustomerDTO{ID: id}, nil
}

func (s *testCustomerService) Search(ctx context.Context, params customers.SearchParams) (*customers.SearchResult, error) {
	if s.searchFn != nil {
		return s.searchFn(ctx, params)
	}
	return &customers.SearchResult{}, nil
}

func (s *testCustomerService) Update(ctx context.Context, id uuid.UUID, input customers.UpdateCustomerInput) (*customers.CustomerDTO, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, id, input)
	}
	return &customers.CustomerDTO{ID: id}, nil
}

func TestCreateCustomerDefaultsAgentOwnership(t *testing.T) {
	actorID := uuid.New()
	var captured customers.CreateCustomerInput
	svc := &testCustomerService{
		createFn: func(ctx context.Context, input customers.CreateCustomerInput) (*customers.CustomerDTO, error) {
			captured = input
			return &customers.CustomerDTO{ID: uuid.New()}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/customers", strings.NewReader(`{"fullName":"Rosa Mata"}`))
	req = withActor(req, enums.CreatorTypeAgent, actorID)

	resp := httptest.NewRecorder()
	CreateCustomer(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if captured.AgentID == nil || *captured.AgentID != actorID {
		t.Fatalf("expected customer owned by acting agent, got %v", captured.AgentID)
	}
}

func TestCreateCustomerEmployeeLeavesOwnershipOpen(t *testing.T) {
	var captured customers.CreateCustomerInput
	svc := &testCustomerService{
		createFn: func(ctx context.Context, input customers.CreateCustomerInput) (*customers.CustomerDTO, error) {
			captured = input
			return &customers.CustomerDTO{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/customers", strings.NewReader(`{"fullName":"Rosa Mata"}`))
	req = withActor(req, enums.CreatorTypeEmployee, uuid.New())

	resp := httptest.NewRecorder()
	CreateCustomer(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if captured.AgentID != nil {
		t.Fatalf("expected no agent ownership, got %v", captured.AgentID)
	}
}

func TestSearchCustomersScopesAgents(t *testing.T) {
	actorID := uuid.New()
	var captured customers.SearchParams
	svc := &testCustomerService{
		searchFn: func(ctx context.Context, params customers.SearchParams) (*customers.SearchResult, error) {
			captured = params
			return &customers.SearchResult{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers?q=rosa&limit=5", nil)
	req = withActor(req, enums.CreatorTypeAgent, actorID)

	resp := httptest.NewRecorder()
	SearchCustomers(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if captured.Query != "rosa" || captured.Limit != 5 {
		t.Fatalf("unexpected params %+v", captured)
	}
	if captured.AgentID == nil || *captured.AgentID != actorID {
		t.Fatalf("expected search scoped to agent %s", actorID)
	}
}

func TestUpdateCustomerRejectsBadID(t *testing.T) {
	svc := &testCustomerService{}
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/customers/nope", strings.NewReader(`{}`))
	req = withURLParam(req, "customerId", "nope")

	resp := httptest.NewRecorder()
	UpdateCustomer(svc, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id got %d", resp.Code)
	}
}
