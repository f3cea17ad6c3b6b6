package policies

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mariaquintana/insurecrm-backend/internal/actors"
	"github.com/mariaquintana/insurecrm-backend/internal/offlinequeue"
	"github.com/mariaquintana/insurecrm-backend/pkg/db/models"
	"github.com/mariaquintana/insurecrm-backend/pkg/enums"
	pkgerrors "github.com/mariaquintana/insurecrm-backend/pkg/errors"
	"github.com/mariaquintana/insurecrm-backend/pkg/outbox"
	"github.com/mariaquintana/insurecrm-backend/pkg/pagination"
)

type stubPoliciesRepo struct {
	policy    *models.Policy
	created   *models.Policy
	createErr error
	status    enums.PolicyStatus
	escalated bool
	nextSeq   int64
	stale     []models.Policy
}

func (s *stubPoliciesRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubPoliciesRepo) Create(ctx context.Context, policy *models.Policy) error {
	if s.createErr != nil {
		return s.createErr
	}
	if policy.ID == uuid.Nil {
		policy.ID = uuid.New()
	}
	policy.CreatedAt = time.Now().UTC()
	s.created = policy
	return nil
}

func (s *stubPoliciesRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Policy, error) {
	if s.policy == nil || s.policy.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.policy
	return &copied, nil
}

func (s *stubPoliciesRepo) FindByPolicyNumber(ctx context.Context, number string) (*models.Policy, error) {
	if s.policy == nil || s.policy.PolicyNumber != number {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.policy
	return &copied, nil
}

func (s *stubPoliciesRepo) List(ctx context.Context, params listPoliciesParams) ([]models.Policy, *pagination.Cursor, error) {
	if s.policy == nil {
		return nil, nil, nil
	}
	return []models.Policy{*s.policy}, nil, nil
}

func (s *stubPoliciesRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.PolicyStatus) error {
	s.status = status
	return nil
}

func (s *stubPoliciesRepo) MarkEscalated(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	if s.escalated {
		return false, nil
	}
	s.escalated = true
	return true, nil
}

func (s *stubPoliciesRepo) FindStaleUnderwriting(ctx context.Context, cutoff time.Time, limit int) ([]models.Policy, error) {
	return s.stale, nil
}

func (s *stubPoliciesRepo) NextPolicyNumber(tx *gorm.DB, year int) (int64, error) {
	s.nextSeq++
	return s.nextSeq, nil
}

type stubOutboxPublisher struct {
	events []outbox.DomainEvent
	err    error
}

func (s *stubOutboxPublisher) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func validCreateInput() CreatePolicyInput {
	return CreatePolicyInput{
		ProductID:      uuid.New(),
		CustomerName:   "Rosa Fuentes",
		PremiumAmount:  decimal.NewFromInt(2400),
		LineOfBusiness: "motor",
		CreatedBy:      actors.AgentRef(uuid.NewString()),
	}
}

func TestCreateAssignsPolicyNumber(t *testing.T) {
	repo := &stubPoliciesRepo{}
	pub := &stubOutboxPublisher{}
	svc, err := NewService(repo, stubTxRunner{}, pub)
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}

	dto, err := svc.Create(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "POL-" + time.Now().UTC().Format("2006") + "-00001"
	if dto.PolicyNumber != want {
		t.Fatalf("expected %s, got %s", want, dto.PolicyNumber)
	}
	if dto.Status != enums.PolicyStatusUnderwriting {
		t.Fatalf("expected underwriting, got %s", dto.Status)
	}
	if len(pub.events) != 1 || pub.events[0].EventType != enums.EventPolicyCreated {
		t.Fatalf("expected one policy_created event, got %+v", pub.events)
	}
	if repo.created == nil || repo.created.AgentID == nil {
		t.Fatalf("expected agent id recorded, got %+v", repo.created)
	}
}

func TestCreateWithTempIDEmitsSyncedEvent(t *testing.T) {
	repo := &stubPoliciesRepo{}
	pub := &stubOutboxPublisher{}
	svc, _ := NewService(repo, stubTxRunner{}, pub)

	input := validCreateInput()
	input.TempID = "TMP-1700000000000-abcd1234"

	if _, err := svc.Create(context.Background(), input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pub.events) != 2 {
		t.Fatalf("expected created + synced events, got %d", len(pub.events))
	}
	if pub.events[1].EventType != enums.EventPolicySynced {
		t.Fatalf("expected policy_synced second, got %s", pub.events[1].EventType)
	}
}

func TestCreateKeepsUnresolvedCreator(t *testing.T) {
	repo := &stubPoliciesRepo{}
	svc, _ := NewService(repo, stubTxRunner{}, &stubOutboxPublisher{})

	input := validCreateInput()
	input.CreatedBy = actors.CreatorRef{Type: enums.CreatorTypeEmployee}

	dto, err := svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dto.EmployeeID != nil || dto.AgentID != nil {
		t.Fatalf("expected no actor ids, got %+v", dto)
	}
	if dto.CreatedByType != enums.CreatorTypeEmployee {
		t.Fatalf("expected employee creator type, got %s", dto.CreatedByType)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := NewService(&stubPoliciesRepo{}, stubTxRunner{}, &stubOutboxPublisher{})

	cases := map[string]func(*CreatePolicyInput){
		"missing customer": func(in *CreatePolicyInput) { in.CustomerName = "" },
		"missing product":  func(in *CreatePolicyInput) { in.ProductID = uuid.Nil },
		"zero premium":     func(in *CreatePolicyInput) { in.PremiumAmount = decimal.Zero },
		"missing line":     func(in *CreatePolicyInput) { in.LineOfBusiness = "" },
		"bad creator":      func(in *CreatePolicyInput) { in.CreatedBy = actors.CreatorRef{} },
	}
	for name, mutate := range cases {
		input := validCreateInput()
		mutate(&input)
		_, err := svc.Create(context.Background(), input)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestCancelEmitsEvent(t *testing.T) {
	policyID := uuid.New()
	repo := &stubPoliciesRepo{policy: &models.Policy{
		ID:           policyID,
		PolicyNumber: "POL-2025-00007",
		PolicyStatus: enums.PolicyStatusActive,
	}}
	pub := &stubOutboxPublisher{}
	svc, _ := NewService(repo, stubTxRunner{}, pub)

	dto, err := svc.Cancel(context.Background(), policyID, "customer request")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dto.Status != enums.PolicyStatusCancelled {
		t.Fatalf("expected cancelled, got %s", dto.Status)
	}
	if len(pub.events) != 1 || pub.events[0].EventType != enums.EventPolicyCancelled {
		t.Fatalf("expected policy_cancelled event, got %+v", pub.events)
	}
}

func TestActivateFromExpiredRejected(t *testing.T) {
	policyID := uuid.New()
	repo := &stubPoliciesRepo{policy: &models.Policy{
		ID:           policyID,
		PolicyStatus: enums.PolicyStatusExpired,
	}}
	svc, _ := NewService(repo, stubTxRunner{}, &stubOutboxPublisher{})

	_, err := svc.Activate(context.Background(), policyID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestEscalateOnlyOnce(t *testing.T) {
	policyID := uuid.New()
	repo := &stubPoliciesRepo{policy: &models.Policy{
		ID:           policyID,
		PolicyNumber: "POL-2025-00009",
		PolicyStatus: enums.PolicyStatusUnderwriting,
		CreatedAt:    time.Now().UTC().Add(-10 * 24 * time.Hour),
	}}
	pub := &stubOutboxPublisher{}
	svc, _ := NewService(repo, stubTxRunner{}, pub)

	escalated, err := svc.Escalate(context.Background(), policyID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !escalated {
		t.Fatal("expected first escalation to apply")
	}
	if len(pub.events) != 1 || pub.events[0].EventType != enums.EventPolicyEscalated {
		t.Fatalf("expected policy_escalated event, got %+v", pub.events)
	}
	escalated, err = svc.Escalate(context.Background(), policyID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if escalated {
		t.Fatal("second escalation must be a no-op")
	}
	if len(pub.events) != 1 {
		t.Fatalf("no extra events expected, got %d", len(pub.events))
	}
}

func TestRemoteSubmitMapsRejections(t *testing.T) {
	repo := &stubPoliciesRepo{}
	svc, _ := NewService(repo, stubTxRunner{}, &stubOutboxPublisher{})
	remote, err := NewRemote(svc)
	if err != nil {
		t.Fatalf("remote constructor failed: %v", err)
	}

	// missing customer name: rejection folded into the result
	result, err := remote.Submit(context.Background(), offlinequeue.SubmitInput{
		ProductID:      uuid.NewString(),
		PremiumAmount:  decimal.NewFromInt(100),
		LineOfBusiness: "motor",
		CreatedBy:      actors.AgentRef(uuid.NewString()),
	})
	if err != nil {
		t.Fatalf("rejection must not surface as error, got %v", err)
	}
	if result.Success || result.Error == "" {
		t.Fatalf("expected failed result with message, got %+v", result)
	}

	result, err = remote.Submit(context.Background(), offlinequeue.SubmitInput{
		TempID:         "TMP-1700000000000-abcd1234",
		ProductID:      uuid.NewString(),
		CustomerName:   "Rosa Fuentes",
		PremiumAmount:  decimal.NewFromInt(100),
		LineOfBusiness: "motor",
		CreatedBy:      actors.AgentRef(uuid.NewString()),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success || result.ID == "" || result.PolicyNumber == "" {
		t.Fatalf("expected accepted result with identifiers, got %+v", result)
	}
}
