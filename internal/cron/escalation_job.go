package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mariaquintana/insurecrm-backend/pkg/db/models"
	"github.com/mariaquintana/insurecrm-backend/pkg/logger"
)

const (
	escalationPendingDays = 14
	escalationBatchSize   = 200
)

type EscalationJobParams struct {
	Logger      *logger.Logger
	Repository  stalePolicyFinder
	Escalator   policyEscalator
	PendingDays int
	BatchSize   int
}

type stalePolicyFinder interface {
	FindStaleUnderwriting(ctx context.Context, cutoff time.Time, limit int) ([]models.Policy, error)
}

type policyEscalator interface {
	Escalate(ctx context.Context, id uuid.UUID) (bool, error)
}

// NewEscalationJob builds the job that moves long-pending underwriting
// policies to escalated. Each policy is escalated independently so one
// failure does not stall the rest of the batch.
func NewEscalationJob(params EscalationJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("policy repository required")
	}
	if params.Escalator == nil {
		return nil, fmt.Errorf("policy escalator required")
	}
	pendingDays := params.PendingDays
	if pendingDays <= 0 {
		pendingDays = escalationPendingDays
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = escalationBatchSize
	}
	return &escalationJob{
		logg:        params.Logger,
		repo:        params.Repository,
		escalator:   params.Escalator,
		pendingDays: pendingDays,
		batchSize:   batchSize,
		now:         time.Now,
	}, nil
}

type escalationJob struct {
	logg        *logger.Logger
	repo        stalePolicyFinder
	escalator   policyEscalator
	pendingDays int
	batchSize   int
	now         func() time.Time
}

func (j *escalationJob) Name() string { return "policy-escalation" }

func (j *escalationJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.pendingDays) * 24 * time.Hour)
	stale, err := j.repo.FindStaleUnderwriting(ctx, cutoff, j.batchSize)
	if err != nil {
		return fmt.Errorf("find stale underwriting policies: %w", err)
	}

	var escalated, skipped, failed int
	for _, policy := range stale {
		changed, err := j.escalator.Escalate(ctx, policy.ID)
		if err != nil {
			failed++
			errCtx := j.logg.WithField(ctx, "policy_id", policy.ID.String())
			j.logg.Error(errCtx, "policy escalation failed", err)
			continue
		}
		if changed {
			escalated++
		} else {
			skipped++
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"pending_days": j.pendingDays,
		"candidates":   len(stale),
		"escalated":    escalated,
		"skipped":      skipped,
		"failed":       failed,
	})
	j.logg.Info(logCtx, "policy escalation sweep complete")

	if failed > 0 && escalated == 0 && skipped == 0 {
		return fmt.Errorf("all %d escalation attempts failed", failed)
	}
	return nil
}
