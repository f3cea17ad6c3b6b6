package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mariaquintana/insurecrm-backend/pkg/logger"
)

func TestOutboxRetentionUsesDefaults(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 20, 3, 0, 0, 0, time.UTC)
	repo := &fakeOutboxRetentionRepo{deleted: 40}
	job := newOutboxRetentionTestJob(t, repo, OutboxRetentionJobParams{Repository: repo})
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	expectedCutoff := now.UTC().Add(-outboxRetentionDays * 24 * time.Hour)
	if !repo.lastCutoff.Equal(expectedCutoff) {
		t.Fatalf("expected cutoff %s got %s", expectedCutoff, repo.lastCutoff)
	}
	if repo.lastMinAttempts != outboxMinAttempts {
		t.Fatalf("expected min attempts %d got %d", outboxMinAttempts, repo.lastMinAttempts)
	}
}

func TestOutboxRetentionPropagatesErrors(t *testing.T) {
	t.Parallel()

	repo := &fakeOutboxRetentionRepo{err: errors.New("delete failed")}
	job := newOutboxRetentionTestJob(t, repo, OutboxRetentionJobParams{Repository: repo})

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func newOutboxRetentionTestJob(t *testing.T, repo *fakeOutboxRetentionRepo, params OutboxRetentionJobParams) *outboxRetentionJob {
	t.Helper()
	params.Logger = logger.New(logger.Options{ServiceName: "test"})
	params.Repository = repo
	jobIface, err := NewOutboxRetentionJob(params)
	if err != nil {
		t.Fatalf("NewOutboxRetentionJob: %v", err)
	}
	job, ok := jobIface.(*outboxRetentionJob)
	if !ok {
		t.Fatalf("expected outboxRetentionJob, got %T", jobIface)
	}
	return job
}

type fakeOutboxRetentionRepo struct {
	deleted         int64
	err             error
	lastCutoff      time.Time
	lastMinAttempts int
}

func (f *fakeOutboxRetentionRepo) DeletePublishedBefore(cutoff time.Time, minAttempts int) (int64, error) {
	f.lastCutoff = cutoff
	f.lastMinAttempts = minAttempts
	if f.err != nil {
		return 0, f.err
	}
	return f.deleted, nil
}
