package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mariaquintana/insurecrm-backend/pkg/logger"
)

func TestNotificationCleanupUsesRetentionCutoff(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 4, 1, 6, 0, 0, 0, time.UTC)
	repo := &fakeNotificationCleanupRepo{deleted: 12}
	job := newNotificationCleanupTestJob(t, repo, 0)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	expectedCutoff := now.UTC().Add(-notificationRetentionDays * 24 * time.Hour)
	if !repo.lastCutoff.Equal(expectedCutoff) {
		t.Fatalf("expected cutoff %s got %s", expectedCutoff, repo.lastCutoff)
	}
}

func TestNotificationCleanupHonorsCustomRetention(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 4, 1, 6, 0, 0, 0, time.UTC)
	repo := &fakeNotificationCleanupRepo{}
	job := newNotificationCleanupTestJob(t, repo, 7)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	expectedCutoff := now.UTC().Add(-7 * 24 * time.Hour)
	if !repo.lastCutoff.Equal(expectedCutoff) {
		t.Fatalf("expected cutoff %s got %s", expectedCutoff, repo.lastCutoff)
	}
}

func TestNotificationCleanupPropagatesErrors(t *testing.T) {
	t.Parallel()

	repo := &fakeNotificationCleanupRepo{err: errors.New("delete failed")}
	job := newNotificationCleanupTestJob(t, repo, 0)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func newNotificationCleanupTestJob(t *testing.T, repo *fakeNotificationCleanupRepo, retention int) *notificationCleanupJob {
	t.Helper()
	jobIface, err := NewNotificationCleanupJob(NotificationCleanupJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		Repository: repo,
		Retention:  retention,
	})
	if err != nil {
		t.Fatalf("NewNotificationCleanupJob: %v", err)
	}
	job, ok := jobIface.(*notificationCleanupJob)
	if !ok {
		t.Fatalf("expected notificationCleanupJob, got %T", jobIface)
	}
	return job
}

type fakeNotificationCleanupRepo struct {
	deleted    int64
	err        error
	lastCutoff time.Time
}

func (f *fakeNotificationCleanupRepo) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	f.lastCutoff = cutoff
	if f.err != nil {
		return 0, f.err
	}
	return f.deleted, nil
}
