package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration file matches %q", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestPoliciesMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_policies.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS policies",
		"CONSTRAINT uq_policies_policy_number UNIQUE (policy_number)",
		"CHECK (premium_amount >= 0)",
		"(created_by_type = 'employee' AND agent_id IS NULL)",
		"(created_by_type = 'agent' AND employee_id IS NULL)",
		"CREATE TABLE IF NOT EXISTS policy_counters",
		"DROP TABLE IF EXISTS policies",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestCommissionRatesMigrationGuardsBands(t *testing.T) {
	content := readMigration(t, "*_create_commission_rates.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS commission_rates",
		"CHECK (premium_max IS NULL OR premium_max > premium_min)",
		"CHECK (rate >= 0 AND rate <= 1)",
		"idx_commission_grid",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOutboxMigrationKeepsUnpublishedIndex(t *testing.T) {
	content := readMigration(t, "*_create_outbox.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS outbox_events",
		"WHERE published_at IS NULL",
		"CREATE TABLE IF NOT EXISTS outbox_dlq",
		"CONSTRAINT uq_outbox_dlq_event_id UNIQUE (event_id)",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestEnumMigrationCoversStatusValues(t *testing.T) {
	content := readMigration(t, "*_create_enums.sql")

	for _, status := range []string{"pending_sync", "underwriting", "escalated", "cancelled"} {
		if !strings.Contains(content, "'"+status+"'") {
			t.Errorf("policy_status enum missing %q", status)
		}
	}
	if !strings.Contains(content, "CREATE TYPE creator_type AS ENUM ('employee', 'agent')") {
		t.Errorf("creator_type enum definition missing or changed")
	}
}
