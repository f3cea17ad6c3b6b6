package enums

import "fmt"

// PolicyStatus maps to the policy_status enum in Postgres. The first three
// values double as the local synchronization states tracked by the offline
// queue; the rest only ever appear on server-side rows.
type PolicyStatus string

const (
	PolicyStatusDraft        PolicyStatus = "draft"
	PolicyStatusPendingSync  PolicyStatus = "pending_sync"
	PolicyStatusUnderwriting PolicyStatus = "underwriting"
	PolicyStatusActive       PolicyStatus = "active"
	PolicyStatusEscalated    PolicyStatus = "escalated"
	PolicyStatusExpired      PolicyStatus = "expired"
	PolicyStatusCancelled    PolicyStatus = "cancelled"
)

var validPolicyStatuses = []PolicyStatus{
	PolicyStatusDraft,
	PolicyStatusPendingSync,
	PolicyStatusUnderwriting,
	PolicyStatusActive,
	PolicyStatusEscalated,
	PolicyStatusExpired,
	PolicyStatusCancelled,
}

// String implements fmt.Stringer.
func (s PolicyStatus) String() string {
	return string(s)
}

// IsValid reports whether the value matches the canonical policy_status enum.
func (s PolicyStatus) IsValid() bool {
	for _, candidate := range validPolicyStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParsePolicyStatus converts raw input into a PolicyStatus.
func ParsePolicyStatus(value string) (PolicyStatus, error) {
	for _, candidate := range validPolicyStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid policy status %q", value)
}
