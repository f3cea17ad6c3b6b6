package actors

import (
	"github.com/google/uuid"

	"github.com/mariaquintana/insurecrm-backend/pkg/enums"
)

// CreatorRef names the actor a record was created on behalf of. Modelling the
// pair as one value keeps the employee/agent exclusivity structural instead of
// relying on two nullable columns staying consistent.
type CreatorRef struct {
	Type enums.CreatorType
	ID   string // internal actor row id; empty when resolution missed
}

// EmployeeRef builds a reference to an employee actor.
func EmployeeRef(id string) CreatorRef {
	return CreatorRef{Type: enums.CreatorTypeEmployee, ID: id}
}

// AgentRef builds a reference to an agent actor.
func AgentRef(id string) CreatorRef {
	return CreatorRef{Type: enums.CreatorTypeAgent, ID: id}
}

// Resolved reports whether the reference carries an actor row id.
func (r CreatorRef) Resolved() bool {
	return r.ID != ""
}

// UUID parses the row id, returning nil for unresolved or malformed ids.
func (r CreatorRef) UUID() *uuid.UUID {
	if r.ID == "" {
		return nil
	}
	parsed, err := uuid.Parse(r.ID)
	if err != nil {
		return nil
	}
	return &parsed
}
