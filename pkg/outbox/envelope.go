package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/mariaquintana/insurecrm-backend/pkg/enums"
)

// ActorRef identifies the employee or agent who produced the event. ActorID
// may be nil when the producer could not be resolved at capture time.
type ActorRef struct {
	ActorID *uuid.UUID        `json:"actorId,omitempty"`
	Type    enums.CreatorType `json:"type,omitempty"`
}

// PayloadEnvelope is the stable payload structure stored in outbox_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}
