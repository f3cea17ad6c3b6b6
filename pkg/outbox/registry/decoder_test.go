package registry

import (
	"encoding/json"
	"testing"

	"github.com/mariaquintana/insurecrm-backend/pkg/enums"
)

func TestDecoderRegistry(t *testing.T) {
	reg := NewDecoderRegistry()
	reg.Register(enums.EventPolicyEscalated, 1, func(payload json.RawMessage) (interface{}, error) {
		var decoded map[string]string
		if err := json.Unmarshal(payload, &decoded); err != nil {
			return nil, err
		}
		return decoded, nil
	})

	input := json.RawMessage(`{"policyNumber":"POL-2025-00042"}`)
	output, err := reg.Decode(enums.EventPolicyEscalated, 1, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outMap, ok := output.(map[string]string); !ok || outMap["policyNumber"] != "POL-2025-00042" {
		t.Fatalf("unexpected output %+v", output)
	}
}
