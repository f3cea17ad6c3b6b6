package offlinequeue

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// tempIDPrefix is reserved for locally generated identifiers. Server-issued
// policy numbers use the POL- prefix, so the two can never collide.
const tempIDPrefix = "TMP-"

// NewTempID produces a locally unique identifier for an entry that does not
// yet have a server id: TMP-<unix-millis>-<random-suffix>.
func NewTempID() string {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		// crypto/rand only fails when the platform source is broken; fall
		// back to the nanosecond clock rather than returning an error from
		// an identifier constructor.
		return fmt.Sprintf("%s%d-%d", tempIDPrefix, time.Now().UnixMilli(), time.Now().UnixNano()%100000)
	}
	return fmt.Sprintf("%s%d-%s", tempIDPrefix, time.Now().UnixMilli(), hex.EncodeToString(suffix))
}

// IsTemporaryPolicyNumber reports whether the value was produced by
// NewTempID. Real policy numbers never carry the reserved prefix.
func IsTemporaryPolicyNumber(value string) bool {
	return strings.HasPrefix(value, tempIDPrefix)
}
