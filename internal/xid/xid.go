// Package xid generates unique row identifiers for history records.
package xid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// New returns a prefixed identifier built from a nanosecond timestamp
// and a random suffix. Snapshot rows are append-only, so collision
// resistance matters more than compactness. If the entropy source
// fails the timestamp alone still keeps ids unique within a process.
func New(prefix string) string {
	suffix := make([]byte, 6)
	if _, err := rand.Read(suffix); err != nil {
		return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
	}
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixNano(), hex.EncodeToString(suffix))
}
