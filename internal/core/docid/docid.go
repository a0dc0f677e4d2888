// Package docid generates human-readable document numbers such as
// PYC-20240301-3F9A1C.
package docid

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const suffixLen = 6

// New returns prefix-YYYYMMDD-XXXXXX where the suffix is taken from a random
// UUID. Collisions surface as duplicate-key errors from the store.
func New(prefix string, at time.Time) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "-" + at.Format("20060102") + "-" + strings.ToUpper(raw[:suffixLen])
}
