package payment

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	surrogatePrefix = "mock_"
	secretSeparator = "_secret_"
)

// NewSurrogate synthesizes a local payment handle for when the gateway is
// unreachable. The part after "_secret_" is handed to the client only; the
// store keeps the core form.
func NewSurrogate(now time.Time) string {
	return fmt.Sprintf("%s%d_%s%s%s",
		surrogatePrefix, now.UnixMilli(), randAlnum(8), secretSeparator, randAlnum(12))
}

// CoreHandle strips the client-side secret suffix. Confirmation lookups must
// match on the core form.
func CoreHandle(handle string) string {
	if i := strings.Index(handle, secretSeparator); i >= 0 {
		return handle[:i]
	}
	return handle
}

// IsSurrogate reports whether the handle was synthesized locally rather than
// issued by the gateway.
func IsSurrogate(handle string) bool {
	return strings.HasPrefix(handle, surrogatePrefix)
}

func randAlnum(n int) string {
	s := strings.ReplaceAll(uuid.NewString(), "-", "")
	if n > len(s) {
		n = len(s)
	}
	return s[:n]
}
