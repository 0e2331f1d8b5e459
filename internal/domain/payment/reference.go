package payment

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	referenceFallbackPrefix = "PLOGO"
	referencePrefixMax      = 6
	referenceSuffixLen      = 4
	referenceMax            = 20
)

// Reference derives the human-readable payment reference shown to both
// parties: an uppercase station prefix, the slot start as YYMMDDHHmm, and the
// tail of the slot id. Deterministic for a given slot; collision-tolerant
// rather than globally unique.
func Reference(stationName string, slotStartAt time.Time, slotID uuid.UUID) string {
	prefix := alphanumericUpper(stationName)
	if len(prefix) > referencePrefixMax {
		prefix = prefix[:referencePrefixMax]
	}
	if prefix == "" {
		prefix = referenceFallbackPrefix
	}

	stamp := slotStartAt.UTC().Format("0601021504")

	suffix := alphanumericUpper(slotID.String())
	if len(suffix) > referenceSuffixLen {
		suffix = suffix[len(suffix)-referenceSuffixLen:]
	}

	reference := prefix + stamp + suffix
	if len(reference) > referenceMax {
		reference = reference[:referenceMax]
	}
	return reference
}

func alphanumericUpper(value string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(value) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
