// Package precondition implements application-level compare-and-swap for
// conditional updates. A fingerprint derived from an entity's
// last-modified time is handed out on reads and checked against the
// If-Match value the client sends back. No lock is held between read and
// write.
package precondition

import (
	"strings"
	"time"
)

// Outcome of evaluating a client-supplied precondition.
type Outcome int

const (
	// Proceed means the precondition matches and the update may apply.
	Proceed Outcome = iota
	// Conflict means the client's view is stale; do not apply.
	Conflict
	// NotModified is the read-path outcome for a matching If-None-Match.
	NotModified
	// Required means the request carried no precondition at all.
	// Blind updates are disallowed.
	Required
)

func (o Outcome) String() string {
	switch o {
	case Proceed:
		return "proceed"
	case Conflict:
		return "conflict"
	case NotModified:
		return "not-modified"
	case Required:
		return "required"
	}
	return "unknown"
}

// Fingerprint derives the precondition value from an entity's
// last-modified timestamp. Deterministic: equal timestamps produce equal
// fingerprints.
func Fingerprint(updatedAt time.Time) string {
	return updatedAt.UTC().Format(time.RFC3339Nano)
}

// Evaluate compares the entity's current fingerprint against the value
// supplied by the client (already stripped of ETag quoting).
func Evaluate(current, supplied string) Outcome {
	if supplied == "" {
		return Required
	}
	if supplied != current {
		return Conflict
	}
	return Proceed
}

// EvaluateRead compares the entity's current fingerprint against an
// If-None-Match value. Reads never require a precondition: an absent or
// stale value simply serves the entity.
func EvaluateRead(current, supplied string) Outcome {
	if supplied != "" && supplied == current {
		return NotModified
	}
	return Proceed
}

// ETag wraps a fingerprint in the strong-ETag form used on the wire.
func ETag(fingerprint string) string {
	return `"` + fingerprint + `"`
}

// FromETag strips ETag quoting (and a weak-validator prefix) from a
// header value, returning the bare fingerprint.
func FromETag(header string) string {
	v := strings.TrimSpace(header)
	v = strings.TrimPrefix(v, "W/")
	return strings.Trim(v, `"`)
}
