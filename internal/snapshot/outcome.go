// Package snapshot reads one session's family of result, chart-dump, and log
// files. Every operation degrades to an empty default instead of failing the
// caller: the engine writes these files concurrently and a partial read is a
// normal state, not an error.
package snapshot

// Status classifies how a read operation ended.
type Status int

const (
	// StatusOK means the operation produced real data.
	StatusOK Status = iota
	// StatusEmpty means the resource is absent, which is an expected state
	// (no sessions yet, no log yet), not a failure.
	StatusEmpty
	// StatusFailed means the resource exists but could not be used this
	// cycle (malformed JSON, mid-write file). The next poll retries.
	StatusFailed
)

// Outcome is the typed result attached to every parser operation. It makes
// the silent-degrade policy auditable: callers can log the reason without
// the operation ever raising.
type Outcome struct {
	Status Status
	Reason string
}

// OK returns a successful outcome.
func OK() Outcome {
	return Outcome{Status: StatusOK}
}

// Empty returns an expected-absence outcome.
func Empty(reason string) Outcome {
	return Outcome{Status: StatusEmpty, Reason: reason}
}

// Failed returns a degraded outcome with the reason the data was unusable.
func Failed(reason string) Outcome {
	return Outcome{Status: StatusFailed, Reason: reason}
}

// IsOK reports whether the operation produced data.
func (o Outcome) IsOK() bool {
	return o.Status == StatusOK
}

func (o Outcome) String() string {
	switch o.Status {
	case StatusOK:
		return "ok"
	case StatusEmpty:
		if o.Reason != "" {
			return "empty: " + o.Reason
		}
		return "empty"
	default:
		if o.Reason != "" {
			return "failed: " + o.Reason
		}
		return "failed"
	}
}
