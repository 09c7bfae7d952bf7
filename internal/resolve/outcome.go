// Package resolve turns segmented candidate fields into stored entity ids.
// Each resolver follows cross-references to enrich its record, then matches
// the candidate against the store by its partial key, creating a row only
// when nothing matches.
package resolve

// Status classifies a resolution result. Distinguishing "legitimately
// absent" from "fetch or store failed" is the point; callers must not
// overload absence.
type Status int

const (
	// StatusFound means the entity resolved to a stored id.
	StatusFound Status = iota
	// StatusNotFound means the candidate carried nothing resolvable.
	StatusNotFound
	// StatusFailed means resolution was attempted but errored.
	StatusFailed
)

// Outcome is the result of one resolution.
type Outcome[T any] struct {
	Status Status
	Value  T
	Err    error
}

// Found wraps a successful resolution.
func Found[T any](v T) Outcome[T] {
	return Outcome[T]{Status: StatusFound, Value: v}
}

// NotFound marks a candidate with nothing to resolve.
func NotFound[T any]() Outcome[T] {
	return Outcome[T]{Status: StatusNotFound}
}

// Failed marks an attempted resolution that errored.
func Failed[T any](err error) Outcome[T] {
	return Outcome[T]{Status: StatusFailed, Err: err}
}
