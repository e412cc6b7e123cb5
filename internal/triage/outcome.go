package triage

// Outcome carries the value of an external call together with whether
// it came from the call itself or from the documented fail-safe
// default after a failure. Tests assert on the path taken, not just
// the final value.
type Outcome[T any] struct {
	Value    T
	Degraded bool
	Cause    error
}

// Ok wraps a value obtained from a successful call.
func Ok[T any](value T) Outcome[T] {
	return Outcome[T]{Value: value}
}

// Degraded wraps the fail-safe default substituted after a failure.
func Degraded[T any](fallback T, cause error) Outcome[T] {
	return Outcome[T]{Value: fallback, Degraded: true, Cause: cause}
}
