package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownMetric indicates that a metric name does not resolve to a
	// supported kind.
	ErrUnknownMetric = errors.New("unknown metric")
	// ErrInvalidRange indicates a time range whose lower bound is after
	// its upper bound.
	ErrInvalidRange = errors.New("invalid time range: from is after to")
	// ErrStoreUnavailable indicates a connection, transport, or timeout
	// failure talking to the backing store.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrCredentialsNotFound indicates that no credentials are stored for
	// a (provider, user) pair.
	ErrCredentialsNotFound = errors.New("credentials not found")
)

// DecodeRangeError reports a stored row that violates a kind's value
// constraints. The offending value is kept for the log line; user-facing
// messages should expose the kind only.
type DecodeRangeError struct {
	Kind   MetricKind
	Column string
	Value  any
}

func (e *DecodeRangeError) Error() string {
	return fmt.Sprintf("%s: column %q holds value out of range: %v", e.Kind, e.Column, e.Value)
}
