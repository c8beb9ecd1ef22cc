package domain

import "time"

// TimeRange bounds a fetch. A nil endpoint leaves that side unbounded;
// both endpoints are inclusive.
type TimeRange struct {
	From *time.Time
	To   *time.Time
}

// Validate rejects ranges whose lower bound is after the upper bound.
func (r TimeRange) Validate() error {
	if r.From != nil && r.To != nil && r.From.After(*r.To) {
		return ErrInvalidRange
	}
	return nil
}

// Contains reports whether ts falls inside the range. Endpoints equal to
// From or To are included.
func (r TimeRange) Contains(ts time.Time) bool {
	if r.From != nil && ts.Before(*r.From) {
		return false
	}
	if r.To != nil && ts.After(*r.To) {
		return false
	}
	return true
}
