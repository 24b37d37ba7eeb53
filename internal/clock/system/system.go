// Package system provides the wall clock used outside of tests.
package system

import "time"

// Clock implements jobs.Clock using time.Now.
type Clock struct{}

// New creates a new Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current UTC time. Search durations and audit rows are
// computed from it.
func (Clock) Now() time.Time {
	return time.Now().UTC()
}
