// Package search runs a job search end to end on behalf of an HTTP request.
//
// The Orchestrator validates the term, hands it to the Governor, and turns
// whatever comes back into an Outcome. The Governor races the scrape against
// an environment-dependent deadline: 280s on constrained hosting, 60s
// locally. A scrape that loses the race is not cancelled; it keeps running on
// a detached context and its result is dropped. Failures are mapped to a
// Category by substring matching on the error text, see Classify.
package search
