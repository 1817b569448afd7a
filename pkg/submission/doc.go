// Package submission drives the final step of a wizard: it validates the
// session, aggregates the payload, sends it through a Transport bounded by a
// timeout and reports the outcome as events and a Result value.
//
// A Controller accepts one submission at a time. A second Submit while one is
// in flight, or after a success, is ignored; a failure returns the controller
// to idle with the session data intact so a retry resends an identical
// payload.
package submission
