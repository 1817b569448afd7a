// Package wizard implements the step state machine: it owns the current step,
// the raw field values and the per-step notifications, gates forward moves on
// each step's validity rule, and publishes navigation, notification and field
// marking events for rendering surfaces to consume.
//
// A Wizard is an explicit session object. Any number of independent wizards
// may exist at once; none of them touches global state.
package wizard
