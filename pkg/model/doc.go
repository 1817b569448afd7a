// Package model defines the wizard definition consumed by the state machine,
// the aggregator and the rendering surfaces. A Wizard is an ordered list of
// steps; each step is either a single-select option group, a multi-select
// checkbox group, or a set of free-text fields. Definitions are plain data:
// loaders live in pkg/definition and never mutate a Wizard after Validate.
package model
