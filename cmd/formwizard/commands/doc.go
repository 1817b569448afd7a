// Package commands defines the formwizard CLI and wires dependencies for
// subcommands.
//
// Commands
//
//   - run      Walk a wizard session in the terminal and submit it
//   - render   Print the HTML surface for a step
//   - check    Validate a definition file or an OpenAPI operation
//
// # Implementation
//
// The root command loads FORMWIZARD_* environment configuration, applies flag
// overrides and builds the logger and metrics registry before any subcommand
// runs, so handlers share one app context.
package commands
