// Package faults defines the error taxonomy shared by the annotation parser,
// the archive layer, and the command line.
//
// Failures are tagged with one of the exported sentinel markers through Wrap
// so callers can branch with errors.Is while still seeing the component and
// operation that failed. ExitCode maps the markers onto conventional process
// exit statuses for the CLI.
package faults
