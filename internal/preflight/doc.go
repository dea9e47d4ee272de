// Package preflight runs environment checks before govyu touches the
// filesystem: the export database directory, the log directory, and
// optionally a set of .opf archives that a command is about to rewrite.
//
// Each check returns a Result instead of an error so callers can print a
// full report even when several checks fail.
package preflight
