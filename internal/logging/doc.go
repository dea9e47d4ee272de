// Package logging assembles structured slog loggers and formatting helpers used
// across govyu commands.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and lets individual components (the parser, the archive writer,
// the exporter) run at their own level through component overrides. The
// package also provides a no-op logger for tests and wiring code that cannot
// fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
