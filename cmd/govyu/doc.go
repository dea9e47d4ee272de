// Package main hosts the govyu CLI entrypoint and command graph.
//
// The Cobra-based command tree loads Datavyu .opf archives, lists their
// columns and cells, answers point-in-time queries, merges columns into a
// single interval column, and persists the result back into the archive or
// into a SQLite database. It centralizes configuration resolution and
// structured logging setup so subcommands can focus on output.
//
// Keep this package lean: add new functionality to the internal packages
// first, then surface it through dedicated commands or flags here.
package main
