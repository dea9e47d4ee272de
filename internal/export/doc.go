// Package export writes merged tables into a SQLite database.
//
// Each export replaces one table (named after the sanitized table name) with
// an ordinal primary key, integer onset and offset milliseconds, and one TEXT
// column per merged code. Every export is recorded in the exports bookkeeping
// table with a UUID, the source archive, the row count, and a UTC timestamp.
//
// The schema version lives in PRAGMA user_version; a database stamped with a
// different version is refused rather than migrated.
package export
