// Package opf reads and writes Datavyu .opf archives.
//
// An .opf file is a zip archive whose "db" member holds the spreadsheet as
// UTF-8 lines: an optional "#4" version marker, one header per column, and one
// line per cell. Decode and Encode translate between those lines and a
// sheet.Spreadsheet. Load and Save work on archive paths; Save replaces only
// the db member and copies every other member, their order, and the archive
// comment into a temp file that is renamed over the original while an
// advisory lock is held.
package opf
