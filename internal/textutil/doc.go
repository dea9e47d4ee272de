// Package textutil turns arbitrary column and code names into safe SQLite
// identifiers.
package textutil
