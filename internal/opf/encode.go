package opf

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"govyu/internal/faults"
	"govyu/internal/sheet"
)

// FormatVersion is the db version marker written by Encode.
const FormatVersion = 4

// Encode writes cols as db member text, starting with the version marker.
// Cells are written in storage order. A column whose name does not match
// sheet.NamePattern is rejected before anything is written.
func Encode(w io.Writer, cols []*sheet.Column) error {
	for _, col := range cols {
		if !sheet.ValidName(col.Name) {
			return faults.Wrap(faults.ErrStructure, "opf", "encode",
				fmt.Sprintf("column name %q cannot be written to a db header", col.Name), nil)
		}
	}
	bw := bufio.NewWriter(w)
	bw.WriteString("#4\n")
	for _, col := range cols {
		writeHeader(bw, col)
		for _, cell := range col.Cells() {
			bw.WriteString(cell.Onset.String())
			bw.WriteByte(',')
			bw.WriteString(cell.Offset.String())
			bw.WriteString(",(")
			for i, value := range cell.Values() {
				if i > 0 {
					bw.WriteByte(',')
				}
				bw.WriteString(escapeValue(value))
			}
			bw.WriteString(")\n")
		}
	}
	if err := bw.Flush(); err != nil {
		return faults.Wrap(faults.ErrIO, "opf", "encode", "write db member", err)
	}
	return nil
}

// Marshal renders the named columns of s (all columns when names is empty).
func Marshal(s *sheet.Spreadsheet, names ...string) ([]byte, error) {
	cols, err := s.Lookup(names...)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, cols); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeHeader(w *bufio.Writer, col *sheet.Column) {
	w.WriteString(col.Name)
	w.WriteString(" (MATRIX,false,)-")
	for i, code := range col.Codes() {
		if i > 0 {
			w.WriteByte(',')
		}
		w.WriteString(code)
		w.WriteString("|NOMINAL")
	}
	w.WriteByte('\n')
}

// escapeValue prefixes every comma and backslash with a backslash so that
// splitValues returns the value unchanged.
func escapeValue(value string) string {
	if !strings.ContainsAny(value, ",\\") {
		return value
	}
	var b strings.Builder
	b.Grow(len(value) + 4)
	for i := 0; i < len(value); i++ {
		if value[i] == ',' || value[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(value[i])
	}
	return b.String()
}
