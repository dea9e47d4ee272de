package sheet

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"govyu/internal/faults"
	"govyu/internal/timestamp"
)

// Column is a named coding pass: a fixed code list and the cells coded
// against it.
type Column struct {
	Name string

	codes []string
	index map[string]int
	cells []*Cell
}

// NamePattern matches a column name that a db header line can carry: one or
// more Unicode letters, digits or underscores.
const NamePattern = `[\p{L}\p{N}_]+`

var columnName = regexp.MustCompile(`^` + NamePattern + `$`)

// ValidName reports whether name matches NamePattern.
func ValidName(name string) bool {
	return columnName.MatchString(name)
}

func checkName(name string) error {
	if strings.TrimSpace(name) == "" {
		return faults.Wrap(faults.ErrStructure, "column", "create", "column name is empty", nil)
	}
	if !ValidName(name) {
		return faults.Wrap(faults.ErrStructure, "column", "create",
			fmt.Sprintf("column name %q may only hold letters, digits and underscores", name), nil)
	}
	return nil
}

// checkCode rejects code names the header code list cannot carry.
func checkCode(name string, pos int, code string) error {
	var problem string
	switch {
	case code == "":
		problem = "has an empty name"
	case strings.TrimSpace(code) != code:
		problem = "has surrounding whitespace"
	case strings.ContainsAny(code, ",|\r\n"):
		problem = "contains a comma, pipe or line break"
	case strings.Contains(code, ")-"):
		problem = `contains ")-"`
	default:
		return nil
	}
	return faults.Wrap(faults.ErrStructure, "column", "create",
		fmt.Sprintf("column %q: code %d %s", name, pos, problem), nil)
}

// NewColumn builds a detached column. The name must match NamePattern. Code
// names must be non-empty and unique and must not hold characters that
// delimit the header code list. Use Spreadsheet.NewColumn to create a column
// that belongs to a spreadsheet.
func NewColumn(name string, codes ...string) (*Column, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	index := make(map[string]int, len(codes))
	for i, code := range codes {
		if err := checkCode(name, i+1, code); err != nil {
			return nil, err
		}
		if _, dup := index[code]; dup {
			return nil, faults.Wrap(faults.ErrStructure, "column", "create",
				fmt.Sprintf("column %q: duplicate code %q", name, code), nil)
		}
		index[code] = i
	}
	return &Column{
		Name:  name,
		codes: slices.Clone(codes),
		index: index,
	}, nil
}

// Codes returns a copy of the declared code list.
func (c *Column) Codes() []string {
	return slices.Clone(c.codes)
}

// HasCode reports whether code is declared.
func (c *Column) HasCode(code string) bool {
	_, ok := c.index[code]
	return ok
}

// Len returns the number of cells.
func (c *Column) Len() int {
	return len(c.cells)
}

// Cells returns the cells in storage order. The slice is a copy; the cells are
// shared.
func (c *Column) Cells() []*Cell {
	return slices.Clone(c.cells)
}

// SortedCells returns the cells ordered by ordinal. Equal ordinals keep their
// storage order.
func (c *Column) SortedCells() []*Cell {
	out := slices.Clone(c.cells)
	slices.SortStableFunc(out, func(a, b *Cell) int {
		return a.Ordinal - b.Ordinal
	})
	return out
}

// NewCell appends a cell. Every code starts blank; values are then assigned
// positionally. Values beyond the code list are ignored and missing values
// stay blank. An offset before the onset is raised to the onset.
func (c *Column) NewCell(ordinal int, onset, offset timestamp.Timestamp, values ...string) *Cell {
	if offset < onset {
		offset = onset
	}
	cell := &Cell{
		Ordinal: ordinal,
		Onset:   onset,
		Offset:  offset,
		column:  c,
		values:  make([]string, len(c.codes)),
	}
	copy(cell.values, values)
	c.cells = append(c.cells, cell)
	return cell
}

// CellAt returns the first cell in storage order spanning t, or nil.
func (c *Column) CellAt(t timestamp.Timestamp) *Cell {
	for _, cell := range c.cells {
		if cell.Spans(t) {
			return cell
		}
	}
	return nil
}

// ValuesAt returns the code values of the cell spanning t, or nil.
func (c *Column) ValuesAt(t timestamp.Timestamp) []string {
	cell := c.CellAt(t)
	if cell == nil {
		return nil
	}
	return cell.Values()
}

// Span returns the earliest onset and latest offset across the cells. ok is
// false for an empty column.
func (c *Column) Span() (first, last timestamp.Timestamp, ok bool) {
	for i, cell := range c.cells {
		if i == 0 || cell.Onset < first {
			first = cell.Onset
		}
		if i == 0 || cell.Offset > last {
			last = cell.Offset
		}
	}
	return first, last, len(c.cells) > 0
}
