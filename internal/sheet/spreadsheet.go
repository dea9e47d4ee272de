package sheet

import (
	"fmt"
	"slices"

	"govyu/internal/faults"
	"govyu/internal/timestamp"
)

// Spreadsheet is a named collection of columns with unique names. Columns
// keep their declaration order.
type Spreadsheet struct {
	Name string

	columns map[string]*Column
	order   []string
}

// NewSpreadsheet returns an empty spreadsheet with its own column map.
func NewSpreadsheet(name string) *Spreadsheet {
	return &Spreadsheet{
		Name:    name,
		columns: make(map[string]*Column),
	}
}

// NewColumn creates a column and adds it to the spreadsheet.
func (s *Spreadsheet) NewColumn(name string, codes ...string) (*Column, error) {
	col, err := NewColumn(name, codes...)
	if err != nil {
		return nil, err
	}
	if err := s.AddColumn(col); err != nil {
		return nil, err
	}
	return col, nil
}

// AddColumn takes ownership of col. The name must match NamePattern and must
// not already be in use.
func (s *Spreadsheet) AddColumn(col *Column) error {
	if col == nil {
		return faults.Wrap(faults.ErrStructure, "spreadsheet", "add column", "column is nil", nil)
	}
	if !ValidName(col.Name) {
		return faults.Wrap(faults.ErrStructure, "spreadsheet", "add column",
			fmt.Sprintf("column name %q may only hold letters, digits and underscores", col.Name), nil)
	}
	if _, exists := s.columns[col.Name]; exists {
		return faults.Wrap(faults.ErrStructure, "spreadsheet", "add column",
			fmt.Sprintf("column %q already exists", col.Name), nil)
	}
	s.columns[col.Name] = col
	s.order = append(s.order, col.Name)
	return nil
}

// Column returns the named column.
func (s *Spreadsheet) Column(name string) (*Column, bool) {
	col, ok := s.columns[name]
	return col, ok
}

// ColumnNames returns column names in declaration order.
func (s *Spreadsheet) ColumnNames() []string {
	return slices.Clone(s.order)
}

// Columns returns the columns in declaration order.
func (s *Spreadsheet) Columns() []*Column {
	out := make([]*Column, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.columns[name])
	}
	return out
}

// Len returns the number of columns.
func (s *Spreadsheet) Len() int {
	return len(s.order)
}

// Lookup resolves column names in the order given. With no names it returns
// every column in declaration order.
func (s *Spreadsheet) Lookup(names ...string) ([]*Column, error) {
	if len(names) == 0 {
		return s.Columns(), nil
	}
	out := make([]*Column, 0, len(names))
	for _, name := range names {
		col, ok := s.columns[name]
		if !ok {
			return nil, faults.Wrap(faults.ErrStructure, "spreadsheet", "lookup",
				fmt.Sprintf("no column named %q", name), nil)
		}
		out = append(out, col)
	}
	return out, nil
}

// CellsAt returns, for each requested column, the cell spanning t or nil.
func (s *Spreadsheet) CellsAt(t timestamp.Timestamp, names ...string) ([]*Cell, error) {
	cols, err := s.Lookup(names...)
	if err != nil {
		return nil, err
	}
	out := make([]*Cell, len(cols))
	for i, col := range cols {
		out[i] = col.CellAt(t)
	}
	return out, nil
}

// ValuesAt flattens the code values active at t across the requested
// columns. A column with no active cell contributes one blank per code so
// positions stay aligned with the concatenated code lists.
func (s *Spreadsheet) ValuesAt(t timestamp.Timestamp, names ...string) ([]string, error) {
	cols, err := s.Lookup(names...)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, col := range cols {
		if values := col.ValuesAt(t); values != nil {
			out = append(out, values...)
			continue
		}
		out = append(out, make([]string, len(col.codes))...)
	}
	return out, nil
}

// MergeColumns merges the named columns (all columns when none are named)
// into a new column called name and adds it to the spreadsheet.
func (s *Spreadsheet) MergeColumns(name string, opts MergeOptions, names ...string) (*Column, error) {
	if _, exists := s.columns[name]; exists {
		return nil, faults.Wrap(faults.ErrStructure, "spreadsheet", "merge",
			fmt.Sprintf("column %q already exists", name), nil)
	}
	cols, err := s.Lookup(names...)
	if err != nil {
		return nil, err
	}
	merged, err := Merge(name, cols, opts)
	if err != nil {
		return nil, err
	}
	if err := s.AddColumn(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// Table merges the named columns into a transient column and returns its
// tabular view. The spreadsheet is not modified.
func (s *Spreadsheet) Table(opts MergeOptions, names ...string) (*Table, error) {
	cols, err := s.Lookup(names...)
	if err != nil {
		return nil, err
	}
	merged, err := Merge(TableColumnName, cols, opts)
	if err != nil {
		return nil, err
	}
	return NewTable(merged), nil
}
