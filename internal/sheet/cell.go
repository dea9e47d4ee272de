package sheet

import (
	"fmt"
	"strings"

	"govyu/internal/faults"
	"govyu/internal/timestamp"
)

// Cell is one annotation in a Column.
type Cell struct {
	Ordinal int
	Onset   timestamp.Timestamp
	Offset  timestamp.Timestamp

	column *Column
	values []string
}

// Column returns the owning column.
func (c *Cell) Column() *Column {
	return c.column
}

// Spans reports whether t falls inside the inclusive interval of the cell.
func (c *Cell) Spans(t timestamp.Timestamp) bool {
	return c.Onset <= t && t <= c.Offset
}

// IsPoint reports whether the cell has zero duration.
func (c *Cell) IsPoint() bool {
	return c.Onset == c.Offset
}

// Value returns the value of code, or false when the parent column does not
// declare it.
func (c *Cell) Value(code string) (string, bool) {
	idx, ok := c.column.index[code]
	if !ok {
		return "", false
	}
	return c.values[idx], true
}

// SetValue assigns value to a declared code.
func (c *Cell) SetValue(code, value string) error {
	idx, ok := c.column.index[code]
	if !ok {
		return faults.Wrap(faults.ErrStructure, "cell", "set value",
			fmt.Sprintf("column %q has no code %q", c.column.Name, code), nil)
	}
	c.values[idx] = value
	return nil
}

// Values returns the code values in code-list order. The slice is a copy.
func (c *Cell) Values() []string {
	out := make([]string, len(c.values))
	copy(out, c.values)
	return out
}

// IsEmpty reports whether every code value is blank.
func (c *Cell) IsEmpty() bool {
	for _, v := range c.values {
		if v != "" {
			return false
		}
	}
	return true
}

func (c *Cell) String() string {
	return fmt.Sprintf("%s(%d,%s-%s,%s)", c.column.Name, c.Ordinal, c.Onset, c.Offset, strings.Join(c.values, ","))
}
