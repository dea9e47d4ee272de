package sheet

import (
	"strconv"

	"govyu/internal/timestamp"
)

// TableColumnName names the transient merged column behind Spreadsheet.Table.
const TableColumnName = "merged"

// Intrinsic header names that precede the merged codes.
const (
	HeaderOrdinal = "ordinal"
	HeaderOnset   = "onset"
	HeaderOffset  = "offset"
)

// TimeFormat selects how Records renders onset and offset.
type TimeFormat int

const (
	// TimeText renders HH:MM:SS:mmm.
	TimeText TimeFormat = iota
	// TimeMillis renders the millisecond count.
	TimeMillis
)

// Row is one cell of a tabular view.
type Row struct {
	Ordinal int                 `json:"ordinal"`
	Onset   timestamp.Timestamp `json:"onset"`
	Offset  timestamp.Timestamp `json:"offset"`
	Values  []string            `json:"values"`
}

// Table is the tabular view of a column: a fixed header and one row per cell
// in ordinal order.
type Table struct {
	codes []string
	rows  []Row
}

// NewTable snapshots col.
func NewTable(col *Column) *Table {
	t := &Table{codes: col.Codes()}
	for _, cell := range col.SortedCells() {
		t.rows = append(t.rows, Row{
			Ordinal: cell.Ordinal,
			Onset:   cell.Onset,
			Offset:  cell.Offset,
			Values:  cell.Values(),
		})
	}
	return t
}

// Header returns ordinal, onset, offset followed by the code list.
func (t *Table) Header() []string {
	header := make([]string, 0, 3+len(t.codes))
	header = append(header, HeaderOrdinal, HeaderOnset, HeaderOffset)
	return append(header, t.codes...)
}

// Codes returns the code columns of the table.
func (t *Table) Codes() []string {
	out := make([]string, len(t.codes))
	copy(out, t.codes)
	return out
}

// Rows returns the rows in ordinal order.
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Records renders every row as strings aligned with Header.
func (t *Table) Records(format TimeFormat) [][]string {
	records := make([][]string, 0, len(t.rows))
	for _, row := range t.rows {
		rec := make([]string, 0, 3+len(row.Values))
		rec = append(rec, strconv.Itoa(row.Ordinal), formatTime(row.Onset, format), formatTime(row.Offset, format))
		records = append(records, append(rec, row.Values...))
	}
	return records
}

func formatTime(ts timestamp.Timestamp, format TimeFormat) string {
	if format == TimeMillis {
		return strconv.FormatInt(ts.Millis(), 10)
	}
	return ts.String()
}
