package sheet

import (
	"slices"
	"testing"
)

func TestTableHeaderAndRows(t *testing.T) {
	s := abSheet(t)
	table, err := s.Table(MergeOptions{Prune: true})
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	if _, ok := s.Column(TableColumnName); ok {
		t.Fatal("Table must not add its transient column")
	}

	wantHeader := []string{"ordinal", "onset", "offset", "A_ordinal", "A_x", "B_ordinal", "B_y"}
	if got := table.Header(); !slices.Equal(got, wantHeader) {
		t.Fatalf("Header = %v", got)
	}
	if table.Len() != 3 {
		t.Fatalf("Len = %d", table.Len())
	}
	rows := table.Rows()
	if rows[1].Ordinal != 2 || rows[1].Onset != 2000 || rows[1].Offset != 5000 {
		t.Fatalf("row 2 = %+v", rows[1])
	}

	text := table.Records(TimeText)
	if !slices.Equal(text[0], []string{"1", "00:00:00:000", "00:00:01:999", "1", "hi", "", ""}) {
		t.Fatalf("text record = %q", text[0])
	}
	millis := table.Records(TimeMillis)
	if !slices.Equal(millis[2], []string{"3", "5001", "7000", "", "", "1", "lo"}) {
		t.Fatalf("millis record = %q", millis[2])
	}
}

func TestNewTableOrdersByOrdinal(t *testing.T) {
	col := mustColumn(t, NewSpreadsheet(""), "A", "x")
	col.NewCell(2, 10, 20, "second")
	col.NewCell(1, 0, 5, "first")

	rows := NewTable(col).Rows()
	if rows[0].Values[0] != "first" || rows[1].Values[0] != "second" {
		t.Fatalf("rows out of order: %+v", rows)
	}
}
