package sheet

import (
	"errors"
	"slices"
	"testing"

	"govyu/internal/faults"
	"govyu/internal/timestamp"
)

type span struct {
	onset, offset timestamp.Timestamp
}

func spans(col *Column) []span {
	var out []span
	for _, cell := range col.SortedCells() {
		out = append(out, span{cell.Onset, cell.Offset})
	}
	return out
}

func abSheet(t *testing.T) *Spreadsheet {
	t.Helper()
	s := NewSpreadsheet("")
	a := mustColumn(t, s, "A", "x")
	b := mustColumn(t, s, "B", "y")
	a.NewCell(1, timestamp.MustParse("00:00:00:000"), timestamp.MustParse("00:00:05:000"), "hi")
	b.NewCell(1, timestamp.MustParse("00:00:02:000"), timestamp.MustParse("00:00:07:000"), "lo")
	return s
}

func TestMergeOverlappingColumns(t *testing.T) {
	s := abSheet(t)
	merged, err := s.MergeColumns("AB", MergeOptions{}, "A", "B")
	if err != nil {
		t.Fatalf("MergeColumns: %v", err)
	}

	if got := merged.Codes(); !slices.Equal(got, []string{"A_ordinal", "A_x", "B_ordinal", "B_y"}) {
		t.Fatalf("codes = %v", got)
	}
	wantSpans := []span{{0, 1999}, {2000, 5000}, {5001, 7000}}
	if got := spans(merged); !slices.Equal(got, wantSpans) {
		t.Fatalf("spans = %v, want %v", got, wantSpans)
	}
	wantValues := [][]string{
		{"1", "hi", "", ""},
		{"1", "hi", "1", "lo"},
		{"", "", "1", "lo"},
	}
	for i, cell := range merged.SortedCells() {
		if cell.Ordinal != i+1 {
			t.Fatalf("cell %d ordinal = %d", i, cell.Ordinal)
		}
		if got := cell.Values(); !slices.Equal(got, wantValues[i]) {
			t.Fatalf("cell %d values = %q, want %q", i, got, wantValues[i])
		}
	}
	if _, ok := s.Column("AB"); !ok {
		t.Fatal("merged column was not added to the spreadsheet")
	}
}

func TestMergeDefaultsToAllColumns(t *testing.T) {
	s := abSheet(t)
	merged, err := s.MergeColumns("all", MergeOptions{})
	if err != nil {
		t.Fatalf("MergeColumns: %v", err)
	}
	if merged.Len() != 3 {
		t.Fatalf("expected 3 cells, got %d", merged.Len())
	}
	if _, err := s.MergeColumns("all", MergeOptions{}); !errors.Is(err, faults.ErrStructure) {
		t.Fatalf("expected name clash error, got %v", err)
	}
}

func TestMergeIsolatedPointCell(t *testing.T) {
	s := NewSpreadsheet("")
	p := mustColumn(t, s, "P", "v")
	mustColumn(t, s, "E", "w")
	p.NewCell(1, timestamp.MustParse("00:00:03:000"), timestamp.MustParse("00:00:03:000"), "p")

	merged, err := Merge("m", s.Columns(), MergeOptions{})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if got := spans(merged); !slices.Equal(got, []span{{3000, 3000}}) {
		t.Fatalf("spans = %v", got)
	}
	if got := merged.Cells()[0].Values(); !slices.Equal(got, []string{"1", "p", "", ""}) {
		t.Fatalf("values = %q", got)
	}
}

func TestMergePointCellDoesNotBleed(t *testing.T) {
	s := NewSpreadsheet("")
	a := mustColumn(t, s, "A", "x")
	p := mustColumn(t, s, "P", "v")
	a.NewCell(1, 0, 5000, "long")
	p.NewCell(1, 3000, 3000, "tick")

	merged, err := Merge("m", s.Columns(), MergeOptions{})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	wantSpans := []span{{0, 2999}, {3000, 3000}, {3001, 5000}}
	if got := spans(merged); !slices.Equal(got, wantSpans) {
		t.Fatalf("spans = %v, want %v", got, wantSpans)
	}
	for _, cell := range merged.Cells() {
		v, _ := cell.Value("P_v")
		if cell.IsPoint() != (v == "tick") {
			t.Fatalf("point value misplaced in %s-%s: %q", cell.Onset, cell.Offset, v)
		}
		if x, _ := cell.Value("A_x"); x != "long" {
			t.Fatalf("long cell missing from %s-%s", cell.Onset, cell.Offset)
		}
	}
}

func TestMergeOverlappingCellsFirstMatchWins(t *testing.T) {
	s := NewSpreadsheet("")
	a := mustColumn(t, s, "A", "x")
	a.NewCell(1, 0, 0, "point")
	a.NewCell(2, 0, 10, "wide")

	merged, err := Merge("m", s.Columns(), MergeOptions{})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if got := spans(merged); !slices.Equal(got, []span{{0, 0}, {1, 10}}) {
		t.Fatalf("spans = %v", got)
	}
	cells := merged.SortedCells()
	if v, _ := cells[0].Value("A_x"); v != "point" {
		t.Fatalf("point interval value = %q", v)
	}
	if v, _ := cells[1].Value("A_x"); v != "wide" {
		t.Fatalf("wide interval value = %q", v)
	}
	if v, _ := cells[1].Value("A_ordinal"); v != "2" {
		t.Fatalf("wide interval ordinal = %q", v)
	}
}

func TestMergeTilesTimeline(t *testing.T) {
	s := NewSpreadsheet("")
	a := mustColumn(t, s, "A", "x")
	b := mustColumn(t, s, "B", "y")
	c := mustColumn(t, s, "C", "z")
	a.NewCell(1, 100, 900, "a1")
	a.NewCell(2, 1500, 2500, "a2")
	b.NewCell(1, 400, 400, "b1")
	b.NewCell(2, 2000, 4000, "b2")
	c.NewCell(1, 950, 1200, "c1")
	c.NewCell(2, 4000, 4000, "c2")

	cols := s.Columns()
	merged, err := Merge("m", cols, MergeOptions{})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	cells := merged.SortedCells()
	if want := len(Boundaries(cols)) - 1; len(cells) != want {
		t.Fatalf("unpruned cell count = %d, want %d", len(cells), want)
	}
	if cells[0].Onset != 100 {
		t.Fatalf("first onset = %d", cells[0].Onset)
	}
	if last := cells[len(cells)-1]; last.Offset != 4000 {
		t.Fatalf("last offset = %d", last.Offset)
	}
	for i := 0; i+1 < len(cells); i++ {
		if cells[i].Offset+1 != cells[i+1].Onset {
			t.Fatalf("gap or overlap between %s-%s and %s-%s", cells[i].Onset, cells[i].Offset, cells[i+1].Onset, cells[i+1].Offset)
		}
		if cells[i].Offset < cells[i].Onset {
			t.Fatalf("inverted interval %s-%s", cells[i].Onset, cells[i].Offset)
		}
	}
	// Activity is constant: every instant of an interval sees the same sources.
	for _, cell := range cells {
		for _, col := range cols {
			at := col.CellAt(cell.Onset)
			if at != nil && at.IsPoint() && !cell.IsPoint() {
				at = nil
			}
			for ts := cell.Onset; ts <= cell.Offset; ts += 50 {
				other := col.CellAt(ts)
				if other != nil && other.IsPoint() && !cell.IsPoint() {
					other = nil
				}
				if other != at {
					t.Fatalf("column %s activity changes inside %s-%s at %s", col.Name, cell.Onset, cell.Offset, ts)
				}
			}
		}
	}
}

func TestMergePrune(t *testing.T) {
	s := NewSpreadsheet("")
	a := mustColumn(t, s, "A", "x")
	b := mustColumn(t, s, "B", "y")
	a.NewCell(1, 0, 1000, "")
	b.NewCell(1, 3000, 4000, "b")

	unpruned, err := Merge("u", s.Columns(), MergeOptions{})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if got := spans(unpruned); !slices.Equal(got, []span{{0, 1000}, {1001, 2999}, {3000, 4000}}) {
		t.Fatalf("unpruned spans = %v", got)
	}

	pruned, err := Merge("p", s.Columns(), MergeOptions{Prune: true})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if got := spans(pruned); !slices.Equal(got, []span{{0, 1000}, {3000, 4000}}) {
		t.Fatalf("pruned spans = %v", got)
	}
	for i, cell := range pruned.SortedCells() {
		if cell.Ordinal != i+1 {
			t.Fatalf("ordinals not dense: cell %d has %d", i, cell.Ordinal)
		}
		if cell.IsEmpty() {
			t.Fatalf("pruned output kept empty cell %s-%s", cell.Onset, cell.Offset)
		}
	}
	// A source cell with blank codes still counts as active.
	if v, _ := pruned.SortedCells()[0].Value("A_ordinal"); v != "1" {
		t.Fatalf("blank source cell dropped, A_ordinal = %q", v)
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	s := abSheet(t)
	p := mustColumn(t, s, "P", "v")
	p.NewCell(1, 3000, 3000, "tick")
	p.NewCell(2, 9000, 9500, "late")

	for _, prune := range []bool{false, true} {
		first, err := Merge("M", s.Columns(), MergeOptions{Prune: prune})
		if err != nil {
			t.Fatalf("Merge: %v", err)
		}
		second, err := Merge("M2", []*Column{first}, MergeOptions{Prune: prune})
		if err != nil {
			t.Fatalf("re-merge: %v", err)
		}
		if !slices.Equal(spans(first), spans(second)) {
			t.Fatalf("prune=%v: spans changed on re-merge: %v vs %v", prune, spans(first), spans(second))
		}
		for i, cell := range second.SortedCells() {
			orig := first.SortedCells()[i]
			if got := cell.Values()[1:]; !slices.Equal(got, orig.Values()) {
				t.Fatalf("prune=%v: cell %d values %q, want %q", prune, i, got, orig.Values())
			}
		}
	}
}

func TestMergeEmptyInput(t *testing.T) {
	s := NewSpreadsheet("")
	mustColumn(t, s, "A", "x")
	merged, err := Merge("m", s.Columns(), MergeOptions{})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if merged.Len() != 0 {
		t.Fatalf("expected no cells, got %d", merged.Len())
	}
	if got := merged.Codes(); !slices.Equal(got, []string{"A_ordinal", "A_x"}) {
		t.Fatalf("codes = %v", got)
	}
}

func TestMergeRejectsCodeCollisions(t *testing.T) {
	s := NewSpreadsheet("")
	mustColumn(t, s, "a_b", "c")
	mustColumn(t, s, "a", "b_c")
	if _, err := Merge("m", s.Columns(), MergeOptions{}); !errors.Is(err, faults.ErrStructure) {
		t.Fatalf("expected ErrStructure, got %v", err)
	}
}

func TestBoundaries(t *testing.T) {
	s := NewSpreadsheet("")
	a := mustColumn(t, s, "A", "x")
	a.NewCell(1, 0, 10)
	a.NewCell(2, 5, 5)
	a.NewCell(3, 11, 20)
	got := Boundaries(s.Columns())
	want := []timestamp.Timestamp{0, 5, 6, 11, 21}
	if !slices.Equal(got, want) {
		t.Fatalf("Boundaries = %v, want %v", got, want)
	}
}
