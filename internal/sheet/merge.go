package sheet

import (
	"slices"
	"strconv"

	"govyu/internal/timestamp"
)

// OrdinalCode is the per-source code that carries the source cell ordinal in
// a merged column.
const OrdinalCode = "ordinal"

// MergeOptions tunes Merge.
type MergeOptions struct {
	// Prune drops intervals where no source column has an active cell.
	// Ordinals stay dense.
	Prune bool
}

// MergedCodes returns the code list of a merge of cols: for each column in
// order, {name}_ordinal followed by {name}_{code} for every code.
func MergedCodes(cols []*Column) []string {
	var codes []string
	for _, col := range cols {
		codes = append(codes, col.Name+"_"+OrdinalCode)
		for _, code := range col.codes {
			codes = append(codes, col.Name+"_"+code)
		}
	}
	return codes
}

// Boundaries returns the sorted, distinct instants at which the activity of
// some cell in cols changes: every onset and every offset+1.
func Boundaries(cols []*Column) []timestamp.Timestamp {
	var times []timestamp.Timestamp
	for _, col := range cols {
		for _, cell := range col.cells {
			times = append(times, cell.Onset, cell.Offset+1)
		}
	}
	slices.Sort(times)
	return slices.Compact(times)
}

// Merge builds a detached column named name whose cells partition the time
// spanned by cols into maximal intervals of constant activity.
//
// Each merged cell covers [b[i], b[i+1]-1] for consecutive boundaries b, so
// consecutive cells satisfy offset+1 == next onset. For every source column
// the first cell in storage order spanning the interval onset contributes its
// ordinal and values under prefixed codes. A point source cell only
// contributes to point intervals.
func Merge(name string, cols []*Column, opts MergeOptions) (*Column, error) {
	merged, err := NewColumn(name, MergedCodes(cols)...)
	if err != nil {
		return nil, err
	}

	// Offset of each source column's first code in the merged code list.
	starts := make([]int, len(cols))
	pos := 0
	for i, col := range cols {
		starts[i] = pos
		pos += 1 + len(col.codes)
	}

	bounds := Boundaries(cols)
	ordinal := 1
	values := make([]string, len(merged.codes))
	for i := 0; i+1 < len(bounds); i++ {
		onset, offset := bounds[i], bounds[i+1]-1
		clear(values)
		active := 0
		for j, col := range cols {
			src := col.CellAt(onset)
			if src == nil {
				continue
			}
			if src.IsPoint() && onset != offset {
				continue
			}
			values[starts[j]] = strconv.Itoa(src.Ordinal)
			copy(values[starts[j]+1:], src.values)
			active++
		}
		if opts.Prune && active == 0 {
			continue
		}
		merged.NewCell(ordinal, onset, offset, values...)
		ordinal++
	}
	return merged, nil
}
