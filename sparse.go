package itm

// sparse: two-way sparse incidence over the constraint x variable matrix.
//
// Every (row, column) nonzero is assigned a stable slot in row-major
// insertion order. The slot addresses the parallel coefficient array A and
// preference array P from both the row view and the column view, so a
// per-row update dirties exactly the slots it touches and later per-column
// reductions observe them at O(nnz-in-column) cost.

// RowEntry is one nonzero seen from its row: the column it lives in and
// its slot in the parallel arrays.
type RowEntry struct {
	Column int
	Value  int
}

// ColEntry is one nonzero seen from its column: the row it lives in and
// its slot in the parallel arrays.
type ColEntry struct {
	Row   int
	Value int
}

// Incidence is the CSR-like structure with an auxiliary column index.
// It is immutable after construction and safely shared across workers.
type Incidence struct {
	rowPtr     []int
	rowEntries []RowEntry
	colPtr     []int
	colEntries []ColEntry
	m          int
	n          int
}

// NewIncidence builds the incidence of the merged rows over n variables.
func NewIncidence(merged []MergedConstraint, n int) *Incidence {
	m := len(merged)
	nnz := elementCount(merged)

	ap := &Incidence{
		rowPtr:     make([]int, m+1),
		rowEntries: make([]RowEntry, 0, nnz),
		colPtr:     make([]int, n+1),
		colEntries: make([]ColEntry, nnz),
		m:          m,
		n:          n,
	}

	// Row view, assigning slots in row-major insertion order.
	value := 0
	for k := 0; k < m; k++ {
		ap.rowPtr[k] = value
		for _, e := range merged[k].Elements {
			ap.rowEntries = append(ap.rowEntries, RowEntry{
				Column: e.Variable,
				Value:  value,
			})
			value++
		}
	}
	ap.rowPtr[m] = value

	// Column view over the same slots, in deterministic row order.
	counts := make([]int, n)
	for _, e := range ap.rowEntries {
		counts[e.Column]++
	}
	for j := 0; j < n; j++ {
		ap.colPtr[j+1] = ap.colPtr[j] + counts[j]
	}

	next := make([]int, n)
	copy(next, ap.colPtr[:n])
	for k := 0; k < m; k++ {
		for _, e := range ap.Row(k) {
			ap.colEntries[next[e.Column]] = ColEntry{
				Row:   k,
				Value: e.Value,
			}
			next[e.Column]++
		}
	}

	return ap
}

// Row returns the nonzeros of row k in insertion order.
func (ap *Incidence) Row(k int) []RowEntry {
	return ap.rowEntries[ap.rowPtr[k]:ap.rowPtr[k+1]]
}

// Column returns the nonzeros of column j in row order.
func (ap *Incidence) Column(j int) []ColEntry {
	return ap.colEntries[ap.colPtr[j]:ap.colPtr[j+1]]
}

// Size returns the nonzero count; the A and P arrays are sized from it.
func (ap *Incidence) Size() int {
	return len(ap.rowEntries)
}

// Rows returns the row count.
func (ap *Incidence) Rows() int {
	return ap.m
}

// Columns returns the column count.
func (ap *Incidence) Columns() int {
	return ap.n
}
