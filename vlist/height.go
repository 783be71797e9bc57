package vlist

import (
	"slices"
	"sort"
)

type rowExtent struct {
	value    float64
	measured bool
}

// heightModel tracks one extent per row, each either estimated (the
// construction default) or measured (recorded after the row was actually
// laid out). A Fenwick tree over the extents answers offset queries in
// O(log n); measurement is an O(log n) point update. Structural changes
// (reset, splice) rebuild the tree in O(n), which is fine because they are
// rare next to layout queries.
type heightModel struct {
	extents  []rowExtent
	tree     []float64 // 1-based partial sums
	estimate float64
}

func newHeightModel(count int, estimate float64) *heightModel {
	m := &heightModel{estimate: estimate}
	m.reset(count)
	return m
}

func (m *heightModel) len() int { return len(m.extents) }

func (m *heightModel) extentAt(index int) float64 {
	return m.extents[index].value
}

func (m *heightModel) measuredAt(index int) bool {
	return m.extents[index].measured
}

// reset replaces the whole model with count rows at the estimated extent.
func (m *heightModel) reset(count int) {
	m.extents = make([]rowExtent, count)
	for i := range m.extents {
		m.extents[i] = rowExtent{value: m.estimate}
	}
	m.rebuild()
}

// splice replaces rows [start, end) with count fresh estimated rows,
// shifting everything at or after end. Bounds are the caller's problem.
func (m *heightModel) splice(start, end, count int) {
	fresh := make([]rowExtent, count)
	for i := range fresh {
		fresh[i] = rowExtent{value: m.estimate}
	}
	m.extents = slices.Concat(m.extents[:start], fresh, m.extents[end:])
	m.rebuild()
}

func (m *heightModel) rebuild() {
	n := len(m.extents)
	m.tree = make([]float64, n+1)
	for i, e := range m.extents {
		j := i + 1
		m.tree[j] += e.value
		if parent := j + (j & -j); parent <= n {
			m.tree[parent] += m.tree[j]
		}
	}
}

// recordMeasured overwrites the extent at index with a measured value and
// updates the partial sums in place.
func (m *heightModel) recordMeasured(index int, value float64) {
	if index < 0 || index >= len(m.extents) {
		return
	}
	delta := value - m.extents[index].value
	m.extents[index] = rowExtent{value: value, measured: true}
	if delta == 0 {
		return
	}
	for i := index + 1; i <= len(m.extents); i += i & -i {
		m.tree[i] += delta
	}
}

// offsetOf returns the cumulative extent preceding index. index may be
// len(), in which case it returns the total extent.
func (m *heightModel) offsetOf(index int) float64 {
	index = min(index, len(m.extents))
	var sum float64
	for i := index; i > 0; i -= i & -i {
		sum += m.tree[i]
	}
	return sum
}

func (m *heightModel) totalExtent() float64 {
	return m.offsetOf(len(m.extents))
}

// indexAtOffset returns the index of the row whose span contains the given
// offset. Offsets at or past the total extent map to len().
func (m *heightModel) indexAtOffset(offset float64) int {
	n := len(m.extents)
	if n == 0 || offset < 0 {
		return 0
	}
	if offset >= m.totalExtent() {
		return n
	}
	return sort.Search(n, func(i int) bool {
		return m.offsetOf(i+1) > offset
	})
}
