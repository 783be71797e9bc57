package vlist

// Builder produces the content for a single row. It runs synchronously
// inside a layout pass, so it must be fast, free of I/O, and must not call
// back into the State that invoked it. The returned key is the row's
// stable identity and must be unique among the rows visible in the same
// pass; an empty key triggers a positional fallback.
type Builder[T any] func(index int) (key string, content T)

// Row is one materialized row of a layout pass.
type Row[T any] struct {
	Index int
	Key   string
	// Offset is the row's distance from the viewport top. Negative when
	// the row starts above the viewport and is only partially visible.
	Offset  float64
	Extent  float64
	Content T
	State   *RowState
}

// Frame is the result of one layout pass: the visible index range, the
// materialized rows, and the effective (clamped) scroll position.
type Frame[T any] struct {
	Start, End  int // half-open index range [Start, End)
	Rows        []Row[T]
	Offset      float64
	Viewport    float64
	TotalExtent float64
}

// visibleRange computes the half-open index range of rows overlapping
// [offset, offset+viewport+overscan). An empty model or a zero viewport
// yields an empty range.
func visibleRange(m *heightModel, offset, viewport, overscan float64) (start, end int) {
	count := m.len()
	if count == 0 || viewport <= 0 {
		return 0, 0
	}
	start = m.indexAtOffset(offset)
	if start >= count {
		return count, count
	}
	// The portion of the start row above the offset counts toward the
	// budget so rows covering the whole window are always included.
	limit := offset - m.offsetOf(start) + viewport + overscan
	var acc float64
	end = start
	for end < count && acc < limit {
		acc += m.extentAt(end)
		end++
	}
	return start, end
}
