package vlist

// Mutations are discrete, validated commands. Validation happens before
// any structural change, so a mutation is either fully rejected or fully
// applied; there is no partial-completion state a layout pass could
// observe.

// Reset replaces the entire model with newCount rows at the estimated
// extent. Previously measured extents are discarded. The scroll offset is
// clamped to the new scrollable range. Returns InvalidCountError for a
// negative count, leaving the state untouched.
func (s *State[T]) Reset(newCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if newCount < 0 {
		return &InvalidCountError{Count: newCount}
	}
	s.count = newCount
	s.heights.reset(newCount)
	s.clampOffsetLocked()
	return nil
}

// Splice removes rows [start, end) and inserts newCount fresh rows at
// start, shifting every row at or after end by newCount-(end-start).
// Measured extents below start are untouched; measured extents at or
// after end move with their rows. Returns InvalidRangeError unless
// 0 <= start <= end <= ItemCount(), and InvalidCountError for a negative
// newCount; the state is untouched on rejection.
//
// The scroll offset is recomputed so the row at the anchor edge (top or
// bottom, per alignment) keeps its on-screen position whenever that row
// survives outside the spliced range; otherwise the offset is clamped.
func (s *State[T]) Splice(start, end, newCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if start < 0 || start > end || end > s.count {
		return &InvalidRangeError{Start: start, End: end, Count: s.count}
	}
	if newCount < 0 {
		return &InvalidCountError{Count: newCount}
	}

	anchorIdx, anchorDelta := s.anchorLocked()
	removed := end - start
	s.heights.splice(start, end, newCount)
	s.count += newCount - removed

	if anchorIdx >= 0 && (anchorIdx < start || anchorIdx >= end) {
		shifted := anchorIdx
		if anchorIdx >= end {
			shifted += newCount - removed
		}
		edge := s.heights.offsetOf(shifted) + anchorDelta
		if s.alignment == AlignBottom {
			edge -= s.viewport
		}
		s.offset = edge
	}
	s.clampOffsetLocked()
	return nil
}

// anchorLocked captures the row at the anchor edge of the viewport and the
// distance from that row's start to the edge. Returns -1 when there is no
// usable anchor (empty list, or a bottom-aligned list that is anchored to
// the end and will simply re-anchor).
func (s *State[T]) anchorLocked() (int, float64) {
	if s.count == 0 || s.atBottom {
		return -1, 0
	}
	edge := s.offset
	if s.alignment == AlignBottom {
		edge += s.viewport
	}
	idx := s.heights.indexAtOffset(edge)
	if idx >= s.count {
		return -1, 0
	}
	return idx, edge - s.heights.offsetOf(idx)
}
