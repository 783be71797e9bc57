package vlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReset(t *testing.T) {
	t.Parallel()

	t.Run("rejects negative counts", func(t *testing.T) {
		t.Parallel()
		s := New[string](10, AlignTop, 20)
		err := s.Reset(-1)
		var countErr *InvalidCountError
		require.ErrorAs(t, err, &countErr)
		assert.Equal(t, -1, countErr.Count)
		assert.Equal(t, 10, s.ItemCount())
	})

	t.Run("reset to zero empties the list", func(t *testing.T) {
		t.Parallel()
		s := New[string](1000, AlignTop, 20)
		require.NoError(t, s.Reset(0))
		assert.Equal(t, 0, s.ItemCount())
		assert.Equal(t, float64(0), s.TotalExtent())
		frame := s.Layout(200, rowKey)
		assert.Equal(t, 0, frame.Start)
		assert.Equal(t, 0, frame.End)
	})

	t.Run("clamps the offset after shrinking", func(t *testing.T) {
		t.Parallel()
		s := New[string](1000, AlignTop, 20)
		s.Layout(200, rowKey)
		s.ScrollToBottom()
		require.Equal(t, float64(19800), s.ScrollOffset())

		require.NoError(t, s.Reset(3))
		frame := s.Layout(200, rowKey)
		assert.LessOrEqual(t, frame.Offset+frame.Viewport, max(frame.TotalExtent, frame.Viewport))
		assert.Equal(t, float64(0), frame.Offset)
	})

	t.Run("discards measurements", func(t *testing.T) {
		t.Parallel()
		s := New[string](5, AlignTop, 10)
		s.RecordMeasured(2, 99)
		require.NoError(t, s.Reset(5))
		assert.Equal(t, float64(50), s.TotalExtent())
	})
}

func TestSplice(t *testing.T) {
	t.Parallel()

	t.Run("rejects out-of-bounds ranges", func(t *testing.T) {
		t.Parallel()
		s := New[string](10, AlignTop, 20)
		s.RecordMeasured(4, 44)

		for _, tc := range []struct{ start, end int }{
			{-1, 5},
			{3, 2},
			{0, 11},
			{11, 11},
		} {
			err := s.Splice(tc.start, tc.end, 1)
			var rangeErr *InvalidRangeError
			require.ErrorAs(t, err, &rangeErr, "range [%d,%d)", tc.start, tc.end)
			assert.Equal(t, 10, rangeErr.Count)
		}

		var countErr *InvalidCountError
		require.ErrorAs(t, s.Splice(0, 1, -2), &countErr)

		// rejected mutations leave everything untouched
		assert.Equal(t, 10, s.ItemCount())
		assert.Equal(t, float64(44), s.OffsetOf(5)-s.OffsetOf(4))
	})

	t.Run("shifts measured extents past the range", func(t *testing.T) {
		t.Parallel()
		s := New[string](1000, AlignTop, 20)
		s.RecordMeasured(200, 77)
		s.RecordMeasured(50, 5)

		require.NoError(t, s.Splice(100, 110, 5))

		assert.Equal(t, 995, s.ItemCount())
		// below the range: untouched
		assert.Equal(t, float64(5), s.OffsetOf(51)-s.OffsetOf(50))
		// previously at 200, now at 195, measurement intact
		assert.Equal(t, float64(77), s.OffsetOf(196)-s.OffsetOf(195))
	})

	t.Run("empty splice is a no-op", func(t *testing.T) {
		t.Parallel()
		s := New[string](10, AlignTop, 20)
		require.NoError(t, s.Splice(5, 5, 0))
		assert.Equal(t, 10, s.ItemCount())
		assert.Equal(t, float64(200), s.TotalExtent())
	})

	t.Run("removal above the viewport keeps the top row in place", func(t *testing.T) {
		t.Parallel()
		s := New[string](100, AlignTop, 20)
		s.Layout(100, rowKey)
		s.ScrollTo(1000) // row 50 at the top edge
		require.Equal(t, 50, s.IndexAtOffset(s.ScrollOffset()))

		require.NoError(t, s.Splice(0, 10, 0))

		frame := s.Layout(100, rowKey)
		// the old row 50 is row 40 now and still at the top edge
		assert.Equal(t, 40, frame.Start)
		assert.Equal(t, float64(0), frame.Rows[0].Offset)
	})

	t.Run("insertion above the viewport keeps the top row in place", func(t *testing.T) {
		t.Parallel()
		s := New[string](100, AlignTop, 20)
		s.Layout(100, rowKey)
		s.ScrollTo(1000)

		require.NoError(t, s.Splice(0, 0, 10))

		frame := s.Layout(100, rowKey)
		assert.Equal(t, 60, frame.Start)
		assert.Equal(t, float64(0), frame.Rows[0].Offset)
		assert.Equal(t, float64(1200), frame.Offset)
	})

	t.Run("anchor inside the spliced range falls back to clamping", func(t *testing.T) {
		t.Parallel()
		s := New[string](100, AlignTop, 20)
		s.Layout(100, rowKey)
		s.ScrollTo(1000)

		require.NoError(t, s.Splice(40, 100, 0))

		frame := s.Layout(100, rowKey)
		assert.Equal(t, float64(700), frame.Offset) // clamped to total-viewport
		assert.Equal(t, 40, s.ItemCount())
	})

	t.Run("bottom-anchored list re-anchors after appends", func(t *testing.T) {
		t.Parallel()
		s := New[string](50, AlignBottom, 10)
		s.Layout(50, rowKey)

		require.NoError(t, s.Splice(50, 50, 10))

		frame := s.Layout(50, rowKey)
		assert.Equal(t, 60, frame.End)
		last := frame.Rows[len(frame.Rows)-1]
		assert.Equal(t, 59, last.Index)
		assert.Equal(t, float64(50), last.Offset+last.Extent)
	})

	t.Run("bottom alignment preserves the bottom row when scrolled away", func(t *testing.T) {
		t.Parallel()
		s := New[string](100, AlignBottom, 10)
		s.Layout(50, rowKey)
		s.ScrollTo(200) // bottom edge at 250: row 24 at the bottom
		require.NoError(t, s.Splice(0, 10, 0))

		frame := s.Layout(50, rowKey)
		last := frame.Rows[len(frame.Rows)-1]
		// the old row 24 is row 14 now and still closes the viewport
		assert.Equal(t, 14, last.Index)
		assert.Equal(t, float64(50), last.Offset+last.Extent)
	})

	t.Run("mutations are atomic on rejection", func(t *testing.T) {
		t.Parallel()
		s := New[string](10, AlignTop, 20)
		before := s.TotalExtent()
		err := s.Splice(5, 20, 3)
		var rangeErr *InvalidRangeError
		require.ErrorAs(t, err, &rangeErr)
		assert.Equal(t, before, s.TotalExtent())
		assert.Equal(t, 10, s.ItemCount())
	})
}
