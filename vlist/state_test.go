package vlist

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collectDiagnostics returns an option that appends every reported
// diagnostic to the given slice.
func collectDiagnostics(sink *[]Diagnostic) Option {
	return WithDiagnosticHandler(func(d Diagnostic) {
		*sink = append(*sink, d)
	})
}

func TestKeyBinding(t *testing.T) {
	t.Parallel()

	t.Run("binding is idempotent across passes", func(t *testing.T) {
		t.Parallel()
		s := New[string](10, AlignTop, 20)
		first := s.Layout(200, rowKey)
		second := s.Layout(200, rowKey)
		require.Equal(t, len(first.Rows), len(second.Rows))
		for i := range first.Rows {
			assert.Same(t, first.Rows[i].State, second.Rows[i].State)
		}
	})

	t.Run("state follows the key across index shifts", func(t *testing.T) {
		t.Parallel()
		keys := []string{"a", "b", "c", "d", "e"}
		build := func(i int) (string, string) { return keys[i], keys[i] }

		s := New[string](5, AlignTop, 10)
		frame := s.Layout(100, build)
		frame.Rows[3].State.Selected = true
		frame.Rows[3].State.Cursor = 7 // key "d"

		// remove "b": everything shifts down one index
		keys = []string{"a", "c", "d", "e"}
		require.NoError(t, s.Splice(1, 2, 0))

		frame = s.Layout(100, build)
		require.Equal(t, 4, len(frame.Rows))
		d := frame.Rows[2]
		assert.Equal(t, "d", d.Key)
		assert.True(t, d.State.Selected)
		assert.Equal(t, 7, d.State.Cursor)
	})

	t.Run("keys outside the window are evicted", func(t *testing.T) {
		t.Parallel()
		s := New[string](1000, AlignTop, 20)
		s.Layout(200, rowKey)

		_, ok := s.BoundState("row-0")
		require.True(t, ok)

		s.ScrollTo(10000)
		s.Layout(200, rowKey)

		_, ok = s.BoundState("row-0")
		assert.False(t, ok)
		_, ok = s.BoundState("row-500")
		assert.True(t, ok)
	})

	t.Run("evicted state is discarded, not resurrected", func(t *testing.T) {
		t.Parallel()
		s := New[string](1000, AlignTop, 20)
		frame := s.Layout(200, rowKey)
		frame.Rows[0].State.Expanded = true

		s.ScrollTo(10000)
		s.Layout(200, rowKey)
		s.ScrollTo(0)
		frame = s.Layout(200, rowKey)

		assert.False(t, frame.Rows[0].State.Expanded)
	})

	t.Run("duplicate key in one pass binds the first row", func(t *testing.T) {
		t.Parallel()
		var diags []Diagnostic
		s := New[string](2, AlignTop, 10, collectDiagnostics(&diags))

		build := func(i int) (string, string) { return "x", "dup" }
		frame := s.Layout(100, build)
		require.Equal(t, 2, len(frame.Rows))

		bound, ok := s.BoundState("x")
		require.True(t, ok)
		assert.Same(t, bound, frame.Rows[0].State)
		assert.NotSame(t, bound, frame.Rows[1].State)

		require.Len(t, diags, 1)
		assert.Equal(t, DuplicateKeyInFrame, diags[0].Kind)
		assert.Equal(t, "x", diags[0].Key)
		assert.Equal(t, 1, diags[0].Index)
	})

	t.Run("duplicate rows never share mutations", func(t *testing.T) {
		t.Parallel()
		s := New[string](2, AlignTop, 10, WithDiagnosticHandler(func(Diagnostic) {}))
		build := func(i int) (string, string) { return "x", "dup" }
		frame := s.Layout(100, build)
		frame.Rows[1].State.Selected = true
		frame = s.Layout(100, build)
		assert.False(t, frame.Rows[0].State.Selected)
	})

	t.Run("missing key falls back to a positional key", func(t *testing.T) {
		t.Parallel()
		var diags []Diagnostic
		s := New[string](3, AlignTop, 10, collectDiagnostics(&diags))

		build := func(i int) (string, string) {
			if i == 1 {
				return "", "anonymous"
			}
			return "row-" + strconv.Itoa(i), "named"
		}
		frame := s.Layout(100, build)
		require.Equal(t, 3, len(frame.Rows))
		assert.Equal(t, "pos:1", frame.Rows[1].Key)
		require.NotNil(t, frame.Rows[1].State)

		require.Len(t, diags, 1)
		assert.Equal(t, MissingKey, diags[0].Kind)
		assert.Equal(t, 1, diags[0].Index)
	})
}

func TestScrolling(t *testing.T) {
	t.Parallel()

	t.Run("offset is clamped to the scrollable range", func(t *testing.T) {
		t.Parallel()
		s := New[string](10, AlignTop, 10)
		s.Layout(40, rowKey)
		s.ScrollTo(-50)
		assert.Equal(t, float64(0), s.ScrollOffset())
		s.ScrollTo(1e9)
		assert.Equal(t, float64(60), s.ScrollOffset())
		s.ScrollBy(-25)
		assert.Equal(t, float64(35), s.ScrollOffset())
	})

	t.Run("scroll to reveal", func(t *testing.T) {
		t.Parallel()
		s := New[string](100, AlignTop, 10)
		s.Layout(50, rowKey)

		s.ScrollToReveal(20) // below: bottom-align it
		assert.Equal(t, float64(160), s.ScrollOffset())

		s.ScrollToReveal(18) // already visible: no movement
		assert.Equal(t, float64(160), s.ScrollOffset())

		s.ScrollToReveal(5) // above: top-align it
		assert.Equal(t, float64(50), s.ScrollOffset())
	})

	t.Run("reveal of an oversized row aligns its top", func(t *testing.T) {
		t.Parallel()
		s := New[string](10, AlignTop, 10)
		s.Layout(30, rowKey)
		s.RecordMeasured(5, 80)
		s.ScrollToReveal(5)
		assert.Equal(t, float64(50), s.ScrollOffset())
	})
}

func TestConcurrentMutations(t *testing.T) {
	t.Parallel()

	// Mutations arrive from other goroutines while the render goroutine
	// lays out frames. Every observed frame must be internally consistent.
	s := New[string](100, AlignTop, 10)
	build := func(i int) (string, string) { return "row-" + strconv.Itoa(i), "" }

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for range 200 {
			_ = s.Splice(0, 0, 1)
			_ = s.Splice(0, 1, 0)
		}
	}()
	go func() {
		defer wg.Done()
		for range 200 {
			_ = s.Reset(100)
		}
	}()

	for range 500 {
		frame := s.Layout(50, build)
		assert.GreaterOrEqual(t, frame.Start, 0)
		assert.LessOrEqual(t, frame.Start, frame.End)
		for _, row := range frame.Rows {
			assert.NotNil(t, row.State)
		}
	}
	wg.Wait()
}
