// Package vlist implements a virtualized list rendering engine: it decides
// which logical row indices exist, in what order and at what offset, and
// hands each visible index to a caller-supplied row builder. Interactive
// state stays attached to stable row keys while rows are recycled during
// scrolling and while the underlying collection is mutated.
//
// The engine performs no painting and routes no input; those belong to the
// hosting component (see the list package).
package vlist

import (
	"fmt"
	"sync"
)

// Alignment selects which edge anchors the initial viewport and which
// edge's row keeps its on-screen position across mutations.
type Alignment int

const (
	// AlignTop anchors the first item and offset zero.
	AlignTop Alignment = iota
	// AlignBottom anchors the last item at the bottom edge and keeps the
	// bottom-most visible row stable while anchored.
	AlignBottom
)

type config struct {
	overscan float64
	diag     func(Diagnostic)
}

// Option configures a State.
type Option func(*config)

// WithOverscan sets the extra extent laid out past the viewport edge to
// reduce pop-in during fast scrolling.
func WithOverscan(extent float64) Option {
	return func(c *config) {
		c.overscan = extent
	}
}

// WithDiagnosticHandler replaces the default slog-based sink for non-fatal
// layout diagnostics.
func WithDiagnosticHandler(fn func(Diagnostic)) Option {
	return func(c *config) {
		c.diag = fn
	}
}

// State is the externally held handle for one virtualized list: item
// count, alignment, scroll offset, the height model and the key registry.
// It is owned by the hosting view. Layout runs on the render goroutine;
// mutations may be requested from any goroutine. All access is serialized
// on an internal mutex, so a mutation is either fully applied before the
// next layout pass begins or not visible at all.
type State[T any] struct {
	mu sync.Mutex

	count     int
	alignment Alignment
	offset    float64
	overscan  float64
	viewport  float64 // viewport extent seen by the most recent layout pass
	atBottom  bool    // bottom-aligned lists stay anchored until scrolled away

	heights *heightModel
	reg     *keyRegistry
	diag    func(Diagnostic)
}

// New creates list state for itemCount rows, each initially estimated at
// estimatedExtent. Negative counts are treated as zero; non-positive
// estimates fall back to 1.
func New[T any](itemCount int, alignment Alignment, estimatedExtent float64, opts ...Option) *State[T] {
	cfg := config{diag: logDiagnostic}
	for _, opt := range opts {
		opt(&cfg)
	}
	itemCount = max(itemCount, 0)
	if estimatedExtent <= 0 {
		estimatedExtent = 1
	}
	return &State[T]{
		count:     itemCount,
		alignment: alignment,
		overscan:  cfg.overscan,
		atBottom:  alignment == AlignBottom,
		heights:   newHeightModel(itemCount, estimatedExtent),
		reg:       newKeyRegistry(),
		diag:      cfg.diag,
	}
}

// Layout runs one render pass: it computes the visible range for the given
// viewport extent, invokes the builder for each visible index and binds
// interactive state to the returned keys. Keys that left the visible
// window since the previous pass are evicted.
func (s *State[T]) Layout(viewport float64, build Builder[T]) Frame[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.viewport = viewport
	total := s.heights.totalExtent()
	if s.atBottom {
		s.offset = max(0, total-viewport)
	}
	s.clampOffsetLocked()

	frame := Frame[T]{Offset: s.offset, Viewport: viewport, TotalExtent: total}
	if s.count == 0 || viewport <= 0 {
		s.reg.retain(nil)
		return frame
	}

	start, end := visibleRange(s.heights, s.offset, viewport, s.overscan)
	frame.Start, frame.End = start, end
	frame.Rows = make([]Row[T], 0, end-start)

	seen := make(map[string]struct{}, end-start)
	for i := start; i < end; i++ {
		key, content := build(i)
		if key == "" {
			key = positionalKey(i)
			s.report(Diagnostic{Kind: MissingKey, Key: key, Index: i})
		}
		var st *RowState
		if _, dup := seen[key]; dup {
			// First row in index order wins the binding. Handing the
			// duplicate a fresh, unbound state avoids visible state bleed.
			st = &RowState{}
			s.report(Diagnostic{Kind: DuplicateKeyInFrame, Key: key, Index: i})
		} else {
			seen[key] = struct{}{}
			st = s.reg.bind(key)
		}
		frame.Rows = append(frame.Rows, Row[T]{
			Index:   i,
			Key:     key,
			Offset:  s.heights.offsetOf(i) - s.offset,
			Extent:  s.heights.extentAt(i),
			Content: content,
			State:   st,
		})
	}
	s.reg.retain(seen)
	return frame
}

// RecordMeasured overwrites the estimate at index with the extent the row
// actually occupied after layout. When the measured row sits entirely
// above the viewport the scroll offset shifts by the delta so the rows on
// screen keep their positions.
func (s *State[T]) RecordMeasured(index int, extent float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= s.count || extent < 0 {
		return
	}
	old := s.heights.extentAt(index)
	if old == extent && s.heights.measuredAt(index) {
		return
	}
	above := s.heights.offsetOf(index+1) <= s.offset
	s.heights.recordMeasured(index, extent)
	if above && !s.atBottom {
		s.offset += extent - old
	}
	s.clampOffsetLocked()
}

// ScrollTo sets the scroll offset, clamped to the scrollable range.
func (s *State[T]) ScrollTo(offset float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scrollToLocked(offset)
}

// ScrollBy moves the scroll offset by delta (positive scrolls down).
func (s *State[T]) ScrollBy(delta float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scrollToLocked(s.offset + delta)
}

// ScrollToBottom scrolls to the end of the list. Bottom-aligned lists
// re-anchor so appended rows stay in view.
func (s *State[T]) ScrollToBottom() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offset = max(0, s.heights.totalExtent()-s.viewport)
	s.atBottom = s.alignment == AlignBottom
}

// ScrollToReveal scrolls the minimum distance that brings the row at index
// fully into the viewport. Rows taller than the viewport align their top.
func (s *State[T]) ScrollToReveal(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= s.count {
		return
	}
	top := s.heights.offsetOf(index)
	bottom := top + s.heights.extentAt(index)
	switch {
	case top < s.offset || bottom-top >= s.viewport:
		s.scrollToLocked(top)
	case bottom > s.offset+s.viewport:
		s.scrollToLocked(bottom - s.viewport)
	}
}

func (s *State[T]) scrollToLocked(offset float64) {
	s.offset = offset
	s.clampOffsetLocked()
	s.atBottom = s.alignment == AlignBottom &&
		s.offset+s.viewport >= s.heights.totalExtent()
}

func (s *State[T]) clampOffsetLocked() {
	maxOffset := max(0, s.heights.totalExtent()-s.viewport)
	s.offset = min(max(s.offset, 0), maxOffset)
}

// ItemCount returns the current number of logical rows.
func (s *State[T]) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Alignment returns the anchor policy the state was created with.
func (s *State[T]) Alignment() Alignment {
	return s.alignment
}

// ScrollOffset returns the current scroll offset.
func (s *State[T]) ScrollOffset() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offset
}

// TotalExtent returns the sum of all current per-row extents.
func (s *State[T]) TotalExtent() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.heights.totalExtent()
}

// OffsetOf returns the cumulative extent preceding index.
func (s *State[T]) OffsetOf(index int) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.heights.offsetOf(index)
}

// IndexAtOffset returns the index of the row occupying the given offset,
// or the item count for offsets at or past the total extent.
func (s *State[T]) IndexAtOffset(offset float64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.heights.indexAtOffset(offset)
}

// BoundState returns the interactive state currently bound to key, if the
// key is inside the tracked window.
func (s *State[T]) BoundState(key string) (*RowState, bool) {
	return s.reg.lookup(key)
}

func (s *State[T]) report(d Diagnostic) {
	if s.diag != nil {
		s.diag(d)
	}
}

func positionalKey(index int) string {
	return fmt.Sprintf("pos:%d", index)
}
