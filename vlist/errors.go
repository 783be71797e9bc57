package vlist

import (
	"fmt"
	"log/slog"
)

// InvalidCountError reports a negative item count passed to Reset.
type InvalidCountError struct {
	Count int
}

func (e *InvalidCountError) Error() string {
	return fmt.Sprintf("vlist: invalid item count %d", e.Count)
}

// InvalidRangeError reports splice bounds that fall outside the current
// item count. The mutation is rejected and the state left untouched.
type InvalidRangeError struct {
	Start, End int
	Count      int
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("vlist: splice range [%d,%d) out of bounds for %d items", e.Start, e.End, e.Count)
}

// DiagnosticKind classifies non-fatal conditions detected during a layout
// pass. They degrade gracefully and never abort the pass.
type DiagnosticKind int

const (
	// DuplicateKeyInFrame means two rows in the same layout pass produced
	// the same key. The lower-index row keeps the binding; later rows get
	// fresh, unbound state.
	DuplicateKeyInFrame DiagnosticKind = iota
	// MissingKey means the builder returned an empty key and a positional
	// fallback was used. Positional keys reintroduce the recycling-bleed
	// risk stable keys exist to prevent.
	MissingKey
)

func (k DiagnosticKind) String() string {
	switch k {
	case DuplicateKeyInFrame:
		return "duplicate key in frame"
	case MissingKey:
		return "missing key"
	default:
		return fmt.Sprintf("unknown diagnostic %d", int(k))
	}
}

// Diagnostic describes one reported condition.
type Diagnostic struct {
	Kind  DiagnosticKind
	Key   string
	Index int
}

func logDiagnostic(d Diagnostic) {
	switch d.Kind {
	case DuplicateKeyInFrame:
		slog.Warn("duplicate row key in layout pass", "key", d.Key, "index", d.Index)
	case MissingKey:
		slog.Warn("row builder returned no key, falling back to positional key", "key", d.Key, "index", d.Index)
	}
}
