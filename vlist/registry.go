package vlist

import "github.com/listkit/listkit/internal/csync"

// RowState is the interactive state bound to a stable row key. It follows
// the key as rows are recycled, never the on-screen slot.
type RowState struct {
	Cursor   int
	Selected bool
	Expanded bool
}

// keyRegistry binds stable row keys to interactive state for rows inside
// the visible+overscan window. Entries are created the first time a key
// becomes visible and evicted as soon as the key leaves the window; there
// is no recycled-slot retention.
type keyRegistry struct {
	states *csync.Map[string, *RowState]
}

func newKeyRegistry() *keyRegistry {
	return &keyRegistry{states: csync.NewMap[string, *RowState]()}
}

// bind returns the state already bound to key, or allocates fresh default
// state for a new key. Binding the same key twice without an eviction in
// between returns the identical state.
func (r *keyRegistry) bind(key string) *RowState {
	if st, ok := r.states.Get(key); ok {
		return st
	}
	st := &RowState{}
	r.states.Set(key, st)
	return st
}

func (r *keyRegistry) lookup(key string) (*RowState, bool) {
	return r.states.Get(key)
}

// retain evicts every key not present in keep. Evicted state is discarded.
func (r *keyRegistry) retain(keep map[string]struct{}) {
	for k := range r.states.Seq2() {
		if _, ok := keep[k]; !ok {
			r.states.Del(k)
		}
	}
}
