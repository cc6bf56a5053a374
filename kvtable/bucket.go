// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: bucket.go — per-slot state machine
//
// Purpose:
//   - Defines the six-state bucket state machine of spec §3/§4.3 and the
//     fixed bucket array it lives in.
//
// Notes:
//   - Each bucket is padded to its own cache line (ring.Ring's head/tail
//     separation is the same idiom applied here at bucket granularity)
//     since hot keys concentrate writers on a handful of buckets.
//   - state, key and value are each individually atomic per spec §3's
//     invariant list; nothing here ever groups them into a single wide CAS.
//
// ─────────────────────────────────────────────────────────────────────────────

package kvtable

import "sync/atomic"

// state is one of the six bucket states from spec §4.3.
type state uint32

const (
	stateEmpty     state = iota // E
	stateInserting              // I — intent: E→I or D→I in flight
	stateFull                   // F — terminal: key/value stable and readable
	stateUpdating               // U — intent: value swap in flight
	stateExpunging              // X — intent: delete in flight
	stateDeleted                // D — terminal: tombstone
)

func (s state) String() string {
	switch s {
	case stateEmpty:
		return "E"
	case stateInserting:
		return "I"
	case stateFull:
		return "F"
	case stateUpdating:
		return "U"
	case stateExpunging:
		return "X"
	case stateDeleted:
		return "D"
	default:
		return "?"
	}
}

// bucketPad rounds a bucket up to a cache line. state (4B, 8B aligned) plus
// two pointers (8B each) is 24B; the rest is padding.
const bucketPad = 64 - 24

// bucket is the atomic triple (state, key_ptr, value_ptr) of spec §3. All
// three fields are independently atomic; callers CAS state to claim an
// intent, publish key/value, then release the terminal state.
type bucket struct {
	state atomic.Uint32
	key   atomic.Pointer[string]
	value atomic.Pointer[string]
	_     [bucketPad]byte
}

func (b *bucket) loadState() state {
	return state(b.state.Load())
}

func (b *bucket) casState(from, to state) bool {
	return b.state.CompareAndSwap(uint32(from), uint32(to))
}

func (b *bucket) storeState(s state) {
	b.state.Store(uint32(s))
}
