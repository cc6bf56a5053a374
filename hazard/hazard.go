// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: hazard.go — thread registry and hazard-pointer reclamation
//
// Purpose:
//   - Assigns each worker a stable index into a fixed hazard-pointer array.
//   - Implements protect/clear/retire/scan so retired key/value strings are
//     only freed once no hazard slot anywhere still references them.
//
// Notes:
//   - Mirrors original_source/src/lockfree/hp.cpp's HP_Slot/get_my_hp_index/
//     protect/clear_hp/can_delete/freeScan/retire one-to-one; the C++ used a
//     thread_local index and a global vector<HP_Slot>, here expressed as a
//     *Registry handed explicitly to each worker instead of hidden globals
//     (spec §9: "wrap them in a single owned TableContext handed to each
//     worker on registration").
//   - Padded to a cache line per record to avoid false sharing between
//     threads polling unrelated hazard slots, following the same padding
//     idiom as ring.Ring's head/tail separation.
//
// ─────────────────────────────────────────────────────────────────────────────

package hazard

import (
	"errors"
	"sync"
	"sync/atomic"
)

// Which selects one of a thread's two hazard slots.
type Which int

const (
	K Which = 0 // key hazard
	V Which = 1 // value hazard
)

// ErrNoSlot is returned by Registry.Acquire when every hazard record is
// already claimed. Fatal in the core (spec §7: NoHazardSlot) — the caller
// (server) may reject the new connection but must not silently proceed
// without a registered index.
var ErrNoSlot = errors.New("hazard: no free thread-registration slot")

// record is one thread's hazard-pointer bookkeeping: two published pointers
// and an in-use flag, padded to its own cache line.
type record struct {
	slot  [2]atomic.Pointer[string]
	inUse atomic.Bool
	_     [cacheLinePad]byte
}

// cacheLinePad keeps each record on its own 64-byte line: two pointers (16B)
// plus a bool (rounds to 8B with alignment) leaves 40B of the line to eat.
const cacheLinePad = 64 - 2*8 - 8

// Registry is the fixed-size hazard-pointer array shared by every worker.
// It is allocated once at process start and never resized (spec §5: "both
// statically sized and never reallocated").
type Registry struct {
	records []record

	orphanMu sync.Mutex
	orphans  []*string
}

// NewRegistry allocates a registry with room for maxThreads concurrent
// workers (spec: MAX_THREADS).
func NewRegistry(maxThreads int) *Registry {
	return &Registry{records: make([]record, maxThreads)}
}

// Handle is the thread-local state a worker keeps after registering: its
// index into the registry, plus its own retired-pointer list. A Handle must
// never be shared across goroutines/threads.
type Handle struct {
	reg     *Registry
	index   int
	retired []*string

	retireBatch int
}

// Acquire claims the first free record, acquire/release on success and
// relaxed on failure per spec §4.1, and returns a Handle bound to it.
// retireBatch is the RETIRE_BATCH threshold that triggers a reclamation
// scan once the thread-local retired list grows that long.
func (r *Registry) Acquire(retireBatch int) (*Handle, error) {
	for i := range r.records {
		if r.records[i].inUse.CompareAndSwap(false, true) {
			return &Handle{reg: r, index: i, retireBatch: retireBatch}, nil
		}
	}
	return nil, ErrNoSlot
}

// Release clears both hazard slots, publishes in_use=false with release
// ordering, and drains the thread-local retired list: every pointer that
// can_delete still approves gets deleted here; the (should be rare) rest is
// handed to the registry's global leftover list for a later scan, since
// in_use must go false before anyone else can safely free them.
//
// spec §9 REDESIGN FLAG: release_index is mandatory on every exit path —
// callers must defer this immediately after a successful Acquire.
func (h *Handle) Release() {
	rec := &h.reg.records[h.index]
	rec.slot[K].Store(nil)
	rec.slot[V].Store(nil)

	kept := h.retired[:0]
	for _, p := range h.retired {
		if h.reg.canDelete(p) {
			continue // deleted by dropping the last reference
		}
		kept = append(kept, p)
	}
	h.retired = nil

	rec.inUse.Store(false)

	// in_use is now false; any leftover pointers are handed to the global
	// drain list under the registry-wide scan, never freed here, since a
	// concurrent scan could already be mid-flight against this record.
	if len(kept) > 0 {
		h.reg.depositOrphans(kept)
	}
}

// Index returns the stable registry index this handle owns.
func (h *Handle) Index() int { return h.index }

// Protect implements the spec §4.2 retry loop: load cell, publish into the
// hazard slot, reload cell, loop until the loaded and reloaded pointers
// agree. Returns nil if the cell was observed empty.
func (h *Handle) Protect(cell *atomic.Pointer[string], which Which) *string {
	rec := &h.reg.records[h.index]
	for {
		p := cell.Load()
		if p == nil {
			return nil
		}
		rec.slot[which].Store(p)
		if cell.Load() == p {
			return p
		}
	}
}

// Clear removes protection from one hazard slot. Relaxed is sufficient: it
// is only a hint to reclaimers, never a signal a reader depends on (spec
// §4.2).
func (h *Handle) Clear(which Which) {
	h.reg.records[h.index].slot[which].Store(nil)
}

// ClearBoth clears both hazard slots at once — the common case after a
// completed or aborted get/set/del.
func (h *Handle) ClearBoth() {
	rec := &h.reg.records[h.index]
	rec.slot[K].Store(nil)
	rec.slot[V].Store(nil)
}

// Retire enqueues ptr for deferred deletion. Once the thread-local retired
// list reaches retireBatch entries, a scan runs immediately (spec §4.2).
// A nil ptr is ignored — nothing was ever published, so nothing to free.
func (h *Handle) Retire(ptr *string) {
	if ptr == nil {
		return
	}
	h.retired = append(h.retired, ptr)
	if len(h.retired) >= h.retireBatch {
		h.scan()
	}
}

// scan walks the thread-local retired list, deleting every entry that
// can_delete approves and keeping the rest for the next round.
func (h *Handle) scan() {
	kept := h.retired[:0]
	for _, p := range h.retired {
		if !h.reg.canDelete(p) {
			kept = append(kept, p)
		}
	}
	h.retired = kept
}

// canDelete scans every in-use record; ptr is safe to free only if no live
// hazard slot anywhere still names it (spec §4.2).
func (r *Registry) canDelete(ptr *string) bool {
	for i := range r.records {
		rec := &r.records[i]
		if !rec.inUse.Load() {
			continue
		}
		if rec.slot[K].Load() == ptr || rec.slot[V].Load() == ptr {
			return false
		}
	}
	return true
}

// depositOrphans is the global fallback drain for pointers a departing
// thread could not yet free. Only DrainOrphans reclaims them (Retire's scan
// walks the calling handle's own list, not this one); this only runs on the
// cold thread-exit path so a
// mutex is acceptable (spec §4.1: "may be leaked or handed to a global
// drain").
func (r *Registry) depositOrphans(ptrs []*string) {
	r.orphanMu.Lock()
	r.orphans = append(r.orphans, ptrs...)
	r.orphanMu.Unlock()
}

// DrainOrphans attempts to free any pointers left behind by departed
// threads. Safe to call periodically from a background maintenance
// goroutine; never required for correctness, only for bounding memory.
func (r *Registry) DrainOrphans() {
	r.orphanMu.Lock()
	defer r.orphanMu.Unlock()
	kept := r.orphans[:0]
	for _, p := range r.orphans {
		if !r.canDelete(p) {
			kept = append(kept, p)
		}
	}
	r.orphans = kept
}
