// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: table.go — lock-free fixed-capacity hash table
//
// Purpose:
//   - Implements Get/Set/Del over the bucket array, following spec §4.5's
//     state machine and the original C++'s lockfree/ops.cpp get/set/del
//     one-to-one: same probe order, same CAS sequence, same abort handling.
//
// Notes:
//   - Every operation takes a *hazard.Handle the caller acquired once at
//     connection/worker setup (spec §9: a registered thread keeps its index
//     for the life of the connection, not per-call).
//   - Set's in-place update path is the only one that spins: CAS-failure on
//     insert/delete just means "this bucket isn't free, try the next slot in
//     the probe sequence", but a key match on a F bucket commits this
//     worker to finishing the update on *this* bucket, so it waits out
//     whichever other writer currently holds the intent state instead of
//     giving up (spec §4.6).
//
// ─────────────────────────────────────────────────────────────────────────────

package kvtable

import (
	"time"

	"lfkv/constants"
	"lfkv/hazard"
)

// Table is the fixed-capacity bucket array plus the observer hooks that
// watch it. Capacity is set at construction and never changes.
type Table struct {
	buckets []bucket

	transitions TransitionObserver
	spins       SpinObserver
}

// NewTable allocates a table with room for capacity keys. capacity is fixed
// for the table's lifetime (spec §3: "CAP ... fixed for the table's
// lifetime").
func NewTable(capacity int) *Table {
	return &Table{
		buckets:     make([]bucket, capacity),
		transitions: noopObserver{},
		spins:       noopObserver{},
	}
}

// Capacity returns the bucket count this table was constructed with.
func (t *Table) Capacity() int { return len(t.buckets) }

// SetTransitionObserver installs the hook notified on every completed
// bucket-state transition. A nil observer restores the no-op default.
func (t *Table) SetTransitionObserver(o TransitionObserver) {
	if o == nil {
		o = noopObserver{}
	}
	t.transitions = o
}

// SetSpinObserver installs the hook notified after every spin episode. A
// nil observer restores the no-op default.
func (t *Table) SetSpinObserver(o SpinObserver) {
	if o == nil {
		o = noopObserver{}
	}
	t.spins = o
}

// Get returns the value stored under key, following spec §4.5: walk the
// probe sequence, stop at the first Empty bucket (the key was never
// inserted), skip any bucket not in the Full state, and on a Full bucket
// hazard-protect the key, then the value, reconfirming the key pointer
// didn't change out from under the value load before trusting it.
func (t *Table) Get(h *hazard.Handle, key string) (string, bool) {
	h1, step := hash1(key), hash2(key)
	capacity := len(t.buckets)

	for j := 0; j < capacity; j++ {
		b := &t.buckets[probeIndex(h1, step, j, capacity)]

		switch b.loadState() {
		case stateEmpty:
			return "", false
		case stateFull:
			// fallthrough to the protect/verify sequence below
		default:
			continue
		}

		kp := h.Protect(&b.key, hazard.K)
		if kp == nil || *kp != key {
			h.Clear(hazard.K)
			continue
		}

		vp := h.Protect(&b.value, hazard.V)
		if vp == nil || b.key.Load() != kp {
			h.ClearBoth()
			continue
		}

		v := *vp
		h.ClearBoth()
		return v, true
	}
	return "", false
}

// Del removes key if present, following the F→X→D transition of spec §4.5:
// hazard-protect the key, CAS F→X to claim the delete, reconfirm the key
// pointer is still ours (another writer's update could have swapped it
// between the protect and the CAS), then swap both pointers to nil and
// release the bucket as Deleted. A key never found is simply a no-op.
func (t *Table) Del(h *hazard.Handle, key string) {
	h1, step := hash1(key), hash2(key)
	capacity := len(t.buckets)

	for j := 0; j < capacity; j++ {
		b := &t.buckets[probeIndex(h1, step, j, capacity)]

		switch b.loadState() {
		case stateEmpty:
			return
		case stateFull:
			// fallthrough
		default:
			continue
		}

		kp := h.Protect(&b.key, hazard.K)
		if kp == nil || *kp != key || b.key.Load() != kp {
			h.Clear(hazard.K)
			continue
		}

		if !b.casState(stateFull, stateExpunging) {
			h.Clear(hazard.K)
			continue
		}

		start := time.Now()
		if b.key.Load() != kp {
			// Lost the key to a racing update between the protect and the
			// CAS; nothing of ours to free, just release the intent.
			b.storeState(stateDeleted)
			h.Clear(hazard.K)
			t.transitions.OnTransition(TransDeleteAbort, time.Since(start))
			return
		}

		oldKey := b.key.Swap(nil)
		oldValue := b.value.Swap(nil)
		b.storeState(stateDeleted)
		h.ClearBoth()
		h.Retire(oldKey)
		h.Retire(oldValue)
		t.transitions.OnTransition(TransDelete, time.Since(start))
		return
	}
}

// Set inserts or updates key with value, following spec §4.5/§4.6. Empty
// and Deleted buckets are claimed with a CAS and never contested further —
// losing that CAS just means probing on. A Full bucket whose key matches
// ours commits this call to spinning out whichever writer currently holds
// the bucket's intent state rather than abandoning the match and probing
// past it. Returns ErrTableFull if every bucket on the probe sequence was
// occupied by some other live key.
func (t *Table) Set(h *hazard.Handle, key, value string) error {
	h1, step := hash1(key), hash2(key)
	capacity := len(t.buckets)

probeLoop:
	for j := 0; j < capacity; j++ {
		b := &t.buckets[probeIndex(h1, step, j, capacity)]

		switch b.loadState() {
		case stateEmpty:
			if !b.casState(stateEmpty, stateInserting) {
				continue probeLoop
			}
			start := time.Now()
			b.key.Store(&key)
			b.value.Store(&value)
			b.storeState(stateFull)
			t.transitions.OnTransition(TransInsertEmpty, time.Since(start))
			return nil

		case stateDeleted:
			if !b.casState(stateDeleted, stateInserting) {
				continue probeLoop
			}
			start := time.Now()
			oldKey := b.key.Swap(&key)
			oldValue := b.value.Swap(&value)
			b.storeState(stateFull)
			h.Retire(oldKey)
			h.Retire(oldValue)
			t.transitions.OnTransition(TransInsertDeleted, time.Since(start))
			return nil

		case stateFull:
			kp := h.Protect(&b.key, hazard.K)
			if kp == nil || *kp != key {
				h.Clear(hazard.K)
				continue probeLoop
			}
			if ok := t.spinUpdate(h, b, kp, &value); ok {
				return nil
			}
			continue probeLoop

		default: // Inserting / Updating / Expunging: someone else's intent
			continue probeLoop
		}
	}
	return ErrTableFull
}

// spinUpdate waits out any writer currently holding b's intent state and
// attempts the F→U→F in-place update once the bucket settles, per spec
// §4.6. Returns false (never having committed anything) if the key was
// swapped or deleted out from under us by the time we get a chance — the
// caller re-probes in that case, since the match no longer holds.
func (t *Table) spinUpdate(h *hazard.Handle, b *bucket, kp *string, value *string) bool {
	var (
		spins, cooldowns int
		spinStart        time.Time
		spinning         bool
	)
	logSpin := func(success bool) {
		if !spinning {
			return
		}
		ms := float64(time.Since(spinStart)) / float64(time.Millisecond)
		t.spins.OnSpinEpisode(spins, cooldowns, ms, success)
	}

	for {
		s := b.loadState()

		if s != stateFull {
			if s == stateDeleted {
				logSpin(false)
				h.Clear(hazard.K)
				return false
			}
			if !spinning {
				spinning = true
				spinStart = time.Now()
			}
			spins++
			if spins%constants.SpinPerSleep == 0 {
				cooldowns++
				time.Sleep(time.Duration(constants.BackoffSleepMS(cooldowns)) * time.Millisecond)
			}
			continue
		}

		if b.key.Load() != kp {
			logSpin(false)
			h.Clear(hazard.K)
			return false
		}

		if !b.casState(stateFull, stateUpdating) {
			// Lost the race to claim U; reload and keep waiting/retrying.
			continue
		}

		start := time.Now()
		if b.key.Load() != kp {
			if b.key.Load() == nil {
				b.storeState(stateDeleted)
				t.transitions.OnTransition(TransUpdateAbortDelete, time.Since(start))
			} else {
				b.storeState(stateFull)
				t.transitions.OnTransition(TransUpdateAbortSwap, time.Since(start))
			}
			logSpin(false)
			h.Clear(hazard.K)
			return false
		}

		oldValue := b.value.Swap(value)
		b.storeState(stateFull)
		h.Clear(hazard.K)
		h.Retire(oldValue)
		t.transitions.OnTransition(TransUpdate, time.Since(start))
		logSpin(true)
		return true
	}
}
