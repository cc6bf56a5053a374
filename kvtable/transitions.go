// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: transitions.go — transition/spin observer hooks
//
// Purpose:
//   - Defines the two hook interfaces spec §6 requires every bucket-state
//     transition and every spin episode to report through, plus the seven
//     TransitionKind values a Get/Set/Del call can produce.
//   - Table defaults both hooks to no-ops so metrics wiring is opt-in.
//
// ─────────────────────────────────────────────────────────────────────────────

package kvtable

import "time"

// TransitionKind identifies which of the bucket state machine's seven named
// transitions (spec §4.3) just completed.
type TransitionKind int

const (
	TransInsertEmpty       TransitionKind = iota // E → I → F
	TransInsertDeleted                            // D → I → F
	TransUpdate                                   // F → U → F
	TransUpdateAbortSwap                          // F → U → F, key swapped under us
	TransUpdateAbortDelete                        // F → U → D, key deleted under us
	TransDelete                                    // F → X → D
	TransDeleteAbort                               // F → X → D, already-gone on reload
)

func (k TransitionKind) String() string {
	switch k {
	case TransInsertEmpty:
		return "insert_empty"
	case TransInsertDeleted:
		return "insert_deleted"
	case TransUpdate:
		return "update"
	case TransUpdateAbortSwap:
		return "update_abort_swap"
	case TransUpdateAbortDelete:
		return "update_abort_delete"
	case TransDelete:
		return "delete"
	case TransDeleteAbort:
		return "delete_abort"
	default:
		return "unknown"
	}
}

// TransitionObserver is notified once per completed bucket-state transition,
// with the wall-clock duration of the critical section between claiming the
// intent state and releasing the terminal state.
type TransitionObserver interface {
	OnTransition(kind TransitionKind, dur time.Duration)
}

// SpinObserver is notified once per spin episode a Set call ran while
// waiting out another writer's intent state on the same bucket. spins is
// the total poll count, cooldowns the number of backoff sleeps taken,
// durationMS the episode's wall-clock length, and success whether the
// update this episode was trying to make ultimately committed.
type SpinObserver interface {
	OnSpinEpisode(spins, cooldowns int, durationMS float64, success bool)
}

type noopObserver struct{}

func (noopObserver) OnTransition(TransitionKind, time.Duration) {}
func (noopObserver) OnSpinEpisode(int, int, float64, bool)      {}
