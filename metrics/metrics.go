// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: metrics.go — transition and spin counter-hook implementation
//
// Purpose:
//   - Implements kvtable.TransitionObserver and kvtable.SpinObserver, the
//     reference counter hooks spec §6 leaves unspecified beyond their shape.
//   - Grounded on original_source/src/lockfree/metrics.cpp's log_transition/
//     log_spins: same seven transition buckets, same spin/cooldown/success
//     accounting, reworked from per-thread vectors into lock-free atomic
//     running sums since Go's GOMAXPROCS-scaled concurrency makes per-thread
//     unbounded vectors the wrong shape here.
//
// ─────────────────────────────────────────────────────────────────────────────

package metrics

import (
	"sync/atomic"
	"time"

	"lfkv/kvtable"
)

// transitionBucket accumulates count and total duration for one
// kvtable.TransitionKind.
type transitionBucket struct {
	count      atomic.Uint64
	totalNanos atomic.Uint64
}

func (b *transitionBucket) record(dur time.Duration) {
	b.count.Add(1)
	b.totalNanos.Add(uint64(dur))
}

func (b *transitionBucket) snapshot() (count uint64, avgMS float64) {
	count = b.count.Load()
	if count == 0 {
		return 0, 0
	}
	return count, float64(b.totalNanos.Load()) / float64(count) / float64(time.Millisecond)
}

// Collector implements kvtable.TransitionObserver and kvtable.SpinObserver,
// and tracks the in-flight request gauge original_source/src/bench_metrics.cpp
// calls `_active`.
type Collector struct {
	transitions [7]transitionBucket

	spinReqs       atomic.Uint64
	spinSuccess    atomic.Uint64
	spinAborted    atomic.Uint64
	totalSpins     atomic.Uint64
	totalCooldowns atomic.Uint64
	totalSpinNanos atomic.Uint64

	active atomic.Int64

	occupancySamples atomic.Uint64
	occupancySum     atomic.Int64
	occupancyMax     atomic.Int64

	latencyCount    atomic.Uint64
	latencyNanos    atomic.Uint64
	latencyMaxNanos atomic.Uint64
}

// NewCollector returns a Collector with every counter at zero.
func NewCollector() *Collector {
	return &Collector{}
}

// OnTransition implements kvtable.TransitionObserver.
func (c *Collector) OnTransition(kind kvtable.TransitionKind, dur time.Duration) {
	if int(kind) < 0 || int(kind) >= len(c.transitions) {
		return
	}
	c.transitions[kind].record(dur)
}

// OnSpinEpisode implements kvtable.SpinObserver.
func (c *Collector) OnSpinEpisode(spins, cooldowns int, durationMS float64, success bool) {
	c.spinReqs.Add(1)
	c.totalSpins.Add(uint64(spins))
	c.totalCooldowns.Add(uint64(cooldowns))
	c.totalSpinNanos.Add(uint64(durationMS * float64(time.Millisecond)))
	if success {
		c.spinSuccess.Add(1)
	} else {
		c.spinAborted.Add(1)
	}
}

// ObserveLatency records one completed request's end-to-end duration,
// mirroring original_source/src/server.cpp's dec_active_log_lat.
func (c *Collector) ObserveLatency(dur time.Duration) {
	c.latencyCount.Add(1)
	c.latencyNanos.Add(uint64(dur))
	for {
		cur := c.latencyMaxNanos.Load()
		if uint64(dur) <= cur {
			return
		}
		if c.latencyMaxNanos.CompareAndSwap(cur, uint64(dur)) {
			return
		}
	}
}

// IncActive and DecActive bracket a dispatched get/set/del call, mirroring
// bench_metrics.cpp's inc_active_log_lat/dec_active_log_lat pairing.
func (c *Collector) IncActive() { c.active.Add(1) }
func (c *Collector) DecActive() { c.active.Add(-1) }

// Active returns the current in-flight request count.
func (c *Collector) Active() int64 { return c.active.Load() }

// SampleOccupancy records one reading of the in-flight gauge, mirroring
// bench_metrics.cpp's periodic sampling rather than a single point-in-time
// read. Intended to be called from a background goroutine on a
// constants.ActiveSampleIntervalMS tick.
func (c *Collector) SampleOccupancy() {
	cur := c.active.Load()
	c.occupancySamples.Add(1)
	c.occupancySum.Add(cur)
	for {
		prevMax := c.occupancyMax.Load()
		if cur <= prevMax {
			return
		}
		if c.occupancyMax.CompareAndSwap(prevMax, cur) {
			return
		}
	}
}

// Snapshot renders the current counters into a Stats value safe to encode
// or persist; it never blocks writers, since every field read is a single
// atomic load.
func (c *Collector) Snapshot() Stats {
	var s Stats
	s.Active = c.active.Load()

	if n := c.occupancySamples.Load(); n > 0 {
		s.Occupancy = OccupancyStat{
			Samples:   n,
			AvgActive: float64(c.occupancySum.Load()) / float64(n),
			MaxActive: c.occupancyMax.Load(),
		}
	}

	names := [...]string{
		"insert_empty", "insert_deleted", "update",
		"update_abort_swap", "update_abort_delete", "delete", "delete_abort",
	}
	s.Transitions = make([]TransitionStat, len(c.transitions))
	for i := range c.transitions {
		count, avgMS := c.transitions[i].snapshot()
		s.Transitions[i] = TransitionStat{Kind: names[i], Count: count, AvgDurationMS: avgMS}
	}

	reqs := c.spinReqs.Load()
	s.Spin = SpinStat{
		Requests:       reqs,
		Successful:     c.spinSuccess.Load(),
		Aborted:        c.spinAborted.Load(),
		TotalSpins:     c.totalSpins.Load(),
		TotalCooldowns: c.totalCooldowns.Load(),
	}
	if reqs > 0 {
		s.Spin.AvgSpins = float64(s.Spin.TotalSpins) / float64(reqs)
		s.Spin.AvgDurationMS = float64(c.totalSpinNanos.Load()) / float64(reqs) / float64(time.Millisecond)
	}

	if n := c.latencyCount.Load(); n > 0 {
		s.Latency.Count = n
		s.Latency.AvgMS = float64(c.latencyNanos.Load()) / float64(n) / float64(time.Millisecond)
		s.Latency.MaxMS = float64(c.latencyMaxNanos.Load()) / float64(time.Millisecond)
	}
	return s
}
