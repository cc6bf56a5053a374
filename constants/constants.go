// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: constants.go — Global table & hazard-pointer tunables
//
// Purpose:
//   - Defines compile-time sizing for the bucket array, the hazard-pointer
//     array, and the reclamation/backoff schedules used by kvtable and hazard.
//
// Notes:
//   - All values here are start-time constants: nothing in kvtable or hazard
//     mutates them after process boot (config may override the table-sizing
//     defaults below, but never mid-run; the spin/backoff values are not
//     configurable).
//
// ⚠️ No runtime logic here — values must be compile-time or start-time resolvable.
// ─────────────────────────────────────────────────────────────────────────────

package constants

// ───────────────────────────── Table sizing ────────────────────────────────

const (
	// DefaultCapacity is the fixed bucket count of the table (spec: CAP).
	// Double hashing only guarantees full coverage of the probe sequence when
	// h2 is coprime with the table size. kvtable OR-s h2 with 1, which makes
	// it coprime with any power-of-two CAP; with this default of 100, a key
	// whose h2 is a multiple of 5 probes only part of the table.
	DefaultCapacity = 100

	// DefaultMaxThreads bounds the hazard-pointer array (spec: MAX_THREADS).
	// Exhausting it is a fatal NoHazardSlot condition — size planning assumes
	// worker fanout never exceeds this.
	DefaultMaxThreads = 250

	// DefaultRetireBatch is the per-thread retired-list length that triggers
	// a reclamation scan (spec: RETIRE_BATCH).
	DefaultRetireBatch = 100
)

// ───────────────────────────── Spin / backoff ──────────────────────────────

const (
	// SpinPerSleep is the iteration count between backoff sleeps inside the
	// set() update spin loop (spec: SPIN_PER_SLEEP).
	SpinPerSleep = 10_000
)

// BackoffSchedule is the discrete sleep-duration ladder a spinning set()
// climbs through as cooldowns accumulate. There is no hard cap on total
// spins, only on how long each individual sleep can grow (spec §4.6).
var BackoffSchedule = [...]struct {
	UpToCooldown int
	SleepMS      int
}{
	{30, 10},
	{50, 20},
	{70, 30},
	{90, 50},
	{100, 60},
}

// BackoffSleepMS returns the sleep duration, in milliseconds, for the
// cooldownsHit-th time the spin loop has hit SpinPerSleep iterations.
func BackoffSleepMS(cooldownsHit int) int {
	for _, step := range BackoffSchedule {
		if cooldownsHit <= step.UpToCooldown {
			return step.SleepMS
		}
	}
	return BackoffSchedule[len(BackoffSchedule)-1].SleepMS
}

// ───────────────────────────── Memory layout ───────────────────────────────

const (
	// CacheLineSize is the assumed line size used to pad hot shared structs
	// (buckets, hazard records) apart to avoid false sharing.
	CacheLineSize = 64
)

// ───────────────────────────── Protocol / server ───────────────────────────

const (
	// MaxLineSize bounds a single GET/SET/DEL line (key has no spaces, value
	// runs to '\n'); guards against unbounded buffering from a slow/hostile
	// client.
	MaxLineSize = 64 << 10

	// DefaultListenAddr is the data-plane TCP listener address.
	DefaultListenAddr = ":8080"

	// DefaultAdminAddr is the admin/stats HTTP listener address.
	DefaultAdminAddr = ":8081"

	// DefaultMetricsFlushIntervalMS is how often metrics.Store snapshots
	// counters to SQLite.
	DefaultMetricsFlushIntervalMS = 5000

	// ActiveSampleIntervalMS mirrors original_source/src/bench_metrics.cpp's
	// sampling_interval_ms: how often the active-request gauge is sampled.
	ActiveSampleIntervalMS = 5
)
