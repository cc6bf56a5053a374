// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: stats.go — JSON-serializable counter snapshot
//
// Purpose:
//   - Stats is the shape Collector.Snapshot returns and adminapi serves at
//     GET /stats, encoded with sonnet the same way syncharvester.go decodes
//     JSON-RPC payloads with it — here used on the encode side instead.
//
// ─────────────────────────────────────────────────────────────────────────────

package metrics

import "github.com/sugawarayuuta/sonnet"

// TransitionStat is one kvtable.TransitionKind's accumulated count and
// average commit duration.
type TransitionStat struct {
	Kind          string  `json:"kind"`
	Count         uint64  `json:"count"`
	AvgDurationMS float64 `json:"avg_duration_ms"`
}

// SpinStat summarizes every spin episode a Set call has run while waiting
// out a contended bucket, mirroring original_source/src/lockfree/metrics.cpp's
// get_spin_metrics summary line.
type SpinStat struct {
	Requests       uint64  `json:"requests"`
	Successful     uint64  `json:"successful"`
	Aborted        uint64  `json:"aborted"`
	TotalSpins     uint64  `json:"total_spins"`
	TotalCooldowns uint64  `json:"total_cooldowns"`
	AvgSpins       float64 `json:"avg_spins"`
	AvgDurationMS  float64 `json:"avg_duration_ms"`
}

// LatencyStat summarizes per-request end-to-end latency, mirroring
// original_source/src/server.cpp's dec_active_log_lat accounting.
type LatencyStat struct {
	Count uint64  `json:"count"`
	AvgMS float64 `json:"avg_ms"`
	MaxMS float64 `json:"max_ms"`
}

// OccupancyStat summarizes the in-flight request gauge sampled on a fixed
// interval, mirroring original_source/src/bench_metrics.cpp's periodic
// `_active` sampling (`sampling_interval_ms`) rather than just its
// instantaneous value.
type OccupancyStat struct {
	Samples   uint64  `json:"samples"`
	AvgActive float64 `json:"avg_active"`
	MaxActive int64   `json:"max_active"`
}

// Stats is a point-in-time snapshot of every counter the table core exposes.
type Stats struct {
	Active      int64            `json:"active"`
	Occupancy   OccupancyStat    `json:"occupancy"`
	Transitions []TransitionStat `json:"transitions"`
	Spin        SpinStat         `json:"spin"`
	Latency     LatencyStat      `json:"latency"`
}

// Encode renders s as JSON using sonnet, the same drop-in codec the teacher
// uses for its JSON-RPC decode path.
func (s Stats) Encode() ([]byte, error) {
	return sonnet.Marshal(s)
}
