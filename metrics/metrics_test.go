package metrics

import (
	"testing"
	"time"

	"lfkv/kvtable"
)

func TestOnTransitionAccumulatesCountAndDuration(t *testing.T) {
	c := NewCollector()
	c.OnTransition(kvtable.TransInsertEmpty, 10*time.Millisecond)
	c.OnTransition(kvtable.TransInsertEmpty, 30*time.Millisecond)

	snap := c.Snapshot()
	got := snap.Transitions[kvtable.TransInsertEmpty]
	if got.Count != 2 {
		t.Fatalf("Count = %d, want 2", got.Count)
	}
	if got.AvgDurationMS != 20 {
		t.Fatalf("AvgDurationMS = %v, want 20", got.AvgDurationMS)
	}
}

func TestOnSpinEpisodeTracksSuccessAndAbort(t *testing.T) {
	c := NewCollector()
	c.OnSpinEpisode(100, 0, 1.5, true)
	c.OnSpinEpisode(50, 1, 2.5, false)

	snap := c.Snapshot()
	if snap.Spin.Requests != 2 {
		t.Fatalf("Requests = %d, want 2", snap.Spin.Requests)
	}
	if snap.Spin.Successful != 1 || snap.Spin.Aborted != 1 {
		t.Fatalf("Successful=%d Aborted=%d, want 1 and 1", snap.Spin.Successful, snap.Spin.Aborted)
	}
	if snap.Spin.TotalSpins != 150 {
		t.Fatalf("TotalSpins = %d, want 150", snap.Spin.TotalSpins)
	}
}

func TestActiveGaugeIncDec(t *testing.T) {
	c := NewCollector()
	c.IncActive()
	c.IncActive()
	c.DecActive()
	if got := c.Active(); got != 1 {
		t.Fatalf("Active() = %d, want 1", got)
	}
}

func TestSampleOccupancyTracksAvgAndMax(t *testing.T) {
	c := NewCollector()
	c.IncActive()
	c.SampleOccupancy() // active=1
	c.IncActive()
	c.IncActive()
	c.SampleOccupancy() // active=3

	snap := c.Snapshot()
	if snap.Occupancy.Samples != 2 {
		t.Fatalf("Samples = %d, want 2", snap.Occupancy.Samples)
	}
	if snap.Occupancy.AvgActive != 2 {
		t.Fatalf("AvgActive = %v, want 2", snap.Occupancy.AvgActive)
	}
	if snap.Occupancy.MaxActive != 3 {
		t.Fatalf("MaxActive = %d, want 3", snap.Occupancy.MaxActive)
	}
}

func TestSnapshotWithNoActivityIsZeroed(t *testing.T) {
	c := NewCollector()
	snap := c.Snapshot()
	if snap.Spin.Requests != 0 || snap.Spin.AvgSpins != 0 {
		t.Fatalf("expected zeroed spin stats, got %+v", snap.Spin)
	}
	for _, tr := range snap.Transitions {
		if tr.Count != 0 {
			t.Fatalf("expected zeroed transition counts, got %+v", tr)
		}
	}
}

func TestObserveLatencyTracksAvgAndMax(t *testing.T) {
	c := NewCollector()
	c.ObserveLatency(10 * time.Millisecond)
	c.ObserveLatency(30 * time.Millisecond)

	snap := c.Snapshot()
	if snap.Latency.Count != 2 {
		t.Fatalf("Count = %d, want 2", snap.Latency.Count)
	}
	if snap.Latency.AvgMS != 20 {
		t.Fatalf("AvgMS = %v, want 20", snap.Latency.AvgMS)
	}
	if snap.Latency.MaxMS != 30 {
		t.Fatalf("MaxMS = %v, want 30", snap.Latency.MaxMS)
	}
}

func TestStatsEncodeProducesJSON(t *testing.T) {
	c := NewCollector()
	c.OnTransition(kvtable.TransDelete, 5*time.Millisecond)
	b, err := c.Snapshot().Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(b) == 0 {
		t.Fatal("Encode returned empty output")
	}
}
