package counters

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestSnapshotInitiallyZero(t *testing.T) {
	c := New()
	snap := c.Snapshot()
	if snap != (Snapshot{}) {
		t.Fatalf("fresh Snapshot() = %+v, want zero value", snap)
	}
}

func TestIncrementsAccumulate(t *testing.T) {
	c := New()
	c.IncEventsProcessed()
	c.IncEventsProcessed()
	c.AddBytesProcessed(128)
	c.IncEventsDropped()
	c.IncCRCFailures()
	c.SetLamportTS(9)
	c.SetRingPositions(5, 2)

	snap := c.Snapshot()
	if snap.EventsProcessed != 2 {
		t.Errorf("EventsProcessed = %d, want 2", snap.EventsProcessed)
	}
	if snap.BytesProcessed != 128 {
		t.Errorf("BytesProcessed = %d, want 128", snap.BytesProcessed)
	}
	if snap.EventsDropped != 1 {
		t.Errorf("EventsDropped = %d, want 1", snap.EventsDropped)
	}
	if snap.CRCFailures != 1 {
		t.Errorf("CRCFailures = %d, want 1", snap.CRCFailures)
	}
	if snap.LamportTS != 9 {
		t.Errorf("LamportTS = %d, want 9", snap.LamportTS)
	}
	if snap.RingHead != 5 || snap.RingTail != 2 {
		t.Errorf("RingHead/RingTail = %d/%d, want 5/2", snap.RingHead, snap.RingTail)
	}
}

func TestCollectorDescribeAndCollectCounts(t *testing.T) {
	c := New()
	c.IncEventsProcessed()
	col := NewCollector(c)

	descCh := make(chan *prometheus.Desc, 16)
	col.Describe(descCh)
	close(descCh)
	var descCount int
	for range descCh {
		descCount++
	}
	if descCount != 7 {
		t.Fatalf("Describe() emitted %d descriptors, want 7", descCount)
	}

	metricCh := make(chan prometheus.Metric, 16)
	col.Collect(metricCh)
	close(metricCh)
	var metricCount int
	for range metricCh {
		metricCount++
	}
	if metricCount != 7 {
		t.Fatalf("Collect() emitted %d metrics, want 7", metricCount)
	}
}
