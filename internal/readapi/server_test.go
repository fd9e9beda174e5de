package readapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/x123la/lacrimosa/internal/atom"
	"github.com/x123la/lacrimosa/internal/counters"
	"github.com/x123la/lacrimosa/internal/journal"
)

func newTestServer(t *testing.T) (*Server, *journal.Journal, *counters.Counters) {
	t.Helper()
	dir := t.TempDir()
	j, err := journal.Open(filepath.Join(dir, "j.dat"), journal.IndexRingSize+8192)
	if err != nil {
		t.Fatalf("journal.Open() error = %v", err)
	}
	t.Cleanup(func() { j.Close() })

	ctrs := counters.New()
	return New(j, ctrs), j, ctrs
}

func do(t *testing.T, s *Server, req *http.Request) *http.Response {
	t.Helper()
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	return resp
}

func TestHandleCounters(t *testing.T) {
	s, _, ctrs := newTestServer(t)
	ctrs.IncEventsProcessed()
	ctrs.AddBytesProcessed(64)

	resp := do(t, s, httptest.NewRequest(http.MethodGet, "/v1/counters", nil))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var snap counters.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if snap.EventsProcessed != 1 || snap.BytesProcessed != 64 {
		t.Fatalf("snapshot = %+v, want EventsProcessed=1 BytesProcessed=64", snap)
	}
}

func TestHandleReadRangeSkipsEmptySlots(t *testing.T) {
	s, j, ctrs := newTestServer(t)
	want := atom.New(5, 1, 2, 0, 0xAA)
	if err := j.WriteEventAt(3, want); err != nil {
		t.Fatalf("WriteEventAt() error = %v", err)
	}
	ctrs.SetRingPositions(5, 0)

	resp := do(t, s, httptest.NewRequest(http.MethodGet, "/v1/events?start=0&end=5", nil))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var entries []eventEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].Slot != 3 || entries[0].LamportTS != 5 {
		t.Fatalf("entries[0] = %+v, want slot=3 lamport_ts=5", entries[0])
	}
}

func TestHandleReadRangeSkipsNotYetCommittedSlots(t *testing.T) {
	s, j, ctrs := newTestServer(t)
	want := atom.New(5, 1, 2, 0, 0xAA)
	if err := j.WriteEventAt(3, want); err != nil {
		t.Fatalf("WriteEventAt() error = %v", err)
	}
	// Head has not advanced past slot 3 yet: a reader must treat it as
	// not-yet-committed even though its bytes are non-zero.
	ctrs.SetRingPositions(3, 0)

	resp := do(t, s, httptest.NewRequest(http.MethodGet, "/v1/events?start=0&end=5", nil))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var entries []eventEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("len(entries) = %d, want 0 (slot 3 not yet committed)", len(entries))
	}
}

func TestHandleReadPayload(t *testing.T) {
	s, j, _ := newTestServer(t)
	payload := []byte("causal payload bytes")
	if err := j.WritePayload(10, payload); err != nil {
		t.Fatalf("WritePayload() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/payload?offset=10&len=20", nil)
	resp := do(t, s, req)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(body) != string(payload) {
		t.Fatalf("body = %q, want %q", body, payload)
	}
}

func TestHandleReadPayloadOutOfBounds(t *testing.T) {
	s, _, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/payload?offset=999999999999&len=10", nil)
	resp := do(t, s, req)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}
