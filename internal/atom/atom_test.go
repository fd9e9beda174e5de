package atom

import (
	"sort"
	"testing"
)

func TestSize(t *testing.T) {
	var a Atom
	buf := make([]byte, Size)
	Encode(a, buf)
	if len(buf) != 32 {
		t.Fatalf("atom wire size = %d, want 32", len(buf))
	}
}

func TestCompareIgnoresPayload(t *testing.T) {
	a := New(5, 3, 7, 100, 0xBEEF)
	b := New(5, 3, 7, 200, 0xCAFE)
	if Compare(a, b) != Equal {
		t.Fatalf("Compare(a, b) = %v, want Equal", Compare(a, b))
	}
}

func TestCompareTotalOrder(t *testing.T) {
	tests := []struct {
		name string
		a, b Atom
		want Ordering
	}{
		{"lamport less", New(1, 0, 0, 0, 0), New(2, 0, 0, 0, 0), Less},
		{"lamport greater", New(2, 0, 0, 0, 0), New(1, 0, 0, 0, 0), Greater},
		{"node tiebreak", New(5, 1, 0, 0, 0), New(5, 2, 0, 0, 0), Less},
		{"stream tiebreak", New(5, 1, 1, 0, 0), New(5, 1, 2, 0, 0), Less},
		{"equal key", New(5, 1, 1, 9, 9), New(5, 1, 1, 0, 0), Equal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.a, tt.b); got != tt.want {
				t.Errorf("Compare() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Scenario 1 from the spec: sort three atoms, A and B are order-equal.
func TestSortThreeAtoms(t *testing.T) {
	a := New(5, 3, 7, 100, 0xBEEF)
	b := New(5, 3, 7, 200, 0xCAFE)
	c := New(2, 0, 0, 0, 0)
	events := []Atom{a, b, c}
	sort.SliceStable(events, func(i, j int) bool { return Before(events[i], events[j]) })
	if events[0] != c {
		t.Fatalf("events[0] = %+v, want C first", events[0])
	}
	if Compare(events[1], events[2]) != Equal {
		t.Fatalf("events[1], events[2] should be order-equal")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	a := WithFlags(42, 7, 2, 16, 0xDEADBEEF, FlagCheckpoint)
	buf := make([]byte, Size)
	Encode(a, buf)
	got := Decode(buf)
	if got != a {
		t.Fatalf("round trip = %+v, want %+v", got, a)
	}
	if !got.IsCheckpoint() {
		t.Fatalf("IsCheckpoint() = false, want true")
	}
}

func TestIsEmptySlot(t *testing.T) {
	buf := make([]byte, Size)
	if !IsEmptySlotBytes(buf) {
		t.Fatal("zeroed slot should be empty")
	}
	Encode(New(1, 0, 0, 0, 0), buf)
	if IsEmptySlotBytes(buf) {
		t.Fatal("non-zero slot should not be empty")
	}
	if !IsEmptySlot(Atom{}) {
		t.Fatal("zero-value Atom should be empty")
	}
}

func TestPaddingIsZero(t *testing.T) {
	a := New(1, 1, 1, 1, 1)
	buf := make([]byte, Size)
	for i := range buf {
		buf[i] = 0xFF
	}
	Encode(a, buf)
	for i := 28; i < 32; i++ {
		if buf[i] != 0 {
			t.Fatalf("pad byte %d = %#x, want 0", i, buf[i])
		}
	}
}
