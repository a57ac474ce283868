package buffer

import "testing"

func TestRingWriteWindowDiscard(t *testing.T) {
	r := NewRing[int](8)

	if err := r.Write([]int{1, 2, 3, 4, 5}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if r.Len() != 5 {
		t.Fatalf("expected len 5, got %d", r.Len())
	}

	win := make([]int, 4)
	if err := r.Window(win); err != nil {
		t.Fatalf("window: %v", err)
	}
	for i, want := range []int{1, 2, 3, 4} {
		if win[i] != want {
			t.Errorf("win[%d] = %d, want %d", i, win[i], want)
		}
	}

	// Window does not consume.
	if r.Len() != 5 {
		t.Errorf("expected len 5 after window, got %d", r.Len())
	}

	r.Discard(2)
	if r.Len() != 3 {
		t.Errorf("expected len 3 after discard, got %d", r.Len())
	}
	if err := r.Window(win[:3]); err != nil {
		t.Fatalf("window: %v", err)
	}
	if win[0] != 3 {
		t.Errorf("expected head 3 after discard, got %d", win[0])
	}
}

func TestRingWrapAround(t *testing.T) {
	r := NewRing[int](4)

	// Fill, drain, refill to force head/tail past the physical end.
	r.Write([]int{1, 2, 3})
	r.Discard(3)
	if err := r.Write([]int{4, 5, 6, 7}); err != nil {
		t.Fatalf("write across wrap: %v", err)
	}

	win := make([]int, 4)
	if err := r.Window(win); err != nil {
		t.Fatalf("window across wrap: %v", err)
	}
	for i, want := range []int{4, 5, 6, 7} {
		if win[i] != want {
			t.Errorf("win[%d] = %d, want %d", i, win[i], want)
		}
	}
}

func TestRingOverflow(t *testing.T) {
	r := NewRing[int](3)
	if err := r.Write([]int{1, 2, 3, 4}); err == nil {
		t.Error("expected error writing past capacity")
	}
	r.Write([]int{1, 2})
	if err := r.Write([]int{3, 4}); err == nil {
		t.Error("expected error when free capacity is exceeded")
	}
}

func TestRingWindowUnderflow(t *testing.T) {
	r := NewRing[int](4)
	r.Write([]int{1})
	if err := r.Window(make([]int, 2)); err == nil {
		t.Error("expected error for window larger than buffered data")
	}
}

func TestRingDiscardPastEnd(t *testing.T) {
	r := NewRing[int](4)
	r.Write([]int{1, 2})
	r.Discard(10)
	if r.Len() != 0 {
		t.Errorf("expected empty buffer, got len %d", r.Len())
	}
}

func TestRingReset(t *testing.T) {
	r := NewRing[int](4)
	r.Write([]int{1, 2, 3})
	r.Reset()
	if r.Len() != 0 {
		t.Errorf("expected len 0 after reset, got %d", r.Len())
	}
	if err := r.Write([]int{1, 2, 3, 4}); err != nil {
		t.Errorf("write after reset: %v", err)
	}
}
