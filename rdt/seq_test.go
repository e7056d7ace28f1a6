package rdt

import "testing"

func TestValueLessThanHandlesWraparound(t *testing.T) {
	var max Value = 0xffffffff
	if !max.LessThan(0) {
		t.Fatal("expected max uint32 to precede 0 across wraparound")
	}
	if Value(0).LessThan(max) {
		t.Fatal("0 should not precede max uint32 (max wrapped past it)")
	}
}

func TestValueLessThanEq(t *testing.T) {
	if !Value(5).LessThanEq(5) {
		t.Fatal("expected equal values to satisfy LessThanEq")
	}
	if !Value(5).LessThanEq(6) {
		t.Fatal("expected 5 <= 6")
	}
	if Value(6).LessThanEq(5) {
		t.Fatal("expected 6 <= 5 to be false")
	}
}

func TestValueInWindow(t *testing.T) {
	if !Value(105).InWindow(100, 10) {
		t.Fatal("expected 105 to fall within [100,110)")
	}
	if Value(110).InWindow(100, 10) {
		t.Fatal("expected 110 to fall outside [100,110)")
	}
	if !Value(100).InWindow(100, 0) {
		t.Fatal("expected zero-size window to match only its start value")
	}
}

func TestSizeofAndAdd(t *testing.T) {
	if got := Sizeof(100, 105); got != 5 {
		t.Fatalf("Sizeof(100,105) = %d, want 5", got)
	}
	if got := Add(100, 5); got != 105 {
		t.Fatalf("Add(100,5) = %d, want 105", got)
	}
}
