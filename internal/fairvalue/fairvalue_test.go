package fairvalue

import "testing"

func TestStepAdvancesAndGetIsIdempotent(t *testing.T) {
	p := New(100.0, 0.5, 7)

	v1 := p.Step()
	if p.Get() != v1 {
		t.Fatalf("Get() = %v after Step() = %v, want equal", p.Get(), v1)
	}
	if p.Get() != v1 {
		t.Fatalf("second Get() = %v, want %v (Get must not advance the walk)", p.Get(), v1)
	}

	v2 := p.Step()
	if v2 == v1 {
		t.Fatalf("Step() returned the same value twice in a row: %v", v1)
	}
}

func TestDeterministicUnderFixedSeed(t *testing.T) {
	a := New(100.0, 1.0, 42)
	b := New(100.0, 1.0, 42)

	for i := 0; i < 50; i++ {
		va, vb := a.Step(), b.Step()
		if va != vb {
			t.Fatalf("step %d diverged: %v != %v", i, va, vb)
		}
	}
}

func TestZeroSigmaIsConstant(t *testing.T) {
	p := New(42.0, 0, 1)
	for i := 0; i < 10; i++ {
		if v := p.Step(); v != 42.0 {
			t.Fatalf("step %d: expected constant 42.0 with sigma=0, got %v", i, v)
		}
	}
}
