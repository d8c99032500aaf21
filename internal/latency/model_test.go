package latency

import "testing"

func TestDrawIsNonNegative(t *testing.T) {
	m := NewModel(2.5, 3)
	for i := 0; i < 1000; i++ {
		if d := m.Draw(); d < 0 {
			t.Fatalf("draw %d: got negative latency %v", i, d)
		}
	}
}

func TestZeroMeanLatencyIsZero(t *testing.T) {
	m := NewModel(0, 1)
	for i := 0; i < 10; i++ {
		if d := m.Draw(); d != 0 {
			t.Fatalf("expected 0 latency with MeanLatency=0, got %v", d)
		}
	}
}

func TestDeterministicUnderFixedSeed(t *testing.T) {
	a := NewModel(1.0, 99)
	b := NewModel(1.0, 99)
	for i := 0; i < 100; i++ {
		if da, db := a.Draw(), b.Draw(); da != db {
			t.Fatalf("draw %d diverged: %v != %v", i, da, db)
		}
	}
}

func TestMeanIsApproximatelyMeanLatency(t *testing.T) {
	m := NewModel(10.0, 123)
	var total float64
	const n = 200_000
	for i := 0; i < n; i++ {
		total += m.Draw()
	}
	mean := total / n
	if mean < 9.0 || mean > 11.0 {
		t.Fatalf("sample mean %v too far from expected 10.0", mean)
	}
}
