package fixed

import "testing"

func TestRoundTrip(t *testing.T) {
	f := FromInt(5)
	if f.Round() != 5 {
		t.Fatalf("Round() = %d, want 5", f.Round())
	}
}

func TestArithmetic(t *testing.T) {
	a := FromInt(1).DivInt(2) // 0.5
	if got := a.MulInt(2).Round(); got != 1 {
		t.Fatalf("0.5*2 rounded = %d, want 1", got)
	}
	b := a.Add(a)
	if got := b.Round(); got != 1 {
		t.Fatalf("0.5+0.5 rounded = %d, want 1", got)
	}
}

func TestNegativeRounding(t *testing.T) {
	n := FromInt(-3).DivInt(2) // -1.5
	if got := n.Round(); got != -2 {
		t.Fatalf("Round(-1.5) = %d, want -2", got)
	}
}

func TestTrunc(t *testing.T) {
	f := FromInt(7).DivInt(2) // 3.5
	if got := f.Trunc(); got != 3 {
		t.Fatalf("Trunc(3.5) = %d, want 3", got)
	}
}
