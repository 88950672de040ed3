package confidence

import (
	"math"
	"testing"
)

func TestAggregate(t *testing.T) {
	if got := Aggregate(); got != 0 {
		t.Fatalf("empty = %v", got)
	}
	if got := Aggregate(0.9, 0); got != 0 {
		t.Fatalf("zero input = %v", got)
	}
	if got := Aggregate(0.6, 0.95); math.Abs(got-math.Sqrt(0.57)) > 1e-12 {
		t.Fatalf("got %v", got)
	}
}

func TestDecay(t *testing.T) {
	if got := Decay(0.95, 0); got != 0.95 {
		t.Fatalf("got %v", got)
	}
	if got := Decay(0.6, 2); math.Abs(got-0.486) > 1e-12 {
		t.Fatalf("got %v", got)
	}
}

func TestLabel(t *testing.T) {
	tests := map[float64]string{0.97: "high", 0.85: "medium", 0.7: "low", 0.3: "very low"}
	for score, want := range tests {
		if got := Label(score); got != want {
			t.Errorf("Label(%v) = %q, want %q", score, got, want)
		}
	}
	if Clamp(1.2) != 1 || Clamp(-0.1) != 0 {
		t.Fatal("clamp out of range")
	}
}
