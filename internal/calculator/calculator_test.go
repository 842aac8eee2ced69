package calculator

import (
	"math"
	"testing"
)

func TestCandleGeometry(t *testing.T) {
	c := Candle{Open: 100, High: 105, Low: 80, Close: 104}
	if c.Body() != 4 {
		t.Errorf("expected body 4, got %.2f", c.Body())
	}
	if c.UpperShadow() != 1 || c.LowerShadow() != 20 {
		t.Errorf("expected shadows 1/20, got %.2f/%.2f", c.UpperShadow(), c.LowerShadow())
	}
	if !c.IsBull() || c.IsBear() {
		t.Error("expected bullish candle")
	}
	if math.Abs(c.BodyPct()-4.0/25.0) > 1e-12 {
		t.Errorf("expected body pct 0.16, got %.4f", c.BodyPct())
	}
	if (Candle{Open: 1, High: 1, Low: 1, Close: 1}).BodyPct() != 0 {
		t.Error("zero range bar must have zero body pct")
	}
}

func TestSMA(t *testing.T) {
	got, err := SMA([]float64{1, 2, 3, 4, 5}, 3)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0, 0, 2, 3, 4}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("index %d: expected %.2f, got %.2f", i, want[i], got[i])
		}
	}
	if _, err := SMA([]float64{1}, 0); err == nil {
		t.Error("expected error for zero period")
	}
	short, err := SMA([]float64{1, 2}, 5)
	if err != nil || len(short) != 2 || short[1] != 0 {
		t.Errorf("short input: expected zeros, got %v (%v)", short, err)
	}
}

func TestTrailingAverage_ExcludesCurrentBar(t *testing.T) {
	got, err := TrailingAverage([]float64{2, 4, 6, 100}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if got[3] != 4 {
		t.Errorf("expected trailing average 4 at index 3, got %.2f", got[3])
	}
	if got[2] != 0 {
		t.Errorf("expected 0 without full window, got %.2f", got[2])
	}
}
