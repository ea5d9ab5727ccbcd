package algo

import "testing"

func TestSMA(t *testing.T) {
	t.Parallel()
	prices := []int64{10, 20, 30, 40}
	if got := SMA(prices, 2); got != 35 {
		t.Fatalf("SMA(last 2) = %d, want 35", got)
	}
	if got := SMA(prices, 10); got != 0 {
		t.Fatalf("SMA with insufficient history should be 0, got %d", got)
	}
}

func TestEMASeeding(t *testing.T) {
	t.Parallel()
	prices := []int64{10, 20, 30, 40, 50}
	out := EMA(prices, 3)
	if out == nil {
		t.Fatal("expected non-nil EMA series")
	}
	// seed = avg(10,20,30) = 20, at index period-1=2
	if out[2] != 20 {
		t.Fatalf("EMA seed = %d, want 20", out[2])
	}
	if len(out) != len(prices) {
		t.Fatalf("EMA series length = %d, want %d", len(out), len(prices))
	}
}

func TestEMAInsufficientHistory(t *testing.T) {
	t.Parallel()
	if out := EMA([]int64{1, 2}, 5); out != nil {
		t.Fatalf("expected nil EMA with insufficient history, got %v", out)
	}
}

func TestStdDevZeroForConstantSeries(t *testing.T) {
	t.Parallel()
	prices := []int64{100, 100, 100, 100}
	if got := StdDev(prices, 4); got != 0 {
		t.Fatalf("StdDev of a constant series should be 0, got %f", got)
	}
}
