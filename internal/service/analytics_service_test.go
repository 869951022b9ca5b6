package service

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeScoreStats(t *testing.T) {
	tests := []struct {
		name    string
		scores  []float64
		max     float64
		mean    float64
		median  float64
		min     float64
		best    float64
		passPct float64
	}{
		{
			name:   "empty set",
			scores: nil, max: 100,
		},
		{
			name:   "single score",
			scores: []float64{7}, max: 10,
			mean: 7, median: 7, min: 7, best: 7, passPct: 100,
		},
		{
			name:   "odd count median",
			scores: []float64{2, 8, 5}, max: 10,
			mean: 5, median: 5, min: 2, best: 8, passPct: 66.66666666666667,
		},
		{
			name:   "even count median",
			scores: []float64{1, 3, 5, 7}, max: 10,
			mean: 4, median: 4, min: 1, best: 7, passPct: 75,
		},
		{
			name:   "nobody passes",
			scores: []float64{0, 1, 2}, max: 10,
			mean: 1, median: 1, min: 0, best: 2, passPct: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeScoreStats(tc.scores, tc.max, 0.4)
			if got.Count != len(tc.scores) {
				t.Fatalf("count: expected %d, got %d", len(tc.scores), got.Count)
			}
			if len(tc.scores) == 0 {
				return
			}
			if !almostEqual(got.Mean, tc.mean) {
				t.Errorf("mean: expected %v, got %v", tc.mean, got.Mean)
			}
			if !almostEqual(got.Median, tc.median) {
				t.Errorf("median: expected %v, got %v", tc.median, got.Median)
			}
			if !almostEqual(got.Min, tc.min) || !almostEqual(got.Max, tc.best) {
				t.Errorf("range: expected [%v,%v], got [%v,%v]", tc.min, tc.best, got.Min, got.Max)
			}
			if !almostEqual(got.PassPct, tc.passPct) {
				t.Errorf("passPct: expected %v, got %v", tc.passPct, got.PassPct)
			}
		})
	}
}

func TestComputeScoreStats_StdDev(t *testing.T) {
	got := ComputeScoreStats([]float64{2, 4, 4, 4, 5, 5, 7, 9}, 10, 0.4)
	if !almostEqual(got.StdDev, 2) {
		t.Fatalf("expected stddev 2, got %v", got.StdDev)
	}
}

func TestBucketScores(t *testing.T) {
	buckets := BucketScores([]float64{0, 5, 10, 55, 99, 100}, 100)
	if len(buckets) != 10 {
		t.Fatalf("expected 10 buckets, got %d", len(buckets))
	}

	expect := map[string]int{
		"0-10%":   2, // 0 and 5
		"10-20%":  1, // 10 lands at the lower bound of the second band
		"50-60%":  1,
		"90-100%": 2, // 99 and the full score
	}
	for _, b := range buckets {
		want := expect[b.Label]
		if b.Count != want {
			t.Errorf("bucket %s: expected %d, got %d", b.Label, want, b.Count)
		}
	}
}

func TestBucketScores_OverflowLandsInTopBand(t *testing.T) {
	// Manual grading does not clamp, so a score above max must not panic.
	buckets := BucketScores([]float64{120}, 100)
	if buckets[9].Count != 1 {
		t.Fatalf("expected overflow score in top band, got %+v", buckets)
	}
}

func TestBucketScores_ZeroMax(t *testing.T) {
	buckets := BucketScores([]float64{1, 2}, 0)
	for _, b := range buckets {
		if b.Count != 0 {
			t.Fatalf("expected empty buckets for zero max, got %+v", buckets)
		}
	}
}
