package qbasher

import "testing"

func TestElapsedHistogramObserveAndMean(t *testing.T) {
	var h ElapsedHistogram
	h.Observe(1)
	h.Observe(3)
	if h.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", h.Count())
	}
	if h.Mean() != 2 {
		t.Fatalf("Mean() = %v, want 2", h.Mean())
	}
}

func TestElapsedHistogramOverflowBucket(t *testing.T) {
	var h ElapsedHistogram
	h.Observe(float64(ElapsedMsecBuckets + 500))
	if h.Bucket(ElapsedMsecBuckets) != 1 {
		t.Fatal("expected observation beyond range to land in overflow bucket")
	}
}

func TestFormatResultSelectsDisplayColumn(t *testing.T) {
	opts := buildTestIndex(t)
	idx, err := OpenIndex(opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	cand := Candidate{Doc: 0, Score: 1.5}
	line, err := FormatResult(idx, opts, cand)
	if err != nil {
		t.Fatal(err)
	}
	if line != "hey jude\t1.500000" {
		t.Fatalf("FormatResult = %q", line)
	}
}

func TestMatchFlagsString(t *testing.T) {
	if matchFlagsString(0) != "-" {
		t.Fatal("expected - for no flags")
	}
	if got := matchFlagsString(MatchExact | MatchAnd); got != "exact,and" {
		t.Fatalf("matchFlagsString = %q", got)
	}
}
