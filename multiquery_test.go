package qbasher

import "testing"

func TestParseQueryLineSingleVariant(t *testing.T) {
	plan := ParseQueryLine("hey jude")
	if len(plan.Variants) != 1 || plan.Variants[0].QueryText != "hey jude" || plan.Variants[0].Weight != 1 {
		t.Fatalf("unexpected plan: %+v", plan)
	}
}

func TestParseQueryLineWithOverlayAndWeight(t *testing.T) {
	plan := ParseQueryLine("hey jude\t-max_to_show=5\t0.5\t>3")
	v := plan.Variants[0]
	if v.OptionsOverlay != "-max_to_show=5" || v.Weight != 0.5 || v.PostTest != ">3" {
		t.Fatalf("unexpected variant: %+v", v)
	}
}

func TestMultiQueryStateIteration(t *testing.T) {
	plan := ParseQueryLine("hey jude")
	s := NewMultiQueryState(plan)
	if !s.HasNext() {
		t.Fatal("expected one variant to iterate")
	}
	base := DefaultOptions()
	v, opts, err := s.Next(base)
	if err != nil {
		t.Fatal(err)
	}
	if v.QueryText != "hey jude" || opts.MaxToShow != base.MaxToShow {
		t.Fatalf("unexpected Next() result: %+v %+v", v, opts)
	}
	if s.HasNext() {
		t.Fatal("expected no more variants")
	}
}

func TestPostTestPassesCountThreshold(t *testing.T) {
	s := NewMultiQueryState(ParseQueryLine("q"))
	v := QueryVariant{PostTest: ">2"}
	if s.PostTestPasses(v, 3, 0) != true {
		t.Fatal("expected count 3 > 2 to pass")
	}
	if s.PostTestPasses(v, 2, 0) != false {
		t.Fatal("expected count 2 > 2 to fail")
	}
}

func TestPostTestPassesScoreThreshold(t *testing.T) {
	s := NewMultiQueryState(ParseQueryLine("q"))
	s.HighestScoreSoFar = 0.5
	v := QueryVariant{PostTest: ">H<"}
	if !s.PostTestPasses(v, 0, 0.6) {
		t.Fatal("expected new top score 0.6 > 0.5 to pass")
	}
	if s.PostTestPasses(v, 0, 0.4) {
		t.Fatal("expected 0.4 > 0.5 to fail")
	}
}

func TestOutputBufferFinalizeSortsAndTruncates(t *testing.T) {
	var buf OutputBuffer
	buf.Merge(QueryVariant{Weight: 1}, []Candidate{{Doc: 1, Score: 3}, {Doc: 2, Score: 9}})
	buf.Merge(QueryVariant{Weight: 2}, []Candidate{{Doc: 3, Score: 1}})
	opts := DefaultOptions()
	opts.MaxToShow = 2
	opts.DuplicateHandling = 0
	out := buf.Finalize(opts, func(c Candidate) string { return "" })
	if len(out) != 2 {
		t.Fatalf("expected truncation to 2, got %d", len(out))
	}
	if out[0].Doc != 2 {
		t.Fatalf("expected highest score (doc 2, score 9) first, got %+v", out[0])
	}
}
