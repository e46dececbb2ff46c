package qbasher

import "testing"

func TestClassifyScoreJaccard(t *testing.T) {
	opts := DefaultOptions()
	opts.ClassifierMode = 3
	opts.Chi, opts.Psi, opts.Omega = 1, 0, 0
	opts.SegmentIntentMultiplier = 1
	cand := &Candidate{MissingTerms: 0}
	score := ClassifyScore(opts, cand, 2, 4) // matched=2, union=2+4-2=4
	if want := 0.5; score != want {
		t.Fatalf("ClassifyScore = %v, want %v", score, want)
	}
}

func TestClassifierAcceptsRespectsWordBounds(t *testing.T) {
	opts := DefaultOptions()
	opts.ClassifierMinWords = 2
	opts.ClassifierMaxWords = 5
	opts.ClassifierThreshold = 0.1
	if ClassifierAccepts(opts, 0.9, 1) {
		t.Fatal("expected reject: query shorter than classifier_min_words")
	}
	if !ClassifierAccepts(opts, 0.9, 3) {
		t.Fatal("expected accept within word bounds and above threshold")
	}
}

func TestShouldStopEarlyHighConfidenceAccept(t *testing.T) {
	opts := DefaultOptions()
	opts.ClassifierStopThresh1 = 0.98
	if !ShouldStopEarly(opts, 0.99, 5) {
		t.Fatal("expected early stop once stop_thresh1 is crossed")
	}
}

func TestShouldStopEarlyConfidentReject(t *testing.T) {
	opts := DefaultOptions()
	opts.ClassifierStopThresh2 = 0.02
	if !ShouldStopEarly(opts, 0.01, 0) {
		t.Fatal("expected early stop: no variants left and score below stop_thresh2")
	}
	if ShouldStopEarly(opts, 0.01, 2) {
		t.Fatal("expected no early stop while variants remain")
	}
}

func TestAssignMatchFlagsExactMatch(t *testing.T) {
	cand := &Candidate{MissingTerms: 0, TermsMatchedBits: 0b11}
	AssignMatchFlags(cand, 2, true, true)
	if cand.MatchFlags&MatchExact == 0 {
		t.Fatal("expected MatchExact flag for full phrase match")
	}
	if cand.MatchFlags&MatchAnd == 0 {
		t.Fatal("expected MatchAnd flag when nothing is missing")
	}
}

func TestAssignMatchFlagsRelaxation(t *testing.T) {
	cand := &Candidate{MissingTerms: 1}
	AssignMatchFlags(cand, 3, false, false)
	if cand.MatchFlags&MatchRelax1 == 0 {
		t.Fatal("expected MatchRelax1 flag when one term is missing")
	}
}
