package qbasher

import (
	"testing"
	"time"
)

func TestCostBudgetKopsLimit(t *testing.T) {
	opts := DefaultOptions()
	opts.TimeoutKops = 1 // 1000 ops
	opts.TimeoutMsec = 0
	b := NewCostBudget(opts)
	b.opUnitCost[OpCandidate] = 100 // 100 units per charge

	for i := 0; i < 9; i++ {
		b.Charge(OpCandidate, 1)
		if b.Exceeded() {
			t.Fatalf("should not be exceeded before the 10th charge, at charge %d", i+1)
		}
	}
	b.Charge(OpCandidate, 1) // 10th charge triggers evaluation: 10*100=1000 ops = 1 kop
	if !b.Exceeded() {
		t.Fatal("expected kops budget to be exceeded at the 10th charge")
	}
}

func TestCostBudgetMsecLimit(t *testing.T) {
	opts := DefaultOptions()
	opts.TimeoutKops = 0
	opts.TimeoutMsec = 10

	fakeNow := time.Unix(0, 0)
	origNow := timeNow
	timeNow = func() time.Time { return fakeNow }
	defer func() { timeNow = origNow }()

	b := NewCostBudget(opts)
	fakeNow = fakeNow.Add(20 * time.Millisecond)
	for i := 0; i < 10; i++ {
		b.Charge(OpSkip, 1)
	}
	if !b.TimedOut() {
		t.Fatal("expected wall-clock budget to be exceeded")
	}
}

func TestCostBudgetNilReceiverSafe(t *testing.T) {
	var b *CostBudget
	b.Charge(OpSkip, 1)
	if b.Exceeded() || b.TimedOut() {
		t.Fatal("nil budget should never report exceeded/timed out")
	}
	if b.OpCounts() != ([numOpKinds]int64{}) {
		t.Fatal("nil budget OpCounts should be zero value")
	}
}

func TestCostBudgetUnlimitedNeverExceeds(t *testing.T) {
	opts := DefaultOptions()
	opts.TimeoutKops = 0
	opts.TimeoutMsec = 0
	b := NewCostBudget(opts)
	for i := 0; i < 100; i++ {
		b.Charge(OpCandidate, 1000)
	}
	if b.Exceeded() {
		t.Fatal("zero limits should mean unlimited")
	}
}
