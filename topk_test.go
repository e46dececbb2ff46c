package qbasher

import "testing"

func TestTopKInsertOrdersDescending(t *testing.T) {
	k := NewTopK(2)
	k.Insert(Candidate{Doc: 1, Score: 5})
	k.Insert(Candidate{Doc: 2, Score: 9})
	k.Insert(Candidate{Doc: 3, Score: 1})
	if k.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", k.Len())
	}
	res := k.Results()
	if res[0].Doc != 2 || res[1].Doc != 1 {
		t.Fatalf("unexpected order: %+v", res)
	}
}

func TestTopKRejectsBelowFloorOnceFull(t *testing.T) {
	k := NewTopK(1)
	k.Insert(Candidate{Doc: 1, Score: 5})
	k.Insert(Candidate{Doc: 2, Score: 1})
	if k.Len() != 1 || k.Results()[0].Doc != 1 {
		t.Fatalf("expected floor-rejecting insert to keep doc 1, got %+v", k.Results())
	}
}

func TestTopKUnboundedWhenCapZero(t *testing.T) {
	k := NewTopK(0)
	for i := 0; i < 5; i++ {
		k.Insert(Candidate{Doc: uint32(i), Score: float64(i)})
	}
	if k.Len() != 5 {
		t.Fatalf("Len() = %d, want 5 for unbounded TopK", k.Len())
	}
}

func TestTopKMinReflectsFloorOnlyWhenFull(t *testing.T) {
	k := NewTopK(2)
	if _, ok := k.Min(); ok {
		t.Fatal("Min() should report not-full before capacity reached")
	}
	k.Insert(Candidate{Doc: 1, Score: 5})
	k.Insert(Candidate{Doc: 2, Score: 3})
	min, ok := k.Min()
	if !ok || min != 3 {
		t.Fatalf("Min() = %v,%v want 3,true", min, ok)
	}
}
