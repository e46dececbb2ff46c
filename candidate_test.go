package qbasher

import "testing"

// TestRunRelaxedAndExactMatch runs "hey jude" against the two-document test
// index and expects doc 0 to come back in the zero-relaxation block.
func TestRunRelaxedAndExactMatch(t *testing.T) {
	opts := buildTestIndex(t)
	idx, err := OpenIndex(opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	leaves := []*SAATNode{BuildLeaf(idx, "hey"), BuildLeaf(idx, "jude")}
	filter := &DefaultFilter{Idx: idx, Opts: opts, QueryLen: len(leaves)}
	params := RelaxedAndParams{
		MaxRelax:      0,
		MaxCandidates: 10,
		Filter:        filter,
		Budget:        nil,
	}

	blocks := RunRelaxedAnd(idx, leaves, params)
	if len(blocks[0]) != 1 {
		t.Fatalf("block[0] len = %d, want 1", len(blocks[0]))
	}
	if blocks[0][0].Doc != 0 {
		t.Errorf("matched doc = %d, want 0", blocks[0][0].Doc)
	}
}

// TestRunRelaxedAndToleratesOneMissingTerm checks that a query for a term
// only doc 0 has ("jude") plus the shared term ("hey") still matches doc 1
// once one missing term is tolerated.
func TestRunRelaxedAndToleratesOneMissingTerm(t *testing.T) {
	opts := buildTestIndex(t)
	idx, err := OpenIndex(opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	leaves := []*SAATNode{BuildLeaf(idx, "hey"), BuildLeaf(idx, "jude")}
	filter := &DefaultFilter{Idx: idx, Opts: opts, QueryLen: len(leaves)}
	params := RelaxedAndParams{
		MaxRelax:      1,
		MaxCandidates: 10,
		Filter:        filter,
		Budget:        nil,
	}

	blocks := RunRelaxedAnd(idx, leaves, params)
	found := map[uint32]int{}
	for missing, block := range blocks {
		for _, c := range block {
			found[c.Doc] = missing
		}
	}
	if m, ok := found[0]; !ok || m != 0 {
		t.Errorf("doc 0 missing=%d, ok=%v, want missing=0", m, ok)
	}
	if m, ok := found[1]; !ok || m != 1 {
		t.Errorf("doc 1 missing=%d, ok=%v, want missing=1", m, ok)
	}
}

// TestRunRelaxedAndUnknownTermExhaustsImmediately covers the "unknown term
// makes the query return nothing" rule: a leaf for a term absent from the
// vocabulary is built already-exhausted, so the pivot lookup sees it as
// the immediate stopping condition.
func TestRunRelaxedAndUnknownTermExhaustsImmediately(t *testing.T) {
	opts := buildTestIndex(t)
	idx, err := OpenIndex(opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	leaves := []*SAATNode{BuildLeaf(idx, "hey"), BuildLeaf(idx, "nonexistent")}
	filter := &DefaultFilter{Idx: idx, Opts: opts, QueryLen: len(leaves)}
	params := RelaxedAndParams{
		MaxRelax:      0,
		MaxCandidates: 10,
		Filter:        filter,
		Budget:        nil,
	}

	blocks := RunRelaxedAnd(idx, leaves, params)
	for missing, block := range blocks {
		if len(block) != 0 {
			t.Errorf("block[%d] len = %d, want 0 (pivot with M=0 requires both terms present)", missing, len(block))
		}
	}
}

// TestRunRelaxedAndBloomRejectsAtM0 checks that the Bloom pre-scan added to
// RunRelaxedAnd actually rejects a pivot candidate: doc 0 (BloomSig 0) and
// doc 1 (BloomSig 1) exactly match "hey"/"jude" and "hey" respectively, but
// with a query signature of 1, i.e. bit 0 set (which only doc 1's signature
// has), doc 0 must not survive M=0 even though it matches both terms exactly.
func TestRunRelaxedAndBloomRejectsAtM0(t *testing.T) {
	opts := buildTestIndex(t)
	idx, err := OpenIndex(opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	leaves := []*SAATNode{BuildLeaf(idx, "hey"), BuildLeaf(idx, "jude")}
	filter := &DefaultFilter{Idx: idx, Opts: opts, QueryLen: len(leaves)}
	params := RelaxedAndParams{
		MaxRelax:      0,
		MaxCandidates: 10,
		QuerySig:      1,
		Filter:        filter,
		Budget:        nil,
	}

	blocks := RunRelaxedAnd(idx, leaves, params)
	if len(blocks[0]) != 0 {
		t.Fatalf("block[0] len = %d, want 0 (doc 0's BloomSig=0 lacks bit 0, pre-scan should reject it)", len(blocks[0]))
	}
}

func TestAllBlocksFull(t *testing.T) {
	var blocks CandidateBlocks
	if allBlocksFull(blocks, 4, 2) {
		t.Fatal("empty blocks should not be full")
	}
	for i := range blocks {
		blocks[i] = []Candidate{{}, {}}
	}
	if !allBlocksFull(blocks, 4, 2) {
		t.Fatal("blocks at capacity should be full")
	}
}

// TestAllBlocksFullIgnoresSlotsBeyondM covers the realistic M<MaxRelax case:
// blocks beyond M are never populated (missed can never exceed M), so they
// must not prevent allBlocksFull from reporting done once blocks[0..M] are
// at capacity.
func TestAllBlocksFullIgnoresSlotsBeyondM(t *testing.T) {
	var blocks CandidateBlocks
	blocks[0] = []Candidate{{}, {}}
	if !allBlocksFull(blocks, 0, 2) {
		t.Fatal("blocks[0..0] at capacity should be full when M=0, regardless of blocks[1..4] being empty")
	}
	if allBlocksFull(blocks, 1, 2) {
		t.Fatal("blocks[1] is still below capacity, should not be full when M=1")
	}
}

func TestIndexOf(t *testing.T) {
	a := &SAATNode{Term: "a"}
	b := &SAATNode{Term: "b"}
	haystack := []*SAATNode{a, b}
	if indexOf(haystack, a) != 0 {
		t.Error("expected index 0 for a")
	}
	if indexOf(haystack, b) != 1 {
		t.Error("expected index 1 for b")
	}
	if indexOf(haystack, &SAATNode{Term: "c"}) != -1 {
		t.Error("expected -1 for not-found node")
	}
}
