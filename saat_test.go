package qbasher

import "testing"

func TestBuildLeafUnknownTerm(t *testing.T) {
	opts := buildTestIndex(t)
	idx, err := OpenIndex(opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	leaf := BuildLeaf(idx, "nonexistent")
	if !leaf.Exhausted() {
		t.Error("leaf for unknown term should be immediately exhausted")
	}
}

func TestBuildLeafInlinePosting(t *testing.T) {
	opts := buildTestIndex(t)
	idx, err := OpenIndex(opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	leaf := BuildLeaf(idx, "jude")
	if leaf.Exhausted() {
		t.Fatal("leaf for known inline term should not be exhausted")
	}
	if leaf.CurDoc() != 0 {
		t.Errorf("CurDoc() = %d, want 0", leaf.CurDoc())
	}
}

func TestWordLeafSkipToMultiOccurrence(t *testing.T) {
	opts := buildTestIndex(t)
	idx, err := OpenIndex(opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	leaf := BuildLeaf(idx, "hey")
	if leaf.Exhausted() {
		t.Fatal("hey should resolve to a real posting list")
	}
	if leaf.CurDoc() != 0 {
		t.Fatalf("first posting doc = %d, want 0", leaf.CurDoc())
	}
	if r := leaf.SkipTo(idx, 1); r != 0 {
		t.Fatalf("SkipTo(1) = %d, want 0 (exact hit)", r)
	}
	if leaf.CurDoc() != 1 {
		t.Fatalf("after SkipTo(1), CurDoc() = %d, want 1", leaf.CurDoc())
	}
	if r := leaf.SkipTo(idx, 5); r != -1 {
		t.Fatalf("SkipTo(5) past end = %d, want -1 (exhausted)", r)
	}
}

func TestCollapseRepetitions(t *testing.T) {
	opts := buildTestIndex(t)
	idx, err := OpenIndex(opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	a := BuildLeaf(idx, "hey")
	b := BuildLeaf(idx, "hey")
	c := BuildLeaf(idx, "jude")
	out := CollapseRepetitions([]*SAATNode{a, b, c})
	if len(out) != 2 {
		t.Fatalf("CollapseRepetitions returned %d nodes, want 2", len(out))
	}
	if out[0].RepetitionCount != 2 {
		t.Errorf("first 'hey' leaf RepetitionCount = %d, want 2", out[0].RepetitionCount)
	}
}

func TestSortByFrequencyAscending(t *testing.T) {
	opts := buildTestIndex(t)
	idx, err := OpenIndex(opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	hey := BuildLeaf(idx, "hey")   // occurrence 2
	jude := BuildLeaf(idx, "jude") // occurrence 1
	sorted := SortByFrequencyAscending([]*SAATNode{hey, jude})
	if sorted[0].Term != "jude" {
		t.Errorf("expected rarest term 'jude' first, got %q", sorted[0].Term)
	}
}

func TestBuildPhraseAssignsOffsets(t *testing.T) {
	opts := buildTestIndex(t)
	idx, err := OpenIndex(opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	a := BuildLeaf(idx, "hey")
	b := BuildLeaf(idx, "jude")
	phrase := BuildPhrase(a, b)
	if phrase.Type != SAATPhrase {
		t.Fatal("BuildPhrase must produce a SAATPhrase node")
	}
	if a.PhraseOffset != 0 || b.PhraseOffset != 1 {
		t.Errorf("phrase offsets = %d,%d want 0,1", a.PhraseOffset, b.PhraseOffset)
	}
}
