package qbasher

import "testing"

func keyByDoc(displays map[uint32]string) func(Candidate) string {
	return func(c Candidate) string { return displays[c.Doc] }
}

func TestDedupCandidatesModeNone(t *testing.T) {
	results := []Candidate{{Doc: 1}, {Doc: 1}}
	out := DedupCandidates(0, results, keyByDoc(map[uint32]string{1: "a"}))
	if len(out) != 2 {
		t.Fatalf("mode 0 should not dedup, got %d", len(out))
	}
}

func TestDedupAdjacentOnly(t *testing.T) {
	displays := map[uint32]string{1: "a", 2: "a", 3: "b", 4: "a"}
	results := []Candidate{{Doc: 1}, {Doc: 2}, {Doc: 3}, {Doc: 4}}
	out := DedupCandidates(1, results, keyByDoc(displays))
	if len(out) != 3 {
		t.Fatalf("adjacent dedup should keep 3 (a,b,a), got %d: %+v", len(out), out)
	}
}

func TestDedupGlobal(t *testing.T) {
	displays := map[uint32]string{1: "a", 2: "a", 3: "b", 4: "a"}
	results := []Candidate{{Doc: 1}, {Doc: 2}, {Doc: 3}, {Doc: 4}}
	out := DedupCandidates(2, results, keyByDoc(displays))
	if len(out) != 2 {
		t.Fatalf("global dedup should keep 2 (a,b), got %d: %+v", len(out), out)
	}
}

func TestNormalizeDedupKey(t *testing.T) {
	if NormalizeDedupKey("  Hey   Jude ") != "hey jude" {
		t.Fatal("expected case-fold and whitespace-collapse")
	}
}
