package qbasher

import "sort"

// ═══════════════════════════════════════════════════════════════════════════════
// TOP-K RETENTION (C5)
// ═══════════════════════════════════════════════════════════════════════════════
// Adapted from Zeeeepa-blaze/skiplist.go's sorted-insert idiom: rather than a
// pointer-tower skip list over positions, results only ever need a bounded,
// descending-by-score sorted set of at most pq candidates (spec.md §4.5's
// "PQ" result-count setting), so a plain insertion-sorted slice with a
// capacity cutoff gives the same "keep sorted order, bound the work" shape
// at a fraction of the complexity.
// ═══════════════════════════════════════════════════════════════════════════════

// TopK retains the pq highest-scoring candidates seen so far, sorted
// descending by Score. Insert is O(pq) worst case; since pq is small
// (spec.md's PQ default is tens, not thousands) this beats a heap in
// practice for the same reason the teacher's comment gives for skip lists
// over balanced trees: simpler, better constants.
type TopK struct {
	cap   int
	items []Candidate
}

// NewTopK builds a retention set bounded to cap entries. cap <= 0 means
// unbounded (spec.md §6's pq=0 "return everything" case).
func NewTopK(cap int) *TopK {
	return &TopK{cap: cap}
}

// Len reports the number of retained candidates.
func (k *TopK) Len() int { return len(k.items) }

// Insert adds c to the retained set if it beats the current minimum
// (or the set is not yet full), keeping items sorted descending by Score.
func (k *TopK) Insert(c Candidate) {
	if k.cap > 0 && len(k.items) >= k.cap {
		if c.Score <= k.items[len(k.items)-1].Score {
			return
		}
	}
	pos := sort.Search(len(k.items), func(i int) bool {
		return k.items[i].Score < c.Score
	})
	k.items = append(k.items, Candidate{})
	copy(k.items[pos+1:], k.items[pos:])
	k.items[pos] = c
	if k.cap > 0 && len(k.items) > k.cap {
		k.items = k.items[:k.cap]
	}
}

// Min returns the lowest score currently retained and whether the set is
// at capacity (useful for early-reject comparisons before scoring a
// candidate in full, per spec.md §4.5's "reject below current floor").
func (k *TopK) Min() (float64, bool) {
	if k.cap <= 0 || len(k.items) < k.cap || len(k.items) == 0 {
		return 0, false
	}
	return k.items[len(k.items)-1].Score, true
}

// Results returns the retained candidates, highest score first.
func (k *TopK) Results() []Candidate {
	return k.items
}
