package qbasher

import (
	"sort"

	"github.com/RoaringBitmap/roaring"
)

// ═══════════════════════════════════════════════════════════════════════════════
// CANDIDATE ENGINE (C4): Relaxed-AND
// ═══════════════════════════════════════════════════════════════════════════════
// Adapted from Zeeeepa-blaze/search.go's findCandidateDocuments, which found
// candidates in two phases (bitmap union, then position lookup). The same
// "cheap pre-filter before expensive per-doc work" shape survives, retargeted
// from "all terms via OR" to the (M+1)-th-highest-docnum relaxed-AND algorithm
// of spec.md §4.4: tolerate up to M missing top-level terms, driving iteration
// from the rarest/most-advanced term rather than scanning every posting.
// ═══════════════════════════════════════════════════════════════════════════════

// Candidate mirrors candidate_t (original_source/src/qbashq-lib/QBASHQ.h):
// one surviving document plus everything the ranker/classifier needs.
type Candidate struct {
	Doc               uint32
	Score             float64
	TermsMatchedBits  uint32
	TF                [MaxWordsInQuery]byte
	QIDF              [MaxWordsInQuery]byte
	InterveningWords  byte
	MatchFlags        MatchFlag
	FeatureVector     [FeatureVecLen]float64
	MissingTerms      int
}

// CandidateBlocks holds one candidate slice per relaxation level, 0..MaxRelax
// (spec.md §3 "per-relaxation-level result arrays").
type CandidateBlocks [MaxRelax + 1][]Candidate

// RelaxedAndParams bundles the per-query knobs the relaxed-AND loop needs.
type RelaxedAndParams struct {
	MaxRelax      int // M, <= MaxRelax
	MaxCandidates int // cap per result block
	QuerySig      byte
	Filter        CandidateFilter
	Budget        *CostBudget
}

// CandidateFilter is the possibly_record_candidate pre-filter chain
// (spec.md §4.4), implemented in filter.go and invoked once per surviving
// relaxed-AND candidate before it is recorded.
type CandidateFilter interface {
	Accept(idx *Index, docnum uint32, terms []*SAATNode, missing int) (Candidate, bool)
}

// RunRelaxedAnd implements spec.md §4.4 steps 1-6: repeatedly pick the
// (M+1)-th highest current docnum among the top-level terms, test every
// term's SkipTo against it, record survivors, and advance past the chosen
// candidate, until all blocks are full, the pivot term is exhausted, or the
// budget is spent.
func RunRelaxedAnd(idx *Index, terms []*SAATNode, params RelaxedAndParams) CandidateBlocks {
	var blocks CandidateBlocks
	fpermute := SortByFrequencyAscending(terms)
	qwdCnt := len(terms)
	M := params.MaxRelax
	if M > qwdCnt-1 {
		M = qwdCnt - 1
	}
	if M < 0 {
		M = 0
	}

	// Bloom pre-scan (spec.md §4.4/Glossary): when the query carries
	// partial-prefix terms, only a document whose signature is a superset of
	// the query's signature can survive the M=0 (exact top-level match) case,
	// so a non-member candidateDoc is rejected before paying for the full
	// possibly_record_candidate check.
	var bloomSet *roaring.Bitmap
	if params.QuerySig != 0 {
		bloomSet = idx.BloomCandidates(params.QuerySig)
	}

	for {
		if params.Budget != nil && params.Budget.Exceeded() {
			return blocks
		}
		if allBlocksFull(blocks, M, params.MaxCandidates) {
			return blocks
		}

		candidateDoc, pivotExhausted := nthHighestCurDoc(terms, M)
		if pivotExhausted {
			return blocks
		}

		missed := 0
		var matchedBits uint32
		for i, t := range fpermute {
			params.Budget.Charge(OpSkip, 1)
			if t.SkipTo(idx, candidateDoc) == 0 {
				matchedBits |= 1 << uint(indexOf(terms, t))
			} else {
				missed++
				if missed > M {
					break
				}
			}
			_ = i
		}

		if missed <= M {
			rejectedByBloom := missed == 0 && bloomSet != nil && !bloomSet.Contains(candidateDoc)
			if !rejectedByBloom {
				params.Budget.Charge(OpBloomCheck, 1)
				params.Budget.Charge(OpCandidate, 1)
				if cand, ok := params.Filter.Accept(idx, candidateDoc, terms, missed); ok {
					cand.TermsMatchedBits = matchedBits
					cand.MissingTerms = missed
					if missed < len(blocks) && len(blocks[missed]) < params.MaxCandidates {
						blocks[missed] = append(blocks[missed], cand)
					}
				}
			}
		}

		// Advance every leaf currently sitting on candidateDoc to prevent
		// re-selecting it (spec.md §4.4 step 5).
		for _, t := range terms {
			if t.CurDoc() == candidateDoc {
				t.SkipTo(idx, candidateDoc+1)
			}
		}
	}
}

func indexOf(haystack []*SAATNode, needle *SAATNode) int {
	for i, n := range haystack {
		if n == needle {
			return i
		}
	}
	return -1
}

// allBlocksFull reports whether every relaxation-level block in use, 0..M,
// has reached cap (spec.md §4.4 step 6: "enough result slots are filled at
// all relaxation levels"). Blocks beyond M are never populated (missed can
// never exceed M), so they must not gate termination.
func allBlocksFull(blocks CandidateBlocks, m, cap int) bool {
	for i := 0; i <= m; i++ {
		if len(blocks[i]) < cap {
			return false
		}
	}
	return true
}

// nthHighestCurDoc returns the (m+1)-th highest current docnum among terms'
// curdoc_ranking (spec.md §4.4 step 2), and whether that pivot is exhausted
// (i.e. at least m+1 terms have run out of postings).
func nthHighestCurDoc(terms []*SAATNode, m int) (uint32, bool) {
	docs := make([]uint32, 0, len(terms))
	for _, t := range terms {
		docs = append(docs, t.CurDoc())
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i] > docs[j] })
	if m >= len(docs) {
		m = len(docs) - 1
	}
	if m < 0 || docs[m] == curdocExhausted {
		return 0, true
	}
	return docs[m], false
}
