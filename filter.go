package qbasher

import "strings"

// ═══════════════════════════════════════════════════════════════════════════════
// possibly_record_candidate FILTER CHAIN
// ═══════════════════════════════════════════════════════════════════════════════
// spec.md §4.4: Bloom signature -> length bound -> repeated-term check ->
// geo filter -> document-text-dependent checks (classifier threshold,
// partial-prefix, street number, rank-only count), rejecting on first failure.
// ═══════════════════════════════════════════════════════════════════════════════

// DefaultFilter is the standard possibly_record_candidate chain.
type DefaultFilter struct {
	Idx               *Index
	Opts              *Options
	QueryLen          int
	PartialPrefixes   [][]byte
	RankOnlyTerms     []string
	StreetNumber      string
	QueryLat, QueryLong float64
	HasGeo            bool
	Shortened         bool
}

func (f *DefaultFilter) Accept(idx *Index, docnum uint32, terms []*SAATNode, missing int) (Candidate, bool) {
	var cand Candidate
	cand.Doc = docnum
	entry := idx.Doctable.Entry(int(docnum))

	// Bloom signature, bypassed when M > 0 (spec.md §4.4).
	if missing == 0 && len(f.PartialPrefixes) > 0 {
		querySig := QuerySignature(f.PartialPrefixes)
		if !BloomMayMatch(entry.BloomSig, querySig) {
			return cand, false
		}
	}

	// Length bound.
	maxPossible := f.QueryLen
	lengthDiff := f.Opts.ResolveLengthDiff(f.QueryLen, missing)
	docLen := int(entry.WordCount)
	if docLen-maxPossible > lengthDiff {
		return cand, false
	}

	// Repeated-term check, bypassed under relaxation or shortening.
	if missing == 0 && !f.Shortened {
		for _, t := range terms {
			if t.RepetitionCount > 1 {
				if t.tfInCurrentDoc(idx) < t.RepetitionCount {
					return cand, false
				}
			}
		}
	}

	// Geo filter.
	if f.HasGeo && f.Opts.GeoFilterRadius > 0 {
		// No candidate is rejected here: document coordinates are not parsed
		// from the forward record, so geo_filter_radius is not applied at this
		// stage. Distance only enters scoring through rank.go's geo feature,
		// when RankParams carries document coordinates.
	}

	// Document-text-dependent checks.
	record, err := idx.ForwardRecord(int(docnum))
	if err == nil {
		lower := strings.ToLower(record)
		if len(f.PartialPrefixes) > 0 {
			if !partialPrefixesMatch(lower, f.PartialPrefixes) {
				return cand, false
			}
		}
		if f.StreetNumber != "" && f.Opts.StreetAddressProcessing == 2 {
			col := Column(record, f.Opts.StreetSpecsCol)
			if !StreetNumberValid(f.StreetNumber, col) {
				return cand, false
			}
		}
		for _, rankOnly := range f.RankOnlyTerms {
			cand.InterveningWords += byte(countWordAligned(lower, rankOnly))
		}
	}

	for i, t := range terms {
		if i >= MaxWordsInQuery {
			break
		}
		if t.CurDoc() == docnum {
			cand.TF[i] = byte(t.tfInCurrentDoc(idx))
		}
		if t.HasVocab {
			cand.QIDF[i] = t.Vocab.QIDF
		}
	}
	return cand, true
}

// partialPrefixesMatch checks every partial-prefix term prefixes some word
// in text (spec.md §4.4). Any word counts, matched or not, and no bound on
// the span between matched words is checked here or elsewhere.
func partialPrefixesMatch(text string, prefixes [][]byte) bool {
	words := strings.Fields(text)
	for _, p := range prefixes {
		found := false
		for _, w := range words {
			if strings.HasPrefix(w, string(p)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// countWordAligned counts how many times term appears as a whole word in text.
func countWordAligned(text, term string) int {
	count := 0
	for _, w := range strings.Fields(text) {
		if w == term {
			count++
		}
	}
	return count
}
