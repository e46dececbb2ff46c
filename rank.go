package qbasher

import "math"

// ═══════════════════════════════════════════════════════════════════════════════
// RANKING (C5): 8-feature linear combination
// ═══════════════════════════════════════════════════════════════════════════════
// spec.md §4.5: normal-mode scoring is a weighted sum of 8 features -
// static score, phrase match, in-sequence match, primacy (early word
// position), length score, BM25, geo proximity, span tightness - each
// weighted by the normalized alpha..theta coefficients from options.go, with
// a 0.1^missing_terms penalty applied when the relaxed-AND engine had to
// drop top-level terms. Grounded on the BM25/feature-weighting shape of
// Zeeeepa-blaze/search.go's scoreDocument, retargeted from its 3-coefficient
// blend to the 8-feature vector of the original qbashq ranker.
// ═══════════════════════════════════════════════════════════════════════════════

const (
	featStatic = iota
	featPhrase
	featInSequence
	featPrimacy
	featLength
	featBM25
	featGeo
	featSpan
)

// RankParams bundles the per-query inputs the ranker needs beyond what's
// already in a Candidate.
type RankParams struct {
	Opts        *Options
	AvDocLen    float64
	N           int
	QueryLat    float64
	QueryLong   float64
	HasGeo      bool
	DocLat      float64
	DocLong     float64
	HasDocGeo   bool
	PhraseMatch bool
	InSequence  bool
}

// Score computes cand.FeatureVector and cand.Score in place, applying the
// relaxation penalty for any missing top-level terms (spec.md §4.5).
func Score(idx *Index, cand *Candidate, terms []*SAATNode, p RankParams) {
	p.Opts.NormalizeRankCoeffs()
	entry := idx.Doctable.Entry(int(cand.Doc))

	cand.FeatureVector[featStatic] = UnquantizeScore(entry.StaticScore)

	if p.PhraseMatch {
		cand.FeatureVector[featPhrase] = 1
	}
	if p.InSequence {
		cand.FeatureVector[featInSequence] = 1
	}

	cand.FeatureVector[featPrimacy] = primacyScore(terms)
	cand.FeatureVector[featLength] = lengthScore(int(entry.WordCount), len(terms), p.AvDocLen)
	cand.FeatureVector[featBM25] = bm25Score(cand, terms, int(entry.WordCount), p.AvDocLen, p.N)

	if p.HasGeo && p.HasDocGeo {
		d := HaversineKm(p.QueryLat, p.QueryLong, p.DocLat, p.DocLong)
		cand.FeatureVector[featGeo] = GeoScore(d, p.Opts.GeoFilterRadius)
	}

	cand.FeatureVector[featSpan] = spanScore(int(cand.InterveningWords), len(terms))

	score := p.Opts.Alpha*cand.FeatureVector[featStatic] +
		p.Opts.Beta*cand.FeatureVector[featPhrase] +
		p.Opts.Gamma*cand.FeatureVector[featInSequence] +
		p.Opts.Delta*cand.FeatureVector[featPrimacy] +
		p.Opts.Epsilon2*cand.FeatureVector[featLength] +
		p.Opts.Zeta*cand.FeatureVector[featBM25] +
		p.Opts.Eta*cand.FeatureVector[featGeo] +
		p.Opts.Theta*cand.FeatureVector[featSpan]

	if cand.MissingTerms > 0 {
		score *= math.Pow(0.1, float64(cand.MissingTerms))
	}
	cand.Score = score
}

// primacyScore rewards matches near the start of the document: the minimum
// word position across matched terms, normalized and inverted.
func primacyScore(terms []*SAATNode) float64 {
	best := -1
	for _, t := range terms {
		if t.Exhausted() {
			continue
		}
		wp := int(t.curWpos)
		if best < 0 || wp < best {
			best = wp
		}
	}
	if best < 0 {
		return 0
	}
	return 1.0 / float64(best+1)
}

// lengthScore penalizes documents far longer than the query relative to the
// collection average, so a short exact match outranks a long loose one.
func lengthScore(docLen, queryLen int, avDocLen float64) float64 {
	if avDocLen <= 0 {
		return 0
	}
	diff := math.Abs(float64(docLen-queryLen)) / avDocLen
	return math.Max(0, 1-diff)
}

// bm25Score sums the Okapi BM25 contribution of each matched term (spec.md
// §3's BM25K1/BM25B constants), using vocab IDF and the candidate's
// per-term TF/QIDF snapshot recorded by filter.go.
func bm25Score(cand *Candidate, terms []*SAATNode, docLen int, avDocLen float64, n int) float64 {
	if avDocLen <= 0 || n <= 0 {
		return 0
	}
	var sum float64
	for i, t := range terms {
		if i >= MaxWordsInQuery || !t.HasVocab {
			continue
		}
		tf := float64(cand.TF[i])
		if tf == 0 {
			continue
		}
		idf := IDF(cand.QIDF[i], n)
		norm := BM25K1 * (1 - BM25B + BM25B*float64(docLen)/avDocLen)
		sum += idf * (tf * (BM25K1 + 1)) / (tf + norm)
	}
	return sum
}

// spanScore rewards tight clustering of matched terms: fewer intervening
// non-matched words between the first and last match scores higher.
func spanScore(interveningWords, qwdCnt int) float64 {
	if qwdCnt <= 1 {
		return 1
	}
	return 1.0 / float64(1+interveningWords)
}
