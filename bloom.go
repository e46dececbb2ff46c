package qbasher

import "github.com/RoaringBitmap/roaring"

// ═══════════════════════════════════════════════════════════════════════════════
// BLOOM PRE-FILTER
// ═══════════════════════════════════════════════════════════════════════════════
// Generalized from Zeeeepa-blaze/index.go's DocBitmaps map[string]*roaring.Bitmap
// (one bitmap per indexed term): here there is one roaring bitmap per Bloom
// signature bit, built once at load from every document's doctable signature
// byte. A document is a candidate at relaxation M=0 only if its signature bitmap
// membership is a superset of the query's signature bits (spec.md §4.4/Glossary).
// ═══════════════════════════════════════════════════════════════════════════════

// buildBloomIndex populates idx.bloomDocs: bloomDocs[bit] is the set of
// docnums whose doctable signature has that bit set.
func (idx *Index) buildBloomIndex() {
	for i := range idx.bloomDocs {
		idx.bloomDocs[i] = roaring.New()
	}
	for d := 0; d < idx.N; d++ {
		sig := idx.Doctable.Entry(d).BloomSig
		for bit := 0; bit < DocBloomBits; bit++ {
			if sig&(1<<uint(bit)) != 0 {
				idx.bloomDocs[bit].Add(uint32(d))
			}
		}
	}
}

// QuerySignature computes the Bloom signature for a set of partial-prefix
// query terms: one bit per term, derived from the first byte of the term
// modulo the signature width (spec.md §4.4). Deterministic and independent
// of term order (spec.md §8).
func QuerySignature(partialPrefixTerms [][]byte) byte {
	var sig byte
	for _, t := range partialPrefixTerms {
		if len(t) == 0 {
			continue
		}
		bit := int(t[0]) % DocBloomBits
		sig |= 1 << uint(bit)
	}
	return sig
}

// BloomMayMatch reports whether docSig is a superset of querySig — every bit
// set in the query signature is also set in the document signature.
func BloomMayMatch(docSig, querySig byte) bool {
	return docSig&querySig == querySig
}

// BloomCandidates returns the set of docnums whose signature is a superset of
// querySig, computed as the intersection of the per-bit bitmaps for every bit
// set in querySig (empty query signature matches every document).
func (idx *Index) BloomCandidates(querySig byte) *roaring.Bitmap {
	result := roaring.New()
	first := true
	for bit := 0; bit < DocBloomBits; bit++ {
		if querySig&(1<<uint(bit)) == 0 {
			continue
		}
		if first {
			result = idx.bloomDocs[bit].Clone()
			first = false
		} else {
			result.And(idx.bloomDocs[bit])
		}
	}
	if first {
		// querySig was zero: every document qualifies.
		for d := 0; d < idx.N; d++ {
			result.Add(uint32(d))
		}
	}
	return result
}
