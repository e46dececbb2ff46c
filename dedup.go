package qbasher

import "strings"

// ═══════════════════════════════════════════════════════════════════════════════
// DUPLICATE HANDLING
// ═══════════════════════════════════════════════════════════════════════════════
// spec.md §6 duplicate_handling + SPEC_FULL.md §D.2 Open Question decision:
// 0 = no dedup, 1 = drop adjacent duplicates only (cheap, single pass over
// an already-sorted result list), 2 = drop duplicates anywhere in the final
// merged list (global, transitive - needs a seen-set). Identity is the
// caller-supplied display key (keyFn), not docnum: duplicate_handling is
// about suppressing repeat *suggestions* (spec.md §4.6/NormalizeDedupKey's
// "same suggestion, different casing counts as a duplicate"), and the
// weighted multi-query merge in multiquery.go can legitimately produce two
// candidates for the same document under different option overlays whose
// display text nonetheless differs. The per-document roaring.Bitmap set
// membership in this file's sibling bloom.go serves a different concern
// (the M=0 Bloom pre-scan in candidate.go), not dedup.
// ═══════════════════════════════════════════════════════════════════════════════

// DedupCandidates applies duplicate_handling to a results slice assumed
// sorted in final display order (descending score). keyFn extracts the
// dedup key for a candidate (e.g. its display text).
func DedupCandidates(mode int, results []Candidate, keyFn func(Candidate) string) []Candidate {
	switch mode {
	case 0:
		return results
	case 1:
		return dedupAdjacent(results, keyFn)
	case 2:
		return dedupGlobal(results, keyFn)
	default:
		return results
	}
}

func dedupAdjacent(results []Candidate, keyFn func(Candidate) string) []Candidate {
	if len(results) == 0 {
		return results
	}
	out := results[:1]
	lastKey := keyFn(results[0])
	for _, c := range results[1:] {
		key := keyFn(c)
		if key == lastKey {
			continue
		}
		out = append(out, c)
		lastKey = key
	}
	return out
}

func dedupGlobal(results []Candidate, keyFn func(Candidate) string) []Candidate {
	seen := make(map[string]struct{}, len(results))
	out := results[:0]
	for _, c := range results {
		key := keyFn(c)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

// NormalizeDedupKey folds a display string to a stable comparison key
// (case-insensitive, whitespace-collapsed), matching the original engine's
// "same suggestion, different casing counts as a duplicate" behavior.
func NormalizeDedupKey(display string) string {
	return strings.Join(strings.Fields(strings.ToLower(display)), " ")
}
