package qbasher

import "strings"

// ═══════════════════════════════════════════════════════════════════════════════
// CLASSIFIER (C5): DOLM / Jaccard scoring
// ═══════════════════════════════════════════════════════════════════════════════
// spec.md §4.5/§4.6: classifier_mode selects among four scoring variants that
// weigh a candidate's matched-word overlap with the document (the Dice/
// Overlap/Length-normalized Match family) and combine it with query-segment
// intent via segment_intent_multiplier; classifier_threshold, stop_thresh1,
// and stop_thresh2 gate per-candidate acceptance and early multi-query
// termination. Grounded on classification.h's function names
// (classification_score/apply_*_specific_rules), expressed as a single
// scoring function plus a rule-table, matching the teacher's preference for
// small composable functions over one large procedure.
// ═══════════════════════════════════════════════════════════════════════════════

// ClassifyScore computes a [0,1] classification confidence for a candidate
// given the query's term count and the document word count, per the
// classifier_mode selected in opts.
func ClassifyScore(opts *Options, cand *Candidate, queryLen, docLen int) float64 {
	matched := queryLen - cand.MissingTerms
	if matched <= 0 || queryLen <= 0 {
		return 0
	}
	var overlap float64
	switch opts.ClassifierMode {
	case 1: // Dice coefficient: 2*|A∩B| / (|A|+|B|)
		overlap = 2 * float64(matched) / float64(queryLen+docLen)
	case 2: // Overlap coefficient: |A∩B| / min(|A|,|B|)
		denom := queryLen
		if docLen < denom {
			denom = docLen
		}
		overlap = float64(matched) / float64(denom)
	case 3: // Jaccard: |A∩B| / |A∪B|
		union := queryLen + docLen - matched
		if union <= 0 {
			return 0
		}
		overlap = float64(matched) / float64(union)
	default: // mode 4 or unset: plain match fraction
		overlap = float64(matched) / float64(queryLen)
	}

	score := opts.Chi*overlap + opts.Psi*cand.FeatureVector[featStatic] + opts.Omega*cand.FeatureVector[featBM25]
	score *= opts.SegmentIntentMultiplier
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}

// ClassifierAccepts reports whether a candidate's classification score
// clears the configured threshold and the query's word count (queryLen)
// falls in the configured min/max range (spec.md §6 classifier_min_words/max_words).
func ClassifierAccepts(opts *Options, score float64, queryLen int) bool {
	if queryLen < opts.ClassifierMinWords || queryLen > opts.ClassifierMaxWords {
		return false
	}
	return score >= opts.ClassifierThreshold
}

// ShouldStopEarly implements the two classifier early-termination rules
// across multi-query variants: stop once the highest score seen so far
// reaches stop_thresh1 (confident accept, no later variant can do better),
// or once it is below stop_thresh2 with no variants left to try (confident
// reject).
func ShouldStopEarly(opts *Options, highestScoreSoFar float64, variantsRemaining int) bool {
	if highestScoreSoFar >= opts.ClassifierStopThresh1 {
		return true
	}
	if variantsRemaining == 0 && highestScoreSoFar < opts.ClassifierStopThresh2 {
		return true
	}
	return false
}

// AssignMatchFlags sets cand.MatchFlags from the match characteristics
// already recorded on it and the SAAT terms (spec.md §3 MatchFlag bits).
func AssignMatchFlags(cand *Candidate, queryLen int, phraseMatch, inSequence bool) {
	var flags MatchFlag
	if cand.MissingTerms == 0 {
		flags |= MatchAnd
		if phraseMatch {
			flags |= MatchPhrase
		}
		if inSequence {
			flags |= MatchSequence
		}
		if phraseMatch && queryLen > 0 && cand.TermsMatchedBits == (1<<uint(queryLen))-1 {
			flags |= MatchExact
		}
	}
	switch cand.MissingTerms {
	case 1:
		flags |= MatchRelax1
	case 2:
		flags |= MatchRelax2
	}
	cand.MatchFlags = flags
}

// classifierSegmentTokens splits the classifier_segment option's
// colon-separated rule-set name into tokens, used by apply_*_specific_rules
// style segment hooks (e.g. "lyrics:carousel").
func classifierSegmentTokens(segment string) []string {
	if segment == "" {
		return nil
	}
	return strings.Split(segment, ":")
}
