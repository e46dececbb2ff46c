package qbasher

// ═══════════════════════════════════════════════════════════════════════════════
// CORE CONSTANTS
// ═══════════════════════════════════════════════════════════════════════════════
// These come from the original index-format and query-engine limits: a query
// tree can hold at most MaxWordsInQuery top-level terms (their match bitmap is
// carried in a single uint32), relaxation tolerates at most MaxRelax missing
// terms, and ranking/classification each combine a small fixed number of
// linear coefficients.
// ═══════════════════════════════════════════════════════════════════════════════

const (
	MaxWordsInQuery = 32  // terms-matched bitmap is a uint32
	MaxRelax        = 4   // relaxation_level in [0, MaxRelax]
	FeatureVecLen   = 9   // classifier feature vector length
	NumRankCoeffs   = 8   // alpha..theta
	NumClassCoeffs  = 3   // chi, psi, omega
	Epsilon         = 1e-6
	MaxQueryLine    = 4097

	ElapsedMsecBuckets = 1000

	PartialPrefixChar = '/'
	RankOnlyChar      = '~'
	LinePrefixChar    = '>'
	QueryMetaChars    = "%\"[]~/"

	// Doctable bit-field widths; must sum to 64 (validated at load, see doctable.go).
	DocLenBits    = 8
	DocOffsetBits = 40
	DocScoreBits  = 8
	DocBloomBits  = 8

	DocLenMax = (1 << DocLenBits) - 1

	// Vocab record layout.
	VocabMaxTermLen  = 63
	VocabOccBytes    = 5
	VocabQIDFBytes   = 1
	VocabPayloadSize = 6

	// Inverted-file skip-block bit widths (see GLOSSARY: skip-block macro fields).
	SkipLastDocBits = 35
	SkipCountBits   = 11
	SkipLengthBits  = 14
	SkipSentinel    = 0xFF // a byte value that can never begin a valid vbyte/wpos pair in practice

	// BM25 tuning (spec.md §4.5).
	BM25K1 = 2.0
	BM25B  = 0.75

	IndexFormatMagic = "QBASHER-GO-SAAT-1" // compile-time format identifier, §4.1/§6
)

// MatchFlag is the classifier-mode match-type bitmap (spec.md §4.5).
type MatchFlag byte

const (
	MatchExact MatchFlag = 1 << iota
	MatchPhrase
	MatchSequence
	MatchAnd
	MatchRelax1
	MatchRelax2
)

// OpKind names the eight deterministic cost-counted operations (spec.md §5,
// original_source/src/qbashq-lib/QBASHQ.h's op_count_t / COUNT_* enum).
type OpKind int

const (
	OpDecompressPosting OpKind = iota
	OpSkip
	OpCandidate
	OpScore
	OpPartialCheck
	OpRankOnlyCheck
	OpTermLookup
	OpBloomCheck
	numOpKinds
)

func (k OpKind) String() string {
	switch k {
	case OpDecompressPosting:
		return "decompress_posting"
	case OpSkip:
		return "skip"
	case OpCandidate:
		return "candidate"
	case OpScore:
		return "score"
	case OpPartialCheck:
		return "partial_check"
	case OpRankOnlyCheck:
		return "rank_only_check"
	case OpTermLookup:
		return "term_lookup"
	case OpBloomCheck:
		return "bloom_check"
	default:
		return "unknown"
	}
}

// defaultOpCost gives every op kind its deterministic unit cost (spec.md §5:
// "kilo-ops... each with a configured unit cost"). Options has no per-op
// override; NewCostBudget always starts from this table.
var defaultOpCost = [numOpKinds]int{
	OpDecompressPosting: 1,
	OpSkip:               1,
	OpCandidate:          2,
	OpScore:              4,
	OpPartialCheck:       3,
	OpRankOnlyCheck:      3,
	OpTermLookup:         2,
	OpBloomCheck:         1,
}
