package qbasher

import (
	"strconv"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════════
// MULTI-QUERY ORCHESTRATION (C6)
// ═══════════════════════════════════════════════════════════════════════════════
// spec.md §4.6/§9: a query variant is up to four TAB-separated fields
// ("query<TAB>options<TAB>weight<TAB>post_test"), run against the index
// with its own copy-on-write options overlay (options.go's Overlay), its
// score scaled by weight, and an optional post_test (">N" or ">H<" -
// spec.md GLOSSARY and SPEC_FULL.md §D.3) that can end the whole multi-query
// early. ParseQueryLine turns one input line into a plan of exactly one
// variant; the state and buffer below iterate over however many variants a
// plan holds. Per §9's redesign note, book-keeping is split
// into three pieces so none of them grows into a god-struct: a static
// QueryPlan (parsed once), per-variant MultiQueryState (mutated while
// iterating), and a shared OutputBuffer (the single place results land).
// ═══════════════════════════════════════════════════════════════════════════════

// QueryVariant is one parsed TAB-separated field group of a multi-query line.
type QueryVariant struct {
	QueryText string
	OptionsOverlay string
	Weight    float64
	PostTest  string // "" (none), ">N" (count threshold), ">H<" (score threshold)
}

// QueryPlan is the immutable, parsed form of a multi-query line.
type QueryPlan struct {
	Variants []QueryVariant
}

// ParseQueryLine splits a raw query line into its variant plan, which always
// holds exactly one variant. A line with no embedded TABs is a variant with
// default weight 1 and no overlay.
func ParseQueryLine(line string) QueryPlan {
	fields := strings.Split(line, "\t")
	if len(fields) == 1 {
		return QueryPlan{Variants: []QueryVariant{{QueryText: fields[0], Weight: 1}}}
	}
	v := QueryVariant{QueryText: fields[0], Weight: 1}
	if len(fields) > 1 {
		v.OptionsOverlay = fields[1]
	}
	if len(fields) > 2 {
		if w, err := strconv.ParseFloat(fields[2], 64); err == nil {
			v.Weight = w
		}
	}
	if len(fields) > 3 {
		v.PostTest = fields[3]
	}
	return QueryPlan{Variants: []QueryVariant{v}}
}

// MultiQueryState tracks the mutable progress of iterating a QueryPlan: the
// index of the next variant to try, the running highest score (feeding
// classify.go's ShouldStopEarly and the ">H<" post-test), and whether
// iteration has been stopped early.
type MultiQueryState struct {
	Plan              QueryPlan
	NextVariant       int
	HighestScoreSoFar float64
	Stopped           bool
}

// NewMultiQueryState begins iteration of plan.
func NewMultiQueryState(plan QueryPlan) *MultiQueryState {
	return &MultiQueryState{Plan: plan}
}

// HasNext reports whether another variant remains to run.
func (s *MultiQueryState) HasNext() bool {
	return !s.Stopped && s.NextVariant < len(s.Plan.Variants)
}

// Next returns the next variant to run and its resolved (cloned) options.
func (s *MultiQueryState) Next(base *Options) (QueryVariant, *Options, error) {
	v := s.Plan.Variants[s.NextVariant]
	s.NextVariant++
	opts, err := base.Overlay(v.OptionsOverlay)
	return v, opts, err
}

// PostTestPasses evaluates a variant's post_test against the results it
// just produced (SPEC_FULL.md §D.3: ">N" compares result count, ">H<"
// compares against the cumulative highest score so far).
func (s *MultiQueryState) PostTestPasses(v QueryVariant, resultCount int, topScore float64) bool {
	if v.PostTest == "" {
		return true
	}
	if v.PostTest == ">H<" {
		return topScore > s.HighestScoreSoFar
	}
	if strings.HasPrefix(v.PostTest, ">") {
		if n, err := strconv.Atoi(strings.TrimPrefix(v.PostTest, ">")); err == nil {
			return resultCount > n
		}
	}
	return true
}

// RecordVariantResult updates HighestScoreSoFar and stops the plan early
// when classify.go's ShouldStopEarly decides no further variant can help.
func (s *MultiQueryState) RecordVariantResult(opts *Options, topScore float64) {
	if topScore > s.HighestScoreSoFar {
		s.HighestScoreSoFar = topScore
	}
	remaining := len(s.Plan.Variants) - s.NextVariant
	if opts.ClassifierMode != 0 && ShouldStopEarly(opts, s.HighestScoreSoFar, remaining) {
		s.Stopped = true
	}
}

// OutputBuffer accumulates weighted, merged candidates across every variant
// of a multi-query, as the single place results land (spec.md §9's
// output-buffer split).
type OutputBuffer struct {
	results []Candidate
}

// Merge appends a variant's candidates after applying its weight.
func (b *OutputBuffer) Merge(variant QueryVariant, cands []Candidate) {
	for _, c := range cands {
		c.Score *= variant.Weight
		b.results = append(b.results, c)
	}
}

// Finalize sorts (descending score), applies duplicate_handling, then
// truncates to maxToShow, returning the final display-ready result set.
func (b *OutputBuffer) Finalize(opts *Options, keyFn func(Candidate) string) []Candidate {
	sortCandidatesDescending(b.results)
	deduped := DedupCandidates(opts.DuplicateHandling, b.results, keyFn)
	if opts.MaxToShow > 0 && len(deduped) > opts.MaxToShow {
		deduped = deduped[:opts.MaxToShow]
	}
	return deduped
}

func sortCandidatesDescending(c []Candidate) {
	// insertion sort: result sets are bounded by MaxCandidates/pq and already
	// mostly-sorted per variant, matching the teacher's preference for the
	// simplest structure that fits the expected size (see topk.go).
	for i := 1; i < len(c); i++ {
		for j := i; j > 0 && c[j].Score > c[j-1].Score; j-- {
			c[j], c[j-1] = c[j-1], c[j]
		}
	}
}
