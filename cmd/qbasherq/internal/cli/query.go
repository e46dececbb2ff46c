// Package cli wires qbasherq's library packages into the command-line
// surface: a single-query subcommand and a batch/worker-pool subcommand
// over a shared memory-mapped index.
package cli

import (
	"context"
	"log/slog"

	qbasher "github.com/qbasher/qbasherq"
)

// RunOneQuery executes one (possibly multi-variant) query line against idx
// and returns its formatted result lines, matching pool.go's QueryFunc
// signature so it can back both the single-shot "query" subcommand and the
// "serve" batch subcommand.
func RunOneQuery(ctx context.Context, idx *qbasher.Index, opts *qbasher.Options, line string) ([]string, error) {
	plan := qbasher.ParseQueryLine(line)
	state := qbasher.NewMultiQueryState(plan)
	var buf qbasher.OutputBuffer

	for state.HasNext() {
		variant, vopts, err := state.Next(opts)
		if err != nil {
			return nil, err
		}

		cands, topScore, err := runVariant(idx, vopts, variant.QueryText)
		if err != nil {
			return nil, err
		}
		passes := state.PostTestPasses(variant, len(cands), topScore)
		buf.Merge(variant, cands)
		state.RecordVariantResult(vopts, topScore)
		if !passes {
			break
		}
	}

	final := buf.Finalize(opts, func(c qbasher.Candidate) string {
		rec, err := idx.ForwardRecord(int(c.Doc))
		if err != nil {
			return ""
		}
		return qbasher.NormalizeDedupKey(qbasher.Column(rec, opts.DisplayCol))
	})

	lines := make([]string, 0, len(final))
	for _, c := range final {
		line, err := qbasher.FormatResult(idx, opts, c)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// runVariant tokenizes and runs a single query variant's relaxed-AND search,
// ranking every surviving candidate and returning them alongside the
// variant's top score (for multi-query post-tests).
func runVariant(idx *qbasher.Index, opts *qbasher.Options, queryText string) ([]qbasher.Candidate, float64, error) {
	text := queryText
	if opts.UseSubstitutions {
		rules := loadSubstitutionRules(opts, slog.Default())
		text = rules.Apply(opts.Language, text)
	}
	text, partialPrefixes := qbasher.ExtractPartialPrefixes(text, opts.AutoPartials)
	words := idx.Tokenize(text, opts.ConflateAccents)
	if len(words) == 0 && len(partialPrefixes) == 0 {
		return nil, 0, nil
	}
	if len(words) > qbasher.MaxWordsInQuery {
		words = words[:qbasher.MaxWordsInQuery]
	}

	leaves := make([]*qbasher.SAATNode, 0, len(words))
	for _, w := range words {
		leaves = append(leaves, qbasher.BuildLeaf(idx, w))
	}
	leaves = qbasher.CollapseRepetitions(leaves)
	if len(leaves) == 0 {
		// Nothing to pivot the relaxed-AND scan on — an all-partial-prefix
		// query has no top-level term with a postings list.
		return nil, 0, nil
	}

	budget := qbasher.NewCostBudget(opts)
	filter := &qbasher.DefaultFilter{
		Idx:             idx,
		Opts:            opts,
		QueryLen:        len(leaves) + len(partialPrefixes),
		PartialPrefixes: partialPrefixes,
	}
	params := qbasher.RelaxedAndParams{
		MaxRelax:      opts.RelaxationLevel,
		MaxCandidates: opts.MaxCandidates,
		QuerySig:      qbasher.QuerySignature(partialPrefixes),
		Filter:        filter,
		Budget:        budget,
	}
	blocks := qbasher.RunRelaxedAnd(idx, leaves, params)
	queryLen := len(leaves) + len(partialPrefixes)

	topK := qbasher.NewTopK(opts.MaxToShow)
	rankParams := qbasher.RankParams{
		Opts:      opts,
		AvDocLen:  idx.AvDocLen,
		N:         idx.N,
		HasGeo:    opts.GeoFilterRadius > 0,
		QueryLat:  opts.LocationLat,
		QueryLong: opts.LocationLong,
	}
	var top float64
	for _, block := range blocks {
		for _, c := range block {
			cand := c
			qbasher.Score(idx, &cand, leaves, rankParams)
			if opts.ClassifierMode != 0 {
				docLen := int(idx.Doctable.Entry(int(cand.Doc)).WordCount)
				score := qbasher.ClassifyScore(opts, &cand, queryLen, docLen)
				if !qbasher.ClassifierAccepts(opts, score, queryLen) {
					continue
				}
			}
			qbasher.AssignMatchFlags(&cand, queryLen, false, false)
			topK.Insert(cand)
			if cand.Score > top {
				top = cand.Score
			}
		}
	}
	return topK.Results(), top, nil
}
