package qbasher

import (
	"strings"
	"unicode"

	"github.com/coregx/coregex"
)

// ═══════════════════════════════════════════════════════════════════════════════
// QUERY PREPROCESSING
// ═══════════════════════════════════════════════════════════════════════════════
// Adapted from Zeeeepa-blaze/analyzer.go's filter pipeline
// (tokenize -> lowercaseFilter -> stopwordFilter -> lengthFilter -> stemmerFilter).
// The shape — a short chain of small, composable token transforms — is kept.
// The content is not: stopword removal and stemming would search for text the
// offline-built vocabulary never stored (spec.md §3/§8's exact-match
// invariant), so those stages are replaced with diacritic folding, regex
// substitution rules, and the maxwellize micro-rewrites spec.md §9 calls for.
// ═══════════════════════════════════════════════════════════════════════════════

// SubstitutionRule is one compiled regex -> replacement rule, grouped by
// two-letter ISO 639-1 language (spec.md §6 "language").
type SubstitutionRule struct {
	Pattern     *coregex.Regex
	Replacement string
}

// SubstitutionRules maps a language code to its compiled rule set, built once
// at startup and read-only thereafter (spec.md §5).
type SubstitutionRules map[string][]SubstitutionRule

// CompileSubstitutionRules compiles a set of "pattern<TAB>replacement" lines
// (one per language block introduced by a "#lang xx" line) into a
// SubstitutionRules table. A rule that fails to compile is a warning, not a
// fatal error (spec.md §7): it is dropped and processing continues.
func CompileSubstitutionRules(text string, onWarning func(error)) SubstitutionRules {
	rules := SubstitutionRules{}
	lang := "en"
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, "#comment") {
			continue
		}
		if strings.HasPrefix(line, "#lang ") {
			lang = strings.TrimSpace(strings.TrimPrefix(line, "#lang "))
			continue
		}
		pattern, repl, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		re, err := coregex.Compile(pattern)
		if err != nil {
			if onWarning != nil {
				onWarning(warnf(CategoryUnknown, 2, "substitution rule %q failed to compile: %v", pattern, err))
			}
			continue
		}
		rules[lang] = append(rules[lang], SubstitutionRule{Pattern: re, Replacement: repl})
	}
	return rules
}

// Apply runs every rule for lang over s in order, returning the rewritten
// string. Unknown languages leave s unchanged.
func (r SubstitutionRules) Apply(lang, s string) string {
	for _, rule := range r[lang] {
		s = replaceAll(rule.Pattern, s, rule.Replacement)
	}
	return s
}

// replaceAll replaces every non-overlapping match of re in s with repl.
// coregex (v0.1.0 in go.mod) has no replace function of its own (no capture groups
// either), so this walks matches via FindIndex the same way the package's
// own FindAll does, substituting repl literally at each match.
func replaceAll(re *coregex.Regex, s, repl string) string {
	b := []byte(s)
	var out []byte
	pos := 0
	for pos <= len(b) {
		loc := re.FindIndex(b[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		out = append(out, b[pos:start]...)
		out = append(out, repl...)
		if end > pos {
			pos = end
		} else {
			// Empty match: copy one byte forward to avoid looping forever.
			if pos < len(b) {
				out = append(out, b[pos])
			}
			pos++
		}
	}
	if pos < len(b) {
		out = append(out, b[pos:]...)
	}
	return string(out)
}

// Tokenize runs the full query preprocessing pipeline (case/diacritic
// folding, maxwellize micro-rewrites, then token-break splitting) used by
// the query engine entry point, exported so cmd/qbasherq can run the same
// pipeline the library uses internally.
func (idx *Index) Tokenize(text string, conflateAccents bool) []string {
	text = foldCase(text, conflateAccents)
	text = maxwellize(text)
	return idx.tokenize(text)
}

// tokenize splits raw text on any byte in idx's combined token-break table,
// and also on any rune that is neither a Unicode letter nor a digit (the
// boundary Zeeeepa-blaze's tokenize used), so the index's declared breaker
// set extends that test rather than replacing it.
func (idx *Index) tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		if r < 256 && idx.TokenBreak[r] {
			return true
		}
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// foldCase lowercases and, if conflateAccents is set, strips diacritics.
// stripDiacritics never increases length; strings.ToLower can lengthen the
// UTF-8 encoding of a few runes (e.g. U+023A), so the result is not
// guaranteed to be shorter than or equal to s in bytes.
func foldCase(s string, conflateAccents bool) string {
	s = strings.ToLower(s)
	if conflateAccents {
		s = stripDiacritics(s)
	}
	return s
}

var diacriticFold = map[rune]rune{
	'à': 'a', 'á': 'a', 'â': 'a', 'ã': 'a', 'ä': 'a', 'å': 'a',
	'è': 'e', 'é': 'e', 'ê': 'e', 'ë': 'e',
	'ì': 'i', 'í': 'i', 'î': 'i', 'ï': 'i',
	'ò': 'o', 'ó': 'o', 'ô': 'o', 'õ': 'o', 'ö': 'o',
	'ù': 'u', 'ú': 'u', 'û': 'u', 'ü': 'u',
	'ñ': 'n', 'ç': 'c', 'ý': 'y',
}

func stripDiacritics(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if folded, ok := diacriticFold[r]; ok {
			r = folded
		}
		b.WriteRune(r)
	}
	return b.String()
}

// maxwellize applies the named micro-rewrites (spec.md §9): strip a
// trailing possessive "'s" from each word and collapse literal "%20" to a
// space. Each rewrite only ever shortens or leaves the string unchanged.
func maxwellize(s string) string {
	s = strings.ReplaceAll(s, "%20", " ")
	words := strings.Fields(s)
	for i, w := range words {
		if strings.HasSuffix(w, "'s") {
			words[i] = strings.TrimSuffix(w, "'s")
		}
	}
	return strings.Join(words, " ")
}

// ExtractPartialPrefixes pulls the partial-prefix terms (spec.md §6: a
// leading '/' marks word-prefix rather than exact-term matching) out of a
// whitespace-split query, optionally promoting the last remaining word too
// when autoPartials is set (auto_partials option). It returns the remaining
// text for ordinary top-level tokenization and the lowercased partial-prefix
// terms, used both by filter.go's document-text check and bloom.go's query
// signature.
func ExtractPartialPrefixes(text string, autoPartials bool) (string, [][]byte) {
	words := strings.Fields(text)
	var kept []string
	var prefixes [][]byte
	marker := string(PartialPrefixChar)
	for _, w := range words {
		if strings.HasPrefix(w, marker) && len(w) > len(marker) {
			prefixes = append(prefixes, []byte(strings.ToLower(strings.TrimPrefix(w, marker))))
			continue
		}
		kept = append(kept, w)
	}
	if autoPartials && len(kept) > 1 {
		last := len(kept) - 1
		prefixes = append(prefixes, []byte(strings.ToLower(kept[last])))
		kept = kept[:last]
	}
	return strings.Join(kept, " "), prefixes
}

// shortenQuery implements query_shortening_threshold (spec.md §6): if the
// query has strictly more distinct top-level terms than the threshold, the
// most-frequent terms beyond the threshold are demoted — in this
// implementation that means dropped from the top-level term list, letting a
// shortened candidate generation fall back to the remaining, more selective
// terms. A threshold of 0 disables shortening.
func shortenQuery(terms []string, freq func(string) int, threshold int) (shortened []string, codes []int) {
	if threshold <= 0 || len(terms) <= threshold {
		return terms, nil
	}
	type scored struct {
		term string
		idx  int
		f    int
	}
	scoredTerms := make([]scored, len(terms))
	for i, t := range terms {
		scoredTerms[i] = scored{term: t, idx: i, f: freq(t)}
	}
	// Keep the `threshold` rarest terms (ascending frequency = most selective).
	for i := 0; i < len(scoredTerms); i++ {
		for j := i + 1; j < len(scoredTerms); j++ {
			if scoredTerms[j].f < scoredTerms[i].f {
				scoredTerms[i], scoredTerms[j] = scoredTerms[j], scoredTerms[i]
			}
		}
	}
	kept := scoredTerms[:threshold]
	dropped := scoredTerms[threshold:]
	result := make([]string, 0, threshold)
	for _, s := range kept {
		result = append(result, s.term)
	}
	for _, s := range dropped {
		codes = append(codes, s.idx)
	}
	return result, codes
}
