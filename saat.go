package qbasher

import "sort"

// ═══════════════════════════════════════════════════════════════════════════════
// SAAT TREE (C3) — Suggestion-At-A-Time postings evaluation
// ═══════════════════════════════════════════════════════════════════════════════
// Rewritten from Zeeeepa-blaze/query.go's fluent QueryBuilder
// (Term/Phrase/And/Or/Group/Execute over roaring.Bitmap). The fluent,
// composable shape survives — BuildLeaf/BuildPhrase/BuildDisjunction still
// assemble "word, word, phrase, disjunction" left to right — but the engine underneath
// is completely different: instead of O(1) bitmap intersection, each leaf
// holds a live cursor into a real mmap'd postings list (spec.md §4.3,
// §9's "Word | Phrase(children) | Disjunction(children)" redesign note).
// ═══════════════════════════════════════════════════════════════════════════════

type SAATNodeType int

const (
	SAATWord SAATNodeType = iota
	SAATPhrase
	SAATDisjunction
)

const curdocExhausted = ^uint32(0) // IHUGE/CURDOC_EXHAUSTED sentinel, original_source/src/qbashq-lib/saat.h

// SAATNode is one node of a per-query SAAT tree (spec.md §3 "SAAT control
// block"). Parents own their children; leaf cursors borrow the process-wide
// mmap'd inverted file for their whole lifetime (spec.md §9).
type SAATNode struct {
	Type     SAATNodeType
	Children []*SAATNode

	// Leaf-only fields.
	Term            string
	Vocab           VocabEntry
	HasVocab        bool
	QIDF            float64
	TF              int // occurrences within current doc, filled by tfInCurrentDoc
	RepetitionCount int // how many times this term appears at top level
	PartialPrefix   bool
	RankOnly        bool

	// Leaf cursor state.
	curDoc    uint32
	curWpos   byte
	ordinal   int // posting ordinal within the list
	exhausted bool
	listStart int // byte offset of the first posting in invf
	listPos   int // current decode offset in invf

	// Phrase-only: position of this child within the phrase, 0-based.
	PhraseOffset int
}

// BuildLeaf constructs a WORD leaf for term, resolving it against idx's
// vocabulary (spec.md §4.2/§4.3). An unknown term produces an immediately
// exhausted leaf rather than an error — spec.md §7: unknown terms make the
// query return nothing, not fail.
func BuildLeaf(idx *Index, term string) *SAATNode {
	n := &SAATNode{Type: SAATWord, Term: term, RepetitionCount: 1}
	entry, ok := idx.Vocab.Lookup([]byte(term))
	if !ok {
		n.exhausted = true
		return n
	}
	n.Vocab = entry
	n.HasVocab = true
	n.QIDF = IDF(entry.QIDF, idx.N)
	n.resetCursor(idx)
	return n
}

// BuildPhrase wraps children (already built WORD/DISJUNCTION leaves) into a
// PHRASE node, assigning each child's position within the phrase.
func BuildPhrase(children ...*SAATNode) *SAATNode {
	for i, c := range children {
		c.PhraseOffset = i
	}
	return &SAATNode{Type: SAATPhrase, Children: children}
}

// BuildDisjunction wraps children into a DISJUNCTION node.
func BuildDisjunction(children ...*SAATNode) *SAATNode {
	return &SAATNode{Type: SAATDisjunction, Children: children}
}

// CollapseRepetitions merges top-level WORD leaves that repeat the same term,
// incrementing the first occurrence's RepetitionCount and dropping the rest
// (spec.md §4.3: "a preprocessor collapses repeated top-level words").
func CollapseRepetitions(nodes []*SAATNode) []*SAATNode {
	seen := map[string]*SAATNode{}
	var out []*SAATNode
	for _, n := range nodes {
		if n.Type == SAATWord {
			if first, ok := seen[n.Term]; ok {
				first.RepetitionCount++
				continue
			}
			seen[n.Term] = n
		}
		out = append(out, n)
	}
	return out
}

// SortByFrequencyAscending orders leaves by ascending collection frequency —
// used both to pick a phrase's anchor (spec.md §4.3) and to build fpermute
// for relaxed-AND (spec.md §4.4).
func SortByFrequencyAscending(nodes []*SAATNode) []*SAATNode {
	sorted := append([]*SAATNode(nil), nodes...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].collectionFrequency() < sorted[j].collectionFrequency()
	})
	return sorted
}

func (n *SAATNode) collectionFrequency() uint64 {
	switch n.Type {
	case SAATWord:
		return n.Vocab.Occurrence
	default:
		min := uint64(1) << 62
		for _, c := range n.Children {
			if f := c.collectionFrequency(); f < min {
				min = f
			}
		}
		if len(n.Children) == 0 {
			return 0
		}
		return min
	}
}

// resetCursor positions a WORD leaf's cursor at its first posting.
func (n *SAATNode) resetCursor(idx *Index) {
	if !n.HasVocab {
		n.exhausted = true
		return
	}
	if n.Vocab.Occurrence == 1 {
		docnum, wpos := n.Vocab.InlinePosting()
		n.curDoc = docnum
		n.curWpos = wpos
		n.exhausted = false
		return
	}
	n.listStart = int(n.Vocab.PayloadOffset())
	n.listPos = n.listStart
	n.curDoc = 0
	n.exhausted = false
	n.advanceRaw(idx) // prime the first posting
}

// CurDoc returns the node's current document number, or curdocExhausted.
func (n *SAATNode) CurDoc() uint32 {
	if n.exhausted {
		return curdocExhausted
	}
	switch n.Type {
	case SAATWord:
		return n.curDoc
	default:
		min := curdocExhausted
		for _, c := range n.Children {
			if d := c.CurDoc(); d < min {
				min = d
			}
		}
		return min
	}
}

func (n *SAATNode) Exhausted() bool { return n.CurDoc() == curdocExhausted }

// advanceRaw decodes the next posting of a WORD leaf's list (occurrence > 1
// case) directly from the mmap'd inverted file, transparently stepping over
// skip blocks (spec.md §4.3).
func (n *SAATNode) advanceRaw(idx *Index) {
	raw := idx.invf
	for {
		if n.listPos >= len(raw) {
			n.exhausted = true
			return
		}
		if isSkipSentinel(raw, n.listPos) {
			_, next := readSkipBlock(raw, n.listPos+1)
			n.listPos = next
			continue
		}
		wpos, gap, next := decodePosting(raw, n.listPos)
		n.listPos = next
		if n.ordinal == 0 {
			n.curDoc = uint32(gap - 1)
		} else if gap == 1 {
			// same document, next word position
		} else {
			n.curDoc += uint32(gap - 1)
		}
		n.curWpos = wpos
		n.ordinal++
		return
	}
}

// AdvanceWithinDoc returns true if the next posting for this leaf is in the
// same document as the current one, without crossing the document boundary
// (spec.md §4.3 advance_within_doc). Only meaningful for WORD leaves with
// occurrence > 1.
func (n *SAATNode) AdvanceWithinDoc(idx *Index) bool {
	if n.Type != SAATWord || n.exhausted || n.Vocab.Occurrence <= 1 {
		return false
	}
	doc := n.curDoc
	savedPos, savedOrdinal, savedWpos := n.listPos, n.ordinal, n.curWpos
	n.advanceRaw(idx)
	if !n.exhausted && n.curDoc == doc {
		return true
	}
	// Roll back: this posting belongs to the next document (or the list ended).
	n.listPos, n.ordinal, n.curWpos = savedPos, savedOrdinal, savedWpos
	n.curDoc = doc
	n.exhausted = false
	return false
}

// SkipTo advances the leaf (or, recursively, a phrase/disjunction node's
// children) to the first posting at docnum >= target. Returns 0 on exact
// doc hit, +1 if the cursor overshot target, -1 if exhausted
// (spec.md §4.3).
func (n *SAATNode) SkipTo(idx *Index, target uint32) int {
	switch n.Type {
	case SAATWord:
		return n.skipToWord(idx, target)
	case SAATDisjunction:
		return n.skipToDisjunction(idx, target)
	case SAATPhrase:
		return n.skipToPhrase(idx, target)
	}
	return -1
}

func (n *SAATNode) skipToWord(idx *Index, target uint32) int {
	if n.exhausted {
		return -1
	}
	if n.Vocab.Occurrence == 1 {
		if n.curDoc == target {
			return 0
		}
		if n.curDoc > target {
			return 1
		}
		n.exhausted = true
		return -1
	}
	for !n.exhausted && n.curDoc < target {
		n.advanceRaw(idx)
	}
	if n.exhausted {
		return -1
	}
	if n.curDoc == target {
		if n.RepetitionCount > 1 && n.tfInCurrentDoc(idx) < n.RepetitionCount {
			// Repetition filter: this doc doesn't have enough occurrences.
			n.advanceRaw(idx)
			return n.SkipTo(idx, target+1)
		}
		return 0
	}
	return 1
}

// tfInCurrentDoc peeks ahead within the current document counting postings,
// without losing the cursor position (spec.md §4.3 repetition handling).
func (n *SAATNode) tfInCurrentDoc(idx *Index) int {
	count := 1
	savedPos, savedOrdinal, savedWpos, savedDoc := n.listPos, n.ordinal, n.curWpos, n.curDoc
	for {
		if !n.AdvanceWithinDoc(idx) {
			break
		}
		count++
	}
	n.listPos, n.ordinal, n.curWpos, n.curDoc = savedPos, savedOrdinal, savedWpos, savedDoc
	n.TF = count
	return count
}

func (n *SAATNode) skipToDisjunction(idx *Index, target uint32) int {
	anyHit, anyOver := false, false
	for _, c := range n.Children {
		r := c.SkipTo(idx, target)
		if r == 0 {
			anyHit = true
		} else if r == 1 {
			anyOver = true
		}
	}
	if anyHit {
		return 0
	}
	if anyOver {
		return 1
	}
	return -1
}

// skipToPhrase implements the anchor-advance algorithm (spec.md §4.3): the
// rarest child is the anchor; every other child must land at
// anchor_wpos - anchor_offset + child_offset in the same doc, retrying by
// advancing the anchor within the document on failure.
func (n *SAATNode) skipToPhrase(idx *Index, target uint32) int {
	if len(n.Children) == 0 {
		return -1
	}
	anchor := n.anchorChild()
	r := anchor.SkipTo(idx, target)
	if r != 0 {
		return r
	}
	for {
		doc := anchor.CurDoc()
		if doc == curdocExhausted {
			return -1
		}
		anchorWpos := int(anchor.curWpos) - anchor.PhraseOffset
		ok := true
		for _, c := range n.Children {
			if c == anchor {
				continue
			}
			wantWpos := anchorWpos + c.PhraseOffset
			if !c.alignAtWordPos(idx, doc, wantWpos) {
				ok = false
				break
			}
		}
		if ok {
			return 0
		}
		if !anchor.AdvanceWithinDoc(idx) {
			// No more postings for the anchor in this doc; move to next doc.
			anchor.SkipTo(idx, doc+1)
			if anchor.Exhausted() {
				return -1
			}
			continue
		}
	}
}

// alignAtWordPos reports whether c has (or can find, by scanning postings
// within doc) a posting at exactly wordPos.
func (c *SAATNode) alignAtWordPos(idx *Index, doc uint32, wordPos int) bool {
	if wordPos < 0 || wordPos > 255 {
		return false
	}
	if c.SkipTo(idx, doc) != 0 {
		return false
	}
	if int(c.curWpos) == wordPos {
		return true
	}
	for c.AdvanceWithinDoc(idx) {
		if int(c.curWpos) == wordPos {
			return true
		}
	}
	return false
}

// anchorChild returns the phrase child with lowest collection frequency.
func (n *SAATNode) anchorChild() *SAATNode {
	best := n.Children[0]
	for _, c := range n.Children[1:] {
		if c.collectionFrequency() < best.collectionFrequency() {
			best = c
		}
	}
	return best
}
