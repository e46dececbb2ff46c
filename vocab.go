package qbasher

import (
	"bytes"
	"math"
	"sort"
)

// ═══════════════════════════════════════════════════════════════════════════════
// VOCABULARY LOOKUP (C2)
// ═══════════════════════════════════════════════════════════════════════════════
// The vocab file is a sorted array of fixed-size records (spec.md §3/§4.2):
// a null-terminated term (VocabMaxTermLen+1 bytes), 5 bytes of occurrence
// count, 1 byte of quantized IDF, and 6 bytes of payload. When occurrence
// count is exactly 1 the payload is the single posting (docnum, word
// position) inline; otherwise it is a byte offset into the inverted file.
// ═══════════════════════════════════════════════════════════════════════════════

const vocabRecordSize = VocabMaxTermLen + 1 + VocabOccBytes + VocabQIDFBytes + VocabPayloadSize

// VocabEntry is the unpacked form of one vocab record.
type VocabEntry struct {
	Term       []byte
	Occurrence uint64 // up to 40 bits
	QIDF       byte
	Payload    [VocabPayloadSize]byte
}

// InlinePosting decodes the payload as a single inline posting, valid only
// when Occurrence == 1.
func (v VocabEntry) InlinePosting() (docnum uint32, wordPos byte) {
	// payload: 1 byte word position, 5 bytes docnum (big-endian, matches the
	// posting wire format used in the inverted file itself, spec.md §3).
	wordPos = v.Payload[0]
	for i := 1; i < VocabPayloadSize; i++ {
		docnum = docnum<<8 | uint32(v.Payload[i])
	}
	return docnum, wordPos
}

// PayloadOffset decodes the payload as a byte offset into the inverted file,
// valid only when Occurrence > 1.
func (v VocabEntry) PayloadOffset() uint64 {
	var off uint64
	for i := 0; i < VocabPayloadSize; i++ {
		off = off<<8 | uint64(v.Payload[i])
	}
	return off
}

// Vocab is a read-only view over the mmap'd vocabulary file.
type Vocab struct {
	raw []byte
	n   int
}

func newVocab(raw []byte) (*Vocab, error) {
	if len(raw)%vocabRecordSize != 0 {
		return nil, fatalf(CategoryIO, ErrCodeSizeMismatch,
			"vocab size %d is not a multiple of record size %d", len(raw), vocabRecordSize)
	}
	return &Vocab{raw: raw, n: len(raw) / vocabRecordSize}, nil
}

func (v *Vocab) Len() int { return v.n }

func (v *Vocab) record(i int) []byte {
	off := i * vocabRecordSize
	return v.raw[off : off+vocabRecordSize]
}

func (v *Vocab) termAt(i int) []byte {
	rec := v.record(i)
	term := rec[:VocabMaxTermLen+1]
	if nul := bytes.IndexByte(term, 0); nul >= 0 {
		term = term[:nul]
	}
	return term
}

func (v *Vocab) decode(i int) VocabEntry {
	rec := v.record(i)
	term := v.termAt(i)
	p := VocabMaxTermLen + 1
	var occ uint64
	for j := 0; j < VocabOccBytes; j++ {
		occ = occ<<8 | uint64(rec[p+j])
	}
	p += VocabOccBytes
	qidf := rec[p]
	p += VocabQIDFBytes
	var payload [VocabPayloadSize]byte
	copy(payload[:], rec[p:p+VocabPayloadSize])
	return VocabEntry{Term: term, Occurrence: occ, QIDF: qidf, Payload: payload}
}

// Lookup binary-searches the vocab for term (already lowercased/diacritic-folded
// by the caller), returning (entry, true) or (zero, false).
func (v *Vocab) Lookup(term []byte) (VocabEntry, bool) {
	i := sort.Search(v.n, func(i int) bool {
		return bytes.Compare(v.termAt(i), term) >= 0
	})
	if i < v.n && bytes.Equal(v.termAt(i), term) {
		return v.decode(i), true
	}
	return VocabEntry{}, false
}

// IDF recovers the true inverse-document-frequency from a quantized byte and
// document count, per spec.md §4.2: q x log(N) / 255.
func IDF(q byte, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(q) * math.Log(float64(n)) / 255.0
}

// QuantizeIDF is the inverse mapping, used when building test fixtures.
func QuantizeIDF(idf float64, n int) byte {
	if n <= 1 {
		return 0
	}
	q := idf * 255.0 / math.Log(float64(n))
	if q < 0 {
		return 0
	}
	if q > 255 {
		return 255
	}
	return byte(q + 0.5)
}
