package qbasher

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/RoaringBitmap/roaring"
	"github.com/edsrzf/mmap-go"
)

// ═══════════════════════════════════════════════════════════════════════════════
// INDEX MAPPER (C1)
// ═══════════════════════════════════════════════════════════════════════════════
// Rewritten from Zeeeepa-blaze's index.go: that file built an in-heap
// InvertedIndex from Go maps (DocBitmaps, PostingsList, DocStats). Here the
// same "one long-lived struct holding everything needed to serve a query"
// shape is kept, but the storage is four real memory-mapped files (spec.md
// §3/§4.1/§5), replacing per-term Go maps with byte-slice views decoded
// on demand by vocab.go/invertedfile.go/doctable.go.
// ═══════════════════════════════════════════════════════════════════════════════

// Index is the process-wide, read-only view over one QBASHER index: four
// memory-mapped files plus header-derived parameters. It is safe for
// concurrent use by any number of queries (spec.md §5: "read-only, shared,
// never mutated after load. No lock required").
type Index struct {
	log *slog.Logger

	forwardMap mmap.MMap
	ifMap      mmap.MMap
	vocabMap   mmap.MMap
	dtMap      mmap.MMap

	forward []byte
	invf    []byte // postings region, i.e. ifMap between the header and the 8-byte trailer
	Header  IFHeader

	Vocab    *Vocab
	Doctable *Doctable

	N        int     // document count
	AvDocLen float64 // total postings / N, for BM25

	TokenBreak   [256]bool // combined token-breaker + query-meta-char table, spec.md §4.1
	ExpectCP1252 bool

	// bloomDocs[i] holds the set of docnums whose Bloom signature has bit i
	// set, built once at load (see bloom.go); used by the M=0 pre-filter.
	bloomDocs [DocBloomBits * 8]*roaring.Bitmap

	closers []func() error
}

// OpenIndex opens and validates the four index files named by opts (either
// via opts.IndexDir + the conventional QBASH.* stems, or via the individual
// file_* overrides), per spec.md §4.1/§6.
func OpenIndex(opts *Options, log *slog.Logger) (*Index, error) {
	if log == nil {
		log = slog.Default()
	}
	forwardPath, ifPath, vocabPath, dtPath, err := resolveIndexPaths(opts)
	if err != nil {
		return nil, err
	}

	idx := &Index{log: log}

	forwardMap, forward, err := mmapFile(forwardPath)
	if err != nil {
		return nil, err
	}
	idx.forwardMap, idx.forward = forwardMap, forward
	idx.closers = append(idx.closers, forwardMap.Unmap)

	ifMapped, ifBytes, err := mmapFile(ifPath)
	if err != nil {
		idx.Close()
		return nil, err
	}
	idx.ifMap = ifMapped
	idx.closers = append(idx.closers, ifMapped.Unmap)

	if err := verifyTrailer(ifBytes); err != nil {
		idx.Close()
		return nil, err
	}
	header, err := parseIFHeader(ifBytes)
	if err != nil {
		idx.Close()
		return nil, err
	}
	idx.Header = header
	if header.HeaderLen > len(ifBytes)-8 {
		idx.Close()
		return nil, fatalf(CategoryIO, ErrCodeFormatMismatch, "inverted file header overruns its trailer")
	}
	idx.invf = ifBytes[header.HeaderLen : len(ifBytes)-8]
	idx.ExpectCP1252 = header.ExpectCP1252

	vocabMapped, vocabBytes, err := mmapFile(vocabPath)
	if err != nil {
		idx.Close()
		return nil, err
	}
	idx.vocabMap = vocabMapped
	idx.closers = append(idx.closers, vocabMapped.Unmap)
	if header.SizeVocab != int64(len(vocabBytes)) {
		idx.Close()
		return nil, fatalf(CategoryIO, ErrCodeSizeMismatch,
			"vocab header size %d != mapped size %d", header.SizeVocab, len(vocabBytes))
	}
	vocab, err := newVocab(vocabBytes)
	if err != nil {
		idx.Close()
		return nil, err
	}
	idx.Vocab = vocab

	dtMapped, dtBytes, err := mmapFile(dtPath)
	if err != nil {
		idx.Close()
		return nil, err
	}
	idx.dtMap = dtMapped
	idx.closers = append(idx.closers, dtMapped.Unmap)
	if header.SizeDoctable != int64(len(dtBytes)) {
		idx.Close()
		return nil, fatalf(CategoryIO, ErrCodeSizeMismatch,
			"doctable header size %d != mapped size %d", header.SizeDoctable, len(dtBytes))
	}
	doctable, err := newDoctable(dtBytes)
	if err != nil {
		idx.Close()
		return nil, err
	}
	idx.Doctable = doctable

	if header.SizeForward != int64(len(forward)) {
		idx.Close()
		return nil, fatalf(CategoryIO, ErrCodeSizeMismatch,
			"forward header size %d != mapped size %d", header.SizeForward, len(forward))
	}

	idx.N = int(header.NumDocuments)
	if idx.N > 0 {
		idx.AvDocLen = float64(header.TotalPostings) / float64(idx.N)
	}
	idx.buildTokenBreakTable(header)
	idx.buildBloomIndex()

	if opts.WarmIndexes {
		idx.warm()
	}

	log.Info("index loaded", "docs", idx.N, "avdoclen", idx.AvDocLen, "dir", opts.IndexDir)
	return idx, nil
}

func resolveIndexPaths(opts *Options) (forward, ifile, vocab, dt string, err error) {
	if opts.IndexDir != "" {
		if opts.FileForward != "" || opts.FileIF != "" || opts.FileVocab != "" || opts.FileDoctable != "" {
			return "", "", "", "", fatalf(CategoryUnknown, ErrCodeMalformedQuery,
				"index_dir is mutually exclusive with individual file_* options")
		}
		dir := opts.IndexDir
		return filepath.Join(dir, "QBASH.forward"),
			filepath.Join(dir, "QBASH.if"),
			filepath.Join(dir, "QBASH.vocab"),
			filepath.Join(dir, "QBASH.doctable"),
			nil
	}
	if opts.FileForward == "" || opts.FileIF == "" || opts.FileVocab == "" || opts.FileDoctable == "" {
		return "", "", "", "", fatalf(CategoryUnknown, ErrCodeMissingRequiredKey,
			"either index_dir or all four file_* options must be set")
	}
	return opts.FileForward, opts.FileIF, opts.FileVocab, opts.FileDoctable, nil
}

func mmapFile(path string) (mmap.MMap, []byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fatalf(CategoryIO, ErrCodeOpenFailed, "opening %s: %v", path, err)
	}
	defer f.Close()
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, nil, fatalf(CategoryMemory, ErrCodeMmapFailed, "mapping %s: %v", path, err)
	}
	return m, []byte(m), nil
}

// buildTokenBreakTable combines the declared token-breaker set and the fixed
// query-operator characters into a single 256-entry lookup (spec.md §4.1).
func (idx *Index) buildTokenBreakTable(h IFHeader) {
	for _, c := range h.OtherTokenBreakers {
		if c < 256 {
			idx.TokenBreak[c] = true
		}
	}
	for _, c := range QueryMetaChars {
		idx.TokenBreak[c] = true
	}
	idx.TokenBreak[' '] = true
	idx.TokenBreak['\t'] = true
}

// warm touches every mapped page once, per opts.WarmIndexes (spec.md §6).
func (idx *Index) warm() {
	const pageSize = 4096
	touch := func(b []byte) {
		var sink byte
		for i := 0; i < len(b); i += pageSize {
			sink += b[i]
		}
		_ = sink
	}
	touch(idx.forward)
	touch(idx.invf)
	touch([]byte(idx.vocabMap))
	touch([]byte(idx.dtMap))
}

// ForwardRecord returns the TAB/LF-delimited record for docnum, reading from
// its doctable-declared offset up to (but excluding) the terminating LF.
func (idx *Index) ForwardRecord(docnum int) (string, error) {
	e := idx.Doctable.Entry(docnum)
	off := int(e.ForwardOffset)
	if off < 0 || off > len(idx.forward) {
		return "", queryErrf(CategoryMemory, ErrCodeMalformedQuery, "doc %d offset %d out of range", docnum, off)
	}
	if off != 0 && idx.forward[off-1] != '\n' {
		return "", fatalf(CategoryMemory, ErrCodeMalformedQuery,
			"doc %d offset %d does not follow a newline", docnum, off)
	}
	end := off
	for end < len(idx.forward) && idx.forward[end] != '\n' {
		end++
	}
	return string(idx.forward[off:end]), nil
}

// Column returns the 0-indexed TAB-separated field n of a forward record.
func Column(record string, n int) string {
	fields := strings.Split(record, "\t")
	if n < 0 || n >= len(fields) {
		return ""
	}
	return fields[n]
}

// Close releases every mapped region and closed handle, in reverse
// acquisition order, per spec.md §5's index-environment destruction contract.
func (idx *Index) Close() error {
	var firstErr error
	for i := len(idx.closers) - 1; i >= 0; i-- {
		if err := idx.closers[i](); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("unmap: %w", err)
		}
	}
	idx.closers = nil
	return firstErr
}
