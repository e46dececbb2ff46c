package qbasher

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ═══════════════════════════════════════════════════════════════════════════════
// OPTIONS
// ═══════════════════════════════════════════════════════════════════════════════
// Options mirrors query_processing_environment_t (original_source/src/qbashq-lib/QBASHQ.h).
// The three sources set it by different routes: a per-query "options" overlay
// string goes through Apply (modelled on arg_parser.c's assign_one_arg);
// LoadOptionsFile decodes a YAML config through the yaml struct tags, not
// Apply, so fields without a tag are not settable by their option name from a
// file; and the CLI sets only index_dir directly (--index-dir), besides
// choosing the config file. Apply does not handle every field either
// (file_substitution_rules and file_segment_rules, for instance).
// ═══════════════════════════════════════════════════════════════════════════════

type Options struct {
	IndexDir             string `yaml:"index_dir"`
	FileForward          string `yaml:"file_forward"`
	FileIF               string `yaml:"file_if"`
	FileVocab            string `yaml:"file_vocab"`
	FileDoctable         string `yaml:"file_doctable"`
	FileSubstitutionRules string `yaml:"file_substitution_rules"`
	FileSegmentRules     string `yaml:"file_segment_rules"`

	PQ string `yaml:"pq"`

	MaxToShow      int `yaml:"max_to_show"`
	MaxCandidates  int `yaml:"max_candidates"`
	MaxLengthDiff  int `yaml:"max_length_diff"`
	TimeoutKops    int `yaml:"timeout_kops"`
	TimeoutMsec    int `yaml:"timeout_msec"`

	// Ranking coefficients, alpha..theta (spec.md §4.5). Normalized to sum 1
	// on first use by NormalizeRankCoeffs.
	Alpha, Beta, Gamma, Delta float64
	Epsilon2, Zeta, Eta, Theta float64
	rankNormalized             bool
	ScoringNeeded               bool

	// Classifier coefficients, chi/psi/omega (spec.md §4.5).
	Chi, Psi, Omega float64

	AutoPartials   bool `yaml:"auto_partials"`
	AutoLinePrefix bool `yaml:"auto_line_prefix"`
	WarmIndexes    bool `yaml:"warm_indexes"`

	RelaxationLevel int `yaml:"relaxation_level"`
	DisplayCol      int `yaml:"display_col"`
	ExtraCol        int `yaml:"extracol"`
	QueryStreams    int `yaml:"query_streams"`

	DuplicateHandling int `yaml:"duplicate_handling"`

	ClassifierMode          int     `yaml:"classifier_mode"`
	ClassifierThreshold     float64 `yaml:"classifier_threshold"`
	ClassifierMinWords      int     `yaml:"classifier_min_words"`
	ClassifierMaxWords      int     `yaml:"classifier_max_words"`
	ClassifierStopThresh1   float64 `yaml:"classifier_stop_thresh1"`
	ClassifierStopThresh2   float64 `yaml:"classifier_stop_thresh2"`
	SegmentIntentMultiplier float64 `yaml:"segment_intent_multiplier"`
	ClassifierSegment       string  `yaml:"classifier_segment"`

	UseSubstitutions bool   `yaml:"use_substitutions"`
	Language         string `yaml:"language"`
	ConflateAccents  bool   `yaml:"conflate_accents"`

	LocationLat, LocationLong float64
	GeoFilterRadius           float64 `yaml:"geo_filter_radius"`

	StreetAddressProcessing int    `yaml:"street_address_processing"`
	StreetSpecsCol          int    `yaml:"street_specs_col"`

	QueryShorteningThreshold int `yaml:"query_shortening_threshold"`

	Debug                bool `yaml:"debug"`
	Chatty               bool `yaml:"chatty"`
	DisplayParsedQuery   bool `yaml:"display_parsed_query"`
	XShowQtimes          bool `yaml:"x_show_qtimes"`
	XBatchTesting        bool `yaml:"x_batch_testing"`
	AllowPerQueryOptions bool `yaml:"allow_per_query_options"`
}

// DefaultOptions matches the original engine's compiled-in defaults where
// spec.md names them, and sane engineering defaults elsewhere.
func DefaultOptions() *Options {
	return &Options{
		MaxToShow:               10,
		MaxCandidates:           1000,
		MaxLengthDiff:           3,
		TimeoutKops:             0,
		TimeoutMsec:             1000,
		Alpha:                   0.1,
		Beta:                    0.2,
		Gamma:                   0.15,
		Delta:                   0.1,
		Epsilon2:                0.1,
		Zeta:                    0.25,
		Eta:                     0.05,
		Theta:                   0.05,
		Chi:                     0.6,
		Psi:                     0.2,
		Omega:                   0.2,
		RelaxationLevel:         0,
		DisplayCol:              0,
		QueryStreams:            1,
		DuplicateHandling:       1,
		ClassifierThreshold:     0.5,
		ClassifierMinWords:      1,
		ClassifierMaxWords:      MaxWordsInQuery,
		ClassifierStopThresh1:   0.98,
		ClassifierStopThresh2:   0.02,
		SegmentIntentMultiplier: 1.0,
		AllowPerQueryOptions:    true,
	}
}

// LoadOptionsFile reads a QBASH.config YAML file, starting from DefaultOptions.
func LoadOptionsFile(path string) (*Options, error) {
	opts := DefaultOptions()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fatalf(CategoryIO, ErrCodeOpenFailed, "reading config %s: %v", path, err)
	}
	if err := yaml.Unmarshal(data, opts); err != nil {
		return nil, fatalf(CategoryIO, ErrCodeFormatMismatch, "parsing config %s: %v", path, err)
	}
	return opts, nil
}

// Clone returns a copy of o for use as a copy-on-write overlay base
// (spec.md §9: per-variant options must not mutate the global environment).
func (o *Options) Clone() *Options {
	cp := *o
	return &cp
}

// Overlay parses a multi-query variant's "-key=value -key2=value2" options
// string and applies it to a clone of o, per spec.md §4.6/§6.
func (o *Options) Overlay(overlayString string) (*Options, error) {
	overlay := o.Clone()
	if strings.TrimSpace(overlayString) == "" {
		return overlay, nil
	}
	for _, tok := range strings.Fields(overlayString) {
		tok = strings.TrimPrefix(tok, "-")
		key, value, found := strings.Cut(tok, "=")
		if !found {
			return nil, queryErrf(CategoryUnknown, ErrCodeMalformedQuery, "malformed option token %q", tok)
		}
		if err := overlay.Apply(key, value); err != nil {
			return nil, err
		}
	}
	return overlay, nil
}

// Apply sets a single key=value option; Overlay calls it for every token of
// a per-query options string (original_source/src/qbashq-lib/arg_parser.c's
// assign_one_arg).
func (o *Options) Apply(key, value string) error {
	switch key {
	case "index_dir":
		o.IndexDir = value
	case "file_forward":
		o.FileForward = value
	case "file_if":
		o.FileIF = value
	case "file_vocab":
		o.FileVocab = value
	case "file_doctable":
		o.FileDoctable = value
	case "pq":
		o.PQ = value
	case "max_to_show":
		return o.applyInt(key, value, &o.MaxToShow)
	case "max_candidates":
		return o.applyInt(key, value, &o.MaxCandidates)
	case "max_length_diff":
		return o.applyInt(key, value, &o.MaxLengthDiff)
	case "timeout_kops":
		return o.applyInt(key, value, &o.TimeoutKops)
	case "timeout_msec":
		return o.applyInt(key, value, &o.TimeoutMsec)
	case "alpha":
		return o.applyFloat(key, value, &o.Alpha)
	case "beta":
		return o.applyFloat(key, value, &o.Beta)
	case "gamma":
		return o.applyFloat(key, value, &o.Gamma)
	case "delta":
		return o.applyFloat(key, value, &o.Delta)
	case "epsilon":
		return o.applyFloat(key, value, &o.Epsilon2)
	case "zeta":
		return o.applyFloat(key, value, &o.Zeta)
	case "eta":
		return o.applyFloat(key, value, &o.Eta)
	case "theta":
		return o.applyFloat(key, value, &o.Theta)
	case "chi":
		return o.applyFloat(key, value, &o.Chi)
	case "psi":
		return o.applyFloat(key, value, &o.Psi)
	case "omega":
		return o.applyFloat(key, value, &o.Omega)
	case "auto_partials":
		return o.applyBool(key, value, &o.AutoPartials)
	case "auto_line_prefix":
		return o.applyBool(key, value, &o.AutoLinePrefix)
	case "warm_indexes":
		return o.applyBool(key, value, &o.WarmIndexes)
	case "relaxation_level":
		return o.applyIntBounded(key, value, &o.RelaxationLevel, 0, MaxRelax)
	case "display_col":
		return o.applyInt(key, value, &o.DisplayCol)
	case "extracol":
		return o.applyInt(key, value, &o.ExtraCol)
	case "query_streams":
		return o.applyInt(key, value, &o.QueryStreams)
	case "duplicate_handling":
		return o.applyIntBounded(key, value, &o.DuplicateHandling, 0, 2)
	case "classifier_mode":
		return o.applyIntBounded(key, value, &o.ClassifierMode, 0, 4)
	case "classifier_threshold":
		return o.applyFloat(key, value, &o.ClassifierThreshold)
	case "classifier_min_words":
		return o.applyInt(key, value, &o.ClassifierMinWords)
	case "classifier_max_words":
		return o.applyInt(key, value, &o.ClassifierMaxWords)
	case "classifier_stop_thresh1":
		return o.applyFloat(key, value, &o.ClassifierStopThresh1)
	case "classifier_stop_thresh2":
		return o.applyFloat(key, value, &o.ClassifierStopThresh2)
	case "segment_intent_multiplier":
		return o.applyFloat(key, value, &o.SegmentIntentMultiplier)
	case "classifier_segment":
		o.ClassifierSegment = value
	case "use_substitutions":
		return o.applyBool(key, value, &o.UseSubstitutions)
	case "language":
		o.Language = value
	case "conflate_accents":
		return o.applyBool(key, value, &o.ConflateAccents)
	case "location_lat":
		return o.applyFloat(key, value, &o.LocationLat)
	case "location_long":
		return o.applyFloat(key, value, &o.LocationLong)
	case "geo_filter_radius":
		return o.applyFloat(key, value, &o.GeoFilterRadius)
	case "street_address_processing":
		return o.applyIntBounded(key, value, &o.StreetAddressProcessing, 0, 2)
	case "street_specs_col":
		return o.applyInt(key, value, &o.StreetSpecsCol)
	case "query_shortening_threshold":
		return o.applyInt(key, value, &o.QueryShorteningThreshold)
	case "debug":
		return o.applyBool(key, value, &o.Debug)
	case "chatty":
		return o.applyBool(key, value, &o.Chatty)
	case "display_parsed_query":
		return o.applyBool(key, value, &o.DisplayParsedQuery)
	case "x_show_qtimes":
		return o.applyBool(key, value, &o.XShowQtimes)
	case "x_batch_testing":
		return o.applyBool(key, value, &o.XBatchTesting)
	case "allow_per_query_options":
		return o.applyBool(key, value, &o.AllowPerQueryOptions)
	default:
		return warnf(CategoryUnknown, 1, "unrecognized option %q ignored", key)
	}
	return nil
}

func (o *Options) applyInt(key, value string, dst *int) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return queryErrf(CategoryUnknown, ErrCodeMalformedQuery, "option %s: %v", key, err)
	}
	*dst = n
	return nil
}

func (o *Options) applyIntBounded(key, value string, dst *int, lo, hi int) error {
	if err := o.applyInt(key, value, dst); err != nil {
		return err
	}
	if *dst < lo || *dst > hi {
		return queryErrf(CategoryUnknown, ErrCodeMalformedQuery, "option %s=%s out of range [%d,%d]", key, value, lo, hi)
	}
	return nil
}

func (o *Options) applyFloat(key, value string, dst *float64) error {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return queryErrf(CategoryUnknown, ErrCodeMalformedQuery, "option %s: %v", key, err)
	}
	*dst = f
	return nil
}

func (o *Options) applyBool(key, value string, dst *bool) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return queryErrf(CategoryUnknown, ErrCodeMalformedQuery, "option %s: %v", key, err)
	}
	*dst = b
	return nil
}

// NormalizeRankCoeffs normalizes alpha..theta to sum to 1 (once) and derives
// ScoringNeeded, per spec.md §8's testable property.
func (o *Options) NormalizeRankCoeffs() {
	if o.rankNormalized {
		return
	}
	o.rankNormalized = true
	sum := o.Alpha + o.Beta + o.Gamma + o.Delta + o.Epsilon2 + o.Zeta + o.Eta + o.Theta
	if sum > Epsilon {
		o.Alpha /= sum
		o.Beta /= sum
		o.Gamma /= sum
		o.Delta /= sum
		o.Epsilon2 /= sum
		o.Zeta /= sum
		o.Eta /= sum
		o.Theta /= sum
	}
	nonStatic := o.Beta + o.Gamma + o.Delta + o.Epsilon2 + o.Zeta + o.Eta + o.Theta
	o.ScoringNeeded = nonStatic > Epsilon
}

// ResolveLengthDiff implements the max_length_diff auto-encoding decided in
// SPEC_FULL.md §D.1: values < 100 are a literal tolerance; values >= 100
// select the auto formula L²/(L+2) + relaxation + addon.
func (o *Options) ResolveLengthDiff(queryLen, relaxation int) int {
	if o.MaxLengthDiff < 100 {
		return o.MaxLengthDiff
	}
	addon := o.MaxLengthDiff - 100
	L := float64(queryLen)
	auto := (L * L) / (L + 2)
	return int(auto) + relaxation + addon
}

func (o *Options) String() string {
	return fmt.Sprintf("Options{max_to_show=%d relaxation_level=%d classifier_mode=%d}",
		o.MaxToShow, o.RelaxationLevel, o.ClassifierMode)
}
