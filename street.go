package qbasher

import (
	"strconv"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════════
// STREET NUMBER SPEC-LIST GRAMMAR
// ═══════════════════════════════════════════════════════════════════════════════
// spec.md GLOSSARY: a street_specs_col document field lists the house numbers
// a record covers as a comma-separated list of single numbers ("12"), closed
// ranges ("10-20"), and step ranges ("a:b" meaning every bth number from a),
// and street_address_processing mode 2 rejects a candidate whose query
// carried a leading street number unless it falls in that list. Grounded on
// original_source/'s street-number matching notes; no pack example ships an
// address-range parser, so this is plain string parsing (justified in
// DESIGN.md).
// ═══════════════════════════════════════════════════════════════════════════════

// StreetNumberValid reports whether number (as parsed from the query's
// leading numeric token) is covered by the document's street-spec column.
func StreetNumberValid(number, specCol string) bool {
	n, err := strconv.Atoi(strings.TrimSpace(number))
	if err != nil {
		return false
	}
	for _, spec := range strings.Split(specCol, ",") {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}
		if matchStreetSpec(n, spec) {
			return true
		}
	}
	return false
}

func matchStreetSpec(n int, spec string) bool {
	switch {
	case strings.Contains(spec, ":"):
		parts := strings.SplitN(spec, ":", 2)
		a, errA := strconv.Atoi(parts[0])
		step, errStep := strconv.Atoi(parts[1])
		if errA != nil || errStep != nil || step <= 0 {
			return false
		}
		if n < a {
			return false
		}
		return (n-a)%step == 0
	case strings.Contains(spec, "-"):
		parts := strings.SplitN(spec, "-", 2)
		lo, errLo := strconv.Atoi(strings.TrimSpace(parts[0]))
		hi, errHi := strconv.Atoi(strings.TrimSpace(parts[1]))
		if errLo != nil || errHi != nil {
			return false
		}
		return n >= lo && n <= hi
	default:
		v, err := strconv.Atoi(spec)
		if err != nil {
			return false
		}
		return n == v
	}
}

// LeadingStreetNumber extracts a leading numeric token from a query string,
// if present (spec.md's street-address query form "123 main st").
func LeadingStreetNumber(query string) (number, rest string, ok bool) {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "", query, false
	}
	if _, err := strconv.Atoi(fields[0]); err != nil {
		return "", query, false
	}
	return fields[0], strings.Join(fields[1:], " "), true
}
