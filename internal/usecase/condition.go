package usecase

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/tendermatch/backend/internal/domain"
)

// numericEpsilon is the tolerance for numeric comparisons: values closer
// than this are treated as equal.
const numericEpsilon = 1e-9

// ConditionKind tags the parsed form of a characteristic value expression.
type ConditionKind int

const (
	// ConditionExact is a bare number: candidate must equal it.
	ConditionExact ConditionKind = iota
	// ConditionLowerBound is "≥ X" or "> X".
	ConditionLowerBound
	// ConditionUpperBound is "≤ X" or "< X".
	ConditionUpperBound
	// ConditionRange is a two-bound expression like "≥ X и < Y".
	ConditionRange
	// ConditionText is a non-numeric exact value.
	ConditionText
	// ConditionUnparsed is a quantitative expression that did not match the
	// grammar; it falls back to text comparison.
	ConditionUnparsed
)

// Condition is a characteristic value expression parsed once at ingestion,
// so candidate comparisons never re-parse the raw string.
type Condition struct {
	Kind          ConditionKind
	Low           float64
	High          float64
	LowInclusive  bool
	HighInclusive bool
	Raw           string
}

const numberPattern = `(\d+(?:[.,]\d+)?)`

var (
	rangeGeLtRe = regexp.MustCompile(`^≥\s*` + numberPattern + `\s*и\s*<\s*` + numberPattern + `$`)
	rangeGtLeRe = regexp.MustCompile(`^>\s*` + numberPattern + `\s*и\s*≤\s*` + numberPattern + `$`)
	rangeGeLeRe = regexp.MustCompile(`^≥\s*` + numberPattern + `\s*и\s*≤\s*` + numberPattern + `$`)
	rangeGtLtRe = regexp.MustCompile(`^>\s*` + numberPattern + `\s*и\s*<\s*` + numberPattern + `$`)
	gteRe       = regexp.MustCompile(`^(?:≥|>=)\s*` + numberPattern + `$`)
	lteRe       = regexp.MustCompile(`^(?:≤|<=)\s*` + numberPattern + `$`)
	gtRe        = regexp.MustCompile(`^>\s*` + numberPattern + `$`)
	ltRe        = regexp.MustCompile(`^<\s*` + numberPattern + `$`)
	numberRe    = regexp.MustCompile(`^` + numberPattern + `$`)

	anyNumberRe   = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
	punctuationRe = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	multiSpacesRe = regexp.MustCompile(`\s+`)
)

// ParseCondition parses a characteristic value expression into its tagged
// form. Quantitative expressions that match no grammar rule come back as
// ConditionUnparsed; the caller decides whether that is worth logging.
func ParseCondition(value string, characteristicType string) Condition {
	raw := strings.TrimSpace(value)

	if characteristicType != domain.CharacteristicQuantitative {
		return Condition{Kind: ConditionText, Raw: raw}
	}

	type rangeRule struct {
		re            *regexp.Regexp
		lowInclusive  bool
		highInclusive bool
	}
	for _, rule := range []rangeRule{
		{rangeGeLtRe, true, false},
		{rangeGtLeRe, false, true},
		{rangeGeLeRe, true, true},
		{rangeGtLtRe, false, false},
	} {
		if m := rule.re.FindStringSubmatch(raw); m != nil {
			return Condition{
				Kind:          ConditionRange,
				Low:           parseNumber(m[1]),
				High:          parseNumber(m[2]),
				LowInclusive:  rule.lowInclusive,
				HighInclusive: rule.highInclusive,
				Raw:           raw,
			}
		}
	}

	if m := gteRe.FindStringSubmatch(raw); m != nil {
		return Condition{Kind: ConditionLowerBound, Low: parseNumber(m[1]), LowInclusive: true, Raw: raw}
	}
	if m := lteRe.FindStringSubmatch(raw); m != nil {
		return Condition{Kind: ConditionUpperBound, High: parseNumber(m[1]), HighInclusive: true, Raw: raw}
	}
	if m := gtRe.FindStringSubmatch(raw); m != nil {
		return Condition{Kind: ConditionLowerBound, Low: parseNumber(m[1]), Raw: raw}
	}
	if m := ltRe.FindStringSubmatch(raw); m != nil {
		return Condition{Kind: ConditionUpperBound, High: parseNumber(m[1]), Raw: raw}
	}
	if m := numberRe.FindStringSubmatch(raw); m != nil {
		return Condition{Kind: ConditionExact, Low: parseNumber(m[1]), Raw: raw}
	}

	return Condition{Kind: ConditionUnparsed, Raw: raw}
}

// Satisfies reports whether a candidate's characteristic value meets the
// parsed condition. A missing candidate value never satisfies anything.
func Satisfies(cond Condition, candidateValue string) bool {
	return satisfiesScaled(cond, candidateValue, 1)
}

// satisfiesScaled applies a unit-conversion factor to the candidate's numeric
// value before comparing.
func satisfiesScaled(cond Condition, candidateValue string, factor float64) bool {
	candidate := strings.TrimSpace(candidateValue)
	if candidate == "" {
		return false
	}

	switch cond.Kind {
	case ConditionText, ConditionUnparsed:
		return textMatch(cond.Raw, candidate)
	}

	num, ok := extractNumber(candidate)
	if !ok {
		// A non-numeric candidate can still satisfy an exact condition when
		// the raw strings agree.
		if cond.Kind == ConditionExact {
			return textMatch(cond.Raw, candidate)
		}
		return false
	}
	num *= factor

	switch cond.Kind {
	case ConditionExact:
		return math.Abs(num-cond.Low) <= numericEpsilon
	case ConditionLowerBound:
		return aboveLow(num, cond)
	case ConditionUpperBound:
		return belowHigh(num, cond)
	case ConditionRange:
		return aboveLow(num, cond) && belowHigh(num, cond)
	}
	return false
}

func aboveLow(num float64, cond Condition) bool {
	if cond.LowInclusive {
		return num-cond.Low >= -numericEpsilon
	}
	return num-cond.Low > numericEpsilon
}

func belowHigh(num float64, cond Condition) bool {
	if cond.HighInclusive {
		return cond.High-num >= -numericEpsilon
	}
	return cond.High-num > numericEpsilon
}

// textMatch compares two values as normalized text: equal, or one contained
// in the other when long enough to be meaningful.
func textMatch(required, candidate string) bool {
	req := normalizeText(required)
	cand := normalizeText(candidate)
	if req == "" || cand == "" {
		return false
	}
	if req == cand {
		return true
	}
	if len([]rune(req)) > 3 && (strings.Contains(cand, req) || strings.Contains(req, cand)) {
		return true
	}
	return false
}

// normalizeText lower-cases, strips punctuation and collapses whitespace.
func normalizeText(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = punctuationRe.ReplaceAllString(s, " ")
	s = multiSpacesRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// extractNumber parses a candidate value as a number, falling back to the
// first numeric token when the value carries extra text ("60 мм").
func extractNumber(s string) (float64, bool) {
	if m := numberRe.FindStringSubmatch(strings.TrimSpace(s)); m != nil {
		return parseNumber(m[1]), true
	}
	if m := anyNumberRe.FindString(s); m != "" {
		return parseNumber(m), true
	}
	return 0, false
}

func parseNumber(s string) float64 {
	n, _ := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	return n
}
