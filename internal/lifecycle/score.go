package lifecycle

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"sace/internal/model"
)

const (
	textScoreMinLength = 100
	textScoreBase      = 75
	textScoreSpread    = 20
)

// Score derives a display score from a submission's analysis payload.
//
// A JSON object yields its overall_quality_score, or else the mean of its
// sections' scores. A payload that is not JSON but is longer than 100
// characters gets a fixed placeholder derived from the id. Anything else has
// no score.
func Score(s model.Submission) (int, bool) {
	if s.SectionAnalysis == nil || *s.SectionAnalysis == "" {
		return 0, false
	}
	raw := *s.SectionAnalysis

	if !json.Valid([]byte(raw)) {
		if utf8.RuneCountInString(raw) > textScoreMinLength {
			return textScoreBase + int(((s.ID%textScoreSpread)+textScoreSpread)%textScoreSpread), true
		}
		return 0, false
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return 0, false
	}
	if v, ok := doc["overall_quality_score"]; ok {
		if f, ok := number(v); ok {
			return round(f), true
		}
	}

	var sections []map[string]json.RawMessage
	if v, ok := doc["sections"]; !ok || json.Unmarshal(v, &sections) != nil {
		return 0, false
	}
	var sum float64
	var n int
	for _, sec := range sections {
		if f, ok := number(sec["score"]); ok {
			sum += f
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return round(sum / float64(n)), true
}

// FormatScore renders Score for display, "-" when absent.
func FormatScore(s model.Submission) string {
	if v, ok := Score(s); ok {
		return strconv.Itoa(v)
	}
	return "-"
}

func number(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// round halves toward positive infinity.
func round(f float64) int {
	return int(math.Floor(f + 0.5))
}
