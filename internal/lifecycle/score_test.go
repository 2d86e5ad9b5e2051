package lifecycle_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sace/internal/errdefs"
	"sace/internal/lifecycle"
	"sace/internal/model"
)

func analysed(id int64, analysis string) model.Submission {
	return model.Submission{ID: id, SectionAnalysis: &analysis}
}

// ── Score ───────────────────────────────────────────────────────────

func TestScore(t *testing.T) {
	longText := strings.Repeat("requirements ", 10)

	tests := []struct {
		name   string
		in     model.Submission
		want   int
		wantOK bool
	}{
		{"NoAnalysis", model.Submission{ID: 1}, 0, false},
		{"EmptyAnalysis", analysed(1, ""), 0, false},
		{"Overall", analysed(1, `{"overall_quality_score": 82.4}`), 82, true},
		{"OverallRoundsHalfUp", analysed(1, `{"overall_quality_score": 82.5}`), 83, true},
		{"OverallNumericString", analysed(1, `{"overall_quality_score": "91"}`), 91, true},
		{"OverallWinsOverSections", analysed(1, `{"overall_quality_score": 60, "sections":[{"score":100}]}`), 60, true},
		{"SectionsAverage", analysed(1, `{"sections":[{"score":80},{"score":91},{"name":"x"}]}`), 86, true},
		{"SectionsWithoutScores", analysed(1, `{"sections":[{"name":"intro"}]}`), 0, false},
		{"ObjectWithoutScore", analysed(1, `{"summary":"fine"}`), 0, false},
		{"JSONArray", analysed(1, `[1,2,3]`), 0, false},
		{"ShortText", analysed(1, "needs work"), 0, false},
		{"LongTextPlaceholder", analysed(7, longText+"!"), 82, true},
		{"LongTextWrapsID", analysed(45, longText+"!"), 80, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := lifecycle.Score(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("TextAtThresholdHasNoScore", func(t *testing.T) {
		_, ok := lifecycle.Score(analysed(1, strings.Repeat("x", 100)))
		assert.False(t, ok)
	})

	t.Run("Deterministic", func(t *testing.T) {
		s := analysed(13, longText+"?")
		first, _ := lifecycle.Score(s)
		for range 10 {
			got, _ := lifecycle.Score(s)
			assert.Equal(t, first, got)
		}
	})
}

func TestFormatScore(t *testing.T) {
	assert.Equal(t, "-", lifecycle.FormatScore(model.Submission{}))
	assert.Equal(t, "70", lifecycle.FormatScore(analysed(1, `{"overall_quality_score":70}`)))
}

// ── RelativeTime ────────────────────────────────────────────────────

func TestRelativeTime(t *testing.T) {
	now := time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{0, "Just now"},
		{59 * time.Minute, "Just now"},
		{time.Hour, "1 hour ago"},
		{5 * time.Hour, "5 hours ago"},
		{24 * time.Hour, "1 day ago"},
		{6 * 24 * time.Hour, "6 days ago"},
		{7 * 24 * time.Hour, "2025-05-13"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, lifecycle.RelativeTime(now.Add(-tt.ago), now), tt.ago.String())
	}
	assert.Equal(t, "-", lifecycle.RelativeTime(time.Time{}, now))
}

// ── UploadPolicy ────────────────────────────────────────────────────

func TestUploadPolicy(t *testing.T) {
	p := lifecycle.DefaultUploadPolicy()

	tests := []struct {
		name string
		file string
		size int64
		ok   bool
	}{
		{"PDF", "srs.pdf", 1024, true},
		{"DOCXUpperCase", "SRS.DOCX", 1024, true},
		{"AtLimit", "srs.pdf", lifecycle.DefaultMaxUploadBytes, true},
		{"OverLimit", "srs.pdf", lifecycle.DefaultMaxUploadBytes + 1, false},
		{"Empty", "srs.pdf", 0, false},
		{"Doc", "srs.doc", 10, false},
		{"NoExtension", "srs", 10, false},
		{"NoName", "", 10, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.Check(tt.file, tt.size)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, errdefs.ErrValidation)
		})
	}

	assert.Equal(t, "PDF", lifecycle.FileType("a.pdf"))
	assert.Equal(t, "DOCX", lifecycle.FileType("b.Docx"))
}
