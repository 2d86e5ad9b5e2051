package devserver

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sace/internal/lifecycle"
	"sace/internal/model"
)

func docx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)

	body := `<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`
	for _, p := range paragraphs {
		body += `<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`
	}
	body += `</w:body></w:document>`
	_, err = w.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestAnalyzeSections(t *testing.T) {
	raw, err := analyzeSections("1. INTRODUCTION\n2. Overall description\n3. Functional Requirements")
	require.NoError(t, err)

	var report analysisReport
	require.NoError(t, json.Unmarshal([]byte(raw), &report))
	require.Len(t, report.Sections, len(srsSections))
	assert.Equal(t, sectionResult{Name: "Introduction", Found: true, Score: 100}, report.Sections[0])
	assert.Equal(t, sectionResult{Name: "Specific Requirements", Found: false, Score: 0}, report.Sections[2])
	assert.Equal(t, 43, report.OverallQualityScore)

	t.Run("ScoredByClient", func(t *testing.T) {
		score, ok := lifecycle.Score(model.Submission{ID: 1, SectionAnalysis: &raw})
		require.True(t, ok)
		assert.Equal(t, 43, score)
	})
}

func TestExtractText(t *testing.T) {
	t.Run("Docx", func(t *testing.T) {
		text, err := extractText("DOCX", docx(t, "Introduction", "Appendices &amp; notes"))
		require.NoError(t, err)
		assert.Equal(t, "Introduction\nAppendices & notes", text)
	})

	t.Run("DocxNotZip", func(t *testing.T) {
		_, err := extractText("DOCX", []byte("plain"))
		assert.Error(t, err)
	})

	t.Run("DocxWithoutBody", func(t *testing.T) {
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		_, err := zw.Create("other.xml")
		require.NoError(t, err)
		require.NoError(t, zw.Close())

		_, err = extractText("DOCX", buf.Bytes())
		assert.Error(t, err)
	})

	t.Run("PDF", func(t *testing.T) {
		content := []byte("%PDF-1.4\n\x00\x01BT (Specific Requirements) Tj ET\x00\xff\xfe")
		text, err := extractText("PDF", content)
		require.NoError(t, err)
		assert.Contains(t, text, "Specific Requirements")
		assert.NotContains(t, text, "\x00")
	})

	t.Run("Unsupported", func(t *testing.T) {
		_, err := extractText("TXT", []byte("x"))
		assert.Error(t, err)
	})
}
