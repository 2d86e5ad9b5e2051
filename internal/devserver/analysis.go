package devserver

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"io"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// srsSections are the IEEE 830 headings looked for in a document.
var srsSections = []string{
	"Introduction",
	"Overall Description",
	"Specific Requirements",
	"Functional Requirements",
	"Non-Functional Requirements",
	"External Interface Requirements",
	"Appendices",
}

type sectionResult struct {
	Name  string `json:"name"`
	Found bool   `json:"found"`
	Score int    `json:"score"`
}

type analysisReport struct {
	Sections            []sectionResult `json:"sections"`
	OverallQualityScore int             `json:"overall_quality_score"`
}

// analyzeSections reports which SRS headings appear in text.
func analyzeSections(text string) (string, error) {
	lower := strings.ToLower(text)
	report := analysisReport{Sections: make([]sectionResult, 0, len(srsSections))}
	found := 0
	for _, name := range srsSections {
		ok := strings.Contains(lower, strings.ToLower(name))
		score := 0
		if ok {
			score = 100
			found++
		}
		report.Sections = append(report.Sections, sectionResult{Name: name, Found: ok, Score: score})
	}
	report.OverallQualityScore = int(math.Round(float64(found) / float64(len(srsSections)) * 100))

	raw, err := json.Marshal(report)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// extractText pulls readable text out of an uploaded document.
func extractText(fileType string, content []byte) (string, error) {
	switch fileType {
	case "DOCX":
		return docxText(content)
	case "PDF":
		return printableRuns(content, 4), nil
	default:
		return "", errors.New("unsupported file type: " + fileType)
	}
}

func docxText(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer func() { _ = rc.Close() }()
		return wordprocessingText(rc)
	}
	return "", errors.New("word/document.xml not found")
}

func wordprocessingText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var sb strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return strings.TrimSpace(sb.String()), nil
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			inText = t.Name.Local == "t"
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
}

// printableRuns keeps runs of at least minRun printable characters. It finds
// the text of uncompressed PDF content streams.
func printableRuns(content []byte, minRun int) string {
	var out, run strings.Builder
	count := 0
	flush := func() {
		if count >= minRun {
			out.WriteString(run.String())
			out.WriteByte('\n')
		}
		run.Reset()
		count = 0
	}
	for len(content) > 0 {
		r, size := utf8.DecodeRune(content)
		content = content[size:]
		if r != utf8.RuneError && (unicode.IsPrint(r) || r == ' ') {
			run.WriteRune(r)
			count++
			continue
		}
		flush()
	}
	flush()
	return strings.TrimSpace(out.String())
}
