package corpus

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"gopkg.in/yaml.v3"
)

const maxPassageChars = 480

type fileFormat struct {
	Remedies []remedyEntry `yaml:"remedies"`
}

type remedyEntry struct {
	Condition string   `yaml:"condition"`
	Keywords  []string `yaml:"keywords"`
	Text      string   `yaml:"text"`
}

// NewIndex builds the corpus from the remedies file plus an optional PDF
// supplement. The index never changes after this call.
func NewIndex(remediesPath, pdfPath string, maxResults int) (*Index, error) {
	entries, err := loadRemedies(remediesPath)
	if err != nil {
		return nil, err
	}

	if pdfPath != "" {
		pdfEntries, err := loadPDF(pdfPath)
		if err != nil {
			return nil, err
		}
		entries = append(entries, pdfEntries...)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("corpus is empty")
	}
	return newIndex(entries, maxResults), nil
}

func loadRemedies(path string) ([]entry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}

	var file fileFormat
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse corpus: %w", err)
	}

	entries := make([]entry, 0, len(file.Remedies))
	for i, remedy := range file.Remedies {
		text := strings.TrimSpace(remedy.Text)
		if text == "" {
			return nil, fmt.Errorf("remedy %d has no text", i)
		}
		condition := strings.ToLower(strings.TrimSpace(remedy.Condition))
		keywords := make([]string, 0, len(remedy.Keywords))
		for _, kw := range remedy.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				keywords = append(keywords, kw)
			}
		}
		entries = append(entries, buildEntry(condition, keywords, text))
	}
	return entries, nil
}

func buildEntry(condition string, keywords []string, text string) entry {
	searchable := append([]string{condition, text}, keywords...)
	return entry{
		condition: condition,
		keywords:  keywords,
		text:      text,
		lowered:   strings.ToLower(text),
		tokens:    toTokenSet(strings.Join(searchable, " ")),
	}
}

func loadPDF(path string) ([]entry, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus pdf: %w", err)
	}
	defer f.Close()

	plain, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("extract corpus pdf: %w", err)
	}

	var b strings.Builder
	if _, err := io.Copy(&b, plain); err != nil {
		return nil, fmt.Errorf("read corpus pdf: %w", err)
	}

	passages := splitPassages(b.String(), maxPassageChars)
	entries := make([]entry, 0, len(passages))
	for _, passage := range passages {
		entries = append(entries, buildEntry("", nil, passage))
	}
	return entries, nil
}

// splitPassages packs sentences into passages of at most maxChars. PDF
// extraction flattens layout, so sentence boundaries are the only reliable
// seams; a single oversized sentence falls back to a rune window.
func splitPassages(text string, maxChars int) []string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return nil
	}
	if maxChars <= 0 {
		maxChars = maxPassageChars
	}

	var passages []string
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			passages = append(passages, strings.TrimSpace(b.String()))
			b.Reset()
		}
	}

	for _, sentence := range splitSentences(text) {
		if len(sentence) > maxChars {
			flush()
			passages = append(passages, windowSplit(sentence, maxChars)...)
			continue
		}
		if b.Len() > 0 && b.Len()+len(sentence)+1 > maxChars {
			flush()
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(sentence)
	}
	flush()
	return passages
}

func splitSentences(text string) []string {
	var out []string
	start := 0
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(text[start : i+1]); s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
	}
	if tail := strings.TrimSpace(text[start:]); tail != "" {
		out = append(out, tail)
	}
	return out
}

func windowSplit(text string, size int) []string {
	runes := []rune(text)
	out := make([]string, 0, len(runes)/size+1)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			out = append(out, chunk)
		}
	}
	return out
}
