package lexicon

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validLexicon = `
messages:
  welcome: "Hello! Ask me about everyday health concerns."
  consult: "Please consult a healthcare professional for personalized advice."
greetings:
  - Hello
  - hi
condition_keywords:
  - fever
  - headache
phrases:
  "Dolor de Cabeza":
    canonical: headache
    language: es
conditions:
  diabetes:
    display_name: diabetes
    avoid:
      - Sugar
      - honey
follow_ups:
  content:
    - "What are the warning signs I should watch for?"
  generic:
    - "Should I consult a doctor for this?"
`

func writeLexicon(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "lexicon.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write lexicon file: %v", err)
	}
	return path
}

func TestNewStoreLoadsNormalizedSnapshot(t *testing.T) {
	path := writeLexicon(t, t.TempDir(), validLexicon)

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}

	rule, ok := store.Rules()["diabetes"]
	if !ok {
		t.Fatalf("expected diabetes rule in snapshot")
	}
	if len(rule.AvoidTerms) != 2 || rule.AvoidTerms[0] != "sugar" {
		t.Fatalf("expected lowercased avoid terms, got %v", rule.AvoidTerms)
	}
	if !strings.Contains(rule.Warning, "diabetes") {
		t.Fatalf("expected warning defaulted from display name, got %q", rule.Warning)
	}

	entry, ok := store.Phrases()["dolor de cabeza"]
	if !ok {
		t.Fatalf("expected phrase key lowercased in snapshot")
	}
	if entry.Canonical != "headache" || entry.Language != "es" {
		t.Fatalf("unexpected phrase entry %+v", entry)
	}

	greetings := store.Greetings()
	if len(greetings) != 2 || greetings[0] != "hello" {
		t.Fatalf("expected lowercased greetings, got %v", greetings)
	}

	msgs := store.Messages()
	if msgs.QuotePreamble != defaultQuotePreamble {
		t.Fatalf("expected default quote preamble, got %q", msgs.QuotePreamble)
	}
	if msgs.AllFiltered != defaultAllFiltered {
		t.Fatalf("expected default all-filtered message, got %q", msgs.AllFiltered)
	}
	if !strings.Contains(msgs.DisclaimerTemplate, "Medical Note") {
		t.Fatalf("expected default disclaimer template, got %q", msgs.DisclaimerTemplate)
	}
}

func TestReloadSwapsSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := writeLexicon(t, dir, validLexicon)

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}

	updated := strings.Replace(validLexicon, "- honey", "- honey\n      - jaggery", 1)
	writeLexicon(t, dir, updated)

	if err := store.Reload(); err != nil {
		t.Fatalf("Reload returned error: %v", err)
	}

	rule := store.Rules()["diabetes"]
	if len(rule.AvoidTerms) != 3 || rule.AvoidTerms[2] != "jaggery" {
		t.Fatalf("expected reloaded avoid terms, got %v", rule.AvoidTerms)
	}
}

func TestReloadKeepsOldSnapshotOnInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := writeLexicon(t, dir, validLexicon)

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}

	broken := strings.Replace(validLexicon, "display_name: diabetes", "display_name: \"\"", 1)
	writeLexicon(t, dir, broken)

	if err := store.Reload(); err == nil {
		t.Fatalf("expected reload error for missing display name")
	}

	if _, ok := store.Rules()["diabetes"]; !ok {
		t.Fatalf("expected previous snapshot to survive failed reload")
	}
}

func TestNewStoreFailsOnMissingFile(t *testing.T) {
	if _, err := NewStore(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing lexicon file")
	}
}

func TestBuildSnapshotRejectsEmptyFollowUps(t *testing.T) {
	content := strings.Replace(validLexicon, `  generic:
    - "Should I consult a doctor for this?"`, "  generic: []", 1)
	path := writeLexicon(t, t.TempDir(), content)

	if _, err := NewStore(path); err == nil {
		t.Fatalf("expected error for empty generic follow-up set")
	}
}
