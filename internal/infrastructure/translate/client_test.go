package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/servvia/health-assistant/internal/core/domain"
)

func TestDetectReturnsBestCandidate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/detect" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"language":"en","confidence":9.0},{"language":"ES","confidence":87.0}]`))
	}))
	defer server.Close()

	client := New(server.URL, "", Options{})
	detected, err := client.Detect(context.Background(), "dolor de cabeza")
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if detected.Code != "es" {
		t.Fatalf("expected code es, got %q", detected.Code)
	}
	if detected.Confidence != 0.87 {
		t.Fatalf("expected percentage scaled to 0.87, got %v", detected.Confidence)
	}
}

func TestDetectNormalizesRegionalCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"language":"pt-BR","confidence":0.9}]`))
	}))
	defer server.Close()

	client := New(server.URL, "", Options{})
	detected, err := client.Detect(context.Background(), "dor de cabeca")
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if detected.Code != "pt" {
		t.Fatalf("expected regional suffix stripped, got %q", detected.Code)
	}
	if detected.Confidence != 0.9 {
		t.Fatalf("expected confidence kept as fraction, got %v", detected.Confidence)
	}
}

func TestDetectWrapsEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := New(server.URL, "", Options{})
	if _, err := client.Detect(context.Background(), "hello"); !domain.IsKind(err, domain.ErrTranslationUnavailable) {
		t.Fatalf("expected translation-unavailable kind, got %v", err)
	}
}

func TestTranslateSendsPayloadAndParsesResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translate" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload["q"] != "headache" || payload["source"] != "auto" || payload["target"] != "es" || payload["format"] != "text" {
			t.Fatalf("unexpected payload %v", payload)
		}
		if _, ok := payload["api_key"]; !ok {
			t.Fatalf("expected api key in payload")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"translatedText":" dolor de cabeza "}`))
	}))
	defer server.Close()

	client := New(server.URL, "secret", Options{})
	out, err := client.Translate(context.Background(), "headache", "ES")
	if err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if out != "dolor de cabeza" {
		t.Fatalf("expected trimmed translation, got %q", out)
	}
}

func TestTranslateWrapsHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(server.URL, "", Options{})
	_, err := client.Translate(context.Background(), "headache", "es")
	if !domain.IsKind(err, domain.ErrTranslationUnavailable) {
		t.Fatalf("expected translation-unavailable kind, got %v", err)
	}
}

func TestTranslateWrapsEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"translatedText":"  "}`))
	}))
	defer server.Close()

	client := New(server.URL, "", Options{})
	if _, err := client.Translate(context.Background(), "headache", "es"); !domain.IsKind(err, domain.ErrTranslationUnavailable) {
		t.Fatalf("expected translation-unavailable kind, got %v", err)
	}
}
