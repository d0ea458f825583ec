package config

import "testing"

func TestLoadIncludesPipelineDefaults(t *testing.T) {
	t.Setenv("CANONICAL_LANGUAGE", "")
	t.Setenv("DETECT_CONFIDENCE_FLOOR", "")
	t.Setenv("KNOWLEDGE_RETRY_ATTEMPTS", "")
	t.Setenv("CORPUS_MAX_RESULTS", "")
	t.Setenv("GENERATION_CONTEXT_TOP_N", "")

	cfg := Load()
	if cfg.CanonicalLanguage != "en" {
		t.Fatalf("expected default canonical language en, got %q", cfg.CanonicalLanguage)
	}
	if cfg.DetectConfidenceFloor != 0.5 {
		t.Fatalf("expected default confidence floor 0.5, got %v", cfg.DetectConfidenceFloor)
	}
	if cfg.KnowledgeRetryAttempts != 3 {
		t.Fatalf("expected default knowledge retry attempts 3, got %d", cfg.KnowledgeRetryAttempts)
	}
	if cfg.CorpusMaxResults != 5 {
		t.Fatalf("expected default corpus max results 5, got %d", cfg.CorpusMaxResults)
	}
	if cfg.GenerationContextTopN != 5 {
		t.Fatalf("expected default generation context top n 5, got %d", cfg.GenerationContextTopN)
	}
}

func TestLoadParsesPipelineOverrides(t *testing.T) {
	t.Setenv("CANONICAL_LANGUAGE", "es")
	t.Setenv("DETECT_CONFIDENCE_FLOOR", "0.72")
	t.Setenv("KNOWLEDGE_RETRY_ATTEMPTS", "5")
	t.Setenv("API_RATE_LIMIT_RPS", "12.5")

	cfg := Load()
	if cfg.CanonicalLanguage != "es" {
		t.Fatalf("expected canonical language override, got %q", cfg.CanonicalLanguage)
	}
	if cfg.DetectConfidenceFloor != 0.72 {
		t.Fatalf("expected confidence floor 0.72, got %v", cfg.DetectConfidenceFloor)
	}
	if cfg.KnowledgeRetryAttempts != 5 {
		t.Fatalf("expected knowledge retry attempts 5, got %d", cfg.KnowledgeRetryAttempts)
	}
	if cfg.APIRateLimitRPS != 12.5 {
		t.Fatalf("expected rate limit rps 12.5, got %v", cfg.APIRateLimitRPS)
	}
}

func TestLoadAllowsDisablingOptionalServices(t *testing.T) {
	t.Setenv("TRANSLATE_URL", "")
	t.Setenv("KNOWLEDGE_URL", "")

	cfg := Load()
	if cfg.TranslateURL != "" {
		t.Fatalf("expected explicitly empty translate url to stay empty, got %q", cfg.TranslateURL)
	}
	if cfg.KnowledgeURL != "" {
		t.Fatalf("expected explicitly empty knowledge url to stay empty, got %q", cfg.KnowledgeURL)
	}
}

func TestLoadIgnoresMalformedNumericValues(t *testing.T) {
	t.Setenv("DETECT_CONFIDENCE_FLOOR", "not-a-number")
	t.Setenv("STAGE_TIMEOUT_SECONDS", "soon")

	cfg := Load()
	if cfg.DetectConfidenceFloor != 0.5 {
		t.Fatalf("expected malformed float to fall back to 0.5, got %v", cfg.DetectConfidenceFloor)
	}
	if cfg.StageTimeoutSeconds != 10 {
		t.Fatalf("expected malformed int to fall back to 10, got %d", cfg.StageTimeoutSeconds)
	}
}
