package domain

// Query is the immutable per-request input. It is created once at the
// pipeline entry and never mutated by any stage.
type Query struct {
	Text         string `json:"text"`
	AccountID    string `json:"account_id"`
	DisplayName  string `json:"display_name,omitempty"`
	LanguageHint string `json:"language_hint,omitempty"`
}

// DetectedLanguage is produced once by the normalizer and threaded through
// every later stage; the localizer targets this exact code rather than
// re-detecting.
type DetectedLanguage struct {
	Code       string  `json:"code"`
	Confidence float64 `json:"confidence"`
}

// PhraseEntry is a fast-path dictionary entry: a known domain phrase mapped
// directly to its canonical-language equivalent, short-circuiting remote
// detection for frequent vocabulary.
type PhraseEntry struct {
	Canonical string `json:"canonical" yaml:"canonical"`
	Language  string `json:"language" yaml:"language"`
}

// GenerationRequest carries everything the generation service needs. Query
// keeps the user's original phrasing for tone fidelity; RephrasedQuery is
// the canonical-language form retrieval ran on; Context is the joined top
// chunks.
type GenerationRequest struct {
	Query          string
	RephrasedQuery string
	DisplayName    string
	Context        string
}

// PipelineResult is the only object returned to callers. It is always
// populated: when every upstream stage fails, fallback text is substituted
// and Answer stays non-empty.
type PipelineResult struct {
	Answer          string           `json:"answer"`
	CanonicalAnswer string           `json:"canonical_answer"`
	Source          string           `json:"source"`
	Language        DetectedLanguage `json:"detected_language"`
	ProfileApplied  bool             `json:"medical_profile_applied"`
	ContentFiltered bool             `json:"content_filtered"`
	Generated       bool             `json:"ai_generated"`
	Greeting        bool             `json:"is_greeting"`
	FollowUps       []string         `json:"follow_up_questions,omitempty"`
}
