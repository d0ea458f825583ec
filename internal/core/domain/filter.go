package domain

// ConditionRule names one condition and the ingredient terms unsafe for it.
// DisplayName is the human-readable form used in disclaimers; Warning is the
// sentence shown when the condition caused content to be dropped.
type ConditionRule struct {
	DisplayName string   `json:"display_name" yaml:"display_name"`
	Warning     string   `json:"warning" yaml:"warning"`
	AvoidTerms  []string `json:"avoid" yaml:"avoid"`
}

// ContraindicationRuleSet maps condition keys to their rules. Static
// configuration data loaded from the lexicon, never user data.
type ContraindicationRuleSet map[string]ConditionRule

// FilterResult is the safety filter's output. SafeChunks is always an
// order-preserving subsequence of the filter input; filtering never invents
// or reorders content.
type FilterResult struct {
	SafeChunks  []ContentChunk `json:"safe_chunks"`
	Warnings    []string       `json:"warnings,omitempty"`
	Disclaimer  string         `json:"disclaimer,omitempty"`
	AllFiltered bool           `json:"all_filtered"`
}
