package domain

// AssistantMessages holds the operator-tunable response copy served around
// retrieved content. Loaded from the lexicon file so deployments can adjust
// wording without a rebuild.
//
// Consult and AllFiltered are fmt templates taking (display name, original
// query); QuotePreamble and DisclaimerTemplate take a single value.
type AssistantMessages struct {
	Welcome            string `json:"welcome" yaml:"welcome"`
	Consult            string `json:"consult" yaml:"consult"`
	AllFiltered        string `json:"all_filtered" yaml:"all_filtered"`
	QuotePreamble      string `json:"quote_preamble" yaml:"quote_preamble"`
	DisclaimerTemplate string `json:"disclaimer_template" yaml:"disclaimer_template"`
}
