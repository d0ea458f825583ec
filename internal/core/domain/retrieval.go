package domain

// Content source labels, in fallback-chain order.
const (
	SourcePrimary  = "primary"
	SourceFallback = "fallback"
	SourceNone     = "none"
)

// ContentChunk is an opaque piece of retrieved text. Score is a relevance
// value in [0,1]; retriever output is ordered most relevant first.
type ContentChunk struct {
	Text   string  `json:"text"`
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

// RetrievedContent is the retriever's aggregate output. Chunks may be empty;
// that is a valid result, not an error. Source names the source that
// produced the chunks, or SourceNone when both sources came back empty.
type RetrievedContent struct {
	Chunks []ContentChunk `json:"chunks"`
	Source string         `json:"source"`
}
