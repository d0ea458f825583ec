package domain

import "time"

type PipelineStage string

const (
	StageNormalize PipelineStage = "normalize"
	StageProfile   PipelineStage = "profile"
	StageRetrieve  PipelineStage = "retrieve"
	StageFilter    PipelineStage = "filter"
	StageCompose   PipelineStage = "compose"
	StageLocalize  PipelineStage = "localize"
)

// StageTrace records one pipeline stage execution for audit. FallbackUsed
// means the stage's fallback value was substituted, whether because the
// stage failed or because its capability was unavailable.
type StageTrace struct {
	Stage        PipelineStage `json:"stage"`
	StartedAt    time.Time     `json:"started_at"`
	EndedAt      time.Time     `json:"ended_at"`
	Success      bool          `json:"success"`
	FallbackUsed bool          `json:"fallback_used"`
	Detail       string        `json:"detail,omitempty"`
}

// PipelineAudit is the orchestrator's per-request diagnostic record. It is
// a side output published fire-and-forget; callers that only need the
// answer never see it.
type PipelineAudit struct {
	RequestID       string       `json:"request_id"`
	AccountID       string       `json:"account_id"`
	Language        string       `json:"language"`
	Source          string       `json:"source"`
	ProfileApplied  bool         `json:"profile_applied"`
	ContentFiltered bool         `json:"content_filtered"`
	UnsafeDegraded  bool         `json:"unsafe_degraded"`
	Greeting        bool         `json:"greeting"`
	Stages          []StageTrace `json:"stages"`
	StartedAt       time.Time    `json:"started_at"`
	CompletedAt     time.Time    `json:"completed_at"`
}
