package ports

import (
	"context"

	"github.com/servvia/health-assistant/internal/core/domain"
)

// HealthAnswerer is the inbound contract for the query-processing pipeline.
// It returns an error only when the query itself is invalid; every
// stage-level failure is downgraded inside the pipeline.
type HealthAnswerer interface {
	Answer(ctx context.Context, query domain.Query) (*domain.PipelineResult, error)
}

// ProfileService is the inbound contract for medical profile management.
// Actor and remote IP feed the profile audit trail.
type ProfileService interface {
	Get(ctx context.Context, accountID string) (*domain.MedicalProfile, error)
	Upsert(ctx context.Context, profile *domain.MedicalProfile, actor, remoteIP string) (*domain.MedicalProfile, error)
	Delete(ctx context.Context, accountID, actor, remoteIP string) error
}

// AuditRecorder is the inbound contract for the worker that persists
// pipeline audit records consumed from the queue.
type AuditRecorder interface {
	Record(ctx context.Context, record domain.PipelineAudit) error
}
