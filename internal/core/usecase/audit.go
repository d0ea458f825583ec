package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/servvia/health-assistant/internal/core/domain"
	"github.com/servvia/health-assistant/internal/core/ports"
)

// PipelineAuditRecorder persists pipeline audit records consumed from the
// queue. Records are idempotent on request ID, so redelivery is harmless.
type PipelineAuditRecorder struct {
	store ports.AuditStore
}

func NewPipelineAuditRecorder(store ports.AuditStore) *PipelineAuditRecorder {
	return &PipelineAuditRecorder{store: store}
}

func (r *PipelineAuditRecorder) Record(ctx context.Context, record domain.PipelineAudit) error {
	if record.RequestID == "" {
		return domain.WrapError(domain.ErrInvalidInput, "record pipeline audit", errors.New("request id is required"))
	}
	if err := r.store.SavePipelineAudit(ctx, record); err != nil {
		return fmt.Errorf("save pipeline audit: %w", err)
	}
	return nil
}
