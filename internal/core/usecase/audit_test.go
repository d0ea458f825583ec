package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/servvia/health-assistant/internal/core/domain"
)

type auditStoreFake struct {
	saved []domain.PipelineAudit
	err   error
}

func (f *auditStoreFake) SavePipelineAudit(_ context.Context, record domain.PipelineAudit) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, record)
	return nil
}

func TestPipelineAuditRecorderRequiresRequestID(t *testing.T) {
	recorder := NewPipelineAuditRecorder(&auditStoreFake{})

	err := recorder.Record(context.Background(), domain.PipelineAudit{})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestPipelineAuditRecorderSaves(t *testing.T) {
	store := &auditStoreFake{}
	recorder := NewPipelineAuditRecorder(store)

	record := domain.PipelineAudit{RequestID: "req-1", Source: domain.SourcePrimary}
	if err := recorder.Record(context.Background(), record); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if len(store.saved) != 1 || store.saved[0].RequestID != "req-1" {
		t.Fatalf("expected record saved, got %+v", store.saved)
	}
}

func TestPipelineAuditRecorderStoreFailurePropagates(t *testing.T) {
	recorder := NewPipelineAuditRecorder(&auditStoreFake{err: errors.New("insert failed")})

	err := recorder.Record(context.Background(), domain.PipelineAudit{RequestID: "req-1"})
	if err == nil {
		t.Fatalf("expected store error")
	}
}
