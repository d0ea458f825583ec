package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/servvia/health-assistant/internal/core/domain"
)

type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// SavePipelineAudit persists one per-request diagnostic record. Conflicts
// on request id are ignored so a republished record cannot fail the worker.
func (r *AuditRepository) SavePipelineAudit(ctx context.Context, record domain.PipelineAudit) error {
	stagesJSON, err := json.Marshal(record.Stages)
	if err != nil {
		return fmt.Errorf("marshal stage traces: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO pipeline_audits (
	request_id, account_id, language, source, profile_applied, content_filtered,
	unsafe_degraded, greeting, stages, started_at, completed_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (request_id) DO NOTHING
`,
		record.RequestID, record.AccountID, record.Language, record.Source, record.ProfileApplied, record.ContentFiltered,
		record.UnsafeDegraded, record.Greeting, stagesJSON, record.StartedAt, record.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert pipeline audit: %w", err)
	}
	return nil
}
