package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/servvia/health-assistant/internal/core/domain"
)

type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *ProfileRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082501)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS medical_profiles (
	account_id TEXT PRIMARY KEY,
	has_diabetes BOOLEAN NOT NULL DEFAULT FALSE,
	has_hypertension BOOLEAN NOT NULL DEFAULT FALSE,
	has_heart_disease BOOLEAN NOT NULL DEFAULT FALSE,
	has_kidney_disease BOOLEAN NOT NULL DEFAULT FALSE,
	is_pregnant BOOLEAN NOT NULL DEFAULT FALSE,
	is_breastfeeding BOOLEAN NOT NULL DEFAULT FALSE,
	is_vegetarian BOOLEAN NOT NULL DEFAULT FALSE,
	is_vegan BOOLEAN NOT NULL DEFAULT FALSE,
	allergies JSONB NOT NULL DEFAULT '[]'::jsonb,
	current_medications JSONB NOT NULL DEFAULT '[]'::jsonb,
	data_consent BOOLEAN NOT NULL DEFAULT FALSE,
	version INTEGER NOT NULL DEFAULT 1,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	deleted_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS profile_audit (
	id TEXT PRIMARY KEY,
	account_id TEXT NOT NULL,
	action TEXT NOT NULL,
	actor TEXT NOT NULL,
	remote_ip TEXT,
	detail TEXT,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_profile_audit_account ON profile_audit(account_id, created_at DESC);

CREATE TABLE IF NOT EXISTS pipeline_audits (
	request_id TEXT PRIMARY KEY,
	account_id TEXT NOT NULL,
	language TEXT NOT NULL,
	source TEXT NOT NULL,
	profile_applied BOOLEAN NOT NULL,
	content_filtered BOOLEAN NOT NULL,
	unsafe_degraded BOOLEAN NOT NULL,
	greeting BOOLEAN NOT NULL,
	stages JSONB NOT NULL DEFAULT '[]'::jsonb,
	started_at TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_pipeline_audits_account ON pipeline_audits(account_id, started_at DESC);

CREATE TABLE IF NOT EXISTS ingredient_substitutes (
	id TEXT PRIMARY KEY,
	ingredient TEXT NOT NULL,
	substitute TEXT NOT NULL,
	reason TEXT,
	condition TEXT NOT NULL DEFAULT '',
	confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_substitutes_ingredient ON ingredient_substitutes(lower(ingredient));
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *ProfileRepository) GetProfile(ctx context.Context, accountID string) (*domain.MedicalProfile, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT account_id, has_diabetes, has_hypertension, has_heart_disease, has_kidney_disease,
	is_pregnant, is_breastfeeding, is_vegetarian, is_vegan,
	allergies, current_medications, data_consent, version, created_at, updated_at
FROM medical_profiles
WHERE account_id = $1 AND deleted_at IS NULL
`, accountID)

	var profile domain.MedicalProfile
	var allergiesRaw, medicationsRaw []byte

	err := row.Scan(
		&profile.AccountID, &profile.HasDiabetes, &profile.HasHypertension, &profile.HasHeartDisease, &profile.HasKidneyDisease,
		&profile.IsPregnant, &profile.IsBreastfeeding, &profile.IsVegetarian, &profile.IsVegan,
		&allergiesRaw, &medicationsRaw, &profile.DataConsent, &profile.Version, &profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrProfileNotFound, "profile.get", fmt.Errorf("no profile for account %s", accountID))
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}

	if err := json.Unmarshal(allergiesRaw, &profile.Allergies); err != nil {
		return nil, fmt.Errorf("unmarshal allergies: %w", err)
	}
	if err := json.Unmarshal(medicationsRaw, &profile.CurrentMedications); err != nil {
		return nil, fmt.Errorf("unmarshal medications: %w", err)
	}
	return &profile, nil
}

func (r *ProfileRepository) UpsertProfile(ctx context.Context, profile *domain.MedicalProfile) (bool, error) {
	allergiesJSON, err := json.Marshal(emptyIfNil(profile.Allergies))
	if err != nil {
		return false, fmt.Errorf("marshal allergies: %w", err)
	}
	medicationsJSON, err := json.Marshal(emptyIfNil(profile.CurrentMedications))
	if err != nil {
		return false, fmt.Errorf("marshal medications: %w", err)
	}

	now := time.Now().UTC()
	row := r.db.QueryRowContext(ctx, `
INSERT INTO medical_profiles (
	account_id, has_diabetes, has_hypertension, has_heart_disease, has_kidney_disease,
	is_pregnant, is_breastfeeding, is_vegetarian, is_vegan,
	allergies, current_medications, data_consent, version, created_at, updated_at, deleted_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,1,$13,$13,NULL)
ON CONFLICT (account_id) DO UPDATE SET
	has_diabetes = EXCLUDED.has_diabetes,
	has_hypertension = EXCLUDED.has_hypertension,
	has_heart_disease = EXCLUDED.has_heart_disease,
	has_kidney_disease = EXCLUDED.has_kidney_disease,
	is_pregnant = EXCLUDED.is_pregnant,
	is_breastfeeding = EXCLUDED.is_breastfeeding,
	is_vegetarian = EXCLUDED.is_vegetarian,
	is_vegan = EXCLUDED.is_vegan,
	allergies = EXCLUDED.allergies,
	current_medications = EXCLUDED.current_medications,
	data_consent = EXCLUDED.data_consent,
	version = medical_profiles.version + 1,
	updated_at = EXCLUDED.updated_at,
	deleted_at = NULL
RETURNING version, created_at
`,
		profile.AccountID, profile.HasDiabetes, profile.HasHypertension, profile.HasHeartDisease, profile.HasKidneyDisease,
		profile.IsPregnant, profile.IsBreastfeeding, profile.IsVegetarian, profile.IsVegan,
		allergiesJSON, medicationsJSON, profile.DataConsent, now,
	)

	if err := row.Scan(&profile.Version, &profile.CreatedAt); err != nil {
		return false, fmt.Errorf("upsert profile: %w", err)
	}
	profile.UpdatedAt = now
	return profile.Version == 1, nil
}

func (r *ProfileRepository) SoftDeleteProfile(ctx context.Context, accountID string) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
UPDATE medical_profiles
SET deleted_at = $2, updated_at = $2
WHERE account_id = $1 AND deleted_at IS NULL
`, accountID, now)
	if err != nil {
		return fmt.Errorf("soft delete profile: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("soft delete rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrProfileNotFound, "profile.delete", fmt.Errorf("no profile for account %s", accountID))
	}
	return nil
}

func (r *ProfileRepository) AppendProfileAudit(ctx context.Context, entry domain.ProfileAuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO profile_audit (id, account_id, action, actor, remote_ip, detail, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, entry.ID, entry.AccountID, string(entry.Action), entry.Actor, entry.RemoteIP, entry.Detail, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert profile audit: %w", err)
	}
	return nil
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
