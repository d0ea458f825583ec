package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/servvia/health-assistant/internal/core/domain"
	"github.com/servvia/health-assistant/internal/core/ports"
)

// ProfileManager owns medical profile CRUD and its audit trail. Every
// mutation appends an audit entry naming the actor and remote IP; consent
// flips get their own entries so consent history is reconstructible.
type ProfileManager struct {
	store  ports.ProfileStore
	logger *slog.Logger
}

func NewProfileManager(store ports.ProfileStore, logger *slog.Logger) *ProfileManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileManager{store: store, logger: logger}
}

func (m *ProfileManager) Get(ctx context.Context, accountID string) (*domain.MedicalProfile, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "get profile", errors.New("account id is required"))
	}
	return m.store.GetProfile(ctx, accountID)
}

func (m *ProfileManager) Upsert(ctx context.Context, profile *domain.MedicalProfile, actor, remoteIP string) (*domain.MedicalProfile, error) {
	if profile == nil || strings.TrimSpace(profile.AccountID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upsert profile", errors.New("account id is required"))
	}

	previous, err := m.store.GetProfile(ctx, profile.AccountID)
	if err != nil && !domain.IsKind(err, domain.ErrProfileNotFound) {
		return nil, fmt.Errorf("load existing profile: %w", err)
	}

	created, err := m.store.UpsertProfile(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}

	action := domain.ProfileAuditUpdate
	if created {
		action = domain.ProfileAuditCreate
	}
	m.appendAudit(ctx, domain.ProfileAuditEntry{
		AccountID: profile.AccountID,
		Action:    action,
		Actor:     actor,
		RemoteIP:  remoteIP,
		Detail:    fmt.Sprintf("version %d", profile.Version),
	})

	if consentChanged(previous, profile) {
		consentAction := domain.ProfileAuditConsentRevoked
		if profile.DataConsent {
			consentAction = domain.ProfileAuditConsentGranted
		}
		m.appendAudit(ctx, domain.ProfileAuditEntry{
			AccountID: profile.AccountID,
			Action:    consentAction,
			Actor:     actor,
			RemoteIP:  remoteIP,
		})
	}

	return profile, nil
}

func (m *ProfileManager) Delete(ctx context.Context, accountID, actor, remoteIP string) error {
	if strings.TrimSpace(accountID) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "delete profile", errors.New("account id is required"))
	}

	if err := m.store.SoftDeleteProfile(ctx, accountID); err != nil {
		return fmt.Errorf("soft delete profile: %w", err)
	}

	m.appendAudit(ctx, domain.ProfileAuditEntry{
		AccountID: accountID,
		Action:    domain.ProfileAuditSoftDelete,
		Actor:     actor,
		RemoteIP:  remoteIP,
	})
	return nil
}

// appendAudit never fails the mutation it records; a broken audit table is a
// log line, not a user-facing error.
func (m *ProfileManager) appendAudit(ctx context.Context, entry domain.ProfileAuditEntry) {
	if err := m.store.AppendProfileAudit(ctx, entry); err != nil {
		m.logger.Warn("profile audit append failed",
			"account_id", entry.AccountID,
			"action", string(entry.Action),
			"error", err)
	}
}

func consentChanged(previous, next *domain.MedicalProfile) bool {
	if previous == nil {
		return next.DataConsent
	}
	return previous.DataConsent != next.DataConsent
}
