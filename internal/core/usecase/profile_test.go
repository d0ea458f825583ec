package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/servvia/health-assistant/internal/core/domain"
)

func TestProfileManagerGetRequiresAccountID(t *testing.T) {
	manager := NewProfileManager(&profileStoreFake{}, testLogger())

	_, err := manager.Get(context.Background(), "  ")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestProfileManagerGetNotFoundPassesThrough(t *testing.T) {
	manager := NewProfileManager(&profileStoreFake{}, testLogger())

	_, err := manager.Get(context.Background(), "acc-1")
	if !domain.IsKind(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected profile not found, got %v", err)
	}
}

func TestProfileManagerUpsertCreateAuditsCreateAndConsent(t *testing.T) {
	store := &profileStoreFake{created: true}
	manager := NewProfileManager(store, testLogger())

	profile := &domain.MedicalProfile{AccountID: "acc-1", HasDiabetes: true, DataConsent: true}
	out, err := manager.Upsert(context.Background(), profile, "acc-1", "203.0.113.7")
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if out.Version != 1 {
		t.Fatalf("expected version 1 on create, got %d", out.Version)
	}
	if len(store.auditEntries) != 2 {
		t.Fatalf("expected create and consent audit entries, got %+v", store.auditEntries)
	}
	if store.auditEntries[0].Action != domain.ProfileAuditCreate {
		t.Fatalf("expected CREATE first, got %q", store.auditEntries[0].Action)
	}
	if store.auditEntries[1].Action != domain.ProfileAuditConsentGranted {
		t.Fatalf("expected CONSENT_GRANTED, got %q", store.auditEntries[1].Action)
	}
	if store.auditEntries[0].Actor != "acc-1" || store.auditEntries[0].RemoteIP != "203.0.113.7" {
		t.Fatalf("expected actor and remote IP recorded, got %+v", store.auditEntries[0])
	}
}

func TestProfileManagerUpsertUpdateAuditsConsentRevocation(t *testing.T) {
	store := &profileStoreFake{profile: &domain.MedicalProfile{AccountID: "acc-1", DataConsent: true, Version: 1}}
	manager := NewProfileManager(store, testLogger())

	next := &domain.MedicalProfile{AccountID: "acc-1", DataConsent: false}
	_, err := manager.Upsert(context.Background(), next, "staff:ops", "")
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if len(store.auditEntries) != 2 {
		t.Fatalf("expected update and consent audit entries, got %+v", store.auditEntries)
	}
	if store.auditEntries[0].Action != domain.ProfileAuditUpdate {
		t.Fatalf("expected UPDATE first, got %q", store.auditEntries[0].Action)
	}
	if store.auditEntries[1].Action != domain.ProfileAuditConsentRevoked {
		t.Fatalf("expected CONSENT_REVOKED, got %q", store.auditEntries[1].Action)
	}
}

func TestProfileManagerUpsertUnchangedConsentAuditsOnce(t *testing.T) {
	store := &profileStoreFake{profile: &domain.MedicalProfile{AccountID: "acc-1", DataConsent: true, Version: 3}}
	manager := NewProfileManager(store, testLogger())

	next := &domain.MedicalProfile{AccountID: "acc-1", DataConsent: true, HasDiabetes: true}
	_, err := manager.Upsert(context.Background(), next, "acc-1", "")
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if len(store.auditEntries) != 1 || store.auditEntries[0].Action != domain.ProfileAuditUpdate {
		t.Fatalf("expected a single UPDATE entry, got %+v", store.auditEntries)
	}
}

func TestProfileManagerUpsertRequiresAccountID(t *testing.T) {
	manager := NewProfileManager(&profileStoreFake{}, testLogger())

	if _, err := manager.Upsert(context.Background(), nil, "a", ""); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for nil profile, got %v", err)
	}
	if _, err := manager.Upsert(context.Background(), &domain.MedicalProfile{}, "a", ""); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for blank account id, got %v", err)
	}
}

func TestProfileManagerUpsertSurvivesAuditFailure(t *testing.T) {
	store := &profileStoreFake{created: true, auditErr: errors.New("audit table gone")}
	manager := NewProfileManager(store, testLogger())

	_, err := manager.Upsert(context.Background(), &domain.MedicalProfile{AccountID: "acc-1"}, "acc-1", "")
	if err != nil {
		t.Fatalf("audit failure must not fail the mutation, got %v", err)
	}
}

func TestProfileManagerDeleteAudits(t *testing.T) {
	store := &profileStoreFake{}
	manager := NewProfileManager(store, testLogger())

	if err := manager.Delete(context.Background(), "acc-1", "acc-1", "198.51.100.2"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(store.auditEntries) != 1 || store.auditEntries[0].Action != domain.ProfileAuditSoftDelete {
		t.Fatalf("expected a SOFT_DELETE entry, got %+v", store.auditEntries)
	}
}

func TestProfileManagerDeleteFailurePropagates(t *testing.T) {
	store := &profileStoreFake{deleteErr: domain.WrapError(domain.ErrProfileNotFound, "profile.delete", errors.New("no rows"))}
	manager := NewProfileManager(store, testLogger())

	err := manager.Delete(context.Background(), "acc-404", "acc-404", "")
	if !domain.IsKind(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected profile not found, got %v", err)
	}
	if len(store.auditEntries) != 0 {
		t.Fatalf("failed delete must not write audit entries, got %+v", store.auditEntries)
	}
}
