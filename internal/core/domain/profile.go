package domain

import "time"

// MedicalProfile is a read-only snapshot of a user's known conditions,
// resolved once per request. Absence of a profile is a valid state
// (unfiltered personalization), not an error.
type MedicalProfile struct {
	AccountID          string     `json:"account_id"`
	HasDiabetes        bool       `json:"has_diabetes"`
	HasHypertension    bool       `json:"has_hypertension"`
	HasHeartDisease    bool       `json:"has_heart_disease"`
	HasKidneyDisease   bool       `json:"has_kidney_disease"`
	IsPregnant         bool       `json:"is_pregnant"`
	IsBreastfeeding    bool       `json:"is_breastfeeding"`
	IsVegetarian       bool       `json:"is_vegetarian"`
	IsVegan            bool       `json:"is_vegan"`
	Allergies          []string   `json:"allergies"`
	CurrentMedications []string   `json:"current_medications"`
	DataConsent        bool       `json:"data_consent"`
	Version            int        `json:"version"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	DeletedAt          *time.Time `json:"deleted_at,omitempty"`
}

// Condition keys used by the contraindication rule set. Breastfeeding and
// the dietary flags carry no rule set of their own; they are kept on the
// profile for completeness and future rules.
const (
	ConditionDiabetes      = "diabetes"
	ConditionHypertension  = "hypertension"
	ConditionHeartDisease  = "heart_disease"
	ConditionKidneyDisease = "kidney_disease"
	ConditionPregnancy     = "pregnancy"
)

// ActiveConditions returns the rule-set keys for every true condition flag,
// in stable order.
func (p *MedicalProfile) ActiveConditions() []string {
	if p == nil {
		return nil
	}
	out := make([]string, 0, 5)
	if p.HasDiabetes {
		out = append(out, ConditionDiabetes)
	}
	if p.HasHypertension {
		out = append(out, ConditionHypertension)
	}
	if p.HasHeartDisease {
		out = append(out, ConditionHeartDisease)
	}
	if p.HasKidneyDisease {
		out = append(out, ConditionKidneyDisease)
	}
	if p.IsPregnant {
		out = append(out, ConditionPregnancy)
	}
	return out
}

// HasRestrictions reports whether the profile carries anything the safety
// filter could act on.
func (p *MedicalProfile) HasRestrictions() bool {
	if p == nil {
		return false
	}
	return len(p.ActiveConditions()) > 0 || len(p.Allergies) > 0
}

type ProfileAuditAction string

const (
	ProfileAuditCreate         ProfileAuditAction = "CREATE"
	ProfileAuditUpdate         ProfileAuditAction = "UPDATE"
	ProfileAuditSoftDelete     ProfileAuditAction = "SOFT_DELETE"
	ProfileAuditConsentGranted ProfileAuditAction = "CONSENT_GRANTED"
	ProfileAuditConsentRevoked ProfileAuditAction = "CONSENT_REVOKED"
)

// ProfileAuditEntry records who changed a profile and how. Every profile
// mutation writes one.
type ProfileAuditEntry struct {
	ID        string             `json:"id"`
	AccountID string             `json:"account_id"`
	Action    ProfileAuditAction `json:"action"`
	Actor     string             `json:"actor"`
	RemoteIP  string             `json:"remote_ip,omitempty"`
	Detail    string             `json:"detail,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// IngredientSubstitute is a safe alternative for a contraindicated
// ingredient under a given condition.
type IngredientSubstitute struct {
	ID         string    `json:"id"`
	Ingredient string    `json:"ingredient"`
	Substitute string    `json:"substitute"`
	Reason     string    `json:"reason,omitempty"`
	Condition  string    `json:"condition"`
	Confidence float64   `json:"confidence"`
	CreatedAt  time.Time `json:"created_at"`
}
