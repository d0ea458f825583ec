package domain

import (
	"errors"
	"fmt"
)

// Stage-level failure kinds. Every one of them is caught at a stage
// boundary inside the pipeline and downgraded to that stage's fallback;
// only ErrInvalidInput may escape the pipeline entry point.
var (
	ErrInvalidInput            = errors.New("invalid input")
	ErrProfileNotFound         = errors.New("profile not found")
	ErrTranslationUnavailable  = errors.New("translation unavailable")
	ErrRetrievalTransport      = errors.New("retrieval transport failure")
	ErrProfileUnavailable      = errors.New("profile store unavailable")
	ErrFilterInternal          = errors.New("safety filter internal failure")
	ErrGenerationUnavailable   = errors.New("generation unavailable")
	ErrLocalizationUnavailable = errors.New("localization unavailable")
	ErrTemporary               = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
