package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/servvia/health-assistant/internal/core/domain"
	"github.com/servvia/health-assistant/internal/core/ports"
)

const defaultSubstituteConfidence = 0.8

// SubstituteCatalog serves safe ingredient alternatives for contraindicated
// ones, e.g. stevia for sugar under diabetes.
type SubstituteCatalog struct {
	store ports.SubstituteStore
}

func NewSubstituteCatalog(store ports.SubstituteStore) *SubstituteCatalog {
	return &SubstituteCatalog{store: store}
}

func (c *SubstituteCatalog) List(ctx context.Context, ingredient, condition string) ([]domain.IngredientSubstitute, error) {
	subs, err := c.store.ListSubstitutes(ctx, strings.TrimSpace(ingredient), strings.TrimSpace(condition))
	if err != nil {
		return nil, fmt.Errorf("list substitutes: %w", err)
	}
	return subs, nil
}

func (c *SubstituteCatalog) Create(ctx context.Context, sub *domain.IngredientSubstitute) (*domain.IngredientSubstitute, error) {
	if sub == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create substitute", errors.New("substitute is required"))
	}

	sub.Ingredient = strings.ToLower(strings.TrimSpace(sub.Ingredient))
	sub.Substitute = strings.ToLower(strings.TrimSpace(sub.Substitute))
	sub.Condition = strings.ToLower(strings.TrimSpace(sub.Condition))
	if sub.Ingredient == "" || sub.Substitute == "" || sub.Condition == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create substitute", errors.New("ingredient, substitute and condition are required"))
	}
	if sub.Confidence <= 0 {
		sub.Confidence = defaultSubstituteConfidence
	}
	if sub.Confidence > 1 {
		sub.Confidence = 1
	}

	if err := c.store.CreateSubstitute(ctx, sub); err != nil {
		return nil, fmt.Errorf("create substitute: %w", err)
	}
	return sub, nil
}
