package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/servvia/health-assistant/internal/core/domain"
)

type SubstituteRepository struct {
	db *sql.DB
}

func NewSubstituteRepository(db *sql.DB) *SubstituteRepository {
	return &SubstituteRepository{db: db}
}

func (r *SubstituteRepository) ListSubstitutes(ctx context.Context, ingredient, condition string) ([]domain.IngredientSubstitute, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, ingredient, substitute, reason, condition, confidence, created_at
FROM ingredient_substitutes
WHERE ($1 = '' OR lower(ingredient) = lower($1))
  AND ($2 = '' OR condition = $2)
ORDER BY confidence DESC, created_at DESC
LIMIT 50
`, ingredient, condition)
	if err != nil {
		return nil, fmt.Errorf("query substitutes: %w", err)
	}
	defer rows.Close()

	var out []domain.IngredientSubstitute
	for rows.Next() {
		var sub domain.IngredientSubstitute
		if err := rows.Scan(&sub.ID, &sub.Ingredient, &sub.Substitute, &sub.Reason, &sub.Condition, &sub.Confidence, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan substitute: %w", err)
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate substitutes: %w", err)
	}
	return out, nil
}

func (r *SubstituteRepository) CreateSubstitute(ctx context.Context, sub *domain.IngredientSubstitute) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO ingredient_substitutes (id, ingredient, substitute, reason, condition, confidence, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, sub.ID, sub.Ingredient, sub.Substitute, sub.Reason, sub.Condition, sub.Confidence, sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert substitute: %w", err)
	}
	return nil
}
