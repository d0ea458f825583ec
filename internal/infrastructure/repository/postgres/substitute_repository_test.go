package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/servvia/health-assistant/internal/core/domain"
)

func TestSubstituteRepositoryListFiltersByIngredient(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewSubstituteRepository(db)
	rows := sqlmock.NewRows([]string{"id", "ingredient", "substitute", "reason", "condition", "confidence", "created_at"}).
		AddRow("sub-1", "honey", "stevia", "no glycemic load", "diabetes", 0.9, time.Now())

	mock.ExpectQuery("FROM ingredient_substitutes").
		WithArgs("honey", "diabetes").
		WillReturnRows(rows)

	subs, err := repo.ListSubstitutes(context.Background(), "honey", "diabetes")
	if err != nil {
		t.Fatalf("ListSubstitutes() error = %v", err)
	}
	if len(subs) != 1 || subs[0].Substitute != "stevia" {
		t.Fatalf("unexpected substitutes %v", subs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSubstituteRepositoryCreateGeneratesID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewSubstituteRepository(db)
	mock.ExpectExec("INSERT INTO ingredient_substitutes").
		WillReturnResult(sqlmock.NewResult(1, 1))

	sub := &domain.IngredientSubstitute{
		Ingredient: "sugar",
		Substitute: "stevia",
		Condition:  "diabetes",
		Confidence: 0.8,
	}
	if err := repo.CreateSubstitute(context.Background(), sub); err != nil {
		t.Fatalf("CreateSubstitute() error = %v", err)
	}
	if sub.ID == "" {
		t.Fatalf("expected generated id")
	}
	if sub.CreatedAt.IsZero() {
		t.Fatalf("expected created timestamp")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
