package app_test

import (
	"errors"
	"testing"

	"github.com/agencyos/growthmeter/app"
	"github.com/agencyos/growthmeter/domain/budget"
	"github.com/rs/zerolog"
)

func TestAllocatorService_DelegatesToEngine(t *testing.T) {
	svc := app.NewAllocatorService(zerolog.Nop(), nil)

	summary, err := svc.Allocate(1000, []budget.Channel{{Name: "a"}, {Name: "b"}}, budget.ModeEqual)
	if err != nil {
		t.Fatalf("Allocate() error: %v", err)
	}
	if len(summary.Allocations) != 2 {
		t.Errorf("allocations = %d, want 2", len(summary.Allocations))
	}
	if summary.TotalBudget != 1000 {
		t.Errorf("totalBudget = %.2f, want 1000", summary.TotalBudget)
	}
}

func TestAllocatorService_PropagatesValidationError(t *testing.T) {
	svc := app.NewAllocatorService(zerolog.Nop(), nil)

	_, err := svc.Allocate(-1, []budget.Channel{{Name: "a"}}, budget.ModeEqual)
	if !errors.Is(err, budget.ErrValidation) {
		t.Errorf("Allocate() = %v, want ErrValidation", err)
	}
}
