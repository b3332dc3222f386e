package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/terraincognita07/bitebuddy/internal/services"
)

var ErrIngestEmptyInput = errors.New("no assistant response to ingest")

type ResponseApplier interface {
	ApplyResponse(raw string) (services.TurnResult, error)
}

// RunIngestCommand feeds a raw tagged assistant response into the ledger as
// if the model had just produced it, then prints what changed.
func RunIngestCommand(chat ResponseApplier, input io.Reader, out io.Writer) error {
	raw, err := io.ReadAll(input)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if strings.TrimSpace(string(raw)) == "" {
		return ErrIngestEmptyInput
	}

	result, err := chat.ApplyResponse(string(raw))
	if err != nil {
		return fmt.Errorf("apply response: %w", err)
	}

	fmt.Fprintf(out, "Reply: %s\n", result.Reply.Content)
	if result.Meal != nil {
		fmt.Fprintf(out, "Meal: %s %d kcal (%s)\n", result.Meal.Type, result.Meal.TotalCalories, result.MealRule)
	}
	if result.WaterLoggedML != nil {
		fmt.Fprintf(out, "Water: +%d ml\n", *result.WaterLoggedML)
	}
	if len(result.Suggestions) > 0 {
		fmt.Fprintf(out, "Suggestions: %s\n", strings.Join(result.Suggestions, ", "))
	}
	fmt.Fprintf(out, "Day %s: %d kcal, %d ml water\n",
		result.Day.Date.Format(services.DateLayout), result.Day.TotalCalories, result.Day.WaterIntake)
	return nil
}
