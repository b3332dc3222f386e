package tags

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/terraincognita07/bitebuddy/internal/models"
)

var ErrSummaryDecode = errors.New("decode meal summary")

// wireSummary accepts both the camelCase keys of the tag grammar and the
// snake_case keys some models emit. Canonical keys win when both appear.
// Pointers tell a missing or null key apart from a zero value.
type wireSummary struct {
	MealType           *string         `json:"mealType"`
	MealTypeSnake      *string         `json:"meal_type"`
	TotalCalories      *int            `json:"totalCalories"`
	TotalCaloriesSnake *int            `json:"total_calories"`
	Protein            *float64        `json:"protein"`
	Carbs              *float64        `json:"carbs"`
	Fats               *float64        `json:"fats"`
	Date               *string         `json:"date"`
	Items              *[]wireFoodItem `json:"items"`
	HealthScore        *int            `json:"healthScore"`
	HealthScoreSnake   *int            `json:"health_score"`
}

type wireFoodItem struct {
	Name     *string `json:"name"`
	Quantity *string `json:"quantity"`
	Calories *int    `json:"calories"`
}

// DecodeMealSummary decodes the JSON body of a SUMMARY tag. Meal type,
// calories, the three macros and the item list are required; date and
// health score are optional. It is otherwise syntactic: totals are not
// checked against items and the date is not parsed. Every failure wraps
// ErrSummaryDecode.
func DecodeMealSummary(raw string) (models.MealSummary, error) {
	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return models.MealSummary{}, fmt.Errorf("%w: payload is not a JSON object", ErrSummaryDecode)
	}

	var wire wireSummary
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return models.MealSummary{}, fmt.Errorf("%w: %v", ErrSummaryDecode, err)
	}

	mealType := firstPresent(wire.MealType, wire.MealTypeSnake)
	totalCalories := firstPresent(wire.TotalCalories, wire.TotalCaloriesSnake)
	if missing := missingSummaryKeys(mealType, totalCalories, wire); len(missing) > 0 {
		return models.MealSummary{}, fmt.Errorf("%w: missing %s", ErrSummaryDecode, strings.Join(missing, ", "))
	}

	items := make([]models.FoodItem, 0, len(*wire.Items))
	for index, item := range *wire.Items {
		if item.Name == nil || item.Quantity == nil || item.Calories == nil {
			return models.MealSummary{}, fmt.Errorf("%w: item %d needs name, quantity and calories", ErrSummaryDecode, index)
		}
		items = append(items, models.FoodItem{Name: *item.Name, Quantity: *item.Quantity, Calories: *item.Calories})
	}

	summary := models.MealSummary{
		MealType:      *mealType,
		TotalCalories: *totalCalories,
		Protein:       *wire.Protein,
		Carbs:         *wire.Carbs,
		Fats:          *wire.Fats,
		Items:         items,
		HealthScore:   firstPresent(wire.HealthScore, wire.HealthScoreSnake),
	}
	if wire.Date != nil {
		summary.Date = *wire.Date
	}
	return summary, nil
}

func missingSummaryKeys(mealType *string, totalCalories *int, wire wireSummary) []string {
	var missing []string
	if mealType == nil {
		missing = append(missing, "mealType")
	}
	if totalCalories == nil {
		missing = append(missing, "totalCalories")
	}
	if wire.Protein == nil {
		missing = append(missing, "protein")
	}
	if wire.Carbs == nil {
		missing = append(missing, "carbs")
	}
	if wire.Fats == nil {
		missing = append(missing, "fats")
	}
	if wire.Items == nil || *wire.Items == nil {
		missing = append(missing, "items")
	}
	return missing
}

func firstPresent[T any](values ...*T) *T {
	for _, value := range values {
		if value != nil {
			return value
		}
	}
	return nil
}
