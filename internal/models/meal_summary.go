package models

// MealSummary is decoded from model output and never persisted on its own.
type MealSummary struct {
	MealType      string     `json:"mealType"`
	TotalCalories int        `json:"totalCalories"`
	Protein       float64    `json:"protein"`
	Carbs         float64    `json:"carbs"`
	Fats          float64    `json:"fats"`
	Date          string     `json:"date,omitempty"`
	Items         []FoodItem `json:"items"`
	HealthScore   *int       `json:"healthScore,omitempty"`
}

type FoodItem struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Calories int    `json:"calories"`
}

func (summary MealSummary) Totals() MealTotals {
	return MealTotals{
		TotalCalories: summary.TotalCalories,
		Protein:       summary.Protein,
		Carbs:         summary.Carbs,
		Fats:          summary.Fats,
	}
}
