package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/bitebuddy/internal/models"
	"github.com/xuri/excelize/v2"
)

type stubExportDayReader struct {
	logs     []models.DailyLog
	err      error
	from, to time.Time
}

func (stub *stubExportDayReader) FetchRange(from time.Time, to time.Time) ([]models.DailyLog, error) {
	stub.from, stub.to = from, to
	if stub.err != nil {
		return nil, stub.err
	}
	result := make([]models.DailyLog, len(stub.logs))
	copy(result, stub.logs)
	return result, nil
}

type mapTranslator map[string]string

func (translator mapTranslator) Translate(_ string, key string) string {
	if value, ok := translator[key]; ok {
		return value
	}
	return key
}

func (translator mapTranslator) Translatef(language string, key string, args ...any) string {
	return fmt.Sprintf(translator.Translate(language, key), args...)
}

func exportFixtureLogs() []models.DailyLog {
	score := 8
	return []models.DailyLog{
		{
			Date:          time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
			TotalCalories: 650,
			Protein:       32.5,
			Carbs:         80,
			Fats:          12,
			WaterIntake:   750,
			Meals: []models.MealEntry{
				{
					ID:            uuid.New(),
					Timestamp:     time.Date(2025, time.January, 1, 8, 5, 0, 0, time.UTC),
					Type:          "Breakfast",
					TotalCalories: 650,
					Protein:       32.5,
					Carbs:         80,
					Fats:          12,
					HealthScore:   &score,
					FoodItems: []models.SavedFoodItem{
						{Name: "Oats", Quantity: "1 bowl", Calories: 350},
						{Name: "Eggs", Quantity: "2", Calories: 300},
					},
				},
			},
		},
		{Date: time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC)},
		{Date: time.Date(2025, time.January, 3, 0, 0, 0, 0, time.UTC), WaterIntake: 500},
	}
}

func TestExportBuildDaysSkipsEmptyDays(t *testing.T) {
	reader := &stubExportDayReader{logs: exportFixtureLogs()}
	service := NewExportService(reader, nil, time.UTC)
	now := time.Date(2025, time.January, 10, 12, 0, 0, 0, time.UTC)

	days, err := service.BuildDays(DateRange{}, now)
	if err != nil {
		t.Fatalf("BuildDays() unexpected error: %v", err)
	}
	if len(days) != 2 || days[0].Date != "2025-01-01" || days[1].Date != "2025-01-03" {
		t.Fatalf("BuildDays() = %+v, want 2025-01-01 and 2025-01-03", days)
	}
	if !reader.to.Equal(now) || reader.from.Year() != 1970 {
		t.Fatalf("range = %s..%s, want open start and now", reader.from, reader.to)
	}
	if meal := days[0].Meals[0]; meal.Time != "08:05" || len(meal.Items) != 2 || *meal.HealthScore != 8 {
		t.Fatalf("meal = %+v", meal)
	}

	summary := service.BuildSummary(days)
	if !summary.HasData || summary.TotalDays != 2 || summary.TotalMeals != 1 || summary.DateFrom != "2025-01-01" || summary.DateTo != "2025-01-03" {
		t.Fatalf("BuildSummary() = %+v", summary)
	}
}

func TestExportBuildDaysUsesGivenRange(t *testing.T) {
	reader := &stubExportDayReader{}
	service := NewExportService(reader, nil, time.UTC)
	from := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, time.February, 7, 0, 0, 0, 0, time.UTC)

	days, err := service.BuildDays(DateRange{From: &from, To: &to}, time.Now())
	if err != nil {
		t.Fatalf("BuildDays() unexpected error: %v", err)
	}
	if len(days) != 0 || !reader.from.Equal(from) || !reader.to.Equal(to) {
		t.Fatalf("range = %s..%s with %d days", reader.from, reader.to, len(days))
	}
	if summary := service.BuildSummary(days); summary.HasData {
		t.Fatalf("BuildSummary(empty) = %+v, want no data", summary)
	}
}

func TestExportBuildDaysPropagatesReaderError(t *testing.T) {
	readErr := errors.New("boom")
	service := NewExportService(&stubExportDayReader{err: readErr}, nil, time.UTC)
	if _, err := service.BuildDays(DateRange{}, time.Now()); !errors.Is(err, readErr) {
		t.Fatalf("expected reader error, got %v", err)
	}
}

func TestExportWriteCSV(t *testing.T) {
	service := NewExportService(&stubExportDayReader{logs: exportFixtureLogs()}, mapTranslator{"export.column.date": "Date"}, time.UTC)
	days, err := service.BuildDays(DateRange{}, time.Now())
	if err != nil {
		t.Fatalf("BuildDays() unexpected error: %v", err)
	}

	var output bytes.Buffer
	if err := service.WriteCSV(&output, days, "en"); err != nil {
		t.Fatalf("WriteCSV() unexpected error: %v", err)
	}

	records, err := csv.NewReader(&output).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("csv rows = %d, want header + 1 meal", len(records))
	}
	if records[0][0] != "Date" || len(records[0]) != len(exportMealColumnKeys) {
		t.Fatalf("header = %v", records[0])
	}
	want := []string{"2025-01-01", "Breakfast", "08:05", "650", "32.5", "80", "12", "8", "Oats (1 bowl) 350 kcal; Eggs (2) 300 kcal"}
	for index, value := range want {
		if records[1][index] != value {
			t.Fatalf("column %d = %q, want %q", index, records[1][index], value)
		}
	}
}

func TestExportWriteXLSX(t *testing.T) {
	translator := mapTranslator{"export.sheet.meals": "Meals", "export.sheet.days": "Days"}
	service := NewExportService(&stubExportDayReader{logs: exportFixtureLogs()}, translator, time.UTC)
	days, err := service.BuildDays(DateRange{}, time.Now())
	if err != nil {
		t.Fatalf("BuildDays() unexpected error: %v", err)
	}

	var output bytes.Buffer
	if err := service.WriteXLSX(&output, days, "en"); err != nil {
		t.Fatalf("WriteXLSX() unexpected error: %v", err)
	}

	workbook, err := excelize.OpenReader(bytes.NewReader(output.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer workbook.Close()

	meals, err := workbook.GetRows("Meals")
	if err != nil {
		t.Fatalf("GetRows(Meals): %v", err)
	}
	if len(meals) != 2 || meals[1][1] != "Breakfast" || meals[1][3] != "650" {
		t.Fatalf("meals sheet = %v", meals)
	}

	dayRows, err := workbook.GetRows("Days")
	if err != nil {
		t.Fatalf("GetRows(Days): %v", err)
	}
	if len(dayRows) != 3 || dayRows[2][0] != "2025-01-03" || dayRows[2][5] != "500" {
		t.Fatalf("days sheet = %v", dayRows)
	}
}
