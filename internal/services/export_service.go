package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/terraincognita07/bitebuddy/internal/models"
	"github.com/xuri/excelize/v2"
)

var exportMealColumnKeys = []string{
	"export.column.date",
	"export.column.meal_type",
	"export.column.time",
	"export.column.calories",
	"export.column.protein",
	"export.column.carbs",
	"export.column.fats",
	"export.column.health_score",
	"export.column.items",
}

var exportDayColumnKeys = []string{
	"export.column.date",
	"export.column.calories",
	"export.column.protein",
	"export.column.carbs",
	"export.column.fats",
	"export.column.water",
}

type ExportDayReader interface {
	FetchRange(from time.Time, to time.Time) ([]models.DailyLog, error)
}

type ExportService struct {
	days       ExportDayReader
	translator Translator
	location   *time.Location
}

func NewExportService(days ExportDayReader, translator Translator, location *time.Location) *ExportService {
	if location == nil {
		location = time.UTC
	}
	return &ExportService{days: days, translator: translator, location: location}
}

type ExportMeal struct {
	ID            string            `json:"id"`
	Type          string            `json:"meal_type"`
	Time          string            `json:"time"`
	TotalCalories int               `json:"total_calories"`
	Protein       float64           `json:"protein"`
	Carbs         float64           `json:"carbs"`
	Fats          float64           `json:"fats"`
	HealthScore   *int              `json:"health_score,omitempty"`
	Items         []models.FoodItem `json:"items"`
}

type ExportDay struct {
	Date          string       `json:"date"`
	TotalCalories int          `json:"total_calories"`
	Protein       float64      `json:"protein"`
	Carbs         float64      `json:"carbs"`
	Fats          float64      `json:"fats"`
	WaterIntake   int          `json:"water_intake_ml"`
	Meals         []ExportMeal `json:"meals"`
}

type ExportSummary struct {
	TotalDays  int    `json:"total_days"`
	TotalMeals int    `json:"total_meals"`
	HasData    bool   `json:"has_data"`
	DateFrom   string `json:"date_from"`
	DateTo     string `json:"date_to"`
}

// BuildDays loads the ledger for dateRange. An open start reaches the
// beginning of the ledger and an open end stops at now.
func (service *ExportService) BuildDays(dateRange DateRange, now time.Time) ([]ExportDay, error) {
	rangeFrom := time.Date(1970, time.January, 1, 0, 0, 0, 0, service.location)
	if dateRange.From != nil {
		rangeFrom = *dateRange.From
	}
	rangeTo := now
	if dateRange.To != nil {
		rangeTo = *dateRange.To
	}

	logs, err := service.days.FetchRange(rangeFrom, rangeTo)
	if err != nil {
		return nil, err
	}

	days := make([]ExportDay, 0, len(logs))
	for _, dailyLog := range logs {
		if len(dailyLog.Meals) == 0 && dailyLog.WaterIntake == 0 {
			continue
		}
		days = append(days, service.exportDay(dailyLog))
	}
	return days, nil
}

func (service *ExportService) BuildSummary(days []ExportDay) ExportSummary {
	if len(days) == 0 {
		return ExportSummary{}
	}
	summary := ExportSummary{
		TotalDays: len(days),
		HasData:   true,
		DateFrom:  days[0].Date,
		DateTo:    days[len(days)-1].Date,
	}
	for _, day := range days {
		summary.TotalMeals += len(day.Meals)
	}
	return summary
}

// WriteCSV writes one row per meal entry.
func (service *ExportService) WriteCSV(output io.Writer, days []ExportDay, language string) error {
	writer := csv.NewWriter(output)
	if err := writer.Write(service.headers(exportMealColumnKeys, language)); err != nil {
		return err
	}
	for _, day := range days {
		for _, meal := range day.Meals {
			if err := writer.Write(exportMealColumns(day, meal)); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteXLSX writes a workbook with a meals sheet and a day totals sheet.
func (service *ExportService) WriteXLSX(output io.Writer, days []ExportDay, language string) error {
	workbook := excelize.NewFile()
	defer workbook.Close()

	mealsSheet := service.translate(language, "export.sheet.meals")
	daysSheet := service.translate(language, "export.sheet.days")
	if err := workbook.SetSheetName("Sheet1", mealsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := workbook.NewSheet(daysSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	if err := setSheetRow(workbook, mealsSheet, 1, toCells(service.headers(exportMealColumnKeys, language))); err != nil {
		return err
	}
	if err := setSheetRow(workbook, daysSheet, 1, toCells(service.headers(exportDayColumnKeys, language))); err != nil {
		return err
	}

	mealRow := 2
	for dayIndex, day := range days {
		for _, meal := range day.Meals {
			cells := []any{day.Date, meal.Type, meal.Time, meal.TotalCalories, meal.Protein, meal.Carbs, meal.Fats, healthScoreCell(meal.HealthScore), exportItemsLabel(meal.Items)}
			if err := setSheetRow(workbook, mealsSheet, mealRow, cells); err != nil {
				return err
			}
			mealRow++
		}

		cells := []any{day.Date, day.TotalCalories, day.Protein, day.Carbs, day.Fats, day.WaterIntake}
		if err := setSheetRow(workbook, daysSheet, dayIndex+2, cells); err != nil {
			return err
		}
	}

	if _, err := workbook.WriteTo(output); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func (service *ExportService) exportDay(dailyLog models.DailyLog) ExportDay {
	day := ExportDay{
		Date:          DateAtLocation(dailyLog.Date, service.location).Format(DateLayout),
		TotalCalories: dailyLog.TotalCalories,
		Protein:       dailyLog.Protein,
		Carbs:         dailyLog.Carbs,
		Fats:          dailyLog.Fats,
		WaterIntake:   dailyLog.WaterIntake,
		Meals:         make([]ExportMeal, 0, len(dailyLog.Meals)),
	}
	for _, entry := range dailyLog.Meals {
		items := make([]models.FoodItem, 0, len(entry.FoodItems))
		for _, item := range entry.FoodItems {
			items = append(items, models.FoodItem{Name: item.Name, Quantity: item.Quantity, Calories: item.Calories})
		}
		day.Meals = append(day.Meals, ExportMeal{
			ID:            entry.ID.String(),
			Type:          entry.Type,
			Time:          entry.Timestamp.In(service.location).Format("15:04"),
			TotalCalories: entry.TotalCalories,
			Protein:       entry.Protein,
			Carbs:         entry.Carbs,
			Fats:          entry.Fats,
			HealthScore:   entry.HealthScore,
			Items:         items,
		})
	}
	return day
}

func (service *ExportService) headers(keys []string, language string) []string {
	headers := make([]string, 0, len(keys))
	for _, key := range keys {
		headers = append(headers, service.translate(language, key))
	}
	return headers
}

func (service *ExportService) translate(language string, key string) string {
	if service.translator == nil {
		return key
	}
	return service.translator.Translate(language, key)
}

func exportMealColumns(day ExportDay, meal ExportMeal) []string {
	healthScore := ""
	if meal.HealthScore != nil {
		healthScore = strconv.Itoa(*meal.HealthScore)
	}
	return []string{
		day.Date,
		meal.Type,
		meal.Time,
		strconv.Itoa(meal.TotalCalories),
		formatMacro(meal.Protein),
		formatMacro(meal.Carbs),
		formatMacro(meal.Fats),
		healthScore,
		exportItemsLabel(meal.Items),
	}
}

func exportItemsLabel(items []models.FoodItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		label := item.Name
		if quantity := strings.TrimSpace(item.Quantity); quantity != "" {
			label += " (" + quantity + ")"
		}
		parts = append(parts, fmt.Sprintf("%s %d kcal", label, item.Calories))
	}
	return strings.Join(parts, "; ")
}

func formatMacro(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func healthScoreCell(score *int) any {
	if score == nil {
		return ""
	}
	return *score
}

func toCells(values []string) []any {
	cells := make([]any, 0, len(values))
	for _, value := range values {
		cells = append(cells, value)
	}
	return cells
}

func setSheetRow(workbook *excelize.File, sheet string, row int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := workbook.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
