package services

import "strings"

type suggestionRule struct {
	keywords []string
	pick     func(lowered string) []string
}

func fixedChips(chips ...string) func(string) []string {
	return func(string) []string {
		return chips
	}
}

var bowlChips = []string{"Small Bowl", "Medium Bowl", "Large Bowl"}

// Evaluated in order; the first rule with a matching keyword wins.
var suggestionRules = []suggestionRule{
	{keywords: []string{"bowl", "plate"}, pick: fixedChips(bowlChips...)},
	{keywords: []string{"glass", "cup"}, pick: fixedChips("Half Glass", "Full Glass", "Mug")},
	{keywords: []string{"how many", "number of"}, pick: func(lowered string) []string {
		if strings.Contains(lowered, "egg") {
			return []string{"1 egg", "2 eggs", "3 eggs"}
		}
		return []string{"1", "2", "3", "4"}
	}},
	{keywords: []string{"size", "portion", "how much"}, pick: func(lowered string) []string {
		if containsAny(lowered, "sambhar", "curry", "dal") {
			return bowlChips
		}
		return []string{"Small", "Medium", "Large"}
	}},
	{keywords: []string{"logged", "added", "saved"}, pick: fixedChips("Add Water", "View History", "Check Goal")},
	{keywords: []string{"hello", "hi", "welcome"}, pick: fixedChips("Log Breakfast", "Log Lunch", "Log Snack")},
}

var defaultSuggestions = []string{"Log Meal", "View History", "My Goal"}

// FallbackSuggestions derives reply chips from the assistant text when the
// model sent none. Matching is case-insensitive substring matching, so "hi"
// also matches inside words such as "this".
func FallbackSuggestions(text string) []string {
	lowered := strings.ToLower(text)
	chips := defaultSuggestions
	for _, rule := range suggestionRules {
		if containsAny(lowered, rule.keywords...) {
			chips = rule.pick(lowered)
			break
		}
	}

	result := make([]string, len(chips))
	copy(result, chips)
	return result
}

func containsAny(text string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}
