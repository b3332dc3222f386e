// Package tags parses the structured tags embedded in assistant replies.
package tags

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

const (
	SummaryTag      = "SUMMARY"
	TotalSummaryTag = "TOTAL SUMMARY"
)

var (
	waterLogPattern    = regexp.MustCompile(`<WATER_LOG>(\d+)</WATER_LOG>`)
	suggestionsPattern = regexp.MustCompile(`(?s)<SUGGESTIONS>(.*?)</SUGGESTIONS>`)

	// Tried in order; the first alias with a structural match wins.
	summaryPatterns = []struct {
		tag     string
		pattern *regexp.Regexp
	}{
		{tag: SummaryTag, pattern: regexp.MustCompile(`(?s)<SUMMARY>(.*?)</SUMMARY>`)},
		{tag: TotalSummaryTag, pattern: regexp.MustCompile(`(?s)<TOTAL SUMMARY>(.*?)</TOTAL SUMMARY>`)},
	}
)

type Extraction struct {
	CleanedText    string
	WaterAmountML  *int
	Suggestions    []string
	SuggestionsErr error
	SummaryRaw     *string
	SummaryTag     string
}

func (extraction Extraction) HasSummary() bool {
	return extraction.SummaryRaw != nil
}

// Extract strips the WATER_LOG, SUGGESTIONS and summary tags from raw and
// returns their payloads. Only the first occurrence of each tag is consumed.
// Extract never fails: a malformed suggestion list yields an empty slice and
// SuggestionsErr, and summary JSON is left for DecodeMealSummary.
func Extract(raw string) Extraction {
	text := raw
	extraction := Extraction{Suggestions: []string{}}

	if match := waterLogPattern.FindStringSubmatchIndex(text); match != nil {
		if amount, err := strconv.Atoi(text[match[2]:match[3]]); err == nil {
			extraction.WaterAmountML = &amount
		}
		text = removeSpan(text, match[0], match[1])
	}

	if match := suggestionsPattern.FindStringSubmatchIndex(text); match != nil {
		inner := strings.TrimSpace(text[match[2]:match[3]])
		suggestions := make([]string, 0)
		if err := json.Unmarshal([]byte(inner), &suggestions); err != nil {
			extraction.SuggestionsErr = err
		} else if suggestions != nil {
			extraction.Suggestions = suggestions
		}
		text = removeSpan(text, match[0], match[1])
	}

	for _, alias := range summaryPatterns {
		match := alias.pattern.FindStringSubmatchIndex(text)
		if match == nil {
			continue
		}
		inner := strings.TrimSpace(text[match[2]:match[3]])
		extraction.SummaryRaw = &inner
		extraction.SummaryTag = alias.tag
		text = removeSpan(text, match[0], match[1])
		break
	}

	extraction.CleanedText = strings.TrimSpace(text)
	return extraction
}

func removeSpan(text string, start int, end int) string {
	return text[:start] + text[end:]
}
