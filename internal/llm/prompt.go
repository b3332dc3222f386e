package llm

import (
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/terraincognita07/bitebuddy/internal/models"
	"github.com/terraincognita07/bitebuddy/internal/services"
)

const suggestionsReminder = "(Internal Note: You MUST start your response with the <SUGGESTIONS> tag. This is mandatory.)"

type persona struct {
	displayName string
	tone        []string
}

var personas = map[string]persona{
	models.PersonaBiteBuddy: {
		displayName: "BiteBuddy",
		tone: []string{
			"You are a chill, vibey friend.",
			"Use emojis like 🥗, 🤙, 🥑.",
			"Be supportive but relaxed.",
		},
	},
	models.PersonaTitan: {
		displayName: "Coach Titan",
		tone: []string{
			"You are a strict, high-energy athletic coach.",
			"Use emojis like 🔥, 🛑, 👊.",
			"Be direct and call out excuses.",
		},
	},
	models.PersonaLumi: {
		displayName: "Chef Lumi",
		tone: []string{
			"You are a gentle, mindful nutritionist.",
			"Use emojis like ✨, 🍵, 🌱.",
			"Focus on food quality and holistic balance.",
		},
	},
}

func resolvePersona(name string) persona {
	for key, candidate := range personas {
		if strings.EqualFold(key, strings.TrimSpace(name)) {
			return candidate
		}
	}
	return personas[models.PersonaBiteBuddy]
}

// SystemPrompt renders the instructions for one turn: persona, profile,
// today's progress, the edit baseline when present and the tag grammar.
func SystemPrompt(request services.CompletionRequest) string {
	profile := request.Profile
	current := resolvePersona(profile.Persona)
	name := strings.TrimSpace(profile.Name)
	today := request.Now.Format(services.DateLayout)

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "You are %s, a proactive nutrition coach.\n", current.displayName)
	if name == "" {
		prompt.WriteString("You are speaking to a user. Do not invent a name for them.\n")
	} else {
		fmt.Fprintf(&prompt, "You are speaking to %s. Use their name occasionally.\n", name)
	}

	prompt.WriteString("\nTONE:\n")
	for _, line := range current.tone {
		fmt.Fprintf(&prompt, "- %s\n", line)
	}
	prompt.WriteString("- Keep the text response to at most 2 sentences.\n")

	fmt.Fprintf(&prompt, "\nTODAY IS: %s\nCURRENT TIME: %s\n", today, request.Now.Format("15:04"))

	prompt.WriteString("\nUSER PROFILE:\n")
	fmt.Fprintf(&prompt, "- Name: %s\n", valueOr(name, "Not provided"))
	fmt.Fprintf(&prompt, "- Goal: %s (Target: %d kcal)\n", valueOr(profile.GoalType, models.GoalTypeMaintain), request.Progress.Goal)
	fmt.Fprintf(&prompt, "- Diet: %s (Allergies: %s)\n", valueOr(profile.DietType, "None"), listOr(profile.Allergies, "None"))
	fmt.Fprintf(&prompt, "- Favorite Cuisines: %s\n", listOr(profile.FavoriteCuisines, "None"))
	if profile.ActivityLevel != "" {
		fmt.Fprintf(&prompt, "- Activity: %s\n", profile.ActivityLevel)
	}
	fmt.Fprintf(&prompt, "- STATUS: %s\n", request.Progress.Line())

	if request.EditBaseline != nil {
		writeEditBaseline(&prompt, *request.EditBaseline)
	}

	prompt.WriteString(tagGrammar)
	fmt.Fprintf(&prompt, "\nDATE RULE:\n- Every <SUMMARY> must carry a \"date\" field (YYYY-MM-DD).\n")
	fmt.Fprintf(&prompt, "- Without a temporal keyword such as \"yesterday\" or \"last night\", use today: %s.\n", today)
	prompt.WriteString("- Each (mealType, date) pair is unique. Never replace a meal of another date or another type.\n")
	return prompt.String()
}

func writeEditBaseline(prompt *strings.Builder, baseline models.MealSummary) {
	items := make([]string, 0, len(baseline.Items))
	for _, item := range baseline.Items {
		items = append(items, fmt.Sprintf("%s: %d kcal", item.Name, item.Calories))
	}

	prompt.WriteString("\nEDIT MODE ACTIVE:\nYou are editing this PREVIOUS MEAL:\n")
	fmt.Fprintf(prompt, "- Total: %d kcal (P: %gg, C: %gg, F: %gg)\n", baseline.TotalCalories, baseline.Protein, baseline.Carbs, baseline.Fats)
	fmt.Fprintf(prompt, "- Items: %s\n", strings.Join(items, ", "))
	prompt.WriteString("Keep every item the user does not mention exactly as listed, including its macros.\n")
	prompt.WriteString("Recalculate all totals and send the full <SUMMARY> of the new state in this response.\n")
}

const tagGrammar = `
OUTPUT FORMAT:
1. Start with <SUGGESTIONS>["Chip1", "Chip2", "Chip3"]</SUGGESTIONS>. If you ask a question the chips must be valid answers.
2. Then the text response.
3. When the user drank water, add <WATER_LOG>amount_ml</WATER_LOG> (one glass is 250) and no <SUMMARY>.
4. When you have enough detail to log food, add <SUMMARY>{JSON}</SUMMARY>. Ask clarifying questions first when unsure.

SUMMARY JSON (valid JSON only, no comments, no arithmetic):
{"mealType": "Breakfast/Lunch/Dinner/Snack", "totalCalories": 0, "protein": 0.0, "carbs": 0.0, "fats": 0.0, "date": "YYYY-MM-DD", "items": [{"name": "item", "quantity": "qty", "calories": 0}], "healthScore": 7}
totalCalories is the sum of the item calories. healthScore rates the meal from 1 to 10.
`

// ChatMessages converts a turn into the wire messages. A trailing user message
// carries a reminder to open with the suggestions tag.
func ChatMessages(request services.CompletionRequest) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(request.History)+1)
	messages = append(messages, openai.SystemMessage(SystemPrompt(request)))

	for index, message := range request.History {
		if !message.IsUser {
			messages = append(messages, openai.AssistantMessage(message.Content))
			continue
		}
		content := message.Content
		if index == len(request.History)-1 {
			content += "\n\n" + suggestionsReminder
		}
		messages = append(messages, openai.UserMessage(content))
	}
	return messages
}

func valueOr(value string, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func listOr(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	return strings.Join(values, ", ")
}
