package llm

import "strings"

const (
	DefaultModel       = "gpt-4o"
	DefaultTemperature = 0.6
)

// Model describes a chat model the provider knows how to call.
type Model struct {
	ID                  string `json:"id"`
	DisplayName         string `json:"display_name"`
	SupportsTemperature bool   `json:"supports_temperature"`
}

type Catalogue struct {
	models []Model
}

func NewCatalogue() *Catalogue {
	return &Catalogue{models: []Model{
		{ID: "gpt-4o", DisplayName: "GPT-4o (Recommended)", SupportsTemperature: true},
		{ID: "gpt-4o-mini", DisplayName: "GPT-4o Mini (Faster)", SupportsTemperature: true},
		{ID: "o1-mini", DisplayName: "O1-Mini (Max Accuracy)", SupportsTemperature: false},
		{ID: "o1", DisplayName: "O1 (Premium)", SupportsTemperature: false},
	}}
}

func (catalogue *Catalogue) Models() []Model {
	result := make([]Model, len(catalogue.models))
	copy(result, catalogue.models)
	return result
}

// Lookup resolves a model name. Names outside the catalogue are still
// usable against OpenAI-compatible endpoints and are assumed to accept a
// temperature.
func (catalogue *Catalogue) Lookup(name string) Model {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultModel
	}
	for _, model := range catalogue.models {
		if strings.EqualFold(model.ID, name) {
			return model
		}
	}
	return Model{ID: name, DisplayName: name, SupportsTemperature: true}
}
