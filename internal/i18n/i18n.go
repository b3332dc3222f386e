package i18n

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
)

//go:embed locales/*.json
var embeddedLocales embed.FS

const (
	LangEN = "en"
	LangRU = "ru"
)

var requiredLanguages = []string{LangEN, LangRU}

var ErrNoLocales = errors.New("no locale catalogues")

// Manager serves greeting, apology and export strings per language. Every
// catalogue is completed with the default language's entries at load time.
type Manager struct {
	defaultLanguage string
	catalogues      map[string]map[string]string
	languages       []string
}

// EmbeddedLocales holds the locale files compiled into the binary.
func EmbeddedLocales() fs.FS {
	locales, err := fs.Sub(embeddedLocales, "locales")
	if err != nil {
		panic(err)
	}
	return locales
}

func NewDefaultManager(defaultLanguage string) (*Manager, error) {
	return NewManager(defaultLanguage, EmbeddedLocales())
}

// NewManager reads one <language>.json catalogue per file in source.
func NewManager(defaultLanguage string, source fs.FS) (*Manager, error) {
	catalogues, err := LoadCatalogues(source)
	if err != nil {
		return nil, err
	}
	for _, language := range requiredLanguages {
		if _, ok := catalogues[language]; !ok {
			return nil, fmt.Errorf("locale %q missing", language)
		}
	}

	manager := &Manager{catalogues: catalogues}
	for language := range catalogues {
		manager.languages = append(manager.languages, language)
	}
	sort.Strings(manager.languages)

	manager.defaultLanguage = LangEN
	manager.defaultLanguage = manager.NormalizeLanguage(defaultLanguage)

	fallback := catalogues[manager.defaultLanguage]
	for language, catalogue := range catalogues {
		if language == manager.defaultLanguage {
			continue
		}
		for key, value := range fallback {
			if strings.TrimSpace(catalogue[key]) == "" {
				catalogue[key] = value
			}
		}
	}
	return manager, nil
}

// LoadCatalogues decodes every .json file of source keyed by its lowercase
// base name.
func LoadCatalogues(source fs.FS) (map[string]map[string]string, error) {
	matches, err := fs.Glob(source, "*.json")
	if err != nil {
		return nil, fmt.Errorf("list locales: %w", err)
	}
	if len(matches) == 0 {
		return nil, ErrNoLocales
	}

	catalogues := make(map[string]map[string]string, len(matches))
	for _, name := range matches {
		language := strings.ToLower(strings.TrimSuffix(name, path.Ext(name)))
		content, err := fs.ReadFile(source, name)
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", language, err)
		}
		catalogue := map[string]string{}
		if err := json.Unmarshal(content, &catalogue); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", language, err)
		}
		if len(catalogue) == 0 {
			return nil, fmt.Errorf("locale %s is empty", language)
		}
		catalogues[language] = catalogue
	}
	return catalogues, nil
}

func (manager *Manager) DefaultLanguage() string {
	return manager.defaultLanguage
}

func (manager *Manager) SupportedLanguages() []string {
	return append([]string(nil), manager.languages...)
}

// NormalizeLanguage reduces raw to a supported base language ("ru_RU" -> "ru")
// or the default.
func (manager *Manager) NormalizeLanguage(raw string) string {
	if language := baseLanguage(raw); manager.has(language) {
		return language
	}
	return manager.defaultLanguage
}

// DetectFromAcceptLanguage picks the supported language with the highest
// q-value. Ties keep header order.
func (manager *Manager) DetectFromAcceptLanguage(header string) string {
	best, bestWeight := "", 0.0
	for _, part := range strings.Split(header, ",") {
		tag, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		language := baseLanguage(tag)
		if !manager.has(language) {
			continue
		}
		if weight := qualityWeight(params); weight > bestWeight {
			best, bestWeight = language, weight
		}
	}
	if best == "" {
		return manager.defaultLanguage
	}
	return best
}

func (manager *Manager) Translate(language string, key string) string {
	if value, ok := manager.catalogues[manager.NormalizeLanguage(language)][key]; ok && strings.TrimSpace(value) != "" {
		return value
	}
	return key
}

func (manager *Manager) Translatef(language string, key string, args ...any) string {
	return fmt.Sprintf(manager.Translate(language, key), args...)
}

func (manager *Manager) has(language string) bool {
	_, ok := manager.catalogues[language]
	return ok && language != ""
}

func baseLanguage(raw string) string {
	language := strings.ToLower(strings.TrimSpace(raw))
	language, _, _ = strings.Cut(strings.ReplaceAll(language, "_", "-"), "-")
	return language
}

func qualityWeight(params string) float64 {
	for _, param := range strings.Split(params, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(param), "=")
		if !ok || strings.TrimSpace(name) != "q" {
			continue
		}
		weight, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return 0
		}
		return weight
	}
	return 1
}
