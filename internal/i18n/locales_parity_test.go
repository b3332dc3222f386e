package i18n

import (
	"regexp"
	"sort"
	"testing"
)

var formatVerb = regexp.MustCompile(`%[a-zA-Z]`)

func TestEmbeddedLocalesShareKeysAndVerbs(t *testing.T) {
	catalogues, err := LoadCatalogues(EmbeddedLocales())
	if err != nil {
		t.Fatalf("LoadCatalogues() unexpected error: %v", err)
	}

	reference := catalogues[LangEN]
	for language, catalogue := range catalogues {
		if language == LangEN {
			continue
		}
		if missing := keysMissingFrom(reference, catalogue); len(missing) > 0 {
			t.Errorf("%s is missing keys %v", language, missing)
		}
		if extra := keysMissingFrom(catalogue, reference); len(extra) > 0 {
			t.Errorf("%s has keys absent from en: %v", language, extra)
		}
		for key, value := range catalogue {
			want := formatVerb.FindAllString(reference[key], -1)
			got := formatVerb.FindAllString(value, -1)
			if len(want) != len(got) {
				t.Errorf("%s %q uses verbs %v, en uses %v", language, key, got, want)
			}
		}
	}
}

func keysMissingFrom(source map[string]string, target map[string]string) []string {
	var missing []string
	for key := range source {
		if _, ok := target[key]; !ok {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}
