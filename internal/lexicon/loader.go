package lexicon

import (
	"fmt"
	"os"
	"strings"

	"github.com/voicecart/backend/internal/domain"
	"gopkg.in/yaml.v3"
)

// languageFile is the on-disk shape of an extra-language lexicon:
//
//	languages:
//	  - code: de
//	    keywords:
//	      add: [hinzufügen, kaufen]
//	    number_words: {eins: 1, zwei: 2}
type languageFile struct {
	Languages []struct {
		Code        string              `yaml:"code"`
		Keywords    map[string][]string `yaml:"keywords"`
		CartPhrases map[string][]string `yaml:"cart_phrases"`
		NumberWords map[string]int      `yaml:"number_words"`
		Fillers     []string            `yaml:"fillers"`
		Corrections map[string]string   `yaml:"corrections"`
	} `yaml:"languages"`
}

// LoadFile reads additional languages from a YAML file
func LoadFile(path string) ([]Language, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML lexicon data
func Parse(data []byte) ([]Language, error) {
	var file languageFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode lexicon: %w", err)
	}

	languages := make([]Language, 0, len(file.Languages))
	for _, raw := range file.Languages {
		if strings.TrimSpace(raw.Code) == "" {
			return nil, fmt.Errorf("%w: lexicon entry without code", domain.ErrInvalidRequest)
		}
		keywords, err := intentTable(raw.Keywords, domain.IntentAdd, domain.IntentRemove, domain.IntentSearch)
		if err != nil {
			return nil, fmt.Errorf("language %s: %w", raw.Code, err)
		}
		phrases, err := intentTable(raw.CartPhrases, domain.IntentViewCart, domain.IntentClearCart)
		if err != nil {
			return nil, fmt.Errorf("language %s: %w", raw.Code, err)
		}
		languages = append(languages, Language{
			Code:        raw.Code,
			Keywords:    keywords,
			CartPhrases: phrases,
			NumberWords: raw.NumberWords,
			Fillers:     raw.Fillers,
			Corrections: raw.Corrections,
		})
	}
	return languages, nil
}

// intentTable converts lowercase YAML keys ("add", "view_cart") into intents,
// rejecting any intent not in allowed.
func intentTable(raw map[string][]string, allowed ...domain.Intent) (map[domain.Intent][]string, error) {
	out := make(map[domain.Intent][]string, len(raw))
	for key, words := range raw {
		intent := domain.Intent(strings.ToUpper(strings.TrimSpace(key)))
		ok := false
		for _, a := range allowed {
			if intent == a {
				ok = true
				break
			}
		}
		if !ok {
			return nil, fmt.Errorf("%w: unsupported intent %q", domain.ErrInvalidRequest, key)
		}
		out[intent] = words
	}
	return out, nil
}
