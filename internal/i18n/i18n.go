// Package i18n holds the UI dictionaries and the language helpers shared by
// the CLI and the HTTP backend.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"golang.org/x/text/language"
)

// DefaultLang is used whenever a language is missing or unsupported.
const DefaultLang = "ru"

// Supported lists the languages that have a dictionary and prompts.
var Supported = []string{"ru", "en", "es"}

//go:embed locales/*.json
var localeFS embed.FS

// Catalog is the set of loaded dictionaries keyed by language code.
type Catalog struct {
	dicts map[string]map[string]string
}

// Load parses the embedded dictionaries.
func Load() (*Catalog, error) {
	c := &Catalog{dicts: make(map[string]map[string]string, len(Supported))}
	for _, lang := range Supported {
		data, err := localeFS.ReadFile(path.Join("locales", lang+".json"))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s dictionary: %w", lang, err)
		}
		dict := make(map[string]string)
		if err := json.Unmarshal(data, &dict); err != nil {
			return nil, fmt.Errorf("failed to parse %s dictionary: %w", lang, err)
		}
		c.dicts[lang] = dict
	}
	return c, nil
}

// MustLoad is Load for package initialisation in commands.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Translator returns a lookup bound to lang. Unsupported languages fall back
// to DefaultLang.
func (c *Catalog) Translator(lang string) *Translator {
	lang = Resolve(lang)
	return &Translator{lang: lang, dict: c.dicts[lang]}
}

// Translator resolves dictionary keys for one language.
type Translator struct {
	lang string
	dict map[string]string
}

// NewTranslator builds a Translator over an explicit dictionary.
func NewTranslator(lang string, dict map[string]string) *Translator {
	return &Translator{lang: lang, dict: dict}
}

func (t *Translator) Lang() string { return t.lang }

// T returns the display string for key, or key itself when the dictionary
// has no non-empty entry. Raw backend messages therefore pass through as is.
func (t *Translator) T(key string) string {
	if t == nil {
		return key
	}
	if v, ok := t.dict[key]; ok && v != "" {
		return v
	}
	return key
}

// Normalize reduces a language tag such as "es-MX", "RU" or "en_US" to its
// lower-case base code. Unparseable input is lower-cased and cut at the first
// separator.
func Normalize(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return ""
	}
	tag, err := language.Parse(strings.ReplaceAll(lang, "_", "-"))
	if err == nil {
		if base, conf := tag.Base(); conf != language.No {
			return base.String()
		}
	}
	lang = strings.ToLower(lang)
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	return lang
}

// IsSupported reports whether lang (already normalised) has a dictionary.
func IsSupported(lang string) bool {
	for _, s := range Supported {
		if s == lang {
			return true
		}
	}
	return false
}

// Resolve normalises lang and falls back to DefaultLang when unsupported.
func Resolve(lang string) string {
	lang = Normalize(lang)
	if IsSupported(lang) {
		return lang
	}
	return DefaultLang
}

// Pick chooses between inline message variants for server responses:
// ru* picks ru, es* picks es, anything else picks en. An empty lang counts as ru.
func Pick(lang, ru, en, es string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		lang = DefaultLang
	}
	switch {
	case strings.HasPrefix(lang, "ru"):
		return ru
	case strings.HasPrefix(lang, "es"):
		return es
	default:
		return en
	}
}
