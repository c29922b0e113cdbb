// Package detector guesses the language of submitted text so the matching
// prompt can be chosen.
package detector

import (
	"strings"

	lingua "github.com/pemistahl/lingua-go"
)

// Unknown is returned when the text is not in a supported language.
const Unknown = "unknown"

var supported = map[string]bool{"ru": true, "en": true, "es": true}

// Detector wraps a lingua detector. Building one is expensive; reuse it.
type Detector struct {
	detector lingua.LanguageDetector
}

func New() *Detector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		Build()

	return &Detector{detector: detector}
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if strings.TrimSpace(text) == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

// DetectISO returns the lower-case ISO 639-1 code of the text's language.
func (d *Detector) DetectISO(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}

// DetectInput returns "ru", "en", "es" or Unknown.
func (d *Detector) DetectInput(text string) string {
	code, ok := d.DetectISO(text)
	if !ok || !supported[code] {
		return Unknown
	}
	return code
}

// PickLang chooses the prompt language: the detected input language when it
// is supported, else the UI language when supported, else "ru".
func PickLang(inputLang, uiLang string) string {
	if supported[inputLang] {
		return inputLang
	}
	if supported[uiLang] {
		return uiLang
	}
	return "ru"
}
