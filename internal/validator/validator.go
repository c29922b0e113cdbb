// Package validator screens submission text with cheap heuristics before it is
// sent to the (paid) generation backend.
package validator

import (
	"strings"
	"unicode"
)

// Reason identifies why a text was rejected. The values double as i18n keys.
type Reason string

const (
	ReasonEmpty           Reason = "empty"
	ReasonTooShort        Reason = "tooShort"
	ReasonRepetitiveChars Reason = "repetitiveChars"
	ReasonTooFewLetters   Reason = "tooFewLetters"
	ReasonTooManySymbols  Reason = "tooManySymbols"
)

const (
	// MinLength is the minimum rune count of the trimmed text.
	MinLength = 12
	// MaxDistinctRejected is the highest distinct-rune count still treated as junk.
	MaxDistinctRejected = 3
	// MinLetterRatio is the minimum share of Unicode letters.
	MinLetterRatio = 0.55
	// MaxSymbolRatio is the maximum share of runes that are not letters, digits or spaces.
	MaxSymbolRatio = 0.35
)

// Verdict is the outcome of Check. The zero value is not meaningful; use
// Accepted or a Verdict returned by Check.
type Verdict struct {
	Accepted bool
	Reason   Reason
}

// Accept is the verdict for text that may be forwarded.
var Accept = Verdict{Accepted: true}

func reject(r Reason) Verdict { return Verdict{Reason: r} }

func (v Verdict) String() string {
	if v.Accepted {
		return "accepted"
	}
	return "rejected(" + string(v.Reason) + ")"
}

// Check applies the heuristics to the trimmed text in order; the first failing
// check decides. It has no side effects.
//
// Empty or whitespace-only text yields ReasonEmpty. Callers are expected to
// catch that case before calling Check, it is handled here only so the ratio
// checks never see a zero length.
func Check(text string) Verdict {
	runes := []rune(strings.TrimSpace(text))
	total := len(runes)
	if total == 0 {
		return reject(ReasonEmpty)
	}

	if total < MinLength {
		return reject(ReasonTooShort)
	}

	distinct := make(map[rune]struct{}, total)
	for _, r := range runes {
		distinct[r] = struct{}{}
	}
	if len(distinct) <= MaxDistinctRejected {
		return reject(ReasonRepetitiveChars)
	}

	var letters, symbols int
	for _, r := range runes {
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsNumber(r), unicode.IsSpace(r):
		default:
			symbols++
		}
	}

	if float64(letters)/float64(total) < MinLetterRatio {
		return reject(ReasonTooFewLetters)
	}
	if float64(symbols)/float64(total) > MaxSymbolRatio {
		return reject(ReasonTooManySymbols)
	}

	return Accept
}
