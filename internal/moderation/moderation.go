// Package moderation rejects text containing configured banned words.
package moderation

import "strings"

// DefaultBannedWords is used when no list is configured.
const DefaultBannedWords = "дурак,идиот"

type Filter struct {
	words []string
}

// New builds a filter from words; entries are lower-cased and blank ones dropped.
func New(words []string) *Filter {
	f := &Filter{}
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			f.words = append(f.words, w)
		}
	}
	return f
}

// Parse builds a filter from a comma-separated list.
func Parse(list string) *Filter {
	return New(strings.Split(list, ","))
}

func (f *Filter) Words() []string { return f.words }

// Contains reports whether text contains any banned word as a
// case-insensitive substring.
func (f *Filter) Contains(text string) bool {
	if f == nil || len(f.words) == 0 {
		return false
	}
	lowered := strings.ToLower(text)
	for _, w := range f.words {
		if strings.Contains(lowered, w) {
			return true
		}
	}
	return false
}
