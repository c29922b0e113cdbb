// Package prompts loads the per-language system prompts from a JSON file of
// the form {"<lang>": {"reject": "...", "hire": "...", "remind": "..."}}.
package prompts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/valpere/hrify/internal"
)

// FallbackOrder is tried when the requested language lacks a scenario.
var FallbackOrder = []string{"ru", "en", "es"}

// ErrNotFound means no language in the file has the scenario.
var ErrNotFound = errors.New("prompt not found")

// Set maps language → scenario → prompt text.
type Set map[string]map[string]string

// Validate checks that every language defines every scenario with non-blank text.
func (s Set) Validate() error {
	if s == nil {
		return fmt.Errorf("prompts root must be an object")
	}
	for _, lang := range s.Languages() {
		mapping := s[lang]
		if mapping == nil {
			return fmt.Errorf("prompts[%q] must be an object", lang)
		}
		for _, sc := range internal.Scenarios {
			if strings.TrimSpace(mapping[sc.String()]) == "" {
				return fmt.Errorf("prompts[%q][%q] must be a non-empty string", lang, sc)
			}
		}
	}
	return nil
}

// Languages returns the languages in sorted order.
func (s Set) Languages() []string {
	langs := make([]string, 0, len(s))
	for lang := range s {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Parse decodes and validates a prompts document. Only the scenario keys
// must be strings; other keys in a language entry are kept when they are
// strings and skipped otherwise.
func Parse(data []byte) (Set, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("prompts root must be an object: %w", err)
	}
	set := make(Set, len(raw))
	for lang, msg := range raw {
		var entry map[string]any
		if err := json.Unmarshal(msg, &entry); err != nil || entry == nil {
			return nil, fmt.Errorf("prompts[%q] must be an object", lang)
		}
		for _, sc := range internal.Scenarios {
			if _, ok := entry[sc.String()].(string); !ok {
				return nil, fmt.Errorf("prompts[%q][%q] must be a non-empty string", lang, sc)
			}
		}
		mapping := make(map[string]string, len(entry))
		for k, v := range entry {
			if text, ok := v.(string); ok {
				mapping[k] = text
			}
		}
		set[lang] = mapping
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

// Store is a concurrency-safe view of the prompts file. With reload enabled,
// the file is re-read whenever its modification time advances; a failed
// reload keeps serving the last good copy.
type Store struct {
	path   string
	reload bool

	mu     sync.RWMutex
	set    Set
	mtime  time.Time
	logger logrus.FieldLogger
}

func NewStore(path string, reload bool) *Store {
	return &Store{path: path, reload: reload, logger: logrus.StandardLogger()}
}

// WithLogger replaces the logger used for reload failures.
func (s *Store) WithLogger(l logrus.FieldLogger) *Store {
	s.logger = l
	return s
}

func (s *Store) Path() string { return s.path }

// Load reads the file. Without force it is a no-op when a copy is already
// loaded and either reload is disabled or the file has not changed.
func (s *Store) Load(force bool) error {
	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("prompts file not found: %s: %w", s.path, err)
	}

	s.mu.RLock()
	loaded := s.set != nil
	current := s.mtime
	s.mu.RUnlock()

	if !force && loaded {
		if !s.reload || !info.ModTime().After(current) {
			return nil
		}
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read prompts: %w", err)
	}
	set, err := Parse(data)
	if err != nil {
		return fmt.Errorf("invalid prompts format: %w", err)
	}

	s.mu.Lock()
	s.set = set
	s.mtime = info.ModTime()
	s.mu.Unlock()
	return nil
}

// Loaded reports whether a valid copy is held, and its file mtime.
func (s *Store) Loaded() (bool, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set != nil, s.mtime
}

// Snapshot refreshes the copy if needed and returns it.
func (s *Store) Snapshot() (Set, error) {
	if err := s.refresh(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set, nil
}

// Get returns the prompt for lang and scenario, falling back through
// FallbackOrder when lang lacks it.
func (s *Store) Get(lang string, scenario internal.Scenario) (string, error) {
	set, err := s.Snapshot()
	if err != nil {
		return "", err
	}

	if p, ok := set[lang][scenario.String()]; ok {
		return p, nil
	}
	for _, fb := range FallbackOrder {
		if p, ok := set[fb][scenario.String()]; ok {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: scenario %q in any language", ErrNotFound, scenario)
}

// refresh logs reload failures and only propagates them when nothing usable
// has ever been loaded.
func (s *Store) refresh() error {
	err := s.Load(false)
	if err == nil {
		return nil
	}
	if ok, _ := s.Loaded(); ok {
		s.logger.WithError(err).WithField("path", s.path).Warn("prompts reload failed, keeping previous version")
		return nil
	}
	return err
}
