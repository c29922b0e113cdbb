package prompts

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/valpere/hrify/internal"
)

const validDoc = `{
  "ru": {"reject": "ru reject", "hire": "ru hire", "remind": "ru remind"},
  "en": {"reject": "en reject", "hire": "en hire", "remind": "en remind"}
}`

func writePrompts(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "prompts.json")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write prompts: %v", err)
	}
	return path
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{name: "valid", doc: validDoc},
		{name: "not an object", doc: `[1,2]`, wantErr: "root must be an object"},
		{name: "language not an object", doc: `{"ru": "text"}`, wantErr: `prompts["ru"]`},
		{name: "missing scenario", doc: `{"ru": {"reject": "a", "hire": "b"}}`, wantErr: `["remind"]`},
		{name: "blank scenario", doc: `{"ru": {"reject": "a", "hire": "  ", "remind": "c"}}`, wantErr: `["hire"]`},
		{name: "non-string value", doc: `{"ru": {"reject": 1, "hire": "b", "remind": "c"}}`, wantErr: `prompts["ru"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := Parse([]byte(tt.doc))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if len(set) != 2 {
					t.Errorf("expected 2 languages, got %d", len(set))
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParse_ExtraKeys(t *testing.T) {
	doc := `{"ru": {"reject": "a", "hire": "b", "remind": "c", "notes": 1, "author": "hr"}}`
	set, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("extra keys must be accepted: %v", err)
	}
	if set["ru"]["reject"] != "a" || set["ru"]["author"] != "hr" {
		t.Errorf("unexpected mapping %v", set["ru"])
	}
	if _, ok := set["ru"]["notes"]; ok {
		t.Error("non-string extra key must be skipped")
	}
}

func TestStore_Get_Fallback(t *testing.T) {
	path := writePrompts(t, t.TempDir(), `{
  "en": {"reject": "en reject", "hire": "en hire", "remind": "en remind"},
  "es": {"reject": "es reject", "hire": "es hire", "remind": "es remind"}
}`)
	s := NewStore(path, true)

	got, err := s.Get("es", internal.ScenarioHire)
	if err != nil || got != "es hire" {
		t.Errorf("Get(es) = %q, %v", got, err)
	}

	// "ru" is missing: fallback order ru → en → es picks en.
	got, err = s.Get("ru", internal.ScenarioReject)
	if err != nil || got != "en reject" {
		t.Errorf("Get(ru) = %q, %v", got, err)
	}

	got, err = s.Get("de", internal.ScenarioRemind)
	if err != nil || got != "en remind" {
		t.Errorf("Get(de) = %q, %v", got, err)
	}
}

func TestStore_Get_UnknownScenario(t *testing.T) {
	path := writePrompts(t, t.TempDir(), validDoc)
	s := NewStore(path, false)

	_, err := s.Get("ru", internal.Scenario("fire"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_MissingFile(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "nope.json"), true)

	if err := s.Load(true); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := s.Get("ru", internal.ScenarioHire); err == nil {
		t.Error("expected error when nothing was ever loaded")
	}
}

func TestStore_ReloadOnChange(t *testing.T) {
	dir := t.TempDir()
	path := writePrompts(t, dir, validDoc)
	s := NewStore(path, true)

	if err := s.Load(true); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	writePrompts(t, dir, strings.ReplaceAll(validDoc, "ru hire", "ru hire v2"))
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	got, err := s.Get("ru", internal.ScenarioHire)
	if err != nil || got != "ru hire v2" {
		t.Errorf("expected reloaded prompt, got %q, %v", got, err)
	}
}

func TestStore_NoReloadWhenDisabled(t *testing.T) {
	dir := t.TempDir()
	path := writePrompts(t, dir, validDoc)
	s := NewStore(path, false)

	if err := s.Load(true); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	writePrompts(t, dir, strings.ReplaceAll(validDoc, "ru hire", "ru hire v2"))
	future := time.Now().Add(time.Hour)
	os.Chtimes(path, future, future)

	got, _ := s.Get("ru", internal.ScenarioHire)
	if got != "ru hire" {
		t.Errorf("expected original prompt, got %q", got)
	}
}

func TestStore_BrokenReloadKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	path := writePrompts(t, dir, validDoc)
	s := NewStore(path, true)

	if err := s.Load(true); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	writePrompts(t, dir, `{"ru": {`)
	future := time.Now().Add(time.Hour)
	os.Chtimes(path, future, future)

	got, err := s.Get("ru", internal.ScenarioHire)
	if err != nil || got != "ru hire" {
		t.Errorf("expected previous prompt, got %q, %v", got, err)
	}
}

func TestStore_Loaded(t *testing.T) {
	path := writePrompts(t, t.TempDir(), validDoc)
	s := NewStore(path, true)

	if ok, _ := s.Loaded(); ok {
		t.Error("expected not loaded before Load")
	}
	if err := s.Load(false); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	ok, mtime := s.Loaded()
	if !ok || mtime.IsZero() {
		t.Errorf("expected loaded with mtime, got %v %v", ok, mtime)
	}
}

func TestSet_Languages(t *testing.T) {
	set, err := Parse([]byte(validDoc))
	if err != nil {
		t.Fatal(err)
	}
	langs := set.Languages()
	if len(langs) != 2 || langs[0] != "en" || langs[1] != "ru" {
		t.Errorf("unexpected languages %v", langs)
	}
}
