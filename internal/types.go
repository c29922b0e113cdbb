package internal

import (
	"fmt"
	"strings"
	"time"
)

// Scenario is the reply intent sent to the backend alongside user text.
type Scenario string

const (
	ScenarioReject Scenario = "reject"
	ScenarioHire   Scenario = "hire"
	ScenarioRemind Scenario = "remind"
)

// Scenarios lists every supported scenario in prompt-file order.
var Scenarios = []Scenario{ScenarioReject, ScenarioHire, ScenarioRemind}

// ParseScenario accepts a scenario name, ignoring surrounding whitespace and case.
func ParseScenario(s string) (Scenario, error) {
	sc := Scenario(strings.ToLower(strings.TrimSpace(s)))
	if !sc.Valid() {
		return "", fmt.Errorf("unknown scenario %q", s)
	}
	return sc, nil
}

func (s Scenario) Valid() bool {
	for _, known := range Scenarios {
		if s == known {
			return true
		}
	}
	return false
}

func (s Scenario) String() string { return string(s) }

// ScenarioRequest is the body of POST /process.
type ScenarioRequest struct {
	Text     string `json:"text"`
	Scenario string `json:"scenario"`
	UILang   string `json:"ui_lang"`
}

// ScenarioResponse is the body returned by POST /process. At most one of the
// fields is set; neither set means an empty success.
type ScenarioResponse struct {
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ProcessRecord is one audit-log row for a processed request.
type ProcessRecord struct {
	ID         string    `json:"id"`
	Scenario   string    `json:"scenario"`
	UILang     string    `json:"ui_lang"`
	PromptLang string    `json:"prompt_lang"`
	Text       string    `json:"text"`
	Status     string    `json:"status"`
	Result     string    `json:"result,omitempty"`
	Error      string    `json:"error,omitempty"`
	LatencyMs  int64     `json:"latency_ms"`
	ClientIP   string    `json:"client_ip"`
	Timestamp  time.Time `json:"timestamp"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)
