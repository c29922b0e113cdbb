// Package generator produces scenario replies with an LLM provider.
package generator

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

var (
	// ErrNotConfigured means the provider has no credentials.
	ErrNotConfigured = errors.New("OPENAI_API_KEY is not set")
	// ErrEmptyResponse means the model answered with no usable text.
	ErrEmptyResponse = errors.New("empty response from model")
)

type ServiceConfig struct {
	APIKey  string        `mapstructure:"api_key" json:"api_key"`
	Model   string        `mapstructure:"model" json:"model"`
	BaseURL string        `mapstructure:"base_url" json:"base_url"`
	Timeout time.Duration `mapstructure:"timeout" json:"timeout"`
}

// Service turns a system prompt plus user text into a reply.
type Service interface {
	Name() string
	Model() string
	Generate(ctx context.Context, systemPrompt, userText string) (string, error)
	// IsAvailable reports configuration problems without calling the model.
	IsAvailable(ctx context.Context) error
}

// APIError is a non-200 reply from a provider.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("API returned status %d: %s", e.StatusCode, e.Message)
}

// Kind groups provider failures by what the operator should do about them.
type Kind int

const (
	KindOther Kind = iota
	KindAuth
	KindRateLimit
	KindModelUnavailable
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindRateLimit:
		return "rate_limit"
	case KindModelUnavailable:
		return "model_unavailable"
	case KindTimeout:
		return "timeout"
	default:
		return "other"
	}
}

// Classify maps a Generate error to a Kind. Typed signals (deadlines, HTTP
// status) are checked before falling back to matching the message text.
func Classify(err error) Kind {
	if err == nil {
		return KindOther
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 401, 403:
			return KindAuth
		case 429:
			return KindRateLimit
		case 408, 504:
			return KindTimeout
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "invalid api key"), strings.Contains(msg, "authentication"), strings.Contains(msg, "incorrect api key"):
		return KindAuth
	case strings.Contains(msg, "rate limit"), strings.Contains(msg, "quota"), strings.Contains(msg, "exceeded"):
		return KindRateLimit
	case strings.Contains(msg, "model") && (strings.Contains(msg, "not found") || strings.Contains(msg, "does not exist")):
		return KindModelUnavailable
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "timed out"):
		return KindTimeout
	}
	return KindOther
}
