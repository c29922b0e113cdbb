// Package submitter runs one scenario submission: prevalidation, a single call
// to the backend, and mapping of the reply to a display outcome.
package submitter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/valpere/hrify/internal"
	"github.com/valpere/hrify/internal/validator"
)

// Message keys rendered for outcomes that do not carry a backend message.
const (
	KeyEmptyText  = "promptEmptyText"
	KeyFetchError = "fetchError"
	KeyBusy       = "busy"
)

var (
	// ErrEmptyInput means nothing was typed.
	ErrEmptyInput = errors.New("empty input")
	// ErrTransport means the backend could not be reached or replied with
	// something that is not JSON.
	ErrTransport = errors.New("transport error")
	// ErrBusy means a submission is already in flight.
	ErrBusy = errors.New("submission already pending")
)

// PrevalidationError carries the reason the text was rejected locally.
type PrevalidationError struct {
	Reason validator.Reason
}

func (e *PrevalidationError) Error() string {
	return fmt.Sprintf("prevalidation rejected: %s", e.Reason)
}

// ServiceError is an explicit error payload returned by the backend.
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return "service error: " + e.Message
}

// Service is the backend call.
type Service interface {
	Process(ctx context.Context, req internal.ScenarioRequest) (internal.ScenarioResponse, error)
}

// Display is the rendering target of a submission.
type Display interface {
	// SetPending toggles the "processing" state: controls disabled and a
	// placeholder shown while true.
	SetPending(pending bool)
	Render(o Outcome)
}

type Kind int

const (
	KindSuccess Kind = iota
	KindError
)

func (k Kind) String() string {
	if k == KindSuccess {
		return "success"
	}
	return "error"
}

// Outcome is what gets rendered. For KindError, Text is an i18n key or a raw
// backend message; Err holds the typed cause.
type Outcome struct {
	Kind Kind
	Text string
	Err  error
}

func Success(text string) Outcome { return Outcome{Kind: KindSuccess, Text: text} }

func Failure(text string, err error) Outcome { return Outcome{Kind: KindError, Text: text, Err: err} }

// Submitter serialises submissions from one form. It is safe to share between
// goroutines; only one submission runs at a time.
type Submitter struct {
	svc     Service
	display Display

	mu   sync.Mutex
	lang string

	pending atomic.Bool
}

func New(svc Service, display Display, lang string) *Submitter {
	return &Submitter{svc: svc, display: display, lang: lang}
}

func (s *Submitter) Lang() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lang
}

// SetLang changes the ui_lang forwarded with later submissions.
func (s *Submitter) SetLang(lang string) {
	s.mu.Lock()
	s.lang = lang
	s.mu.Unlock()
}

// Pending reports whether a submission is in flight.
func (s *Submitter) Pending() bool { return s.pending.Load() }

// Submit validates text, calls the backend at most once and renders the
// outcome. A call made while another one is pending returns ErrBusy at once
// and renders nothing.
func (s *Submitter) Submit(ctx context.Context, text string, scenario internal.Scenario) Outcome {
	if !s.pending.CompareAndSwap(false, true) {
		return Failure(KeyBusy, ErrBusy)
	}
	defer s.pending.Store(false)

	out := s.submit(ctx, text, scenario)
	if s.display != nil {
		s.display.Render(out)
	}
	return out
}

func (s *Submitter) submit(ctx context.Context, text string, scenario internal.Scenario) Outcome {
	text = strings.TrimSpace(text)
	if text == "" {
		return Failure(KeyEmptyText, ErrEmptyInput)
	}

	if v := validator.Check(text); !v.Accepted {
		return Failure(string(v.Reason), &PrevalidationError{Reason: v.Reason})
	}

	if s.display != nil {
		s.display.SetPending(true)
		defer s.display.SetPending(false)
	}

	resp, err := s.call(ctx, internal.ScenarioRequest{
		Text:     text,
		Scenario: scenario.String(),
		UILang:   s.Lang(),
	})
	if err != nil {
		return Failure(KeyFetchError, fmt.Errorf("%w: %w", ErrTransport, err))
	}

	if resp.Error != "" {
		return Failure(resp.Error, &ServiceError{Message: resp.Error})
	}
	return Success(resp.Result)
}

// call turns a panic inside the service into a transport error so the
// deferred cleanup in submit still leaves the form usable.
func (s *Submitter) call(ctx context.Context, req internal.ScenarioRequest) (resp internal.ScenarioResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp = internal.ScenarioResponse{}
			err = fmt.Errorf("service panicked: %v", r)
		}
	}()
	return s.svc.Process(ctx, req)
}
