package submitter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/valpere/hrify/internal"
	"github.com/valpere/hrify/internal/client"
	"github.com/valpere/hrify/internal/validator"
)

const acceptedText = "Thank you for your application, we will be in touch."

type mockService struct {
	processFunc func(ctx context.Context, req internal.ScenarioRequest) (internal.ScenarioResponse, error)
	callCount   atomic.Int32
}

func (m *mockService) Process(ctx context.Context, req internal.ScenarioRequest) (internal.ScenarioResponse, error) {
	m.callCount.Add(1)
	if m.processFunc != nil {
		return m.processFunc(ctx, req)
	}
	return internal.ScenarioResponse{Result: "ok"}, nil
}

type recordingDisplay struct {
	mu       sync.Mutex
	states   []bool
	rendered []Outcome
}

func (d *recordingDisplay) SetPending(p bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.states = append(d.states, p)
}

func (d *recordingDisplay) Render(o Outcome) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rendered = append(d.rendered, o)
}

func (d *recordingDisplay) assertCleared(t *testing.T) {
	t.Helper()
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.states) != 2 || !d.states[0] || d.states[1] {
		t.Errorf("expected pending [true false], got %v", d.states)
	}
}

func TestSubmit_EmptyText(t *testing.T) {
	svc := &mockService{}
	disp := &recordingDisplay{}
	s := New(svc, disp, "en")

	out := s.Submit(context.Background(), "   \n\t", internal.ScenarioReject)

	if out.Kind != KindError || out.Text != KeyEmptyText {
		t.Errorf("unexpected outcome %+v", out)
	}
	if !errors.Is(out.Err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", out.Err)
	}
	if svc.callCount.Load() != 0 {
		t.Error("service must not be called for empty text")
	}
	if len(disp.states) != 0 {
		t.Errorf("pending state must not change, got %v", disp.states)
	}
	if len(disp.rendered) != 1 {
		t.Errorf("expected one render, got %d", len(disp.rendered))
	}
}

func TestSubmit_PrevalidationRejected(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		reason validator.Reason
	}{
		{"too short", "hi there", validator.ReasonTooShort},
		{"repetitive", "aaaaaaaaaaaa", validator.ReasonRepetitiveChars},
		{"digits", "12345678901234567890", validator.ReasonTooFewLetters},
		{"symbols", "abcdefghijkl!@#$%^&*", validator.ReasonTooManySymbols},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}
			s := New(svc, &recordingDisplay{}, "en")

			out := s.Submit(context.Background(), tt.text, internal.ScenarioHire)

			if out.Kind != KindError || out.Text != string(tt.reason) {
				t.Errorf("unexpected outcome %+v", out)
			}
			var pe *PrevalidationError
			if !errors.As(out.Err, &pe) || pe.Reason != tt.reason {
				t.Errorf("expected PrevalidationError(%s), got %v", tt.reason, out.Err)
			}
			if svc.callCount.Load() != 0 {
				t.Error("service must not be called for rejected text")
			}
		})
	}
}

func TestSubmit_Success(t *testing.T) {
	svc := &mockService{
		processFunc: func(ctx context.Context, req internal.ScenarioRequest) (internal.ScenarioResponse, error) {
			if req.Text != acceptedText {
				t.Errorf("expected trimmed text, got %q", req.Text)
			}
			if req.Scenario != "remind" {
				t.Errorf("expected scenario remind, got %q", req.Scenario)
			}
			if req.UILang != "es" {
				t.Errorf("expected ui_lang es, got %q", req.UILang)
			}
			return internal.ScenarioResponse{Result: "X"}, nil
		},
	}
	disp := &recordingDisplay{}
	s := New(svc, disp, "es")

	out := s.Submit(context.Background(), "  "+acceptedText+"  ", internal.ScenarioRemind)

	if out.Kind != KindSuccess || out.Text != "X" || out.Err != nil {
		t.Errorf("unexpected outcome %+v", out)
	}
	if svc.callCount.Load() != 1 {
		t.Errorf("expected exactly one call, got %d", svc.callCount.Load())
	}
	disp.assertCleared(t)
	if len(disp.rendered) != 1 || disp.rendered[0].Text != "X" {
		t.Errorf("unexpected renders %+v", disp.rendered)
	}
}

func TestSubmit_EmptySuccess(t *testing.T) {
	svc := &mockService{
		processFunc: func(ctx context.Context, req internal.ScenarioRequest) (internal.ScenarioResponse, error) {
			return internal.ScenarioResponse{}, nil
		},
	}
	s := New(svc, &recordingDisplay{}, "en")

	out := s.Submit(context.Background(), acceptedText, internal.ScenarioHire)
	if out.Kind != KindSuccess || out.Text != "" {
		t.Errorf("expected empty success, got %+v", out)
	}
}

func TestSubmit_ServiceError(t *testing.T) {
	svc := &mockService{
		processFunc: func(ctx context.Context, req internal.ScenarioRequest) (internal.ScenarioResponse, error) {
			return internal.ScenarioResponse{Error: "Y"}, nil
		},
	}
	disp := &recordingDisplay{}
	s := New(svc, disp, "en")

	out := s.Submit(context.Background(), acceptedText, internal.ScenarioReject)

	if out.Kind != KindError || out.Text != "Y" {
		t.Errorf("unexpected outcome %+v", out)
	}
	var se *ServiceError
	if !errors.As(out.Err, &se) || se.Message != "Y" {
		t.Errorf("expected ServiceError(Y), got %v", out.Err)
	}
	disp.assertCleared(t)
}

func TestSubmit_ServiceErrorWinsOverResult(t *testing.T) {
	svc := &mockService{
		processFunc: func(ctx context.Context, req internal.ScenarioRequest) (internal.ScenarioResponse, error) {
			return internal.ScenarioResponse{Result: "X", Error: "Y"}, nil
		},
	}
	s := New(svc, nil, "en")

	out := s.Submit(context.Background(), acceptedText, internal.ScenarioReject)
	if out.Kind != KindError || out.Text != "Y" {
		t.Errorf("unexpected outcome %+v", out)
	}
}

func TestSubmit_TransportError(t *testing.T) {
	svc := &mockService{
		processFunc: func(ctx context.Context, req internal.ScenarioRequest) (internal.ScenarioResponse, error) {
			return internal.ScenarioResponse{}, errors.New("connection refused")
		},
	}
	disp := &recordingDisplay{}
	s := New(svc, disp, "en")

	out := s.Submit(context.Background(), acceptedText, internal.ScenarioHire)

	if out.Kind != KindError || out.Text != KeyFetchError {
		t.Errorf("unexpected outcome %+v", out)
	}
	if !errors.Is(out.Err, ErrTransport) {
		t.Errorf("expected ErrTransport, got %v", out.Err)
	}
	disp.assertCleared(t)
	if s.Pending() {
		t.Error("submitter must not stay pending after failure")
	}
}

func TestSubmit_PanicStillCleansUp(t *testing.T) {
	svc := &mockService{
		processFunc: func(ctx context.Context, req internal.ScenarioRequest) (internal.ScenarioResponse, error) {
			panic("boom")
		},
	}
	disp := &recordingDisplay{}
	s := New(svc, disp, "en")

	out := s.Submit(context.Background(), acceptedText, internal.ScenarioHire)

	if out.Kind != KindError || out.Text != KeyFetchError {
		t.Errorf("unexpected outcome %+v", out)
	}
	disp.assertCleared(t)

	// The form is usable again.
	svc.processFunc = nil
	out = s.Submit(context.Background(), acceptedText, internal.ScenarioHire)
	if out.Kind != KindSuccess {
		t.Errorf("expected success on retry, got %+v", out)
	}
}

func TestSubmit_BusyWhilePending(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	svc := &mockService{
		processFunc: func(ctx context.Context, req internal.ScenarioRequest) (internal.ScenarioResponse, error) {
			close(started)
			<-release
			return internal.ScenarioResponse{Result: "first"}, nil
		},
	}
	s := New(svc, &recordingDisplay{}, "en")

	done := make(chan Outcome)
	go func() {
		done <- s.Submit(context.Background(), acceptedText, internal.ScenarioHire)
	}()

	<-started
	if !s.Pending() {
		t.Error("expected pending while request in flight")
	}
	second := s.Submit(context.Background(), acceptedText, internal.ScenarioHire)
	if !errors.Is(second.Err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %+v", second)
	}

	close(release)
	first := <-done
	if first.Text != "first" {
		t.Errorf("unexpected first outcome %+v", first)
	}
	if svc.callCount.Load() != 1 {
		t.Errorf("expected one call, got %d", svc.callCount.Load())
	}
	if s.Pending() {
		t.Error("expected not pending after completion")
	}
}

func TestSubmitter_SetLang(t *testing.T) {
	var got string
	svc := &mockService{
		processFunc: func(ctx context.Context, req internal.ScenarioRequest) (internal.ScenarioResponse, error) {
			got = req.UILang
			return internal.ScenarioResponse{}, nil
		},
	}
	s := New(svc, nil, "ru")
	s.SetLang("en")
	s.Submit(context.Background(), acceptedText, internal.ScenarioHire)
	if got != "en" {
		t.Errorf("expected en, got %q", got)
	}
}

func TestSubmit_TransportErrorKeepsCause(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	s := New(client.New(srv.URL), nil, "en")
	out := s.Submit(context.Background(), acceptedText, internal.ScenarioRemind)

	if out.Text != KeyFetchError {
		t.Errorf("unexpected outcome %+v", out)
	}
	if !errors.Is(out.Err, ErrTransport) {
		t.Errorf("expected ErrTransport, got %v", out.Err)
	}
	if !errors.Is(out.Err, client.ErrTransport) {
		t.Errorf("expected client.ErrTransport in chain, got %v", out.Err)
	}
}
