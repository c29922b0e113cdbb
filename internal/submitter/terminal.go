package submitter

import (
	"fmt"
	"io"
	"sync"

	"github.com/valpere/hrify/internal/i18n"
)

// TerminalDisplay renders outcomes for a command-line form: the pending
// placeholder and errors go to errOut, results to out.
type TerminalDisplay struct {
	tr     *i18n.Translator
	out    io.Writer
	errOut io.Writer
	format func(string) string

	mu   sync.Mutex
	last Outcome
}

// NewTerminalDisplay builds a display. format, when non-nil, transforms a
// successful reply before printing (for example markdown to HTML).
func NewTerminalDisplay(tr *i18n.Translator, out, errOut io.Writer, format func(string) string) *TerminalDisplay {
	return &TerminalDisplay{tr: tr, out: out, errOut: errOut, format: format}
}

func (d *TerminalDisplay) SetPending(pending bool) {
	if pending {
		fmt.Fprintln(d.errOut, d.tr.T("processing"))
	}
}

// Render prints a success verbatim and an error as "<label>: <message>",
// translating the message when it is a dictionary key.
func (d *TerminalDisplay) Render(o Outcome) {
	d.mu.Lock()
	d.last = o
	d.mu.Unlock()

	if o.Kind == KindSuccess {
		text := o.Text
		if d.format != nil {
			text = d.format(text)
		}
		fmt.Fprintln(d.out, text)
		return
	}
	fmt.Fprintf(d.errOut, "%s: %s\n", d.tr.T("errorLabel"), d.tr.T(o.Text))
}

// Last returns the most recently rendered outcome.
func (d *TerminalDisplay) Last() Outcome {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}
