package ui

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/applyninja/ninja/internal/flow"
	"github.com/applyninja/ninja/internal/log"
)

var hintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED")).Bold(true)

// pageHints maps a page to the command that shows it.
var pageHints = map[flow.Page]string{
	flow.PageHome:      "ninja --help",
	flow.PageUpload:    "ninja upload <resume.pdf>",
	flow.PageDashboard: "ninja status",
	flow.PagePayment:   "ninja pay submit <screenshot>",
	flow.PageSettings:  "ninja settings show",
	flow.PageHistory:   "ninja history --watch",
}

// Hint returns the command for page, or "".
func Hint(page flow.Page) string {
	return pageHints[page]
}

// Navigator implements flow.Navigator for the CLI: there are no pages, so a
// navigation prints the command that shows the next step and journals it.
type Navigator struct {
	out    io.Writer
	events *log.Logger
	styled bool
}

// NewNavigator creates a Navigator writing hints to out.
func NewNavigator(out io.Writer, events *log.Logger) *Navigator {
	return &Navigator{out: out, events: events, styled: IsTerminal(out)}
}

// Navigate implements flow.Navigator.
func (n *Navigator) Navigate(_ context.Context, page flow.Page) error {
	_ = n.events.Append(log.LogEvent{Event: log.EventNavigated, Page: string(page)})
	hint := Hint(page)
	if hint == "" {
		return nil
	}
	if n.styled {
		hint = hintStyle.Render(hint)
	}
	_, err := fmt.Fprintf(n.out, "Next: %s\n", hint)
	return err
}
