package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/applyninja/ninja/internal/flow"
)

// Prompter reads answers from the user one line at a time.
type Prompter struct {
	in  *bufio.Reader
	fd  int
	tty bool
	out io.Writer
}

// NewPrompter creates a Prompter reading from in and writing prompts to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{in: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd = int(f.Fd())
		p.tty = true
	}
	return p
}

// Ask prints label and returns the trimmed line typed by the user.
func (p *Prompter) Ask(label string) (string, error) {
	fmt.Fprintf(p.out, "  %s: ", label)

	input, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && input != "") {
		return "", err
	}

	return strings.TrimSpace(input), nil
}

// AskSecret reads a line without echo when attached to a terminal.
func (p *Prompter) AskSecret(label string) (string, error) {
	if !p.tty {
		return p.Ask(label)
	}
	fmt.Fprintf(p.out, "  %s: ", label)
	secret, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(secret), nil
}

// Confirm asks a yes/no question. Anything but y/yes is a no.
func (p *Prompter) Confirm(ctx context.Context, question string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	answer, err := p.Ask(question + " [y/N]")
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading confirmation: %w", err)
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// AlwaysConfirm answers yes without asking; used for --yes.
type AlwaysConfirm struct{}

// Confirm implements history.Confirmer.
func (AlwaysConfirm) Confirm(context.Context, string) (bool, error) { return true, nil }

// PaymentNotice tells the user the agent needs a paid plan and how to pay.
type PaymentNotice struct {
	Out io.Writer
	Nav flow.Navigator
}

// OpenPayment implements agent.PaymentPrompt.
func (n PaymentNotice) OpenPayment(ctx context.Context, reason string) {
	fmt.Fprintln(n.Out, "Upgrade required to continue.")
	if reason != "" {
		fmt.Fprintf(n.Out, "  %s\n", reason)
	}
	if n.Nav != nil {
		_ = n.Nav.Navigate(ctx, flow.PagePayment)
	}
}
