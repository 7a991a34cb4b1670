// Package ui provides terminal output for the ninja workflows.
// This file implements the stage display shown while a workflow runs.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// StageStatus is the state of the current workflow step.
type StageStatus int

const (
	StatusActive StageStatus = iota // Step in progress
	StatusFailed                    // Step failed
)

const barWidth = 24

// ProgressDisplay renders workflow stages. On a terminal the status line is
// redrawn in place; otherwise each distinct stage is printed once.
type ProgressDisplay struct {
	mu          sync.Mutex
	out         io.Writer
	title       string
	isTTY       bool
	linesDrawn  int
	text        string
	percent     int
	status      StageStatus
	started     time.Time
	lastPrinted string // last plain line, to skip duplicates
}

// NewProgressDisplay creates a ProgressDisplay writing to out.
func NewProgressDisplay(out io.Writer, title string) *ProgressDisplay {
	return &ProgressDisplay{
		out:     out,
		title:   title,
		isTTY:   IsTerminal(out),
		started: time.Now(),
	}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Stage implements flow.Progress.
func (p *ProgressDisplay) Stage(text string, percent int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.text = text
	p.percent = clamp(percent)
	p.status = StatusActive
	p.render()
}

// Fail implements flow.Progress.
func (p *ProgressDisplay) Fail(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.text = text
	p.status = StatusFailed
	p.render()
}

// Finish moves the cursor below the status line and prints the elapsed
// time.
func (p *ProgressDisplay) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isTTY && p.linesDrawn > 0 {
		fmt.Fprint(p.out, "\n")
	}
	fmt.Fprintf(p.out, "Done in %s\n", formatDuration(time.Since(p.started)))
}

func (p *ProgressDisplay) render() {
	if !p.isTTY {
		p.renderPlain()
		return
	}
	p.renderTTY()
}

// renderTTY redraws the header and status line using ANSI escape codes.
func (p *ProgressDisplay) renderTTY() {
	if p.linesDrawn > 0 {
		fmt.Fprintf(p.out, "\033[%dA", p.linesDrawn)
	}

	var buf strings.Builder
	buf.WriteString(fmt.Sprintf("\033[2K\033[1m%s\033[0m\n", p.title))
	buf.WriteString("\033[2K")
	buf.WriteString(formatStageLine(p.text, p.percent, p.status))
	buf.WriteString("\n")

	fmt.Fprint(p.out, buf.String())
	p.linesDrawn = 2
}

// renderPlain writes non-TTY output (for CI/piping).
func (p *ProgressDisplay) renderPlain() {
	line := formatStageLinePlain(p.text, p.percent, p.status)
	if line == p.lastPrinted {
		return
	}
	fmt.Fprintln(p.out, line)
	p.lastPrinted = line
}

// formatStageLine formats the status line with a bar and colors.
func formatStageLine(text string, percent int, status StageStatus) string {
	if status == StatusFailed {
		return fmt.Sprintf("  \033[31m❌ %s\033[0m", text)
	}
	filled := percent * barWidth / 100
	bar := "\033[32m" + strings.Repeat("█", filled) + "\033[90m" + strings.Repeat("░", barWidth-filled) + "\033[0m"
	return fmt.Sprintf("  %s %3d%%  %s", bar, percent, text)
}

// formatStageLinePlain formats the status line for non-TTY output.
func formatStageLinePlain(text string, percent int, status StageStatus) string {
	if status == StatusFailed {
		return "[FAILED] " + text
	}
	return fmt.Sprintf("[%3d%%] %s", percent, text)
}

func clamp(percent int) int {
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", h, m, s)
}
