package tui

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/applyninja/ninja/internal/history"
)

// PlainRenderer prints each poll result as a table. Used when stdout is not
// a terminal or for one-shot listing.
type PlainRenderer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewPlainRenderer creates a PlainRenderer writing to out.
func NewPlainRenderer(out io.Writer) *PlainRenderer {
	return &PlainRenderer{out: out}
}

// Render implements history.Renderer.
func (r *PlainRenderer) Render(rows []history.Row, stale bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if stale {
		fmt.Fprintln(r.out, "(stale: server not responding, showing last known data)")
	}
	if len(rows) == 1 && rows[0].Placeholder != "" {
		fmt.Fprintln(r.out, rows[0].Placeholder)
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("COMPANY", "ROLE", "STATUS", "DATE")
	for _, row := range rows {
		t.Row(row.Company, row.Role, row.Status, row.Date)
	}
	fmt.Fprintln(r.out, t.Render())
}
