package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/applyninja/ninja/internal/history"
)

// Actions are the operations the history view can trigger. Clear is called
// only after the user has confirmed inside the view.
type Actions struct {
	Refresh func(ctx context.Context) error
	Clear   func(ctx context.Context) error
}

// HistoryModel is the live application log view.
type HistoryModel struct {
	ctx     context.Context
	actions Actions
	keys    KeyMap

	table   table.Model
	spinner spinner.Model

	loaded      bool
	stale       bool
	busy        bool
	confirming  bool
	placeholder string
	status      string
	errText     string
	width       int
}

const defaultTableHeight = 12

// NewHistoryModel creates the history view.
func NewHistoryModel(ctx context.Context, actions Actions) HistoryModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Company", Width: 22},
			{Title: "Role", Width: 26},
			{Title: "Status", Width: 12},
			{Title: "Date", Width: 12},
		}),
		table.WithFocused(true),
		table.WithHeight(defaultTableHeight),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).Foreground(TitleStyle.GetForeground())
	styles.Selected = styles.Selected.Foreground(SuccessStyle.GetForeground())
	t.SetStyles(styles)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = WarningStyle

	return HistoryModel{
		ctx:     ctx,
		actions: actions,
		keys:    DefaultKeyMap,
		table:   t,
		spinner: s,
	}
}

// Init starts the spinner.
func (m HistoryModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages for the history view.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case RowsMsg:
		m.loaded = true
		m.stale = msg.Stale
		m.setRows(msg.Rows)
		return m, nil

	case ClearedMsg:
		m.busy = false
		if msg.Err != nil {
			m.errText = msg.Err.Error()
			m.status = ""
		} else {
			m.errText = ""
			m.status = "History cleared."
		}
		return m, nil

	case RefreshedMsg:
		m.busy = false
		if msg.Err != nil {
			m.errText = msg.Err.Error()
		} else {
			m.errText = ""
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if h := msg.Height - 8; h > 3 {
			m.table.SetHeight(h)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m HistoryModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirming {
		switch {
		case key.Matches(msg, m.keys.Yes):
			m.confirming = false
			m.busy = true
			return m, m.clearCmd()
		case key.Matches(msg, m.keys.No):
			m.confirming = false
			m.status = "Clear cancelled."
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Clear):
		if m.actions.Clear != nil && !m.busy {
			m.confirming = true
			m.status = ""
		}
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		if m.actions.Refresh != nil && !m.busy {
			m.busy = true
			return m, m.refreshCmd()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m HistoryModel) clearCmd() tea.Cmd {
	ctx, clearFn := m.ctx, m.actions.Clear
	return func() tea.Msg {
		return ClearedMsg{Err: clearFn(ctx)}
	}
}

func (m HistoryModel) refreshCmd() tea.Cmd {
	ctx, refresh := m.ctx, m.actions.Refresh
	return func() tea.Msg {
		return RefreshedMsg{Err: refresh(ctx)}
	}
}

func (m *HistoryModel) setRows(rows []history.Row) {
	m.placeholder = ""
	out := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		if r.Placeholder != "" {
			m.placeholder = r.Placeholder
			continue
		}
		out = append(out, table.Row{r.Company, r.Role, r.Status, r.Date})
	}
	m.table.SetRows(out)
}

// View renders the history view.
func (m HistoryModel) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Application History"))
	if !m.loaded || m.busy {
		b.WriteString(" " + m.spinner.View())
	}
	b.WriteString("\n\n")

	switch {
	case !m.loaded:
		b.WriteString(DimStyle.Render("Loading..."))
	case m.placeholder != "":
		b.WriteString(DimStyle.Render(m.placeholder))
	default:
		b.WriteString(BoxStyle.Render(m.table.View()))
	}
	b.WriteString("\n")

	if m.stale {
		b.WriteString(WarningStyle.Render("Showing last known data; the server is not responding."))
		b.WriteString("\n")
	}
	if m.errText != "" {
		b.WriteString(ErrorStyle.Render("Error: " + m.errText))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(SuccessStyle.Render(m.status))
		b.WriteString("\n")
	}
	if m.confirming {
		b.WriteString(WarningStyle.Render(history.ClearQuestion + " (y/n)"))
		b.WriteString("\n")
	}

	b.WriteString(StatusBarStyle.Render(fmt.Sprintf("%s  %s  %s  %s",
		m.keys.Up.Help().Key+"/"+m.keys.Down.Help().Key+" move",
		m.keys.Refresh.Help().Key+" "+m.keys.Refresh.Help().Desc,
		m.keys.Clear.Help().Key+" "+m.keys.Clear.Help().Desc,
		m.keys.Quit.Help().Key+" "+m.keys.Quit.Help().Desc,
	)))
	return b.String()
}

// Rows returns the table rows currently shown, for tests and callers that
// need the rendered data.
func (m HistoryModel) Rows() []table.Row {
	return m.table.Rows()
}

// ProgramRenderer forwards poller renders to a running program.
type ProgramRenderer struct {
	P *tea.Program
}

// Render implements history.Renderer.
func (r ProgramRenderer) Render(rows []history.Row, stale bool) {
	r.P.Send(RowsMsg{Rows: rows, Stale: stale})
}
