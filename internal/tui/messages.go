package tui

import (
	"github.com/applyninja/ninja/internal/history"
)

// RowsMsg carries a fresh render from the poller.
type RowsMsg struct {
	Rows  []history.Row
	Stale bool
}

// ClearedMsg reports the outcome of a clear request.
type ClearedMsg struct {
	Err error
}

// RefreshedMsg reports the outcome of a manual refresh.
type RefreshedMsg struct {
	Err error
}
