package testutil

import (
	"context"
	"sync"

	"github.com/applyninja/ninja/internal/flow"
)

// Navigator records navigations. OnNavigate, when set, runs before the page
// is recorded so tests can inspect state at navigation time.
type Navigator struct {
	mu         sync.Mutex
	Pages      []flow.Page
	OnNavigate func(page flow.Page)
}

// Navigate implements flow.Navigator.
func (n *Navigator) Navigate(_ context.Context, page flow.Page) error {
	if n.OnNavigate != nil {
		n.OnNavigate(page)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Pages = append(n.Pages, page)
	return nil
}

// Visited returns a copy of the recorded pages.
func (n *Navigator) Visited() []flow.Page {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]flow.Page(nil), n.Pages...)
}

// Progress records progress updates.
type Progress struct {
	mu       sync.Mutex
	Stages   []string
	Percents []int
	Failures []string
}

// Stage implements flow.Progress.
func (p *Progress) Stage(text string, percent int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Stages = append(p.Stages, text)
	p.Percents = append(p.Percents, percent)
}

// Fail implements flow.Progress.
func (p *Progress) Fail(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Failures = append(p.Failures, text)
}

// LastFailure returns the most recent failure text, or "".
func (p *Progress) LastFailure() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Failures) == 0 {
		return ""
	}
	return p.Failures[len(p.Failures)-1]
}
