// Package history polls the server-side application log and renders it,
// replacing the whole list on every successful fetch.
package history

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/applyninja/ninja/internal/api"
	"github.com/applyninja/ninja/internal/flow"
	"github.com/applyninja/ninja/internal/log"
)

// ClearQuestion is asked before the log is deleted.
const ClearQuestion = "Are you sure you want to clear the application history?"

// DefaultInterval is the polling period when none is configured.
const DefaultInterval = 3 * time.Second

// ErrRunning is returned by Start when the poller is already running.
var ErrRunning = errors.New("history: poller already running")

// Source reads and clears the application log.
type Source interface {
	History(ctx context.Context) ([]api.HistoryEntry, error)
	ClearHistory(ctx context.Context) error
}

// Renderer displays rows. stale is true when recent fetches have failed and
// rows are the last good data.
type Renderer interface {
	Render(rows []Row, stale bool)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// Options configures a Poller.
type Options struct {
	Source    Source
	Renderer  Renderer
	Confirmer Confirmer
	Interval  time.Duration
	// StaleAfter is the number of consecutive failures before rows are
	// shown as stale.
	StaleAfter int
	Events     *log.Logger
	Logger     *zerolog.Logger
}

// Poller is the History Poller.
type Poller struct {
	source    Source
	renderer  Renderer
	confirmer Confirmer
	interval  time.Duration
	staleness *Staleness
	events    *log.Logger
	logger    *zerolog.Logger

	// refreshMu serializes fetch-and-render so a clear's refresh and a tick
	// never interleave their renders.
	refreshMu sync.Mutex
	last      []Row

	mu      sync.Mutex
	loopCtx context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewPoller builds a Poller.
func NewPoller(opts Options) *Poller {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	return &Poller{
		source:    opts.Source,
		renderer:  opts.Renderer,
		confirmer: opts.Confirmer,
		interval:  interval,
		staleness: NewStaleness(opts.StaleAfter),
		events:    opts.Events,
		logger:    logger,
	}
}

// Start fetches immediately and then on every interval until ctx is done or
// Stop is called. A poller whose context has ended can be started again.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done != nil {
		if p.loopCtx.Err() == nil {
			return ErrRunning
		}
		// The previous loop is exiting; the loop never takes p.mu.
		p.cancel()
		<-p.done
	}
	loopCtx, cancel := context.WithCancel(ctx)
	p.loopCtx = loopCtx
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.loop(loopCtx, p.done)
	return nil
}

// Stop cancels the loop and waits for it to exit. Safe to call when the
// poller is not running.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.loopCtx, p.cancel, p.done = nil, nil, nil
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	p.tick(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// tick runs one scheduled fetch. Errors never stop the loop.
func (p *Poller) tick(ctx context.Context) {
	if err := p.Refresh(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.Warn().Err(err).Int("failures", p.staleness.Failures()).Msg("history: fetch failed")
	}
}

// Refresh fetches the log once and renders it. On failure the last good
// rows are re-rendered, flagged stale once the threshold is reached.
func (p *Poller) Refresh(ctx context.Context) error {
	p.refreshMu.Lock()
	defer p.refreshMu.Unlock()

	entries, err := p.source.History(ctx)
	if err != nil {
		if api.IsCanceled(err) && ctx.Err() != nil {
			return err
		}
		if stale := p.staleness.RecordFailure(); stale && p.last != nil && p.renderer != nil {
			p.renderer.Render(p.last, true)
		}
		return fmt.Errorf("fetching history: %w", err)
	}

	p.staleness.RecordSuccess()
	rows := Rows(entries)
	p.last = rows
	if p.renderer != nil {
		p.renderer.Render(rows, false)
	}
	return nil
}

// Clear asks for confirmation, deletes the log, and refreshes at once.
// A declined confirmation returns flow.ErrCancelled without any request.
func (p *Poller) Clear(ctx context.Context) error {
	if p.confirmer != nil {
		ok, err := p.confirmer.Confirm(ctx, ClearQuestion)
		if err != nil {
			return err
		}
		if !ok {
			return flow.ErrCancelled
		}
	}

	if err := p.source.ClearHistory(ctx); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	_ = p.events.Append(log.LogEvent{Event: log.EventHistoryCleared})

	if err := p.Refresh(ctx); err != nil {
		p.logger.Warn().Err(err).Msg("history: refresh after clear failed")
	}
	return nil
}

// Stale reports whether the rendered rows are stale.
func (p *Poller) Stale() bool {
	return p.staleness.IsStale()
}

// Last returns the most recently rendered rows, or nil before the first
// successful fetch.
func (p *Poller) Last() []Row {
	p.refreshMu.Lock()
	defer p.refreshMu.Unlock()
	return append([]Row(nil), p.last...)
}
