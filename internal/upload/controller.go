// Package upload drives the resume upload workflow: send the file for
// analysis, store the resulting profile, activate a pending premium unlock,
// and hand off to the dashboard.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/applyninja/ninja/internal/api"
	"github.com/applyninja/ninja/internal/flow"
	"github.com/applyninja/ninja/internal/log"
	"github.com/applyninja/ninja/internal/profile"
)

// ErrNoFile is returned when Run is called without a selected file.
var ErrNoFile = errors.New("upload: no file selected")

// Analyzer sends a resume to the backend for analysis.
type Analyzer interface {
	Upload(ctx context.Context, filename string, content io.Reader) (*profile.Record, error)
}

// Promoter activates premium after a proof submission.
type Promoter interface {
	Promote(ctx context.Context) (string, error)
}

// Options configures a Controller.
type Options struct {
	Store     *profile.Store
	Analyzer  Analyzer
	Promoter  Promoter
	Navigator flow.Navigator
	Progress  flow.Progress
	Events    *log.Logger
	Logger    *zerolog.Logger
	// RedirectDelay is the pause between the final status and navigation.
	RedirectDelay time.Duration
}

// Controller is the Upload Workflow Controller.
type Controller struct {
	store         *profile.Store
	analyzer      Analyzer
	promoter      Promoter
	nav           flow.Navigator
	progress      flow.Progress
	events        *log.Logger
	logger        *zerolog.Logger
	redirectDelay time.Duration
}

// Result describes a completed upload.
type Result struct {
	Profile *profile.Record
	// Promoted is true when a pending premium unlock was activated.
	Promoted bool
	// PromotionErr is set when a pending unlock could not be verified; the
	// pending flag is still set so the user can retry.
	PromotionErr error
}

// NewController builds a Controller.
func NewController(opts Options) *Controller {
	progress := opts.Progress
	if progress == nil {
		progress = flow.NopProgress{}
	}
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	return &Controller{
		store:         opts.Store,
		analyzer:      opts.Analyzer,
		promoter:      opts.Promoter,
		nav:           opts.Navigator,
		progress:      progress,
		events:        opts.Events,
		logger:        logger,
		redirectDelay: opts.RedirectDelay,
	}
}

// Run uploads file and completes the workflow. Each step finishes before the
// next starts; navigation happens only after any premium promotion has been
// written, so the next page sees is_premium.
func (c *Controller) Run(ctx context.Context, file *flow.File) (*Result, error) {
	if !file.Present() {
		return nil, ErrNoFile
	}

	start := time.Now()
	_ = c.events.Append(log.LogEvent{Event: log.EventUploadStarted, File: file.Name})
	c.progress.Stage("Uploading and analyzing with AI...", 30)

	rec, err := c.analyzer.Upload(ctx, file.Name, file.Content)
	if err != nil {
		c.progress.Fail("Error: " + api.Message(err))
		_ = c.events.Append(log.LogEvent{Event: log.EventUploadFailed, File: file.Name, Error: api.Message(err)})
		return nil, fmt.Errorf("analyzing %s: %w", file.Name, err)
	}

	if err := c.store.Write(ctx, rec); err != nil {
		c.progress.Fail("Error: " + err.Error())
		return nil, err
	}
	c.progress.Stage("Analysis Complete! Redirecting...", 100)
	_ = c.events.Append(log.LogEvent{
		Event:      log.EventUploadCompleted,
		File:       file.Name,
		DurationMs: time.Since(start).Milliseconds(),
	})

	result := &Result{Profile: rec}

	pending, err := c.store.PendingPremium(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("upload: could not read pending premium flag")
	}
	if pending && c.promoter != nil {
		c.progress.Stage("Activating Pro Plan...", 100)
		if _, err := c.promoter.Promote(ctx); err != nil {
			result.PromotionErr = err
			c.logger.Warn().Err(err).Msg("upload: premium activation failed, flag kept for retry")
		} else {
			result.Promoted = true
			if promoted, err := c.store.Read(ctx); err == nil && promoted != nil {
				result.Profile = promoted
			}
		}
	}

	if err := flow.Wait(ctx, c.redirectDelay); err != nil {
		return result, err
	}
	if c.nav != nil {
		if err := c.nav.Navigate(ctx, flow.PageDashboard); err != nil {
			return result, fmt.Errorf("navigating to dashboard: %w", err)
		}
	}
	return result, nil
}
