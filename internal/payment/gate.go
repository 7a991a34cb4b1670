// Package payment manages the two-step premium unlock: proof submission sets
// a pending flag, and a later verification promotes the profile.
package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/applyninja/ninja/internal/flow"
	"github.com/applyninja/ninja/internal/log"
	"github.com/applyninja/ninja/internal/profile"
)

// ErrNoProof is returned when proof is submitted without a file.
var ErrNoProof = errors.New("payment: no proof file selected")

// Verifier confirms payment with the backend.
type Verifier interface {
	VerifyPayment(ctx context.Context) (string, error)
}

// Options configures a Gate.
type Options struct {
	Store     *profile.Store
	Verifier  Verifier
	Navigator flow.Navigator
	Progress  flow.Progress
	Events    *log.Logger
	// ProofDelay is the pause shown while a proof submission "verifies".
	ProofDelay time.Duration
}

// Gate is the Payment Gate Controller.
type Gate struct {
	store      *profile.Store
	verifier   Verifier
	nav        flow.Navigator
	progress   flow.Progress
	events     *log.Logger
	proofDelay time.Duration
}

// NewGate builds a Gate. Store and Verifier are required.
func NewGate(opts Options) *Gate {
	progress := opts.Progress
	if progress == nil {
		progress = flow.NopProgress{}
	}
	return &Gate{
		store:      opts.Store,
		verifier:   opts.Verifier,
		nav:        opts.Navigator,
		progress:   progress,
		events:     opts.Events,
		proofDelay: opts.ProofDelay,
	}
}

// SubmitProof records that the user has paid and sends them back to the
// upload step, where the next successful upload activates premium. No
// network call is made.
func (g *Gate) SubmitProof(ctx context.Context, proof *flow.File) error {
	if !proof.Present() {
		return ErrNoProof
	}

	g.progress.Stage("Verifying...", 50)
	if err := flow.Wait(ctx, g.proofDelay); err != nil {
		return err
	}

	if err := g.store.SetPendingPremium(ctx, true); err != nil {
		g.progress.Fail("Error: " + err.Error())
		return fmt.Errorf("submitting proof: %w", err)
	}
	_ = g.events.Append(log.LogEvent{Event: log.EventProofSubmitted, File: proof.Name})
	g.progress.Stage("Payment proof submitted successfully! Please upload your resume to activate Pro features.", 100)

	if g.nav != nil {
		if err := g.nav.Navigate(ctx, flow.PageUpload); err != nil {
			return fmt.Errorf("navigating to upload: %w", err)
		}
	}
	return nil
}

// Promote verifies payment with the backend and, on success, marks the
// profile premium and clears the pending flag in one write. On failure the
// pending flag is left as it was so the user can retry.
func (g *Gate) Promote(ctx context.Context) (string, error) {
	msg, err := g.verifier.VerifyPayment(ctx)
	if err != nil {
		_ = g.events.Append(log.LogEvent{Event: log.EventPromotionFailed, Error: err.Error()})
		return "", fmt.Errorf("verifying payment: %w", err)
	}

	if _, err := g.store.Promote(ctx); err != nil {
		_ = g.events.Append(log.LogEvent{Event: log.EventPromotionFailed, Error: err.Error()})
		return "", err
	}
	_ = g.events.Append(log.LogEvent{Event: log.EventPremiumPromoted, Message: msg, Premium: true})
	return msg, nil
}

// Pending reports whether a proof submission awaits activation.
func (g *Gate) Pending(ctx context.Context) (bool, error) {
	return g.store.PendingPremium(ctx)
}
