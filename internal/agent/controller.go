package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/applyninja/ninja/internal/api"
	"github.com/applyninja/ninja/internal/log"
)

var (
	// ErrBusy is returned when a deploy is requested while a session is
	// already active.
	ErrBusy = errors.New("agent: a session is already active")
	// ErrMissingCredentials is returned when identifier or secret is empty.
	ErrMissingCredentials = errors.New("agent: identifier and secret are required")
)

// Backend starts and stops the remote agent.
type Backend interface {
	DeployAgent(ctx context.Context, creds api.Credentials) (string, error)
	StopAgent(ctx context.Context) (string, error)
}

// Resolver settles an outstanding payment requirement.
type Resolver interface {
	Promote(ctx context.Context) (string, error)
}

// PaymentPrompt opens the payment workflow when the backend demands it.
type PaymentPrompt interface {
	OpenPayment(ctx context.Context, reason string)
}

// Options configures a Controller.
type Options struct {
	Backend  Backend
	Resolver Resolver
	Prompt   PaymentPrompt
	Events   *log.Logger
	Logger   *zerolog.Logger
}

// Snapshot is a point-in-time copy of the session.
type Snapshot struct {
	State     State
	LastError string
	RunID     string
}

// Outcome is the result of a deploy request.
type Outcome struct {
	RunID   string
	Message string
	// PaymentRequired is set when the backend refused the run pending payment.
	PaymentRequired bool
	// Late is set when the session was stopped or replaced before the
	// response arrived. The outcome is informational only.
	Late bool
}

// Controller is the Automation Agent Controller. All state changes go
// through Transition.
type Controller struct {
	backend  Backend
	resolver Resolver
	prompt   PaymentPrompt
	events   *log.Logger
	logger   *zerolog.Logger

	mu        sync.Mutex
	state     State
	lastError string
	runID     string
	session   uint64
}

// NewController builds a Controller in the Idle state.
func NewController(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	return &Controller{
		backend:  opts.Backend,
		resolver: opts.Resolver,
		prompt:   opts.Prompt,
		events:   opts.Events,
		logger:   logger,
	}
}

// Snapshot returns the current session state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{State: c.state, LastError: c.lastError, RunID: c.runID}
}

// CanDeploy reports whether a deploy would be accepted.
func (c *Controller) CanDeploy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == Idle
}

// Deploy starts the agent and blocks until the backend reports the run
// finished. The returned error is the server or transport failure, if any;
// the Outcome is non-nil whenever the request was sent.
func (c *Controller) Deploy(ctx context.Context, creds api.Credentials) (*Outcome, error) {
	if strings.TrimSpace(creds.Identifier) == "" || creds.Secret == "" {
		return nil, ErrMissingCredentials
	}

	c.mu.Lock()
	if c.state != Idle {
		state := c.state
		c.mu.Unlock()
		return nil, fmt.Errorf("%w (%s)", ErrBusy, state)
	}
	if err := c.fire(EventDeploy); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.session++
	session := c.session
	c.runID = uuid.New().String()
	c.lastError = ""
	runID := c.runID
	c.mu.Unlock()

	start := time.Now()
	_ = c.events.Append(log.LogEvent{Event: log.EventAgentDeployed, RunID: runID, State: Deploying.String()})
	c.logger.Debug().Str("run", runID).Msg("agent: deploy sent")

	msg, err := c.backend.DeployAgent(ctx, creds)
	out := &Outcome{RunID: runID, Message: msg}

	c.mu.Lock()
	if c.session != session || c.state != Deploying {
		out.Late = true
		c.mu.Unlock()
		c.logger.Info().Str("run", runID).Err(err).Msg("agent: outcome arrived after stop")
		_ = c.events.Append(log.LogEvent{
			Event:   log.EventAgentFinished,
			RunID:   runID,
			Message: msg,
			Error:   errText(err),
			Data:    map[string]interface{}{"late": true},
		})
		return out, err
	}

	ev := EventSucceeded
	switch {
	case err == nil:
	case api.IsPaymentRequired(err):
		ev = EventPaymentRequired
		out.PaymentRequired = true
	default:
		ev = EventFailed
	}
	if ferr := c.fire(ev); ferr != nil {
		c.mu.Unlock()
		return out, ferr
	}
	if err != nil {
		c.lastError = api.Message(err)
	}
	state := c.state
	c.mu.Unlock()

	entry := log.LogEvent{RunID: runID, State: state.String(), DurationMs: time.Since(start).Milliseconds()}
	switch ev {
	case EventSucceeded:
		entry.Event = log.EventAgentFinished
		entry.Message = msg
	case EventPaymentRequired:
		entry.Event = log.EventPaymentRequired
		entry.Error = api.Message(err)
	default:
		entry.Event = log.EventAgentFailed
		entry.Error = api.Message(err)
	}
	_ = c.events.Append(entry)

	if out.PaymentRequired && c.prompt != nil {
		c.prompt.OpenPayment(ctx, api.Message(err))
	}
	return out, err
}

// Stop asks the backend to halt the active run. It is valid only while a
// deploy is in flight. The backend's acknowledgment is trusted; the session
// returns to Idle whether or not the stop request succeeds.
func (c *Controller) Stop(ctx context.Context) (string, error) {
	c.mu.Lock()
	if err := c.fire(EventStop); err != nil {
		c.mu.Unlock()
		return "", err
	}
	runID := c.runID
	c.mu.Unlock()

	msg, err := c.backend.StopAgent(ctx)

	c.mu.Lock()
	ev := EventStopAcked
	if err != nil {
		ev = EventStopFailed
		c.lastError = api.Message(err)
	}
	if c.state == Stopped {
		_ = c.fire(ev)
	}
	c.mu.Unlock()

	_ = c.events.Append(log.LogEvent{
		Event:   log.EventAgentStopped,
		RunID:   runID,
		Message: msg,
		Error:   errText(err),
	})
	if err != nil {
		return "", fmt.Errorf("stopping agent: %w", err)
	}
	return msg, nil
}

// ResolvePayment verifies payment through the Resolver. On success the
// session returns to Idle and deploy can be triggered again; on failure it
// stays in AwaitingPayment with the error recorded.
func (c *Controller) ResolvePayment(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.state != AwaitingPayment {
		_, err := Transition(c.state, EventPaymentResolved)
		c.mu.Unlock()
		return "", err
	}
	c.mu.Unlock()

	if c.resolver == nil {
		return "", errors.New("agent: no payment resolver configured")
	}
	msg, err := c.resolver.Promote(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.lastError = api.Message(err)
		return "", err
	}
	if c.state == AwaitingPayment {
		_ = c.fire(EventPaymentResolved)
	}
	c.lastError = ""
	return msg, nil
}

// DismissPayment closes the payment prompt without paying.
func (c *Controller) DismissPayment() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fire(EventDismiss)
}

// fire applies e to the current state. Caller holds mu.
func (c *Controller) fire(e Event) error {
	next, err := Transition(c.state, e)
	if err != nil {
		return err
	}
	c.logger.Debug().Str("from", c.state.String()).Str("to", next.String()).Str("event", e.String()).Msg("agent: transition")
	c.state = next
	return nil
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return api.Message(err)
}
