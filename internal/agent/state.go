// Package agent supervises the remote automation agent: deploy, await the
// outcome, stop on demand, and route payment-required failures to the
// payment gate.
package agent

import (
	"errors"
	"fmt"
)

// State is the lifecycle state of an agent session.
type State int

const (
	Idle            State = iota // No session; deploy allowed
	Deploying                    // Deploy request in flight
	AwaitingPayment              // Backend demanded payment; prompt open
	Stopped                      // Stop requested, waiting for ack
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Deploying:
		return "deploying"
	case AwaitingPayment:
		return "awaiting_payment"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Event drives a state transition.
type Event int

const (
	EventDeploy Event = iota
	EventSucceeded
	EventFailed
	EventPaymentRequired
	EventStop
	EventStopAcked
	EventStopFailed
	EventPaymentResolved
	EventDismiss
)

func (e Event) String() string {
	switch e {
	case EventDeploy:
		return "deploy"
	case EventSucceeded:
		return "succeeded"
	case EventFailed:
		return "failed"
	case EventPaymentRequired:
		return "payment_required"
	case EventStop:
		return "stop"
	case EventStopAcked:
		return "stop_acked"
	case EventStopFailed:
		return "stop_failed"
	case EventPaymentResolved:
		return "payment_resolved"
	case EventDismiss:
		return "dismiss"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// ErrInvalidTransition is returned for an event the current state does not
// accept.
var ErrInvalidTransition = errors.New("agent: invalid transition")

// transitions is the full table. A pair missing from a state's row is
// rejected by Transition.
var transitions = map[State]map[Event]State{
	Idle: {
		EventDeploy: Deploying,
	},
	Deploying: {
		EventSucceeded:       Idle,
		EventFailed:          Idle,
		EventPaymentRequired: AwaitingPayment,
		EventStop:            Stopped,
	},
	AwaitingPayment: {
		EventPaymentResolved: Idle,
		EventDismiss:         Idle,
	},
	Stopped: {
		EventStopAcked:  Idle,
		EventStopFailed: Idle,
	},
}

// Transition returns the state reached from s on e.
func Transition(s State, e Event) (State, error) {
	row, ok := transitions[s]
	if !ok {
		return s, fmt.Errorf("%w: unknown state %s", ErrInvalidTransition, s)
	}
	next, ok := row[e]
	if !ok {
		return s, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, e, s)
	}
	return next, nil
}

// States lists every state, for exhaustive checks.
func States() []State {
	return []State{Idle, Deploying, AwaitingPayment, Stopped}
}

// Events lists every event.
func Events() []Event {
	return []Event{
		EventDeploy, EventSucceeded, EventFailed, EventPaymentRequired,
		EventStop, EventStopAcked, EventStopFailed, EventPaymentResolved, EventDismiss,
	}
}
