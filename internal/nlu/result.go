package nlu

import (
	"context"
	"sync"
)

type Outcome int

const (
	OutcomeDone Outcome = iota
	OutcomeMissingArgument
	OutcomeDenied
	OutcomeFailed
	OutcomeUnrecognized
	OutcomeAwaitingConfirmation
	OutcomeCancelled
	OutcomeExit
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDone:
		return "done"
	case OutcomeMissingArgument:
		return "missing_argument"
	case OutcomeDenied:
		return "denied"
	case OutcomeFailed:
		return "failed"
	case OutcomeUnrecognized:
		return "unrecognized"
	case OutcomeAwaitingConfirmation:
		return "awaiting_confirmation"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeExit:
		return "exit"
	default:
		return "unknown"
	}
}

// Result is what a handler hands back to the session for speaking.
type Result struct {
	Family   Family
	Outcome  Outcome
	Handled  bool
	Response string

	// Err is the swallowed cause of an OutcomeFailed result. It is audited,
	// never spoken.
	Err error

	// Confirmation is set when Outcome is OutcomeAwaitingConfirmation.
	Confirmation *Confirmation
}

func Done(f Family, response string) Result {
	return Result{Family: f, Outcome: OutcomeDone, Handled: true, Response: response}
}

// Missing asks the speaker for an argument the utterance did not carry.
func Missing(f Family, question string) Result {
	return Result{Family: f, Outcome: OutcomeMissingArgument, Response: question}
}

func Failed(f Family, apology string, err error) Result {
	return Result{Family: f, Outcome: OutcomeFailed, Response: apology, Err: err}
}

func Denied(f Family, response string) Result {
	return Result{Family: f, Outcome: OutcomeDenied, Response: response}
}

func Awaiting(c *Confirmation) Result {
	return Result{
		Family:       c.Family,
		Outcome:      OutcomeAwaitingConfirmation,
		Response:     c.Prompt,
		Confirmation: c,
	}
}

type ConfirmState int

const (
	AwaitingConfirmation ConfirmState = iota
	Confirmed
	Cancelled
)

func (s ConfirmState) String() string {
	switch s {
	case Confirmed:
		return "confirmed"
	case Cancelled:
		return "cancelled"
	default:
		return "awaiting_confirmation"
	}
}

// Confirmation is a destructive action held back until the next turn says
// yes. Any reply without an affirmative token cancels it.
type Confirmation struct {
	Family Family
	Action string
	Prompt string

	mu        sync.Mutex
	state     ConfirmState
	cancelMsg string
	run       func(ctx context.Context) Result
}

func NewConfirmation(f Family, action, prompt, cancelMsg string, run func(ctx context.Context) Result) *Confirmation {
	return &Confirmation{
		Family:    f,
		Action:    action,
		Prompt:    prompt,
		cancelMsg: cancelMsg,
		run:       run,
	}
}

func (c *Confirmation) State() ConfirmState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Resolve settles the confirmation with the speaker's reply. The action
// runs at most once; resolving twice reports a failure.
func (c *Confirmation) Resolve(ctx context.Context, reply string) Result {
	c.mu.Lock()
	if c.state != AwaitingConfirmation {
		c.mu.Unlock()
		return Failed(c.Family, "There is nothing waiting for confirmation.", nil)
	}

	if !IsAffirmative(reply) {
		c.state = Cancelled
		c.mu.Unlock()
		return Result{Family: c.Family, Outcome: OutcomeCancelled, Response: c.cancelMsg}
	}

	c.state = Confirmed
	c.mu.Unlock()

	return c.run(ctx)
}

// Cancel drops a pending confirmation without running it.
func (c *Confirmation) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == AwaitingConfirmation {
		c.state = Cancelled
	}
}
