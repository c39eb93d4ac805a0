// Package session drives the wake word, authentication and command loop
// cycle of one local speaker.
package session

import (
	"vox/internal/auth"
	"vox/internal/nlu"
)

type State int32

const (
	WaitingForWakeWord State = iota
	Authenticating
	CommandLoop
)

func (s State) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case CommandLoop:
		return "command-loop"
	default:
		return "waiting-for-wake-word"
	}
}

const (
	MessageGreeting    = "Hello, I'm your voice assistant. How can I help you today?"
	MessageAdminPrompt = "Do you want to authenticate as admin? Say yes or no."
	MessageSecret      = "Please enter the admin password."
	MessagePrompt      = "What would you like me to do?"
	MessageNothing     = "I didn't hear anything. Please try again."
	MessageTimeout     = "Session timeout. Please say the wake word again when you need me."
	MessageLoopError   = "I encountered an error processing commands."
	MessageFatal       = "I encountered an error and need to restart."
)

// Session is the state of one authenticated run of commands. The zero
// value is an inactive, unauthenticated session.
type Session struct {
	Authenticated  bool
	Privilege      auth.Privilege
	Active         bool
	CommandsIssued int
	MaxCommands    int

	pending *nlu.Confirmation
}

func start(d auth.Decision, maxCommands int) Session {
	return Session{
		Authenticated: d.Authenticated,
		Privilege:     d.Privilege,
		Active:        d.Authenticated,
		MaxCommands:   maxCommands,
	}
}

// Pending returns the confirmation waiting for the next reply, if any.
func (s *Session) Pending() *nlu.Confirmation {
	return s.pending
}

// Exhausted reports whether the command budget is spent.
func (s *Session) Exhausted() bool {
	return s.CommandsIssued >= s.MaxCommands
}

func (s *Session) reset() {
	if s.pending != nil {
		s.pending.Cancel()
	}
	*s = Session{}
}
