package session

import (
	"context"
	"fmt"
	log "log/slog"
	"strings"
	"sync/atomic"

	"vox/internal/audit"
	"vox/internal/auth"
	"vox/internal/nlu"
)

const DefaultMaxCommands = 5

type Options struct {
	Gateway    Gateway
	Secrets    SecretReader
	Auth       *auth.Authenticator
	Dispatcher *nlu.Dispatcher
	Audit      audit.Recorder
	Chime      Chime
	Log        *log.Logger

	WakePhrase  string
	MaxCommands int
	// Wake is used while waiting for the wake phrase, Command for every
	// other utterance.
	Wake    ListenOptions
	Command ListenOptions
}

type Controller struct {
	opt     Options
	gw      Gateway
	audit   audit.Recorder
	log     *log.Logger
	trigger chan struct{}
	state   atomic.Int32

	sess Session
}

func New(opt Options) *Controller {
	if opt.Audit == nil {
		opt.Audit = audit.Discard
	}
	if opt.Log == nil {
		opt.Log = log.Default()
	}
	if opt.MaxCommands <= 0 {
		opt.MaxCommands = DefaultMaxCommands
	}
	if opt.Secrets == nil {
		opt.Secrets = SpokenSecrets{Gateway: opt.Gateway, Listen: opt.Command}
	}
	if opt.Auth == nil {
		opt.Auth = auth.New("", opt.Audit, opt.Log)
	}
	if opt.Dispatcher == nil {
		opt.Dispatcher = nlu.NewDispatcher(nil, opt.Audit, opt.Log)
	}

	return &Controller{
		opt:     opt,
		gw:      opt.Gateway,
		audit:   opt.Audit,
		log:     opt.Log.With("component", "session"),
		trigger: make(chan struct{}, 1),
	}
}

// Trigger wakes the controller as if the wake phrase was heard. Safe to
// call from any goroutine; extra triggers while one is queued are dropped.
func (c *Controller) Trigger() {
	select {
	case c.trigger <- struct{}{}:
	default:
	}
}

func (c *Controller) State() State {
	return State(c.state.Load())
}

func (c *Controller) setState(s State) {
	c.state.Store(int32(s))
	c.log.Debug("State changed", "state", s)
}

// Run cycles through wake, authentication and the command loop until ctx
// is done. It returns an error only when a cycle panics outside the
// command loop.
func (c *Controller) Run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("session: fatal: %v", r)
			c.log.Error("Assistant loop crashed", "err", err)
			c.audit.Record(audit.SeverityError, fmt.Sprintf("Error in assistant main loop: %v", r))
			c.gw.Speak(context.WithoutCancel(ctx), MessageFatal)
			c.sess.reset()
			c.setState(WaitingForWakeWord)
		}
	}()

	c.log.Info("Starting assistant loop", "wake_phrase", c.opt.WakePhrase, "max_commands", c.opt.MaxCommands)
	c.audit.Record(audit.SeverityInfo, "Starting voice assistant main loop")

	for ctx.Err() == nil {
		if !c.waitForWake(ctx) {
			continue
		}
		c.authenticate(ctx)
		c.commandLoop(ctx)
	}

	c.log.Info("Assistant loop stopped")
	return nil
}

func (c *Controller) waitForWake(ctx context.Context) bool {
	c.setState(WaitingForWakeWord)

	lctx, cancel := context.WithCancel(ctx)
	defer cancel()

	triggered := make(chan bool, 1)
	go func() {
		select {
		case <-c.trigger:
			cancel()
			triggered <- true
		case <-lctx.Done():
			triggered <- false
		}
	}()

	text := c.gw.Listen(lctx, c.opt.Wake)
	cancel()
	woken := <-triggered

	switch {
	case woken:
		c.log.Info("Woken by trigger")
	case ctx.Err() != nil:
		return false
	case IsWakeWord(text, c.opt.WakePhrase):
		c.log.Info("Wake word detected", "text", text)
	default:
		if text != "" {
			c.log.Debug("Ignoring speech while asleep", "text", text)
		}
		return false
	}

	c.audit.Record(audit.SeverityInfo, "Wake word detected")
	if c.opt.Chime != nil {
		if err := c.opt.Chime.Play(); err != nil {
			c.log.Warn("Failed to play chime", "err", err)
		}
	}
	c.gw.Speak(ctx, MessageGreeting)

	return true
}

func (c *Controller) authenticate(ctx context.Context) {
	c.setState(Authenticating)
	c.audit.Record(audit.SeverityInfo, "Authenticating user")

	cred := auth.Anonymous()

	c.gw.Speak(ctx, MessageAdminPrompt)
	if reply := c.gw.Listen(ctx, c.opt.Command); nlu.IsAffirmative(reply) {
		if secret, ok := c.opt.Secrets.ReadSecret(ctx, MessageSecret); ok {
			cred = auth.Secret(secret)
		} else {
			c.log.Info("No secret entered")
		}
	}

	d := c.opt.Auth.Authenticate(cred)
	c.sess = start(d, c.opt.MaxCommands)
	c.log.Info("Session started", "privilege", d.Privilege)
	c.gw.Speak(ctx, d.Message)
}

func (c *Controller) commandLoop(ctx context.Context) {
	c.setState(CommandLoop)
	defer c.sess.reset()

	for c.sess.Active && ctx.Err() == nil {
		if c.turn(ctx) {
			break
		}
	}

	c.log.Info("Session ended", "commands", c.sess.CommandsIssued)
}

// turn runs one prompt, listen, respond exchange and reports whether the
// session is over.
func (c *Controller) turn(ctx context.Context) (done bool) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("Command loop crashed", "panic", r)
			c.audit.Record(audit.SeverityError, fmt.Sprintf("Error listening for commands: %v", r))
			c.gw.Speak(ctx, MessageLoopError)
			done = true
		}
	}()

	pending := c.sess.pending
	if pending == nil {
		c.gw.Speak(ctx, MessagePrompt)
	}

	text := strings.TrimSpace(c.gw.Listen(ctx, c.opt.Command))
	if ctx.Err() != nil {
		return true
	}
	if text == "" {
		c.gw.Speak(ctx, MessageNothing)
		return false
	}

	c.audit.Command(text, c.sess.Privilege.String())

	var res nlu.Result
	if pending != nil {
		c.sess.pending = nil
		res = c.resolve(ctx, pending, text)
	} else {
		res = c.opt.Dispatcher.Dispatch(ctx, text, c.sess.Privilege)
	}

	if res.Outcome == nlu.OutcomeAwaitingConfirmation {
		c.sess.pending = res.Confirmation
	}

	if res.Response != "" {
		c.gw.Speak(ctx, res.Response)
	}
	c.sess.CommandsIssued++

	if res.Outcome == nlu.OutcomeExit {
		c.log.Info("Exit requested")
		return true
	}

	if c.sess.Exhausted() {
		c.log.Info("Command budget spent", "max", c.sess.MaxCommands)
		c.audit.Record(audit.SeverityInfo, "Session timeout")
		c.gw.Speak(ctx, MessageTimeout)
		return true
	}

	return false
}

func (c *Controller) resolve(ctx context.Context, conf *nlu.Confirmation, reply string) nlu.Result {
	res := conf.Resolve(ctx, reply)

	switch res.Outcome {
	case nlu.OutcomeCancelled:
		c.audit.Record(audit.SeverityInfo, fmt.Sprintf("%s cancelled by user", conf.Action))
	case nlu.OutcomeFailed:
		c.log.Error("Confirmed action failed", "action", conf.Action, "err", res.Err)
		c.audit.Record(audit.SeverityError, fmt.Sprintf("%s failed: %v", conf.Action, res.Err))
	default:
		c.audit.Record(audit.SeverityWarning, fmt.Sprintf("%s confirmed by user", conf.Action))
	}

	return res
}
