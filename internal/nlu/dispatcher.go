package nlu

import (
	"context"
	"fmt"
	log "log/slog"
	"strings"

	"vox/internal/audit"
	"vox/internal/auth"
)

const (
	ResponseNotUnderstood = "I'm not sure how to process that command. Try saying 'help' for available commands."
	ResponseAdminRequired = "Sorry, system control commands require admin mode."
	ResponseGoodbye       = "Goodbye! Say the wake word when you need me again."
	ResponseInternalError = "I encountered an error processing your command. Please try again."
	ResponseUnavailable   = "That command isn't available right now."
)

// Handler owns one family's argument extraction and side effect.
type Handler interface {
	Handle(ctx context.Context, cmd Command, priv auth.Privilege) Result
}

type HandlerFunc func(ctx context.Context, cmd Command, priv auth.Privilege) Result

func (f HandlerFunc) Handle(ctx context.Context, cmd Command, priv auth.Privilege) Result {
	return f(ctx, cmd, priv)
}

// Dispatcher is the single authorization checkpoint between the classifier
// and the handlers.
type Dispatcher struct {
	cls      *Classifier
	handlers map[Family]Handler
	audit    audit.Recorder
	log      *log.Logger
}

func NewDispatcher(cls *Classifier, rec audit.Recorder, logger *log.Logger) *Dispatcher {
	if cls == nil {
		cls = NewClassifier()
	}
	if rec == nil {
		rec = audit.Discard
	}
	if logger == nil {
		logger = log.Default()
	}

	return &Dispatcher{
		cls:      cls,
		handlers: make(map[Family]Handler),
		audit:    rec,
		log:      logger.With("component", "dispatcher"),
	}
}

func (d *Dispatcher) Register(f Family, h Handler) {
	d.handlers[f] = h
}

func (d *Dispatcher) Dispatch(ctx context.Context, text string, priv auth.Privilege) (res Result) {
	cmd := NewCommand(text)
	family := d.cls.Classify(cmd.Text)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("handler panic: %v", r)
			d.log.Error("Handler crashed", "family", family, "err", err)
			d.audit.Record(audit.SeverityError, fmt.Sprintf("Error processing command %q: %v", cmd.Raw, err))
			res = Failed(family, ResponseInternalError, err)
		}
	}()

	if family == Exit {
		d.audit.Record(audit.SeverityInfo, "Exit command received")
		return Result{Family: Exit, Outcome: OutcomeExit, Handled: true, Response: ResponseGoodbye}
	}

	// A system keyword anywhere in the utterance needs admin, whichever
	// family won: "run shutdown" must not reach the launcher.
	if priv < SystemControl.Required() && d.cls.Mentions(cmd.Text, SystemControl) {
		return d.deny(SystemControl, cmd, priv)
	}

	switch family {
	case Unrecognized:
		d.log.Info("Unknown command", "text", cmd.Text)
		d.audit.Record(audit.SeverityInfo, fmt.Sprintf("Unknown command: %s", cmd.Raw))
		return Result{Family: Unrecognized, Outcome: OutcomeUnrecognized, Response: ResponseNotUnderstood}

	case Help:
		d.audit.Record(audit.SeverityInfo, "Help command requested")
		return Done(Help, HelpText(priv))
	}

	if priv < family.Required() {
		return d.deny(family, cmd, priv)
	}

	h, ok := d.handlers[family]
	if !ok {
		d.log.Error("No handler registered", "family", family)
		return Failed(family, ResponseUnavailable, fmt.Errorf("no handler for %s", family))
	}

	d.log.Info("Processing command", "family", family, "text", cmd.Text)
	d.audit.Record(audit.SeverityInfo, fmt.Sprintf("Processing %s command: %s", family, cmd.Raw))

	res = h.Handle(ctx, cmd, priv)
	res.Family = family

	if res.Outcome == OutcomeFailed {
		d.log.Error("Command failed", "family", family, "err", res.Err)
		d.audit.Record(audit.SeverityError, fmt.Sprintf("Command %q failed: %v", cmd.Raw, res.Err))
	}

	return res
}

func (d *Dispatcher) deny(family Family, cmd Command, priv auth.Privilege) Result {
	d.log.Warn("Unauthorized command", "family", family, "privilege", priv)
	d.audit.Record(audit.SeverityWarning, fmt.Sprintf("Unauthorized admin command attempted: %s", cmd.Raw))
	return Denied(family, ResponseAdminRequired)
}

// HelpText lists the commands available at the given tier.
func HelpText(priv auth.Privilege) string {
	basic := []string{
		"Search for a topic to search the web",
		"Open an application to launch it",
		"Create file followed by a name to create a new file",
		"Rename a file to a new name",
		"Help to hear this message",
		"Exit, quit or goodbye to end the session",
	}
	admin := []string{
		"Volume up, down or mute, optionally by a percentage",
		"Brightness up or down, optionally by a percentage",
		"Shutdown or restart the computer",
	}

	var b strings.Builder
	b.WriteString("Available commands:\n")
	b.WriteString(strings.Join(basic, "\n"))

	if priv == auth.Admin {
		b.WriteString("\n\nAdmin commands:\n")
		b.WriteString(strings.Join(admin, "\n"))
	}

	return b.String()
}
