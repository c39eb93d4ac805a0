// Package app wires the assistant together. A Runtime is built once per
// process and handed to every component that needs configuration, logging,
// the audit log or the local machine.
package app

import (
	"fmt"
	log "log/slog"

	"vox/internal/audit"
	"vox/internal/auth"
	"vox/internal/config"
	"vox/internal/handler"
	"vox/internal/nlu"
	"vox/internal/osctl"
	"vox/internal/pactl"
	"vox/internal/session"
)

type Runtime struct {
	Config *config.Config
	Log    *log.Logger
	Audit  audit.Recorder
	Host   *osctl.Host
	Pactl  *pactl.Client

	auditLog *audit.Log
}

// Options overrides collaborators, mostly for tests and dry runs.
type Options struct {
	Audit audit.Recorder
	Host  *osctl.Host
}

func New(cfg *config.Config, logger *log.Logger, opt Options) (*Runtime, error) {
	if logger == nil {
		logger = log.Default()
	}

	rt := &Runtime{
		Config: cfg,
		Log:    logger,
		Audit:  opt.Audit,
		Host:   opt.Host,
		Pactl:  pactl.New(),
	}

	if rt.Audit == nil {
		if cfg.AuditLog == "" {
			rt.Audit = audit.Discard
		} else {
			l, err := audit.Open(cfg.AuditLog)
			if err != nil {
				return nil, fmt.Errorf("app: %w", err)
			}
			l.OnFailure(func(err error) {
				logger.Error("Failed to write audit log", "path", cfg.AuditLog, "err", err)
			})
			rt.auditLog = l
			rt.Audit = l
		}
	}

	if rt.Host == nil {
		rt.Host = osctl.NewHost(osctl.Options{
			FilesDir:  cfg.FilesDir,
			PowerWait: cfg.PowerDelay,
			Pactl:     rt.Pactl,
			Log:       logger,
		})
	}

	if !cfg.AdminEnabled() {
		logger.Warn("No admin secret configured, admin mode disabled")
	}

	return rt, nil
}

// Dispatcher registers every command family against the runtime's host.
func (rt *Runtime) Dispatcher() *nlu.Dispatcher {
	d := nlu.NewDispatcher(nlu.NewClassifier(), rt.Audit, rt.Log)

	d.Register(nlu.WebSearch, handler.NewSearch(rt.Host, rt.Config.SearchURL))
	d.Register(nlu.AppLaunch, handler.NewApp(rt.Host, rt.Config.Apps))
	d.Register(nlu.FileCreate, handler.NewFile(rt.Host))
	d.Register(nlu.SystemControl, handler.NewSystem(rt.Host, rt.Host, rt.Host, rt.Config.Step))

	return d
}

// Controller builds the session controller on top of a gateway. secrets
// and chime may be nil.
func (rt *Runtime) Controller(gw session.Gateway, secrets session.SecretReader, chime session.Chime) *session.Controller {
	cfg := rt.Config

	return session.New(session.Options{
		Gateway:     gw,
		Secrets:     secrets,
		Auth:        auth.New(cfg.AdminSecret, rt.Audit, rt.Log),
		Dispatcher:  rt.Dispatcher(),
		Audit:       rt.Audit,
		Chime:       chime,
		Log:         rt.Log,
		WakePhrase:  cfg.WakePhrase,
		MaxCommands: cfg.MaxCommands,
		Wake: session.ListenOptions{
			Timeout:     cfg.Listen.Timeout,
			PhraseLimit: cfg.Listen.WakePhraseLimit,
		},
		Command: session.ListenOptions{
			Timeout:     cfg.Listen.Timeout,
			PhraseLimit: cfg.Listen.PhraseLimit,
		},
	})
}

func (rt *Runtime) Close() error {
	if rt.auditLog != nil {
		return rt.auditLog.Close()
	}
	return nil
}
