// Package auth maps a spoken or typed credential to a privilege tier.
//
// Authentication never rejects a session. A missing or wrong credential
// degrades to Basic; only the configured admin secret grants Admin.
package auth

import (
	log "log/slog"

	"vox/internal/audit"
)

type Privilege int

const (
	Basic Privilege = iota
	Admin
)

func (p Privilege) String() string {
	switch p {
	case Admin:
		return "ADMIN"
	default:
		return "BASIC"
	}
}

const (
	MessageBasic  = "Basic mode activated. Some commands may be restricted."
	MessageAdmin  = "Admin mode activated. You have full access to all commands."
	MessageFailed = "Authentication failed. You'll be in basic mode."
)

// Credential is an optional secret. The zero value is "no credential".
type Credential struct {
	secret  string
	present bool
}

// Anonymous is used when the speaker declines the admin prompt.
func Anonymous() Credential { return Credential{} }

func Secret(s string) Credential { return Credential{secret: s, present: true} }

func (c Credential) Present() bool { return c.present }

type Decision struct {
	Authenticated bool
	Privilege     Privilege
	Message       string
}

type Authenticator struct {
	secret string
	audit  audit.Recorder
	log    *log.Logger
}

// New builds an authenticator for the given admin secret. An empty secret
// disables admin mode: no credential will ever match it.
func New(secret string, rec audit.Recorder, logger *log.Logger) *Authenticator {
	if rec == nil {
		rec = audit.Discard
	}
	if logger == nil {
		logger = log.Default()
	}

	return &Authenticator{
		secret: secret,
		audit:  rec,
		log:    logger.With("component", "auth"),
	}
}

func (a *Authenticator) Authenticate(cred Credential) Decision {
	switch {
	case !cred.present:
		a.log.Info("No credential supplied, basic mode")
		a.audit.Record(audit.SeverityInfo, "User chose basic mode")
		return Decision{Authenticated: true, Privilege: Basic, Message: MessageBasic}

	case a.secret != "" && cred.secret == a.secret:
		a.log.Info("Admin authentication successful")
		a.audit.Record(audit.SeverityInfo, "Admin authentication successful")
		return Decision{Authenticated: true, Privilege: Admin, Message: MessageAdmin}

	default:
		a.log.Warn("Admin authentication failed, basic mode")
		a.audit.Record(audit.SeverityWarning, "Admin authentication failed, using basic mode")
		return Decision{Authenticated: true, Privilege: Basic, Message: MessageFailed}
	}
}
