package session

import (
	"context"
	"strings"
	"time"
)

type ListenOptions struct {
	// Timeout bounds the wait for speech to start.
	Timeout time.Duration
	// PhraseLimit bounds a single utterance once it started.
	PhraseLimit time.Duration
}

// Gateway turns audio into text and text into audio. Listen returns "" on
// silence, garbled input or any internal failure; Speak is best-effort.
// Neither reports errors to the caller.
type Gateway interface {
	Listen(ctx context.Context, opt ListenOptions) string
	Speak(ctx context.Context, text string)
}

// SecretReader collects the admin secret out of band. ok is false when the
// speaker gave up or input was unavailable.
type SecretReader interface {
	ReadSecret(ctx context.Context, prompt string) (secret string, ok bool)
}

// Chime signals that the assistant woke up.
type Chime interface {
	Play() error
}

// IsWakeWord reports whether text contains the wake phrase, ignoring case.
func IsWakeWord(text, phrase string) bool {
	phrase = strings.ToLower(strings.TrimSpace(phrase))
	if phrase == "" {
		return false
	}
	return strings.Contains(strings.ToLower(text), phrase)
}

// SpokenSecrets reads the secret through the gateway itself. Used when no
// terminal is attached.
type SpokenSecrets struct {
	Gateway Gateway
	Listen  ListenOptions
}

func (s SpokenSecrets) ReadSecret(ctx context.Context, prompt string) (string, bool) {
	s.Gateway.Speak(ctx, prompt)
	secret := strings.TrimSpace(s.Gateway.Listen(ctx, s.Listen))
	return secret, secret != ""
}
