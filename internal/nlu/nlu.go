// Package nlu routes recognized text to a command family.
//
// Routing is keyword containment on word boundaries, checked against an
// ordered precedence table. The first family whose keywords appear in the
// utterance owns it.
package nlu

import (
	"strings"
	"unicode"

	"vox/internal/auth"
)

type Family int

const (
	Unrecognized Family = iota
	WebSearch
	AppLaunch
	FileCreate
	SystemControl
	Help
	Exit
)

func (f Family) String() string {
	switch f {
	case WebSearch:
		return "web_search"
	case AppLaunch:
		return "app_launch"
	case FileCreate:
		return "file_create"
	case SystemControl:
		return "system_control"
	case Help:
		return "help"
	case Exit:
		return "exit"
	default:
		return "unrecognized"
	}
}

// Required is the lowest tier allowed to dispatch the family.
func (f Family) Required() auth.Privilege {
	if f == SystemControl {
		return auth.Admin
	}
	return auth.Basic
}

type rule struct {
	family   Family
	keywords []string
}

// precedence is consulted top to bottom. Exit comes first: "goodbye,
// search for cats" ends the session.
var precedence = []rule{
	{Exit, []string{"exit", "quit", "goodbye", "bye"}},
	{WebSearch, []string{"search", "look up", "find", "google"}},
	{AppLaunch, []string{"open", "start", "launch", "run"}},
	{FileCreate, []string{"create file", "make file", "new file", "create a file", "make a file", "rename"}},
	{SystemControl, []string{"volume", "brightness", "mute", "unmute", "shutdown", "shut down", "power off", "restart", "reboot"}},
	{Help, []string{"help"}},
}

// Keywords returns a copy of the trigger keywords of f.
func (f Family) Keywords() []string {
	for _, r := range precedence {
		if r.family == f {
			return append([]string(nil), r.keywords...)
		}
	}
	return nil
}

// Command is one recognized utterance.
type Command struct {
	Raw  string
	Text string // lowercased, whitespace collapsed
}

func NewCommand(raw string) Command {
	return Command{
		Raw:  raw,
		Text: strings.Join(strings.Fields(strings.ToLower(raw)), " "),
	}
}

type Classifier struct {
	rules []rule
}

func NewClassifier() *Classifier {
	return &Classifier{rules: precedence}
}

func (c *Classifier) Classify(text string) Family {
	words := wordline(text)
	if words == "  " {
		return Unrecognized
	}

	for _, r := range c.rules {
		for _, kw := range r.keywords {
			if strings.Contains(words, wordline(kw)) {
				return r.family
			}
		}
	}

	return Unrecognized
}

// Mentions reports whether any keyword of f occurs in text, whichever
// family text is routed to.
func (c *Classifier) Mentions(text string, f Family) bool {
	words := wordline(text)
	for _, r := range c.rules {
		if r.family != f {
			continue
		}
		for _, kw := range r.keywords {
			if strings.Contains(words, wordline(kw)) {
				return true
			}
		}
	}
	return false
}

// ContainsPhrase reports whether phrase occurs in text as whole words,
// ignoring case and punctuation.
func ContainsPhrase(text, phrase string) bool {
	p := wordline(phrase)
	if p == "  " {
		return false
	}
	return strings.Contains(wordline(text), p)
}

var affirmatives = []string{"yes", "yeah", "yep", "sure", "okay", "ok", "confirm"}

// IsAffirmative reports whether the reply contains a yes-style token.
func IsAffirmative(reply string) bool {
	for _, a := range affirmatives {
		if ContainsPhrase(reply, a) {
			return true
		}
	}
	return false
}

// wordline lowercases s, splits it into letter/digit runs and joins them
// with single spaces, padded on both ends so that a Contains check only
// matches whole words.
func wordline(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return " " + strings.Join(fields, " ") + " "
}
