// Package console is the typed gateway used in text mode: lines from stdin
// stand in for transcribed speech and replies are printed.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"vox/internal/session"
)

// SecretFunc reads one line of input without echo.
type SecretFunc func() (string, error)

type Options struct {
	In     io.Reader
	Out    io.Writer
	Prompt string
	// Secret reads the admin secret hidden; nil disables hidden entry.
	Secret SecretFunc
	// OnEOF runs once when input is exhausted.
	OnEOF func()
}

type request struct {
	secret bool
	reply  chan reply
}

type reply struct {
	text string
	ok   bool
}

// Gateway owns its input: a single goroutine reads, and only on request,
// so a hidden secret read never competes with a line read.
type Gateway struct {
	out    io.Writer
	prompt string
	in     io.Reader
	secret SecretFunc
	onEOF  func()

	start   sync.Once
	reqs    chan request
	pending chan reply // an abandoned line read still in flight
}

func New(opt Options) *Gateway {
	if opt.In == nil {
		opt.In = os.Stdin
	}
	if opt.Out == nil {
		opt.Out = os.Stdout
	}
	if opt.Prompt == "" {
		opt.Prompt = "> "
	}

	return &Gateway{
		out:    opt.Out,
		prompt: opt.Prompt,
		in:     opt.In,
		secret: opt.Secret,
		onEOF:  opt.OnEOF,
		reqs:   make(chan request),
	}
}

// TerminalSecret reads hidden input from fd, or returns nil when fd is not
// a terminal.
func TerminalSecret(fd int) SecretFunc {
	if !term.IsTerminal(fd) {
		return nil
	}
	return func() (string, error) {
		b, err := term.ReadPassword(fd)
		return strings.TrimRight(string(b), "\r\n"), err
	}
}

func (g *Gateway) serve() {
	sc := bufio.NewScanner(g.in)
	eof := false

	for req := range g.reqs {
		if req.secret {
			s, err := g.secret()
			req.reply <- reply{text: s, ok: err == nil}
			continue
		}

		if !eof && sc.Scan() {
			req.reply <- reply{text: sc.Text(), ok: true}
			continue
		}
		if !eof {
			eof = true
			if g.onEOF != nil {
				g.onEOF()
			}
		}
		req.reply <- reply{}
	}
}

func (g *Gateway) ask(ctx context.Context, secret bool) (reply, bool) {
	g.start.Do(func() { go g.serve() })

	req := request{secret: secret, reply: make(chan reply, 1)}
	select {
	case g.reqs <- req:
	case <-ctx.Done():
		return reply{}, false
	}

	select {
	case r := <-req.reply:
		return r, true
	case <-ctx.Done():
		if !secret {
			g.pending = req.reply
		}
		return reply{}, false
	}
}

// Listen blocks for one line of input. Timeouts are ignored: a typist is
// never "silent".
func (g *Gateway) Listen(ctx context.Context, _ session.ListenOptions) string {
	fmt.Fprint(g.out, g.prompt)

	if g.pending != nil {
		select {
		case r := <-g.pending:
			g.pending = nil
			return strings.TrimSpace(r.text)
		case <-ctx.Done():
			return ""
		}
	}

	r, ok := g.ask(ctx, false)
	if !ok || !r.ok {
		return ""
	}
	return strings.TrimSpace(r.text)
}

func (g *Gateway) Speak(_ context.Context, text string) {
	fmt.Fprintf(g.out, "Assistant: %s\n", text)
}

// HasSecrets reports whether hidden secret entry is available.
func (g *Gateway) HasSecrets() bool {
	return g.secret != nil
}

// ReadSecret reads the admin secret through the same reader as Listen. It
// fails while an earlier line read is still outstanding.
func (g *Gateway) ReadSecret(ctx context.Context, prompt string) (string, bool) {
	if g.secret == nil || g.pending != nil {
		return "", false
	}

	fmt.Fprintf(g.out, "%s (input will be hidden): ", prompt)
	r, ok := g.ask(ctx, true)
	fmt.Fprintln(g.out)
	if !ok || !r.ok {
		return "", false
	}
	return r.text, true
}
