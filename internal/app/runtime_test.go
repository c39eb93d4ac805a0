package app

import (
	"bytes"
	"context"
	"encoding/json"
	log "log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vox/internal/audit"
	"vox/internal/auth"
	"vox/internal/config"
	"vox/internal/nlu"
	"vox/internal/osctl"
	"vox/internal/pactl"
	"vox/internal/session"
)

type scriptGateway struct {
	mu     sync.Mutex
	lines  []string
	spoken []string
	cancel context.CancelFunc
}

func (g *scriptGateway) Listen(context.Context, session.ListenOptions) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.lines) == 0 {
		g.cancel()
		return ""
	}
	line := g.lines[0]
	g.lines = g.lines[1:]
	return line
}

func (g *scriptGateway) Speak(_ context.Context, text string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.spoken = append(g.spoken, text)
}

type staticSecret string

func (s staticSecret) ReadSecret(context.Context, string) (string, bool) { return string(s), true }

type recorder struct {
	mu  sync.Mutex
	cmd []string
}

func (r *recorder) run(_ context.Context, name string, args ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cmd = append(r.cmd, strings.TrimSpace(name+" "+strings.Join(args, " ")))
	return nil
}

func (r *recorder) start(name string, args ...string) error {
	return r.run(context.Background(), name, args...)
}

func newTestRuntime(t *testing.T, cfg *config.Config) (*Runtime, *recorder) {
	t.Helper()

	rec := &recorder{}
	host := osctl.NewHost(osctl.Options{
		GOOS:  "linux",
		Home:  t.TempDir(),
		Run:   rec.run,
		Start: rec.start,
		Pactl: pactl.NewWithRunner(func(ctx context.Context, args ...string) ([]byte, error) {
			return nil, rec.run(ctx, "pactl", args...)
		}),
	})

	rt, err := New(cfg, log.New(log.DiscardHandler), Options{Host: host})
	require.NoError(t, err)
	t.Cleanup(func() { rt.Close() })

	return rt, rec
}

func TestRuntime_EndToEndSession(t *testing.T) {
	cfg := config.Default()
	cfg.AdminSecret = "admin123"
	cfg.AuditLog = filepath.Join(t.TempDir(), "audit.jsonl")

	rt, rec := newTestRuntime(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gw := &scriptGateway{cancel: cancel, lines: []string{
		"hey assistant",
		"yes",
		"search for weather in Boston",
		"volume up by 20 percent",
		"shutdown now",
		"no",
		"exit",
	}}

	require.NoError(t, rt.Controller(gw, staticSecret("admin123"), nil).Run(ctx))

	assert.Equal(t, []string{
		"xdg-open https://www.google.com/search?q=weather+in+boston",
		"pactl set-sink-volume @DEFAULT_SINK@ +20%",
	}, rec.cmd)

	assert.Contains(t, gw.spoken, "Admin mode activated. You have full access to all commands.")
	assert.Contains(t, gw.spoken, "Shutdown cancelled.")
	assert.Contains(t, gw.spoken, "Goodbye! Say the wake word when you need me again.")

	require.NoError(t, rt.Close())
	entries, err := audit.ReadAll(cfg.AuditLog)
	require.NoError(t, err)

	var commands []string
	for _, e := range entries {
		if e.Kind == "command" {
			commands = append(commands, e.Command)
			assert.Equal(t, "ADMIN", e.Privilege)
		}
	}
	assert.Len(t, commands, 5)
}

func TestRuntime_EmptySecretDisablesAdmin(t *testing.T) {
	cfg := config.Default()
	cfg.AuditLog = ""

	mem := &audit.Memory{}
	rt, err := New(cfg, log.New(log.DiscardHandler), Options{Audit: mem, Host: osctl.NewHost(osctl.Options{GOOS: "plan9"})})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gw := &scriptGateway{cancel: cancel, lines: []string{"hey assistant", "yes", "restart"}}
	require.NoError(t, rt.Controller(gw, staticSecret(""), nil).Run(ctx))

	assert.Contains(t, gw.spoken, "Authentication failed. You'll be in basic mode.")
	assert.Contains(t, gw.spoken, "Sorry, system control commands require admin mode.")
}

func TestNewLogger_JSONWhenNotATerminal(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, false, ParseLevel("warn"))

	logger.Info("hidden")
	logger.Warn("shown", "k", 1)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["msg"])
	assert.Equal(t, "WARN", line["level"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, log.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, log.LevelError, ParseLevel("error"))
	assert.Equal(t, log.LevelInfo, ParseLevel("verbose"))
}

func TestRuntime_BasicCannotLaunchPowerPrograms(t *testing.T) {
	rt, rec := newTestRuntime(t, config.Default())
	d := rt.Dispatcher()

	for _, in := range []string{"run shutdown", "start reboot", "open poweroff", "launch halt"} {
		res := d.Dispatch(context.Background(), in, auth.Basic)
		assert.False(t, res.Handled, in)
	}

	assert.Empty(t, rec.cmd)
}

func TestRuntime_AdminLaunchRefusesPowerPrograms(t *testing.T) {
	rt, rec := newTestRuntime(t, config.Default())
	d := rt.Dispatcher()

	res := d.Dispatch(context.Background(), "launch halt", auth.Admin)
	assert.Equal(t, nlu.OutcomeDenied, res.Outcome)

	assert.Empty(t, rec.cmd)
}
