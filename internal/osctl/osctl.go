// Package osctl performs the assistant's operating-system side effects:
// launching apps, writing files, volume, brightness, power and the browser.
package osctl

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"vox/internal/pactl"
)

var (
	ErrNotFound    = errors.New("file not found")
	ErrExists      = errors.New("file already exists")
	ErrUnsupported = errors.New("unsupported operating system")
)

type Direction int

const (
	Up Direction = iota
	Down
	Mute
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "mute"
	}
}

type PowerAction int

const (
	Shutdown PowerAction = iota
	Restart
)

func (p PowerAction) String() string {
	if p == Restart {
		return "restart"
	}
	return "shutdown"
}

// Launched describes what Launch actually started.
type Launched struct {
	Name  string
	Known bool   // found in the platform's application table
	OS    string // human readable platform name
}

// Runner runs a command to completion. Starter spawns it and returns.
type (
	Runner  func(ctx context.Context, name string, args ...string) error
	Starter func(name string, args ...string) error
)

type Options struct {
	GOOS      string
	Home      string
	FilesDir  string
	Backlight string // sysfs backlight class directory
	PowerWait time.Duration
	Run       Runner
	Start     Starter
	Pactl     *pactl.Client
	Log       *log.Logger
}

// Host implements every capability against the local machine.
type Host struct {
	goos      string
	home      string
	filesDir  string
	backlight string
	powerWait time.Duration
	run       Runner
	start     Starter
	pactl     *pactl.Client
	log       *log.Logger
}

func NewHost(opt Options) *Host {
	if opt.GOOS == "" {
		opt.GOOS = runtime.GOOS
	}
	if opt.Home == "" {
		opt.Home, _ = os.UserHomeDir()
	}
	if opt.FilesDir == "" {
		opt.FilesDir = DefaultFilesDir(opt.Home)
	}
	if opt.Backlight == "" {
		opt.Backlight = "/sys/class/backlight"
	}
	if opt.PowerWait <= 0 {
		opt.PowerWait = time.Minute
	}
	if opt.Run == nil {
		opt.Run = execRun
	}
	if opt.Start == nil {
		opt.Start = execStart
	}
	if opt.Pactl == nil {
		opt.Pactl = pactl.New()
	}
	if opt.Log == nil {
		opt.Log = log.Default()
	}

	return &Host{
		goos:      opt.GOOS,
		home:      opt.Home,
		filesDir:  opt.FilesDir,
		backlight: opt.Backlight,
		powerWait: opt.PowerWait,
		run:       opt.Run,
		start:     opt.Start,
		pactl:     opt.Pactl,
		log:       opt.Log.With("component", "osctl", "os", opt.GOOS),
	}
}

// DefaultFilesDir is ~/Documents/AssistantFiles, or ~/AssistantFiles when
// there is no Documents folder.
func DefaultFilesDir(home string) string {
	docs := filepath.Join(home, "Documents")
	if st, err := os.Stat(docs); err == nil && st.IsDir() {
		return filepath.Join(docs, "AssistantFiles")
	}
	return filepath.Join(home, "AssistantFiles")
}

func (h *Host) OSName() string {
	switch h.goos {
	case "darwin":
		return "macOS"
	case "windows":
		return "Windows"
	case "linux":
		return "Linux"
	default:
		return "your operating system"
	}
}

func (h *Host) OpenURL(ctx context.Context, url string) error {
	h.log.Info("Opening url", "url", url)

	switch h.goos {
	case "linux":
		return h.start("xdg-open", url)
	case "darwin":
		return h.start("open", url)
	case "windows":
		return h.start("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return ErrUnsupported
	}
}

func (h *Host) RequestPower(ctx context.Context, action PowerAction) error {
	h.log.Warn("Executing power action", "action", action, "delay", h.powerWait)

	minutes := max(1, int(h.powerWait/time.Minute))
	seconds := max(1, int(h.powerWait/time.Second))

	switch h.goos {
	case "linux":
		flag := "-h"
		if action == Restart {
			flag = "-r"
		}
		return h.run(ctx, "shutdown", flag, fmt.Sprintf("+%d", minutes))

	case "darwin":
		verb := "shut down"
		if action == Restart {
			verb = "restart"
		}
		return h.run(ctx, "osascript", "-e", fmt.Sprintf(`tell app "System Events" to %s`, verb))

	case "windows":
		flag := "/s"
		if action == Restart {
			flag = "/r"
		}
		return h.run(ctx, "shutdown", flag, "/t", fmt.Sprint(seconds))

	default:
		return ErrUnsupported
	}
}

// CancelPower aborts a pending delayed shutdown or restart.
func (h *Host) CancelPower(ctx context.Context) error {
	switch h.goos {
	case "linux":
		return h.run(ctx, "shutdown", "-c")
	case "windows":
		return h.run(ctx, "shutdown", "/a")
	default:
		return ErrUnsupported
	}
}

func execRun(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %s: %w (%s)", name, strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

func execStart(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	go cmd.Wait()
	return nil
}
