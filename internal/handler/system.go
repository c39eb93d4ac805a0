package handler

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"vox/internal/auth"
	"vox/internal/nlu"
	"vox/internal/osctl"
)

const DefaultStep = 10

var levelRe = regexp.MustCompile(`(\d+)\s*(?:percent|%)?`)

type System struct {
	mixer     Mixer
	backlight Backlight
	power     Power
	step      int
}

// NewSystem builds the system-control handler. step is the level used when
// the utterance carries no number; it is clamped to [1,100].
func NewSystem(m Mixer, b Backlight, p Power, step int) *System {
	if step <= 0 {
		step = DefaultStep
	}
	return &System{mixer: m, backlight: b, power: p, step: clampLevel(step)}
}

func (s *System) Handle(ctx context.Context, cmd nlu.Command, priv auth.Privilege) nlu.Result {
	if priv != auth.Admin {
		return nlu.Denied(nlu.SystemControl, nlu.ResponseAdminRequired)
	}

	text := cmd.Text
	switch {
	case nlu.ContainsPhrase(text, "volume") || nlu.ContainsPhrase(text, "mute") || nlu.ContainsPhrase(text, "unmute"):
		return s.volume(ctx, text)
	case nlu.ContainsPhrase(text, "brightness"):
		return s.brightness(ctx, text)
	case nlu.ContainsPhrase(text, "shutdown") || nlu.ContainsPhrase(text, "shut down") || nlu.ContainsPhrase(text, "power off"):
		return nlu.Awaiting(s.confirmPower(osctl.Shutdown))
	case nlu.ContainsPhrase(text, "restart") || nlu.ContainsPhrase(text, "reboot"):
		return nlu.Awaiting(s.confirmPower(osctl.Restart))
	default:
		return nlu.Missing(nlu.SystemControl, "I don't understand that system control command.")
	}
}

// Level reads "N percent", "N%" or a bare number from text, falling back to
// the configured step, and clamps it to [1,100].
func (s *System) Level(text string) int {
	m := levelRe.FindStringSubmatch(text)
	if m == nil {
		return s.step
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 100
	}
	return clampLevel(n)
}

func direction(text string, allowMute bool) (osctl.Direction, bool) {
	has := func(words ...string) bool {
		for _, w := range words {
			if nlu.ContainsPhrase(text, w) {
				return true
			}
		}
		return false
	}

	switch {
	case allowMute && has("mute", "unmute"):
		return osctl.Mute, true
	case has("up", "increase", "raise", "louder", "higher", "brighter"):
		return osctl.Up, true
	case has("down", "decrease", "lower", "reduce", "quieter", "dimmer", "dim"):
		return osctl.Down, true
	default:
		return 0, false
	}
}

func (s *System) volume(ctx context.Context, text string) nlu.Result {
	dir, ok := direction(text, true)
	if !ok {
		return nlu.Missing(nlu.SystemControl, "Please specify if you want to turn the volume up, down, or mute it.")
	}

	level := s.Level(text)
	if err := s.mixer.AdjustVolume(ctx, dir, level); err != nil {
		return nlu.Failed(nlu.SystemControl, "I had trouble adjusting the volume.", fmt.Errorf("volume %s: %w", dir, err))
	}

	switch dir {
	case osctl.Up:
		return nlu.Done(nlu.SystemControl, fmt.Sprintf("Volume increased by %d%%.", level))
	case osctl.Down:
		return nlu.Done(nlu.SystemControl, fmt.Sprintf("Volume decreased by %d%%.", level))
	default:
		return nlu.Done(nlu.SystemControl, "Volume toggled mute.")
	}
}

func (s *System) brightness(ctx context.Context, text string) nlu.Result {
	dir, ok := direction(text, false)
	if !ok {
		return nlu.Missing(nlu.SystemControl, "Please specify if you want to turn the brightness up or down.")
	}

	level := s.Level(text)
	if err := s.backlight.AdjustBrightness(ctx, dir, level); err != nil {
		return nlu.Failed(nlu.SystemControl, "I had trouble adjusting the brightness.", fmt.Errorf("brightness %s: %w", dir, err))
	}

	if dir == osctl.Up {
		return nlu.Done(nlu.SystemControl, fmt.Sprintf("Brightness increased by %d%%.", level))
	}
	return nlu.Done(nlu.SystemControl, fmt.Sprintf("Brightness decreased by %d%%.", level))
}

func (s *System) confirmPower(action osctl.PowerAction) *nlu.Confirmation {
	prompt := "Are you sure you want to shut down the system? Say 'yes' to confirm."
	cancelled := "Shutdown cancelled."
	done := "Shutting down the system now. Goodbye!"
	if action == osctl.Restart {
		prompt = "Are you sure you want to restart the system? Say 'yes' to confirm."
		cancelled = "Restart cancelled."
		done = "Restarting the system now. Goodbye!"
	}

	return nlu.NewConfirmation(nlu.SystemControl, action.String(), prompt, cancelled,
		func(ctx context.Context) nlu.Result {
			if err := s.power.RequestPower(ctx, action); err != nil {
				return nlu.Failed(nlu.SystemControl, "I had trouble performing that system operation.",
					fmt.Errorf("%s: %w", action, err))
			}
			return nlu.Done(nlu.SystemControl, done)
		})
}

func clampLevel(n int) int {
	return max(1, min(100, n))
}
