package osctl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

func (h *Host) AdjustVolume(ctx context.Context, dir Direction, level int) error {
	h.log.Info("Adjusting volume", "direction", dir, "level", level)

	switch h.goos {
	case "linux":
		return h.volumeLinux(ctx, dir, level)

	case "darwin":
		switch dir {
		case Up:
			return h.run(ctx, "osascript", "-e", fmt.Sprintf("set volume output volume (output volume of (get volume settings) + %d)", level))
		case Down:
			return h.run(ctx, "osascript", "-e", fmt.Sprintf("set volume output volume (output volume of (get volume settings) - %d)", level))
		default:
			return h.run(ctx, "osascript", "-e", "set volume output muted not (output muted of (get volume settings))")
		}

	case "windows":
		// nircmd volume units: 65535 is 100%
		switch dir {
		case Up:
			return h.run(ctx, "nircmd.exe", "changesysvolume", strconv.Itoa(655*level))
		case Down:
			return h.run(ctx, "nircmd.exe", "changesysvolume", strconv.Itoa(-655*level))
		default:
			return h.run(ctx, "nircmd.exe", "mutesysvolume", "2")
		}

	default:
		return ErrUnsupported
	}
}

// volumeLinux prefers pactl and falls back to amixer.
func (h *Host) volumeLinux(ctx context.Context, dir Direction, level int) error {
	var err error
	switch dir {
	case Up:
		err = h.pactl.ChangeSinkVolume(ctx, level)
	case Down:
		err = h.pactl.ChangeSinkVolume(ctx, -level)
	default:
		err = h.pactl.ToggleSinkMute(ctx)
	}
	if err == nil {
		return nil
	}

	h.log.Debug("pactl failed, trying amixer", "err", err)

	switch dir {
	case Up:
		return h.run(ctx, "amixer", "-D", "pulse", "sset", "Master", fmt.Sprintf("%d%%+", level))
	case Down:
		return h.run(ctx, "amixer", "-D", "pulse", "sset", "Master", fmt.Sprintf("%d%%-", level))
	default:
		return h.run(ctx, "amixer", "-D", "pulse", "sset", "Master", "toggle")
	}
}

func (h *Host) AdjustBrightness(ctx context.Context, dir Direction, level int) error {
	if dir == Mute {
		return fmt.Errorf("brightness cannot be muted")
	}

	h.log.Info("Adjusting brightness", "direction", dir, "level", level)

	switch h.goos {
	case "linux":
		return h.brightnessSysfs(dir, level)

	case "darwin":
		key := "144"
		if dir == Down {
			key = "145"
		}
		return h.run(ctx, "osascript", "-e", fmt.Sprintf(`tell application "System Events" to key code %s`, key))

	case "windows":
		sign := "+"
		if dir == Down {
			sign = "-"
		}
		script := fmt.Sprintf(
			`$b=(Get-CimInstance -Namespace root/WMI -ClassName WmiMonitorBrightness).CurrentBrightness;`+
				`$n=[math]::Max(0,[math]::Min(100,$b%s%d));`+
				`(Get-CimInstance -Namespace root/WMI -ClassName WmiMonitorBrightnessMethods).WmiSetBrightness(1,$n)`,
			sign, level)
		return h.run(ctx, "powershell", "-NoProfile", "-Command", script)

	default:
		return ErrUnsupported
	}
}

// brightnessSysfs moves the first backlight device by level percent,
// never going below 5%.
func (h *Host) brightnessSysfs(dir Direction, level int) error {
	dev, err := h.backlightDevice()
	if err != nil {
		return err
	}

	cur, err := readInt(filepath.Join(dev, "brightness"))
	if err != nil {
		return err
	}
	maxB, err := readInt(filepath.Join(dev, "max_brightness"))
	if err != nil {
		return err
	}
	if maxB <= 0 {
		return fmt.Errorf("backlight %s: max_brightness is %d", dev, maxB)
	}

	pct := cur * 100 / maxB
	if dir == Up {
		pct = min(100, pct+level)
	} else {
		pct = max(5, pct-level)
	}

	next := pct * maxB / 100
	if err := os.WriteFile(filepath.Join(dev, "brightness"), []byte(strconv.Itoa(next)), 0o644); err != nil {
		return fmt.Errorf("write brightness: %w", err)
	}

	return nil
}

func (h *Host) backlightDevice() (string, error) {
	for _, name := range []string{"intel_backlight", "acpi_video0"} {
		p := filepath.Join(h.backlight, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	entries, err := os.ReadDir(h.backlight)
	if err != nil {
		return "", fmt.Errorf("read backlight dir: %w", err)
	}
	for _, e := range entries {
		return filepath.Join(h.backlight, e.Name()), nil
	}

	return "", errors.New("no backlight device")
}

func readInt(path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}
	return v, nil
}
