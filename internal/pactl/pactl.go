// Package pactl drives PulseAudio/PipeWire through the pactl CLI.
package pactl

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

const (
	DefaultSink = "@DEFAULT_SINK@"
	MaxPercent  = 150
)

var percentRe = regexp.MustCompile(`(\d+)\s*%`)

// SinkInput is one playback stream.
type SinkInput struct {
	ID      int
	Volume  int
	AppName string
}

// Runner executes pactl with args and returns stdout.
type Runner func(ctx context.Context, args ...string) ([]byte, error)

type Client struct {
	run Runner
}

func New() *Client {
	return &Client{run: execRunner}
}

// NewWithRunner is used by tests to replay canned pactl output.
func NewWithRunner(r Runner) *Client {
	return &Client{run: r}
}

func execRunner(ctx context.Context, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, "pactl", args...).Output()
	if err != nil {
		return nil, fmt.Errorf("pactl %s: %w", strings.Join(args, " "), err)
	}
	return out, nil
}

func (c *Client) SinkInputs(ctx context.Context) ([]SinkInput, error) {
	out, err := c.run(ctx, "list", "sink-inputs")
	if err != nil {
		return nil, err
	}
	return parseSinkInputs(string(out)), nil
}

func (c *Client) SetSinkInputVolume(ctx context.Context, id, percent int) error {
	_, err := c.run(ctx, "set-sink-input-volume", strconv.Itoa(id), fmt.Sprintf("%d%%", clampPercent(percent)))
	return err
}

// ChangeSinkVolume moves the default sink by delta percent.
func (c *Client) ChangeSinkVolume(ctx context.Context, delta int) error {
	arg := fmt.Sprintf("%+d%%", delta)
	_, err := c.run(ctx, "set-sink-volume", DefaultSink, arg)
	return err
}

func (c *Client) ToggleSinkMute(ctx context.Context) error {
	_, err := c.run(ctx, "set-sink-mute", DefaultSink, "toggle")
	return err
}

// SinkVolume reads the default sink's volume of the first channel.
func (c *Client) SinkVolume(ctx context.Context) (int, error) {
	out, err := c.run(ctx, "get-sink-volume", DefaultSink)
	if err != nil {
		return 0, err
	}

	m := percentRe.FindStringSubmatch(string(out))
	if len(m) < 2 {
		return 0, fmt.Errorf("pactl: no volume in %q", strings.TrimSpace(string(out)))
	}

	return strconv.Atoi(m[1])
}

func parseSinkInputs(text string) []SinkInput {
	blocks := strings.Split(text, "Sink Input #")
	if len(blocks) <= 1 {
		return nil
	}

	var res []SinkInput

	for _, block := range blocks[1:] {
		header, body, ok := strings.Cut(block, "\n")
		if !ok {
			continue
		}

		id, err := strconv.Atoi(strings.TrimSpace(header))
		if err != nil {
			continue
		}

		s := SinkInput{ID: id}

		for _, line := range strings.Split(body, "\n") {
			line = strings.TrimSpace(line)

			switch {
			case strings.HasPrefix(line, "Volume:") && s.Volume == 0:
				if m := percentRe.FindStringSubmatch(line); len(m) >= 2 {
					if v, err := strconv.Atoi(m[1]); err == nil {
						s.Volume = v
					}
				}

			case strings.HasPrefix(line, "application.name =") && s.AppName == "":
				// application.name = "Firefox"
				_, quoted, found := strings.Cut(line, `"`)
				if found {
					s.AppName, _, _ = strings.Cut(quoted, `"`)
				}
			}
		}

		if s.Volume == 0 && s.AppName == "" {
			continue
		}

		res = append(res, s)
	}

	return res
}

func clampPercent(p int) int {
	return max(0, min(MaxPercent, p))
}
