package audio

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"vox/internal/pactl"
)

type fadeTarget struct {
	id   int
	from int
	to   int
}

// Ducker fades other applications' playback down while the assistant is
// listening or speaking, and back up afterwards. Streams whose
// application.name is in selfNames are left alone.
type Ducker struct {
	mu          sync.Mutex
	client      *pactl.Client
	active      bool
	selfNames   []string
	originalVol map[int]int // sink input id -> volume before ducking
	minVolume   int
	sleep       func(time.Duration)
}

func NewDucker(client *pactl.Client, selfNames []string, minVolume int) *Ducker {
	return &Ducker{
		client:      client,
		selfNames:   slices.Clone(selfNames),
		originalVol: make(map[int]int),
		minVolume:   max(0, min(pactl.MaxPercent, minVolume)),
		sleep:       time.Sleep,
	}
}

// Duck fades every foreign stream to current*factor, not below minVolume.
// Ducking twice is a no-op.
func (d *Ducker) Duck(ctx context.Context, factor float64, duration time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.active {
		return nil
	}

	streams, err := d.client.SinkInputs(ctx)
	if err != nil {
		return fmt.Errorf("duck: %w", err)
	}

	d.originalVol = make(map[int]int)

	var targets []fadeTarget
	for _, s := range streams {
		if d.isSelf(s) {
			continue
		}

		to := int(math.Round(float64(s.Volume) * factor))
		to = max(d.minVolume, min(pactl.MaxPercent, to))

		d.originalVol[s.ID] = s.Volume
		targets = append(targets, fadeTarget{id: s.ID, from: s.Volume, to: to})
	}

	if err := d.fade(ctx, targets, duration); err != nil {
		return err
	}

	d.active = true
	return nil
}

// Restore fades ducked streams back to their original volume. Streams that
// appeared after Duck are not touched.
func (d *Ducker) Restore(ctx context.Context, duration time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.active {
		return nil
	}

	streams, err := d.client.SinkInputs(ctx)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}

	var targets []fadeTarget
	for _, s := range streams {
		orig, ok := d.originalVol[s.ID]
		if !ok || d.isSelf(s) {
			continue
		}
		targets = append(targets, fadeTarget{id: s.ID, from: s.Volume, to: orig})
	}

	if err := d.fade(ctx, targets, duration); err != nil {
		return err
	}

	d.originalVol = make(map[int]int)
	d.active = false
	return nil
}

func (d *Ducker) Active() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

func (d *Ducker) isSelf(s pactl.SinkInput) bool {
	return slices.Contains(d.selfNames, s.AppName)
}

// fade moves every target linearly in steps of at least 10ms.
func (d *Ducker) fade(ctx context.Context, targets []fadeTarget, duration time.Duration) error {
	if len(targets) == 0 {
		return nil
	}

	const minStep = 10 * time.Millisecond

	steps := max(1, int(duration/minStep))
	if duration <= 0 {
		steps = 0
	}
	var stepDur time.Duration
	if steps > 0 {
		stepDur = duration / time.Duration(steps)
	}

	for i := 0; i <= steps; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		frac := 1.0
		if steps > 0 {
			frac = float64(i) / float64(steps)
		}

		for _, t := range targets {
			v := int(math.Round(float64(t.from) + float64(t.to-t.from)*frac))
			if err := d.client.SetSinkInputVolume(ctx, t.id, v); err != nil {
				return fmt.Errorf("set volume id=%d: %w", t.id, err)
			}
		}

		if i < steps {
			d.sleep(stepDur)
		}
	}

	return nil
}
