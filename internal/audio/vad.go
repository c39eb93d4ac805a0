package audio

import (
	"math"
	"time"
)

const (
	SampleRate = 16000
	frameSize  = 320 // 20ms

	silenceThreshRMS = 0.015 // tune if needed
	silenceDuration  = 600 * time.Millisecond
)

// Limits bounds one capture. Zero values mean the package defaults.
type Limits struct {
	// Timeout is how long to wait for speech to start.
	Timeout time.Duration
	// PhraseLimit caps the utterance once speech started.
	PhraseLimit time.Duration
}

func (l Limits) withDefaults() Limits {
	if l.Timeout <= 0 {
		l.Timeout = 5 * time.Second
	}
	if l.PhraseLimit <= 0 {
		l.PhraseLimit = 10 * time.Second
	}
	return l
}

// detector is an energy-based endpointer fed one frame at a time.
type detector struct {
	limits Limits

	waited   int // frames before speech
	spoken   int // frames since speech started
	silent   int // trailing silent frames
	speaking bool

	out []float32
}

func newDetector(l Limits) *detector {
	return &detector{
		limits: l.withDefaults(),
		out:    make([]float32, 0, SampleRate*3),
	}
}

func frames(d time.Duration) int {
	return int(d / (time.Second / SampleRate) / frameSize)
}

// push consumes one frame and reports whether the capture is complete.
func (d *detector) push(frame []float32) bool {
	loud := frameRMS(frame) > silenceThreshRMS

	if !d.speaking {
		if !loud {
			d.waited++
			return d.waited >= frames(d.limits.Timeout)
		}
		d.speaking = true
	}

	d.spoken++
	d.out = append(d.out, frame...)

	if loud {
		d.silent = 0
	} else {
		d.silent++
		if d.silent >= frames(silenceDuration) {
			return true
		}
	}

	return d.spoken >= frames(d.limits.PhraseLimit)
}

// pcm returns the captured audio without the trailing silence.
func (d *detector) pcm() []float32 {
	n := len(d.out) - d.silent*frameSize
	if n < 0 {
		n = 0
	}
	return d.out[:n]
}

func frameRMS(f []float32) float64 {
	if len(f) == 0 {
		return 0
	}
	var s float64
	for _, x := range f {
		s += float64(x * x)
	}
	return math.Sqrt(s / float64(len(f)))
}
