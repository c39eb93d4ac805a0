// Package stt turns 16 kHz mono PCM into text.
package stt

import (
	"context"
	"errors"
	"strings"
)

// SampleRate is the rate every Transcriber expects.
const SampleRate = 16000

var ErrNoAudio = errors.New("stt: no audio samples provided")

type Segment struct {
	Text     string
	StartSec float64
	EndSec   float64
}

type Result struct {
	Text     string
	Segments []Segment
	Language string // detected or forced
}

// Transcriber is implemented by the local whisper model and the OpenAI
// transcription API. pcm must be mono @ 16 kHz, float32 in [-1, 1].
type Transcriber interface {
	Transcribe(ctx context.Context, pcm []float32) (Result, error)
	Close() error
}

func joinSegments(segs []Segment) string {
	parts := make([]string, 0, len(segs))
	for _, s := range segs {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
