// Package audio captures utterances for the voice gateway: from the
// default microphone through PortAudio, or from recorded files.
package audio

import (
	"context"
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// Source yields one utterance of 16 kHz mono PCM per call. An empty slice
// means nothing was said before the timeout.
type Source interface {
	Record(ctx context.Context, l Limits) ([]float32, error)
}

// Recorder captures from the default input device.
type Recorder struct{}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Init() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("audio: init portaudio: %w", err)
	}
	return nil
}

func (r *Recorder) Close() {
	portaudio.Terminate()
}

// Record waits for speech and returns once the speaker pauses, the phrase
// limit is hit or ctx is done.
func (r *Recorder) Record(ctx context.Context, l Limits) ([]float32, error) {
	buf := make([]float32, frameSize)

	stream, err := portaudio.OpenDefaultStream(1, 0, SampleRate, len(buf), buf)
	if err != nil {
		return nil, fmt.Errorf("audio: open stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("audio: start stream: %w", err)
	}
	defer stream.Stop()

	det := newDetector(l)
	for {
		if err := ctx.Err(); err != nil {
			return det.pcm(), err
		}
		if err := stream.Read(); err != nil {
			return nil, fmt.Errorf("audio: read: %w", err)
		}
		if det.push(buf) {
			return det.pcm(), nil
		}
	}
}
