package stt

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

type OpenAIOptions struct {
	Model    string // defaults to whisper-1
	Language string // ISO-639-1; empty lets the API detect it
	Prompt   string
}

// OpenAI sends each utterance to the audio transcription endpoint.
type OpenAI struct {
	client openai.Client
	opt    OpenAIOptions
}

// NewOpenAI builds a cloud transcriber. Pass option.WithHTTPClient to route
// requests through a proxy.
func NewOpenAI(apiKey string, opt OpenAIOptions, opts ...option.RequestOption) *OpenAI {
	if opt.Model == "" {
		opt.Model = string(openai.AudioModelWhisper1)
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)

	return &OpenAI{
		client: openai.NewClient(opts...),
		opt:    opt,
	}
}

func (o *OpenAI) Close() error { return nil }

func (o *OpenAI) Transcribe(ctx context.Context, pcm []float32) (Result, error) {
	if len(pcm) == 0 {
		return Result{}, ErrNoAudio
	}

	f, err := os.CreateTemp("", "vox-*.wav")
	if err != nil {
		return Result{}, fmt.Errorf("stt: temp file: %w", err)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	if err := EncodeWAV(f, pcm); err != nil {
		return Result{}, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Result{}, fmt.Errorf("stt: rewind: %w", err)
	}

	params := openai.AudioTranscriptionNewParams{
		File:  f,
		Model: openai.AudioModel(o.opt.Model),
	}
	if o.opt.Language != "" && o.opt.Language != "auto" {
		params.Language = openai.String(o.opt.Language)
	}
	if o.opt.Prompt != "" {
		params.Prompt = openai.String(o.opt.Prompt)
	}

	res, err := o.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return Result{}, fmt.Errorf("stt: openai transcription: %w", err)
	}

	return Result{
		Text:     strings.TrimSpace(res.Text),
		Language: o.opt.Language,
	}, nil
}

// EncodeWAV writes pcm as 16-bit mono WAV at SampleRate.
func EncodeWAV(w io.WriteSeeker, pcm []float32) error {
	enc := wav.NewEncoder(w, SampleRate, 16, 1, 1)

	data := make([]int, len(pcm))
	for i, s := range pcm {
		v := math.Max(-1, math.Min(1, float64(s)))
		data[i] = int(math.Round(v * math.MaxInt16))
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("stt: encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("stt: finish wav: %w", err)
	}
	return nil
}
