// Package voice is the spoken gateway: microphone capture, transcription,
// synthesized replies and ducking of other playback while listening.
package voice

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"time"

	log "log/slog"

	"vox/internal/audio"
	"vox/internal/session"
	"vox/pkg/stt"
)

const transcribeTimeout = 60 * time.Second

type Speaker interface {
	Speak(text string) error
}

// Ducker lowers other playback for the duration of a capture.
type Ducker interface {
	Duck(ctx context.Context, factor float64, duration time.Duration) error
	Restore(ctx context.Context, duration time.Duration) error
}

type Options struct {
	Source  audio.Source
	STT     stt.Transcriber
	Speaker Speaker
	Ducker  Ducker // optional
	// DuckFactor is the volume fraction other streams keep while listening.
	DuckFactor float64
	Fade       time.Duration
	Log        *log.Logger
	// OnEOF runs once when Source is exhausted (replay mode).
	OnEOF func()
}

type Gateway struct {
	opt Options
	log *log.Logger
	eof bool
}

func New(opt Options) *Gateway {
	if opt.Log == nil {
		opt.Log = log.Default()
	}
	if opt.DuckFactor <= 0 || opt.DuckFactor > 1 {
		opt.DuckFactor = 0.2
	}
	if opt.Fade <= 0 {
		opt.Fade = 150 * time.Millisecond
	}
	return &Gateway{opt: opt, log: opt.Log.With("component", "voice")}
}

// Listen captures one utterance and returns its transcript. Silence,
// unintelligible audio and any capture or engine failure yield "".
func (g *Gateway) Listen(ctx context.Context, opt session.ListenOptions) string {
	if g.eof {
		<-ctx.Done()
		return ""
	}

	if g.opt.Ducker != nil {
		if err := g.opt.Ducker.Duck(ctx, g.opt.DuckFactor, g.opt.Fade); err != nil {
			g.log.Debug("Duck failed", "err", err)
		}
		defer func() {
			if err := g.opt.Ducker.Restore(context.WithoutCancel(ctx), g.opt.Fade); err != nil {
				g.log.Debug("Restore failed", "err", err)
			}
		}()
	}

	pcm, err := g.opt.Source.Record(ctx, audio.Limits{
		Timeout:     opt.Timeout,
		PhraseLimit: opt.PhraseLimit,
	})
	if err != nil {
		if errors.Is(err, io.EOF) {
			g.eof = true
			if g.opt.OnEOF != nil {
				g.opt.OnEOF()
			}
		} else if ctx.Err() == nil {
			g.log.Error("Failed to record", "err", err)
		}
		return ""
	}
	if len(pcm) == 0 {
		return ""
	}

	g.log.Debug("Recorded", "samples", len(pcm))

	tctx, cancel := context.WithTimeout(ctx, transcribeTimeout)
	defer cancel()

	res, err := g.opt.STT.Transcribe(tctx, pcm)
	if err != nil {
		if !errors.Is(err, stt.ErrNoAudio) && ctx.Err() == nil {
			g.log.Error("Failed to transcribe", "err", err)
		}
		return ""
	}

	text := Clean(res.Text)
	g.log.Info("Heard", "text", text, "lang", res.Language)

	return text
}

func (g *Gateway) Speak(_ context.Context, text string) {
	g.log.Info("Saying", "text", text)
	if err := g.opt.Speaker.Speak(text); err != nil {
		g.log.Error("Failed to voice out", "err", err)
	}
}

var annotation = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)|\*[^*]*\*`)

// Clean drops engine annotations such as "[BLANK_AUDIO]" or "(music)" and
// collapses whitespace.
func Clean(text string) string {
	text = annotation.ReplaceAllString(text, " ")
	return strings.Join(strings.Fields(text), " ")
}
