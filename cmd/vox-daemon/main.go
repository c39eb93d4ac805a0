package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/spf13/pflag"

	log "log/slog"

	"github.com/openai/openai-go/v3/option"

	"vox/internal/app"
	"vox/internal/audio"
	"vox/internal/config"
	"vox/internal/ipc"
	"vox/internal/notify"
	"vox/internal/proxy"
	"vox/internal/session"
	"vox/internal/tts"
	"vox/internal/voice"
	"vox/pkg/stt"
)

func main() {
	cfgFile := cli.StringP("config", "c", "vox.yaml", "Config file path")
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	logLevel := cli.StringP("log", "l", "info", "Log level")
	replay := cli.StringP("replay", "r", "", "Read utterances from audio files in this directory instead of the microphone")
	cli.Parse()

	logger := app.NewLogger(*logLevel)
	log.SetDefault(logger)

	if err := run(*cfgFile, *envFile, *replay, logger); err != nil {
		logger.Error("Exiting", "err", err)
		os.Exit(1)
	}
}

func run(cfgFile, envFile, replay string, logger *log.Logger) error {
	logger.Info("Booting up")

	cfg, err := config.Load(cfgFile, envFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := app.New(cfg, logger, app.Options{})
	if err != nil {
		return err
	}
	defer rt.Close()

	var src audio.Source
	if replay != "" {
		fr, err := audio.NewDirRecorder(replay)
		if err != nil {
			return err
		}
		logger.Info("Replaying recordings", "dir", replay, "files", fr.Remaining())
		src = fr
	} else {
		rec := audio.NewRecorder()
		if err := rec.Init(); err != nil {
			return fmt.Errorf("init audio: %w", err)
		}
		defer rec.Close()
		src = rec
	}

	logger.Debug("Loaded recorder")

	tr, err := newTranscriber(cfg.Speech, logger)
	if err != nil {
		return err
	}
	defer tr.Close()

	logger.Debug("Loaded transcriber", "backend", cfg.Speech.Backend)

	opt := voice.Options{
		Source:  src,
		STT:     tr,
		Speaker: tts.Espeak{Language: cfg.Voice.Language, Rate: cfg.Voice.Rate},
		Log:     logger,
	}
	if replay != "" {
		opt.OnEOF = stop
	}
	if cfg.Voice.Duck > 0 && replay == "" {
		opt.Ducker = audio.NewDucker(rt.Pactl, []string{"espeak", "vox"}, 0)
		opt.DuckFactor = float64(cfg.Voice.Duck) / 100
	}
	gw := voice.New(opt)

	var chime session.Chime
	if cfg.Voice.Chime != "" {
		chime = notify.NewChime(cfg.Voice.Chime)
	}

	ctrl := rt.Controller(gw, nil, chime)

	srv, err := ipc.StartServer(ctx, cfg.Socket, func(ctx context.Context, msg ipc.ControlMessage) error {
		switch msg.Cmd {
		case ipc.CmdTrigger:
			ctrl.Trigger()
		case ipc.CmdStop:
			stop()
		case ipc.CmdAbort:
			return rt.Host.CancelPower(ctx)
		default:
			logger.Warn("Unknown command", "cmd", msg.Cmd)
			return fmt.Errorf("unknown command %q", msg.Cmd)
		}
		return nil
	}, logger)
	if err != nil {
		return err
	}
	defer srv.Close()

	logger.Info("Boot up - successful", "wake", cfg.WakePhrase, "socket", cfg.Socket)

	if err := ctrl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("Stopped")
	return nil
}

func newTranscriber(cfg config.Speech, logger *log.Logger) (stt.Transcriber, error) {
	switch cfg.Backend {
	case config.BackendOpenAI:
		if cfg.OpenAIKey == "" {
			return nil, errors.New("OPENAI_API_KEY not set")
		}

		httpClient, err := proxy.NewSocksClient(cfg.Proxy, 0)
		if err != nil {
			return nil, err
		}
		if cfg.Proxy != "" {
			logger.Debug("Loaded proxy", "proxy", cfg.Proxy)
		}

		return stt.NewOpenAI(cfg.OpenAIKey, stt.OpenAIOptions{
			Model:    cfg.OpenAIModel,
			Language: cfg.Language,
		}, option.WithHTTPClient(httpClient)), nil

	default:
		w, err := stt.NewWhisper(cfg.Model, stt.WhisperOptions{Language: cfg.Language})
		if err != nil {
			return nil, fmt.Errorf("init whisper: %w", err)
		}
		return w, nil
	}
}
