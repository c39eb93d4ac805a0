package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/spf13/pflag"

	log "log/slog"

	"vox/internal/app"
	"vox/internal/bus"
	"vox/internal/config"
	"vox/internal/console"
	"vox/internal/session"
)

func main() {
	cfgFile := cli.StringP("config", "c", "vox.yaml", "Config file path")
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	logLevel := cli.StringP("log", "l", "warn", "Log level")
	useBus := cli.BoolP("bus", "b", false, "Serve utterances from the message bus instead of stdin")
	shard := cli.StringP("shard", "s", "vox", "Shard name on the bus")
	cli.Parse()

	logger := app.NewLogger(*logLevel)
	log.SetDefault(logger)

	if err := run(*cfgFile, *envFile, *useBus, *shard, logger); err != nil {
		logger.Error("Exiting", "err", err)
		os.Exit(1)
	}
}

func run(cfgFile, envFile string, useBus bool, shard string, logger *log.Logger) error {
	cfg, err := config.Load(cfgFile, envFile)
	if err != nil {
		return err
	}
	if url := os.Getenv("BUS_URL"); url != "" {
		cfg.BusURL = url
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := app.New(cfg, logger, app.Options{})
	if err != nil {
		return err
	}
	defer rt.Close()

	var (
		gw      session.Gateway
		secrets session.SecretReader
	)

	if useBus {
		logger.Info("Starting Vox shard", "url", cfg.BusURL, "shard", shard)

		b, err := bus.Dial(ctx, bus.Config{URL: cfg.BusURL, Shard: shard, Log: logger})
		if err != nil {
			return err
		}
		defer b.Close()
		go b.Run(ctx)

		gw = b
	} else {
		c := console.New(console.Options{
			OnEOF:  stop,
			Secret: console.TerminalSecret(int(os.Stdin.Fd())),
		})
		gw = c
		if c.HasSecrets() {
			secrets = c
		}
	}

	err = rt.Controller(gw, secrets, nil).Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
