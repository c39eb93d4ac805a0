package main

import (
	"fmt"
	"os"

	cli "github.com/spf13/pflag"

	"vox/internal/audit"
	"vox/internal/config"
	"vox/internal/ipc"
)

const cmdAudit = "audit"

func main() {
	socket := cli.StringP("socket", "s", ipc.DefaultSocketPath, "Daemon control socket")
	cfgFile := cli.StringP("config", "c", "vox.yaml", "Config file path (audit)")
	envFile := cli.StringP("env", "e", ".env", "Env file path (audit)")
	lines := cli.IntP("lines", "n", 20, "Entries to show (audit), 0 for all")
	cli.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: vox-ctl [flags] [%s|%s|%s|%s]\n", ipc.CmdTrigger, ipc.CmdStop, ipc.CmdAbort, cmdAudit)
		cli.PrintDefaults()
	}
	cli.Parse()

	cmd := ipc.CmdTrigger
	if cli.NArg() > 0 {
		cmd = cli.Arg(0)
	}

	switch cmd {
	case cmdAudit:
		if err := tailAudit(*cfgFile, *envFile, *lines); err != nil {
			fmt.Fprintln(os.Stderr, "vox-ctl:", err)
			os.Exit(1)
		}
		return
	case ipc.CmdTrigger, ipc.CmdStop, ipc.CmdAbort:
	default:
		cli.Usage()
		os.Exit(2)
	}

	if err := ipc.SendCommand(*socket, cmd); err != nil {
		fmt.Fprintln(os.Stderr, "vox-daemon:", err)
		os.Exit(1)
	}
}

func tailAudit(cfgFile, envFile string, n int) error {
	cfg, err := config.Load(cfgFile, envFile)
	if err != nil {
		return err
	}

	entries, err := audit.Tail(cfg.AuditLog, n)
	if err != nil {
		return err
	}

	for _, e := range entries {
		fmt.Println(e)
	}
	return nil
}
