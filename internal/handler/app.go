package handler

import (
	"context"
	"fmt"
	"strings"

	"vox/internal/auth"
	"vox/internal/nlu"
)

var appKeywords = newKeywordSet(nlu.AppLaunch.Keywords())

var appFillers = []string{"up", "the", "my", "a", "app", "application", "program"}

// powerPrograms are never launched by name; power goes through the system
// family and its confirmation.
var powerPrograms = map[string]bool{
	"shutdown": true, "reboot": true, "poweroff": true, "halt": true,
	"restart": true, "systemctl": true, "init": true, "telinit": true,
}

type App struct {
	launcher Launcher
	aliases  map[string]string
}

// NewApp launches through l; aliases map spoken names ("browser") to the
// names the launcher knows ("chrome").
func NewApp(l Launcher, aliases map[string]string) *App {
	a := &App{launcher: l, aliases: make(map[string]string, len(aliases))}
	for k, v := range aliases {
		a.aliases[strings.ToLower(k)] = strings.ToLower(v)
	}
	return a
}

func (a *App) Handle(ctx context.Context, cmd nlu.Command, _ auth.Privilege) nlu.Result {
	name := a.Name(cmd.Text)
	if name == "" {
		return nlu.Missing(nlu.AppLaunch, "Which application would you like me to open?")
	}

	if isPowerProgram(name) {
		return nlu.Denied(nlu.AppLaunch, fmt.Sprintf("I can't open %s. Ask me to shut down or restart instead.", name))
	}

	launched, err := a.launcher.Launch(ctx, name)
	if err != nil {
		return nlu.Failed(nlu.AppLaunch,
			fmt.Sprintf("I encountered an error trying to open %s. Please check if it's installed.", name),
			fmt.Errorf("launch %s: %w", name, err))
	}

	if !launched.Known {
		return nlu.Done(nlu.AppLaunch,
			fmt.Sprintf("I've tried to open %s, but I'm not sure if it exists on %s.", launched.Name, launched.OS))
	}

	return nlu.Done(nlu.AppLaunch, fmt.Sprintf("Opening %s for you.", launched.Name))
}

// Name extracts the application name and resolves aliases.
func (a *App) Name(text string) string {
	rest, ok := appKeywords.after(text)
	if !ok {
		return ""
	}

	name := trimPunct(trimFillers(rest, appFillers))
	for _, suffix := range []string{" app", " application", " program"} {
		name = strings.TrimSuffix(name, suffix)
	}
	name = strings.TrimSpace(name)

	if alias, ok := a.aliases[name]; ok {
		return alias
	}
	return name
}

func isPowerProgram(name string) bool {
	for _, w := range strings.Fields(name) {
		if powerPrograms[w] {
			return true
		}
	}
	return false
}
