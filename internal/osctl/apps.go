package osctl

import (
	"context"
	"sort"
	"strings"
)

type appCommand struct {
	name string
	args []string
}

var appTable = map[string]map[string]appCommand{
	"windows": {
		"chrome":     {"cmd", []string{"/c", "start", "", "chrome"}},
		"firefox":    {"cmd", []string{"/c", "start", "", "firefox"}},
		"edge":       {"cmd", []string{"/c", "start", "", "msedge"}},
		"notepad":    {"notepad", nil},
		"word":       {"cmd", []string{"/c", "start", "", "winword"}},
		"excel":      {"cmd", []string{"/c", "start", "", "excel"}},
		"calculator": {"calc", nil},
		"explorer":   {"explorer", nil},
		"cmd":        {"cmd", []string{"/c", "start", "", "cmd"}},
		"powershell": {"cmd", []string{"/c", "start", "", "powershell"}},
	},
	"darwin": {
		"chrome":     {"open", []string{"-a", "Google Chrome"}},
		"firefox":    {"open", []string{"-a", "Firefox"}},
		"safari":     {"open", []string{"-a", "Safari"}},
		"textedit":   {"open", []string{"-a", "TextEdit"}},
		"calculator": {"open", []string{"-a", "Calculator"}},
		"finder":     {"open", []string{"-a", "Finder"}},
		"terminal":   {"open", []string{"-a", "Terminal"}},
	},
	"linux": {
		"chrome":     {"google-chrome", nil},
		"firefox":    {"firefox", nil},
		"gedit":      {"gedit", nil},
		"calculator": {"gnome-calculator", nil},
		"files":      {"nautilus", nil},
		"terminal":   {"gnome-terminal", nil},
	},
}

// Launch starts app by best-effort name resolution: a table entry whose key
// and the requested name contain one another, else the name itself.
func (h *Host) Launch(ctx context.Context, app string) (Launched, error) {
	table, ok := appTable[h.goos]
	if !ok {
		return Launched{Name: app, OS: h.OSName()}, ErrUnsupported
	}

	if key, cmd, found := lookupApp(table, app); found {
		h.log.Info("Opening application", "app", key)
		return Launched{Name: key, Known: true, OS: h.OSName()}, h.start(cmd.name, cmd.args...)
	}

	h.log.Info("Opening unknown application", "app", app)

	var err error
	switch h.goos {
	case "windows":
		err = h.start("cmd", "/c", "start", "", app)
	case "darwin":
		err = h.start("open", "-a", app)
	default:
		err = h.start(app)
	}

	return Launched{Name: app, OS: h.OSName()}, err
}

func lookupApp(table map[string]appCommand, app string) (string, appCommand, bool) {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if k == app {
			return k, table[k], true
		}
	}
	for _, k := range keys {
		if strings.Contains(app, k) || strings.Contains(k, app) {
			return k, table[k], true
		}
	}

	return "", appCommand{}, false
}
