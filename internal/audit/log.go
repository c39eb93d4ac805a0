package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Recorder is the append-only sink every component writes to.
type Recorder interface {
	Record(sev Severity, message string)
	Command(text, privilege string)
}

// Entry is one line of the JSONL audit file.
type Entry struct {
	Timestamp string   `json:"ts"`
	Kind      string   `json:"kind"`
	Severity  Severity `json:"severity"`
	Message   string   `json:"message,omitempty"`
	Command   string   `json:"command,omitempty"`
	Privilege string   `json:"privilege,omitempty"`
}

// Log appends entries to a JSONL file. Writes are serialized and synced.
type Log struct {
	mu     sync.Mutex
	file   *os.File
	onFail func(error)
}

func Open(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("audit: create directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("audit: open file: %w", err)
	}

	return &Log{file: f}, nil
}

// OnFailure installs a callback for write errors. Recording never returns
// an error to the caller; the session must not stop on a full disk.
func (l *Log) OnFailure(f func(error)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onFail = f
}

func (l *Log) Record(sev Severity, message string) {
	l.write(Entry{Kind: "event", Severity: sev, Message: message})
}

func (l *Log) Command(text, privilege string) {
	l.write(Entry{Kind: "command", Severity: SeverityInfo, Command: text, Privilege: privilege})
}

// Append writes a fully formed entry. The timestamp is filled if empty.
func (l *Log) Append(e Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e.Timestamp == "" {
		e.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
	}

	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("audit: marshal entry: %w", err)
	}

	if _, err := l.file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("audit: write entry: %w", err)
	}

	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("audit: sync: %w", err)
	}

	return nil
}

func (l *Log) write(e Entry) {
	if err := l.Append(e); err != nil {
		l.mu.Lock()
		f := l.onFail
		l.mu.Unlock()
		if f != nil {
			f(err)
		}
	}
}

func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

type discard struct{}

func (discard) Record(Severity, string) {}
func (discard) Command(string, string)  {}

// Discard drops every entry.
var Discard Recorder = discard{}
