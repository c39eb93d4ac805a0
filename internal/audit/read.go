package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// ReadAll parses every entry of a JSONL audit file in order.
func ReadAll(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audit: open: %w", err)
	}
	defer f.Close()

	var out []Entry

	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}

		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return nil, fmt.Errorf("audit: line %d: %w", line, err)
		}
		out = append(out, e)
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("audit: scan: %w", err)
	}

	return out, nil
}

// Tail returns the last n entries, or all of them when n <= 0.
func Tail(path string, n int) ([]Entry, error) {
	entries, err := ReadAll(path)
	if err != nil {
		return nil, err
	}
	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}

// String renders e as one human readable line.
func (e Entry) String() string {
	if e.Kind == "command" {
		return fmt.Sprintf("%s %-7s [%s] %s", e.Timestamp, e.Severity, e.Privilege, e.Command)
	}
	return fmt.Sprintf("%s %-7s %s", e.Timestamp, e.Severity, e.Message)
}
