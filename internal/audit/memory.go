package audit

import "sync"

// Memory keeps entries in process. Useful for tests and dry runs.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
}

func (m *Memory) Record(sev Severity, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, Entry{Kind: "event", Severity: sev, Message: message})
}

func (m *Memory) Command(text, privilege string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, Entry{Kind: "command", Severity: SeverityInfo, Command: text, Privilege: privilege})
}

func (m *Memory) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Entry(nil), m.entries...)
}

// Count returns how many entries have the given severity.
func (m *Memory) Count(sev Severity) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, e := range m.entries {
		if e.Severity == sev {
			n++
		}
	}
	return n
}
