// Package config loads the assistant settings once at startup. Values come
// from built-in defaults, an optional YAML file, an optional .env file and
// the process environment, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	BackendWhisper = "whisper"
	BackendOpenAI  = "openai"
)

type Listen struct {
	Timeout         time.Duration `yaml:"timeout"`
	PhraseLimit     time.Duration `yaml:"phrase_limit"`
	WakePhraseLimit time.Duration `yaml:"wake_phrase_limit"`
}

type Speech struct {
	// Backend selects the transcriber: "whisper" (local) or "openai".
	Backend     string `yaml:"backend"`
	Model       string `yaml:"model"`
	Language    string `yaml:"language"`
	OpenAIModel string `yaml:"openai_model"`
	OpenAIKey   string `yaml:"-"`
	// Proxy is an optional SOCKS5 address for the cloud backend.
	Proxy string `yaml:"proxy"`
}

type Voice struct {
	Language string `yaml:"language"`
	Rate     int    `yaml:"rate"`
	Chime    string `yaml:"chime"`
	Duck     int    `yaml:"duck"`
}

type Config struct {
	AdminSecret string `yaml:"-"`
	WakePhrase  string `yaml:"wake_phrase"`
	MaxCommands int    `yaml:"max_commands"`
	Step        int    `yaml:"step"`

	Listen Listen `yaml:"listen"`
	Speech Speech `yaml:"speech"`
	Voice  Voice  `yaml:"voice"`

	SearchURL  string            `yaml:"search_url"`
	AuditLog   string            `yaml:"audit_log"`
	FilesDir   string            `yaml:"files_dir"`
	PowerDelay time.Duration     `yaml:"power_delay"`
	Apps       map[string]string `yaml:"apps"`

	Socket string `yaml:"socket"`
	BusURL string `yaml:"bus_url"`
}

func Default() *Config {
	return &Config{
		WakePhrase:  "Hey Assistant",
		MaxCommands: 5,
		Step:        10,
		Listen: Listen{
			Timeout:         5 * time.Second,
			PhraseLimit:     10 * time.Second,
			WakePhraseLimit: 3 * time.Second,
		},
		Speech: Speech{
			Backend:     BackendWhisper,
			Model:       "third_party/whisper.cpp/models/ggml-medium.bin",
			Language:    "en",
			OpenAIModel: "whisper-1",
		},
		Voice: Voice{
			Language: "en",
			Rate:     150,
			Chime:    "beep.mp3",
			Duck:     20,
		},
		SearchURL:  "https://www.google.com/search?q={query}",
		AuditLog:   "logs/assistant_audit.jsonl",
		PowerDelay: time.Minute,
		Apps: map[string]string{
			"browser":    "chrome",
			"music":      "spotify",
			"calculator": "calculator",
			"notepad":    "notepad",
			"explorer":   "explorer",
		},
		Socket: "/tmp/vox.sock",
		BusURL: "ws://localhost:8092",
	}
}

// Load builds the configuration. A missing config or env file is not an
// error; an unreadable or invalid one is.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: load env %s: %w", envFile, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		*dst = n
		return nil
	}

	str("VOX_ADMIN_SECRET", &c.AdminSecret)
	str("VOX_WAKE_PHRASE", &c.WakePhrase)
	str("VOX_AUDIT_LOG", &c.AuditLog)
	str("OPENAI_API_KEY", &c.Speech.OpenAIKey)

	if err := num("VOX_MAX_COMMANDS", &c.MaxCommands); err != nil {
		return err
	}
	return num("VOX_STEP", &c.Step)
}

func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.WakePhrase) == "" {
		errs = append(errs, errors.New("wake phrase is empty"))
	}
	if c.MaxCommands <= 0 {
		errs = append(errs, fmt.Errorf("max commands must be positive, got %d", c.MaxCommands))
	}
	if c.Step < 1 || c.Step > 100 {
		errs = append(errs, fmt.Errorf("step must be within [1,100], got %d", c.Step))
	}
	if c.Listen.Timeout < 0 || c.Listen.PhraseLimit < 0 || c.Listen.WakePhraseLimit < 0 {
		errs = append(errs, errors.New("listen durations must not be negative"))
	}
	if c.SearchURL != "" && !strings.Contains(c.SearchURL, "{query}") {
		errs = append(errs, fmt.Errorf("search url %q has no {query} placeholder", c.SearchURL))
	}
	switch c.Speech.Backend {
	case BackendWhisper, BackendOpenAI:
	default:
		errs = append(errs, fmt.Errorf("unknown speech backend %q", c.Speech.Backend))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// AdminEnabled reports whether an admin secret is configured.
func (c *Config) AdminEnabled() bool {
	return c.AdminSecret != ""
}
