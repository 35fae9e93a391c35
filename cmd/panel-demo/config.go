package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	errUnknownRouter   = errors.New("unknown router")
	errUnknownLogLevel = errors.New("unknown log level")
	errBadParam        = errors.New("params must be written as name=value")
)

// config is the demo's configuration, read from a YAML file and then
// overridden by flags.
type config struct {
	// Addr is the address to serve on.
	Addr string `yaml:"addr"`

	// Templates is a directory of templates to use instead of the
	// embedded ones.
	Templates string `yaml:"templates"`

	// Watch reloads templates from Templates when they change.
	Watch bool `yaml:"watch"`

	// Router is "echo" or "http".
	Router string `yaml:"router"`

	// LogLevel is "debug", "info", "warn", or "error".
	LogLevel string `yaml:"log_level"`
}

func defaultConfig() config {
	return config{
		Addr:     "localhost:8080",
		Router:   "echo",
		LogLevel: "info",
	}
}

func loadConfig(path string, cfg *config) error {
	contents, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return fmt.Errorf("error parsing config %q: %w", path, err)
	}
	return nil
}

func (c config) validate() error {
	switch c.Router {
	case "echo", "http":
	default:
		return fmt.Errorf("%q: %w", c.Router, errUnknownRouter)
	}
	if _, err := c.level(); err != nil {
		return err
	}
	return nil
}

func (c config) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return level, fmt.Errorf("%q: %w", c.LogLevel, errUnknownLogLevel)
	}
	return level, nil
}

// params collects repeated -param name=value flags.
type params map[string]string

func (p params) String() string {
	pairs := make([]string, 0, len(p))
	for name, value := range p {
		pairs = append(pairs, name+"="+value)
	}
	return strings.Join(pairs, ",")
}

func (p params) Set(raw string) error {
	name, value, ok := strings.Cut(raw, "=")
	if !ok || name == "" {
		return fmt.Errorf("%q: %w", raw, errBadParam)
	}
	p[name] = value
	return nil
}
