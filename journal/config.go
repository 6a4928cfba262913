package journal

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config selects a journal backend from configuration.
//
// A minimal YAML document looks like:
//
//	journal:
//	  backend: sqlite
//	  dsn: /var/lib/app/events.db
type Config struct {
	// Backend is a registered backend name (e.g. "memory", "sqlite").
	Backend string `yaml:"backend"`

	// DSN is passed verbatim to the backend factory.
	DSN string `yaml:"dsn,omitempty"`
}

// Open resolves the configured backend through the registry.
func (c Config) Open() (Journal, error) {
	if c.Backend == "" {
		return nil, fmt.Errorf("journal config: backend not set")
	}
	return Open(c.Backend, c.DSN)
}

// LoadConfig reads a YAML file with a top-level "journal" section and
// returns the journal configuration it selects.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read journal config: %w", err)
	}

	var doc struct {
		Journal Config `yaml:"journal"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Config{}, fmt.Errorf("parse journal config %s: %w", path, err)
	}
	return doc.Journal, nil
}
