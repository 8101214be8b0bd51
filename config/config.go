// Package config provides configuration loading and management for semlog.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/c360studio/semlog/events"
	"github.com/c360studio/semlog/export"
)

// Config represents the complete semlog configuration
type Config struct {
	Episode   EpisodeConfig   `yaml:"episode" toml:"episode"`
	Events    EventsConfig    `yaml:"events" toml:"events"`
	Support   SupportConfig   `yaml:"support" toml:"support"`
	Furniture FurnitureConfig `yaml:"furniture" toml:"furniture"`
	Output    OutputConfig    `yaml:"output" toml:"output"`
	NATS      NATSConfig      `yaml:"nats" toml:"nats"`
	Metrics   MetricsConfig   `yaml:"metrics" toml:"metrics"`
}

// EpisodeConfig configures episode identity
type EpisodeConfig struct {
	// ID is the episode tag (generated when empty)
	ID string `yaml:"id" toml:"id"`
	// SemanticMap is the local name of the semantic map individual (optional)
	SemanticMap string `yaml:"semantic_map" toml:"semantic_map"`
	// SuffixLength is the length of anonymous event suffixes
	SuffixLength int `yaml:"suffix_length" toml:"suffix_length"`
}

// EventsConfig configures the event registry
type EventsConfig struct {
	// Kinds restricts begins to these event kinds (empty = all)
	Kinds []string `yaml:"kinds" toml:"kinds"`
	// NameAttempts bounds suffix regeneration on identity collisions
	NameAttempts int `yaml:"name_attempts" toml:"name_attempts"`
}

// SupportConfig configures supported-by evaluation
type SupportConfig struct {
	// SpeedThreshold is the relative vertical speed below which a pair is at rest
	SpeedThreshold float64 `yaml:"speed_threshold" toml:"speed_threshold"`
	// EvaluateEvery evaluates candidates on every Nth tick
	EvaluateEvery int `yaml:"evaluate_every" toml:"evaluate_every"`
	// MinContact is the minimum raw overlap duration in seconds
	MinContact float64 `yaml:"min_contact" toml:"min_contact"`
}

// FurnitureConfig configures furniture state sampling
type FurnitureConfig struct {
	// UpdateRate is the sampling period in seconds
	UpdateRate float64 `yaml:"update_rate" toml:"update_rate"`
}

// OutputConfig configures episode sinks
type OutputConfig struct {
	// Dir receives EventData_<episode> files
	Dir string `yaml:"dir" toml:"dir"`
	// Formats lists document formats (rdfxml, turtle, ntriples)
	Formats []string `yaml:"formats" toml:"formats"`
	// Timelines writes Timelines_<episode>.html
	Timelines bool `yaml:"timelines" toml:"timelines"`
	// TimelineDB is a sqlite path for interval rows (empty = disabled)
	TimelineDB string `yaml:"timeline_db" toml:"timeline_db"`
}

// NATSConfig configures the NATS connection
type NATSConfig struct {
	// URL is the NATS server URL (empty = no graph or KV sinks)
	URL string `yaml:"url" toml:"url"`
	// Publish streams closed events to the graph ingest subject
	Publish bool `yaml:"publish" toml:"publish"`
	// Bucket is the KV bucket for finalized documents
	Bucket string `yaml:"bucket" toml:"bucket"`
}

// MetricsConfig configures the prometheus endpoint
type MetricsConfig struct {
	// Addr is the listen address for /metrics (empty = disabled)
	Addr string `yaml:"addr" toml:"addr"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Episode: EpisodeConfig{
			SuffixLength: 4,
		},
		Events: EventsConfig{
			NameAttempts: events.DefaultNameAttempts,
		},
		Support: SupportConfig{
			SpeedThreshold: 0.5,
			EvaluateEvery:  1,
		},
		Furniture: FurnitureConfig{
			UpdateRate: 0.25,
		},
		Output: OutputConfig{
			Dir:     "episodes",
			Formats: []string{string(export.FormatRDFXML)},
		},
		NATS: NATSConfig{
			Bucket: "SEMLOG_EPISODES",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Episode.SuffixLength < 1 {
		return fmt.Errorf("episode.suffix_length must be positive")
	}
	if c.Events.NameAttempts < 1 {
		return fmt.Errorf("events.name_attempts must be positive")
	}
	for _, k := range c.Events.Kinds {
		if _, ok := events.ParseKind(k); !ok {
			return fmt.Errorf("events.kinds: unknown kind %q", k)
		}
	}
	if c.Support.SpeedThreshold <= 0 {
		return fmt.Errorf("support.speed_threshold must be positive")
	}
	if c.Support.EvaluateEvery < 1 {
		return fmt.Errorf("support.evaluate_every must be at least 1")
	}
	if c.Support.MinContact < 0 {
		return fmt.Errorf("support.min_contact must not be negative")
	}
	if c.Furniture.UpdateRate <= 0 {
		return fmt.Errorf("furniture.update_rate must be positive")
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir is required")
	}
	for _, f := range c.Output.Formats {
		if _, err := export.ParseFormat(f); err != nil {
			return fmt.Errorf("output.formats: %w", err)
		}
	}
	return nil
}

// OutputFormats returns the parsed output formats.
func (c *Config) OutputFormats() []export.Format {
	out := make([]export.Format, 0, len(c.Output.Formats))
	for _, f := range c.Output.Formats {
		if format, err := export.ParseFormat(f); err == nil {
			out = append(out, format)
		}
	}
	return out
}

// EnabledKinds returns the allowed event kinds, nil meaning all.
func (c *Config) EnabledKinds() []events.Kind {
	if len(c.Events.Kinds) == 0 {
		return nil
	}
	out := make([]events.Kind, 0, len(c.Events.Kinds))
	for _, k := range c.Events.Kinds {
		if kind, ok := events.ParseKind(k); ok {
			out = append(out, kind)
		}
	}
	return out
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// LoadFromFile loads configuration from a YAML or TOML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if isTOML(path) {
		err = toml.Unmarshal(data, config)
	} else {
		err = yaml.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML or TOML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		data, err = toml.Marshal(c)
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Episode
	if other.Episode.ID != "" {
		c.Episode.ID = other.Episode.ID
	}
	if other.Episode.SemanticMap != "" {
		c.Episode.SemanticMap = other.Episode.SemanticMap
	}
	if other.Episode.SuffixLength != 0 {
		c.Episode.SuffixLength = other.Episode.SuffixLength
	}

	// Events
	if len(other.Events.Kinds) > 0 {
		c.Events.Kinds = other.Events.Kinds
	}
	if other.Events.NameAttempts != 0 {
		c.Events.NameAttempts = other.Events.NameAttempts
	}

	// Support
	if other.Support.SpeedThreshold != 0 {
		c.Support.SpeedThreshold = other.Support.SpeedThreshold
	}
	if other.Support.EvaluateEvery != 0 {
		c.Support.EvaluateEvery = other.Support.EvaluateEvery
	}
	if other.Support.MinContact != 0 {
		c.Support.MinContact = other.Support.MinContact
	}

	// Furniture
	if other.Furniture.UpdateRate != 0 {
		c.Furniture.UpdateRate = other.Furniture.UpdateRate
	}

	// Output
	if other.Output.Dir != "" {
		c.Output.Dir = other.Output.Dir
	}
	if len(other.Output.Formats) > 0 {
		c.Output.Formats = other.Output.Formats
	}
	if other.Output.Timelines {
		c.Output.Timelines = true
	}
	if other.Output.TimelineDB != "" {
		c.Output.TimelineDB = other.Output.TimelineDB
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
	if other.NATS.Publish {
		c.NATS.Publish = true
	}
	if other.NATS.Bucket != "" {
		c.NATS.Bucket = other.NATS.Bucket
	}

	// Metrics
	if other.Metrics.Addr != "" {
		c.Metrics.Addr = other.Metrics.Addr
	}
}
