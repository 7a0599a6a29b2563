package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config represents the persistent sagestream configuration stored as
// config.toml in the .sagestream/ directory. The TOML layout uses sections
// for logical grouping.
type Config struct {
	Version    int            `toml:"version"`
	Endpoint   EndpointConfig `toml:"endpoint"`
	Parameters map[string]any `toml:"parameters,omitempty"`
	Events     EventsConfig   `toml:"events"`
	Log        LogConfig      `toml:"log"`
}

// EndpointConfig identifies the endpoint and how requests to it are encoded.
type EndpointConfig struct {
	Name               string `toml:"name,omitempty"`
	InferenceComponent string `toml:"inference_component,omitempty"`
	Region             string `toml:"region,omitempty"`
	Codec              string `toml:"codec,omitempty"`
	ContentType        string `toml:"content_type,omitempty"`
	Accept             string `toml:"accept,omitempty"`
	StrictFraming      bool   `toml:"strict_framing,omitempty"`
	CustomAttributes   string `toml:"custom_attributes,omitempty"`
}

// EventsConfig selects where invocation events are published.
type EventsConfig struct {
	Provider string   `toml:"provider,omitempty"`
	Brokers  []string `toml:"brokers,omitempty"`
	Topic    string   `toml:"topic,omitempty"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	JSON   bool `toml:"json,omitempty"`
	Pretty bool `toml:"pretty,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"endpoint.name": {
		get: func(c *Config) string { return c.Endpoint.Name },
		set: func(c *Config, v string) error { c.Endpoint.Name = v; return nil },
	},
	"endpoint.inference_component": {
		get: func(c *Config) string { return c.Endpoint.InferenceComponent },
		set: func(c *Config, v string) error { c.Endpoint.InferenceComponent = v; return nil },
	},
	"endpoint.region": {
		get: func(c *Config) string { return c.Endpoint.Region },
		set: func(c *Config, v string) error { c.Endpoint.Region = v; return nil },
	},
	"endpoint.codec": {
		get: func(c *Config) string { return c.Endpoint.Codec },
		set: func(c *Config, v string) error { c.Endpoint.Codec = v; return nil },
	},
	"endpoint.content_type": {
		get: func(c *Config) string { return c.Endpoint.ContentType },
		set: func(c *Config, v string) error { c.Endpoint.ContentType = v; return nil },
	},
	"endpoint.accept": {
		get: func(c *Config) string { return c.Endpoint.Accept },
		set: func(c *Config, v string) error { c.Endpoint.Accept = v; return nil },
	},
	"endpoint.strict_framing": {
		get: func(c *Config) string { return strconv.FormatBool(c.Endpoint.StrictFraming) },
		set: boolSetter("endpoint.strict_framing", func(c *Config) *bool { return &c.Endpoint.StrictFraming }),
	},
	"endpoint.custom_attributes": {
		get: func(c *Config) string { return c.Endpoint.CustomAttributes },
		set: func(c *Config, v string) error { c.Endpoint.CustomAttributes = v; return nil },
	},
	"events.provider": {
		get: func(c *Config) string { return c.Events.Provider },
		set: func(c *Config, v string) error {
			if !IsValidEventsProvider(v) {
				return fmt.Errorf("invalid value for events.provider: %q (available: %s)", v, strings.Join(EventsProviders(), ", "))
			}
			c.Events.Provider = v
			return nil
		},
	},
	"events.brokers": {
		get: func(c *Config) string { return strings.Join(c.Events.Brokers, ",") },
		set: func(c *Config, v string) error { c.Events.Brokers = SplitList(v); return nil },
	},
	"events.topic": {
		get: func(c *Config) string { return c.Events.Topic },
		set: func(c *Config, v string) error { c.Events.Topic = v; return nil },
	},
	"log.json": {
		get: func(c *Config) string { return strconv.FormatBool(c.Log.JSON) },
		set: boolSetter("log.json", func(c *Config) *bool { return &c.Log.JSON }),
	},
	"log.pretty": {
		get: func(c *Config) string { return strconv.FormatBool(c.Log.Pretty) },
		set: boolSetter("log.pretty", func(c *Config) *bool { return &c.Log.Pretty }),
	},
}

func boolSetter(key string, field func(c *Config) *bool) func(c *Config, v string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
		*field(c) = b
		return nil
	}
}

// SplitList parses a comma separated list, dropping empty entries.
func SplitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
