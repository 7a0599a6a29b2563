package config

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/sagestream/pkg/dotdir"
)

const (
	configFile = "config.toml"

	// v0 is the alpha version of the config
	v0 = 0

	// CurrentV is the currently supported version, points to v0
	CurrentV = v0
)

type Configer struct {
	ddm        *dotdir.Manager
	targetPath string
}

func NewConfiger(override string) (*Configer, error) {
	cfger := &Configer{}

	cfger.ddm = dotdir.NewManager()
	target, err := cfger.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	// If no .sagestream/ directory was resolved, targetPath stays empty;
	// LoadConfig returns defaults and SaveConfig creates ~/.sagestream/.
	if target == "" {
		return cfger, nil
	}

	path := filepath.Join(target, configFile)
	_, err = os.Stat(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfger.targetPath = path

	return cfger, nil
}

// ValidConfigKeys returns the list of all fixed configuration key names in
// TOML section order. Model parameters use open-ended "parameters.<name>"
// keys and are not listed.
func ValidConfigKeys() []string {
	ordered := []string{
		"endpoint.name",
		"endpoint.inference_component",
		"endpoint.region",
		"endpoint.codec",
		"endpoint.content_type",
		"endpoint.accept",
		"endpoint.strict_framing",
		"endpoint.custom_attributes",
		"events.provider",
		"events.brokers",
		"events.topic",
		"log.json",
		"log.pretty",
	}

	result := make([]string, 0, len(configKeys))
	for _, k := range ordered {
		if _, ok := configKeys[k]; ok {
			result = append(result, k)
		}
	}

	// Append any keys in the map that we missed in the ordered list.
	for _, k := range slices.Sorted(maps.Keys(configKeys)) {
		if !slices.Contains(result, k) {
			result = append(result, k)
		}
	}

	return result
}

// IsValidConfigKey returns true if the given key is a supported configuration key.
func IsValidConfigKey(key string) bool {
	if _, ok := parameterKey(key); ok {
		return true
	}
	_, ok := configKeys[key]
	return ok
}

func (c *Configer) GetTarget() string {
	return c.targetPath
}

// LoadConfig loads the configuration from config.toml in the target
// .sagestream/ directory. If the file does not exist, returns
// NewDefaultConfig() so callers always receive a fully-populated Config.
// Fields explicitly set in the file override the defaults.
func (c *Configer) LoadConfig() (*Config, error) {
	if c.targetPath == "" {
		return NewDefaultConfig(), nil
	}

	data, err := os.ReadFile(c.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := ParseConfigTOML(data)
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults fills zero-value fields in cfg with values from NewDefaultConfig().
func applyDefaults(cfg *Config) {
	defaults := NewDefaultConfig()

	if cfg.Version == 0 {
		cfg.Version = defaults.Version
	}

	if cfg.Endpoint.Codec == "" {
		cfg.Endpoint.Codec = defaults.Endpoint.Codec
	}

	if cfg.Events.Provider == "" {
		cfg.Events.Provider = defaults.Events.Provider
	}
	if cfg.Events.Topic == "" {
		cfg.Events.Topic = defaults.Events.Topic
	}
}

// SaveConfig persists the configuration to config.toml in the target
// .sagestream/ directory, creating ~/.sagestream/ when none was resolved.
func (c *Configer) SaveConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("cannot save nil config")
	}

	if c.targetPath == "" {
		home, err := c.ddm.EnsureHome()
		if err != nil {
			return err
		}
		c.targetPath = filepath.Join(home, configFile)
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(c.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// SetConfigValue loads the config, sets the given key to the given value, and saves it.
// Returns an error if the key is not a valid config key.
func (c *Configer) SetConfigValue(key string, value string) error {
	cfg, err := c.LoadConfig()
	if err != nil {
		return err
	}

	if name, ok := parameterKey(key); ok {
		if cfg.Parameters == nil {
			cfg.Parameters = map[string]any{}
		}
		SetParam(cfg.Parameters, name, ParseParamValue(value))
		return c.SaveConfig(cfg)
	}

	info, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown config key: %q", key)
	}

	if err := info.set(cfg, value); err != nil {
		return err
	}

	return c.SaveConfig(cfg)
}

// GetConfigValue loads the config and returns the string representation of the given key.
// Returns an error if the key is not a valid config key.
func (c *Configer) GetConfigValue(key string) (string, error) {
	if !IsValidConfigKey(key) {
		return "", fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return "", err
	}

	return cfg.Get(key), nil
}

// Get returns the string form of key, or the empty string for unset or
// unknown keys.
func (cfg *Config) Get(key string) string {
	if name, ok := parameterKey(key); ok {
		v, ok := LookupParam(cfg.Parameters, name)
		if !ok {
			return ""
		}
		return formatParamValue(v)
	}

	info, ok := configKeys[key]
	if !ok {
		return ""
	}
	return info.get(cfg)
}

// ParameterKeys returns the "parameters.<name>" key of every leaf value in
// cfg, sorted. Nested tables contribute dotted names.
func (cfg *Config) ParameterKeys() []string {
	var keys []string
	var walk func(prefix string, params map[string]any)
	walk = func(prefix string, params map[string]any) {
		for _, name := range slices.Sorted(maps.Keys(params)) {
			key := prefix + name
			if nested, ok := params[name].(map[string]any); ok && len(nested) > 0 {
				walk(key+".", nested)
				continue
			}
			keys = append(keys, key)
		}
	}
	walk(parametersPrefix, cfg.Parameters)
	return keys
}

// ParseConfigTOML parses raw TOML bytes into a Config.
// Returns an error if the version field is present and not equal to CurrentV.
func ParseConfigTOML(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config TOML: %w", err)
	}

	if cfg.Version != 0 && cfg.Version != CurrentV {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentV)
	}

	if cfg.Events.Provider != "" && !IsValidEventsProvider(cfg.Events.Provider) {
		return nil, fmt.Errorf("unsupported events provider %q", cfg.Events.Provider)
	}

	return cfg, nil
}
