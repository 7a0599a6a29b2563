package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"

	"github.com/papercomputeco/sagestream/pkg/dotdir"
)

// EnvPrefix is the prefix of environment variables bound into viper.
const EnvPrefix = "SAGESTREAM"

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the SAGESTREAM_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (SAGESTREAM_ENDPOINT_NAME, SAGESTREAM_ENDPOINT_REGION, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: SAGESTREAM_ENDPOINT_NAME, SAGESTREAM_EVENTS_TOPIC, etc.
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// FromViper assembles a Config from the resolved values in v. The
// [parameters] table is read straight from the config file because viper
// lowercases keys and model parameter names are case sensitive.
func FromViper(v *viper.Viper) (*Config, error) {
	params, err := readParameters(v.ConfigFileUsed())
	if err != nil {
		return nil, err
	}

	return &Config{
		Version: v.GetInt("version"),
		Endpoint: EndpointConfig{
			Name:               v.GetString("endpoint.name"),
			InferenceComponent: v.GetString("endpoint.inference_component"),
			Region:             v.GetString("endpoint.region"),
			Codec:              v.GetString("endpoint.codec"),
			ContentType:        v.GetString("endpoint.content_type"),
			Accept:             v.GetString("endpoint.accept"),
			StrictFraming:      v.GetBool("endpoint.strict_framing"),
			CustomAttributes:   v.GetString("endpoint.custom_attributes"),
		},
		Parameters: params,
		Events: EventsConfig{
			Provider: v.GetString("events.provider"),
			Brokers:  SplitList(strings.Join(v.GetStringSlice("events.brokers"), ",")),
			Topic:    v.GetString("events.topic"),
		},
		Log: LogConfig{
			JSON:   v.GetBool("log.json"),
			Pretty: v.GetBool("log.pretty"),
		},
	}, nil
}

// readParameters decodes the [parameters] table of the TOML file at path,
// keeping key case. An empty path yields no parameters.
func readParameters(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}

	var file struct {
		Parameters map[string]any `toml:"parameters"`
	}
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("reading parameters from %s: %w", path, err)
	}
	return file.Parameters, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Endpoint
	v.SetDefault("endpoint.name", d.Endpoint.Name)
	v.SetDefault("endpoint.inference_component", d.Endpoint.InferenceComponent)
	v.SetDefault("endpoint.region", d.Endpoint.Region)
	v.SetDefault("endpoint.codec", d.Endpoint.Codec)
	v.SetDefault("endpoint.content_type", d.Endpoint.ContentType)
	v.SetDefault("endpoint.accept", d.Endpoint.Accept)
	v.SetDefault("endpoint.strict_framing", d.Endpoint.StrictFraming)
	v.SetDefault("endpoint.custom_attributes", d.Endpoint.CustomAttributes)

	// Events
	v.SetDefault("events.provider", d.Events.Provider)
	v.SetDefault("events.brokers", d.Events.Brokers)
	v.SetDefault("events.topic", d.Events.Topic)

	// Log
	v.SetDefault("log.json", d.Log.JSON)
	v.SetDefault("log.pretty", d.Log.Pretty)
}
