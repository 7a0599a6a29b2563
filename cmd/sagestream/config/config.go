// Package configcmder provides the config command for managing persistent
// sagestream configuration stored in the .sagestream/ directory.
package configcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/sagestream/pkg/cliui"
	"github.com/papercomputeco/sagestream/pkg/config"
)

const configLongDesc string = `Manage persistent sagestream configuration.

Configuration is stored as config.toml in the .sagestream/ directory and
provides default values for command flags. CLI flags and SAGESTREAM_*
environment variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  endpoint.name, endpoint.inference_component, endpoint.region,
  endpoint.codec, endpoint.content_type, endpoint.accept,
  endpoint.strict_framing, endpoint.custom_attributes,
  events.provider, events.brokers, events.topic,
  log.json, log.pretty,
  parameters.<name>

Use subcommands to get, set, or list configuration values:
  sagestream config set <key> <value>    Set a configuration value
  sagestream config get <key>            Get a configuration value
  sagestream config list                 List all configuration values

Examples:
  sagestream config set endpoint.name my-endpoint
  sagestream config set parameters.parameters '{"max_new_tokens": 50}'
  sagestream config get endpoint.codec
  sagestream config list`

const configShortDesc string = "Manage persistent sagestream configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func unknownKeyError(key string) error {
	return fmt.Errorf("unknown config key: %q\n\nValid keys: %s, parameters.<name>",
		key, strings.Join(config.ValidConfigKeys(), ", "))
}

func printTarget(w io.Writer, cfger *config.Configer) {
	target := cfger.GetTarget()
	if target != "" {
		fmt.Fprintf(w, "\n  %s %s\n\n",
			cliui.KeyStyle.Render("Config file:"),
			cliui.DimStyle.Render(target),
		)
	} else {
		fmt.Fprintf(w, "\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
	}
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}
