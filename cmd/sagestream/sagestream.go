// Package sagestreamcmder
package sagestreamcmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/papercomputeco/sagestream/cmd/sagestream/config"
	invokecmder "github.com/papercomputeco/sagestream/cmd/sagestream/invoke"
	streamcmder "github.com/papercomputeco/sagestream/cmd/sagestream/stream"
	versioncmder "github.com/papercomputeco/sagestream/cmd/version"
)

const sagestreamLongDesc string = `sagestream calls SageMaker real-time inference endpoints, either as a
single blocking request or as a stream of decoded fragments.

Call an endpoint using:
  sagestream invoke    Print the complete answer
  sagestream stream    Print the answer as it is generated
  sagestream config    Manage defaults in .sagestream/config.toml`

const sagestreamShortDesc string = "sagestream - SageMaker endpoint client"

func NewSagestreamCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "sagestream",
		Short:        sagestreamShortDesc,
		Long:         sagestreamLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .sagestream/ config directory")
	cmd.PersistentFlags().Bool("json-logs", false, "Write logs as JSON")
	cmd.PersistentFlags().String("log-file", "", "Also append JSON logs to this file")

	// Add subcommands
	cmd.AddCommand(invokecmder.NewInvokeCmd())
	cmd.AddCommand(streamcmder.NewStreamCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
