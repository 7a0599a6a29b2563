// Package invokecmder provides the invoke command for blocking endpoint
// invocations.
package invokecmder

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/sagestream/cmd/sagestream/runner"
	"github.com/papercomputeco/sagestream/pkg/cliui"
)

type invokeCommander struct {
	opts     *runner.Options
	markdown bool
}

const invokeLongDesc string = `Invoke an endpoint and print the complete answer.

The prompt is taken from the arguments, or read from stdin when no
arguments are given. Endpoint settings come from flags, SAGESTREAM_*
environment variables, and config.toml, in that order of precedence.

Examples:
  sagestream invoke -e my-endpoint -c raw "What is Sagemaker endpoints?"
  sagestream invoke -e my-endpoint -p parameters.max_new_tokens=50 "Hello"
  echo "Summarize this" | sagestream invoke --markdown`

const invokeShortDesc string = "Invoke an endpoint and print the answer"

func NewInvokeCmd() *cobra.Command {
	return newInvokeCmd(nil)
}

func newInvokeCmd(newTransport runner.TransportFactory) *cobra.Command {
	cmder := &invokeCommander{
		opts: runner.NewOptions(newTransport),
	}

	cmd := &cobra.Command{
		Use:   "invoke [prompt]",
		Short: invokeShortDesc,
		Long:  invokeLongDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args)
		},
	}

	cmder.opts.AddFlags(cmd)
	cmd.Flags().BoolVar(&cmder.markdown, "markdown", false, "Render the answer as markdown")

	return cmd
}

func (c *invokeCommander) run(cmd *cobra.Command, args []string) error {
	prompt, err := runner.ReadPrompt(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	r, err := c.opts.Setup(cmd)
	if err != nil {
		return err
	}
	defer r.Close()

	ctx := cmd.Context()
	startedAt := time.Now()

	var answer string
	call := func() error {
		var err error
		answer, err = r.Invoker.Invoke(ctx, prompt, r.Params)
		return err
	}

	out := cmd.OutOrStdout()
	if runner.IsTerminal(out) {
		msg := fmt.Sprintf("Invoking %s", cliui.KeyStyle.Render(r.Invoker.Identity().Name))
		err = cliui.Step(cmd.ErrOrStderr(), msg, call)
	} else {
		err = call()
	}

	r.Record(ctx, prompt, answer, false, startedAt, err)
	if err != nil {
		return err
	}

	if c.markdown {
		rendered, err := cliui.RenderMarkdown(answer)
		if err != nil {
			r.Logger.Debug("rendering markdown", "error", err)
		}
		answer = rendered
	}

	fmt.Fprintln(out, answer)
	return nil
}
