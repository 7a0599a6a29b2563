// Package streamcmder provides the stream command, which prints an
// endpoint's answer fragment by fragment as it is generated.
package streamcmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/sagestream/cmd/sagestream/runner"
	"github.com/papercomputeco/sagestream/pkg/cliui"
)

type streamCommander struct {
	opts    *runner.Options
	summary bool
}

const streamLongDesc string = `Invoke an endpoint with a streamed response and print each fragment
as soon as it is decoded.

The endpoint must emit newline-delimited records, for example a Text
Generation Inference container with "stream": true. Choose the codec that
matches the record shape: "tgi" for {"outputs": [...]} records, "token"
for {"token": {"text": ...}} records.

Interrupting the command (Ctrl-C) closes the stream.

Examples:
  sagestream stream -e my-endpoint -c tgi -p stream=true "What is Sagemaker endpoints?"
  sagestream stream -e my-endpoint -i my-inference-component -c token "Hello"`

const streamShortDesc string = "Stream an endpoint's answer as it is generated"

func NewStreamCmd() *cobra.Command {
	return newStreamCmd(nil)
}

func newStreamCmd(newTransport runner.TransportFactory) *cobra.Command {
	cmder := &streamCommander{
		opts: runner.NewOptions(newTransport),
	}

	cmd := &cobra.Command{
		Use:   "stream [prompt]",
		Short: streamShortDesc,
		Long:  streamLongDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args)
		},
	}

	cmder.opts.AddFlags(cmd)
	cmd.Flags().BoolVar(&cmder.summary, "summary", false,
		"Print record and chunk counts to stderr when the stream ends (default when stderr is a terminal)")

	return cmd
}

func (c *streamCommander) run(cmd *cobra.Command, args []string) error {
	prompt, err := runner.ReadPrompt(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	r, err := c.opts.Setup(cmd)
	if err != nil {
		return err
	}
	defer r.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	startedAt := time.Now()

	var (
		answer    strings.Builder
		streamErr error
	)
	for fragment, err := range r.Invoker.Stream(ctx, prompt, r.Params) {
		if err != nil {
			streamErr = err
			break
		}
		answer.WriteString(fragment)
		fmt.Fprint(out, fragment)
	}
	fmt.Fprintln(out)

	if stats, ok := r.LastStats(); ok && (c.summary || runner.IsTerminal(cmd.ErrOrStderr())) {
		fmt.Fprintln(cmd.ErrOrStderr(), cliui.StreamSummary{
			Endpoint:  r.Invoker.Identity().Name,
			Records:   stats.Records,
			Chunks:    stats.Chunks,
			Bytes:     stats.Bytes,
			Discarded: stats.Discarded,
			Elapsed:   time.Since(startedAt),
			Err:       streamErr,
		}.Render())
	}

	// Publish even when interrupted; the command context may be done.
	r.Record(context.WithoutCancel(ctx), prompt, answer.String(), true, startedAt, streamErr)

	return streamErr
}
