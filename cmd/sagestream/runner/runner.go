// Package runner holds the setup shared by the commands that call an
// endpoint: flag registration, config resolution, logging, transport and
// invocation event publishing.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/sagestream/pkg/codec"
	"github.com/papercomputeco/sagestream/pkg/config"
	"github.com/papercomputeco/sagestream/pkg/endpoint"
	"github.com/papercomputeco/sagestream/pkg/eventstream"
	"github.com/papercomputeco/sagestream/pkg/eventstream/kafka"
	"github.com/papercomputeco/sagestream/pkg/eventstream/nop"
	"github.com/papercomputeco/sagestream/pkg/logger"
	"github.com/papercomputeco/sagestream/pkg/sagemaker"
	"github.com/papercomputeco/sagestream/pkg/utils"
)

// ErrNoPrompt is returned when neither arguments nor stdin carry a prompt.
var ErrNoPrompt = errors.New("no prompt given: pass it as arguments or on stdin")

// TransportFactory builds the transport for the resolved endpoint config.
type TransportFactory func(ctx context.Context, cfg config.EndpointConfig, log *slog.Logger) (endpoint.Transport, error)

// SageMakerTransport is the default TransportFactory.
func SageMakerTransport(ctx context.Context, cfg config.EndpointConfig, log *slog.Logger) (endpoint.Transport, error) {
	return sagemaker.NewFromRegion(ctx, cfg.Region,
		sagemaker.WithLogger(log),
		sagemaker.WithCustomAttributes(cfg.CustomAttributes),
	)
}

// Options are the flag values shared by invocation commands.
type Options struct {
	endpoint           string
	inferenceComponent string
	region             string
	codec              string
	contentType        string
	accept             string
	strictFraming      bool
	eventsProvider     string
	eventsTopic        string
	params             []string

	newTransport TransportFactory
}

// NewOptions creates Options using newTransport, or the SageMaker transport
// when nil.
func NewOptions(newTransport TransportFactory) *Options {
	if newTransport == nil {
		newTransport = SageMakerTransport
	}
	return &Options{newTransport: newTransport}
}

// AddFlags registers the invocation flags on cmd.
func (o *Options) AddFlags(cmd *cobra.Command) {
	config.AddStringFlag(cmd, invocationFlags, config.FlagEndpoint, &o.endpoint)
	config.AddStringFlag(cmd, invocationFlags, config.FlagInferenceComponent, &o.inferenceComponent)
	config.AddStringFlag(cmd, invocationFlags, config.FlagRegion, &o.region)
	config.AddStringFlag(cmd, invocationFlags, config.FlagCodec, &o.codec)
	config.AddStringFlag(cmd, invocationFlags, config.FlagContentType, &o.contentType)
	config.AddStringFlag(cmd, invocationFlags, config.FlagAccept, &o.accept)
	config.AddBoolFlag(cmd, invocationFlags, config.FlagStrictFraming, &o.strictFraming)
	config.AddStringFlag(cmd, invocationFlags, config.FlagEventsProvider, &o.eventsProvider)
	config.AddStringFlag(cmd, invocationFlags, config.FlagEventsTopic, &o.eventsTopic)

	cmd.Flags().StringArrayVarP(&o.params, "param", "p", nil,
		"Model parameter as key=value; dotted keys nest, values are JSON when valid (repeatable)")
}

// Runner is a resolved invocation environment for one command run.
type Runner struct {
	Config    *config.Config
	Invoker   *endpoint.Invoker
	Params    codec.Params
	Logger    *slog.Logger
	Publisher eventstream.Publisher

	lastStats *endpoint.StreamStats
	closers   []io.Closer
}

// Setup resolves configuration for cmd (flags > env > config file >
// defaults) and builds the invoker and event publisher.
func (o *Options) Setup(cmd *cobra.Command) (*Runner, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, err
	}
	config.BindRegisteredFlags(v, cmd, invocationFlags, config.InvocationFlags)
	cfg, err := config.FromViper(v)
	if err != nil {
		return nil, err
	}

	r := &Runner{Config: cfg}

	r.Logger, err = r.newLogger(cmd)
	if err != nil {
		r.Close()
		return nil, err
	}

	r.Params, err = o.resolveParams(cfg.Parameters)
	if err != nil {
		r.Close()
		return nil, err
	}

	c, err := codec.Lookup(cfg.Endpoint.Codec)
	if err != nil {
		r.Close()
		return nil, err
	}
	c = codec.WithContentType(c, cfg.Endpoint.ContentType)

	transport, err := o.newTransport(cmd.Context(), cfg.Endpoint, r.Logger)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("creating transport: %w", err)
	}

	invOpts := []endpoint.Option{
		endpoint.WithLogger(r.Logger),
		endpoint.WithStreamObserver(func(s endpoint.StreamStats) { r.lastStats = &s }),
	}
	if cfg.Endpoint.StrictFraming {
		invOpts = append(invOpts, endpoint.WithStrictFraming())
	}

	r.Invoker, err = endpoint.New(endpoint.Identity{
		Name:               cfg.Endpoint.Name,
		InferenceComponent: cfg.Endpoint.InferenceComponent,
		Accept:             cfg.Endpoint.Accept,
		ContentType:        cfg.Endpoint.ContentType,
	}, c, transport, invOpts...)
	if err != nil {
		r.Close()
		return nil, err
	}

	r.Publisher, err = newPublisher(cfg.Events)
	if err != nil {
		r.Close()
		return nil, err
	}
	r.closers = append(r.closers, r.Publisher)

	r.Logger.Debug("resolved invocation config",
		"endpoint", cfg.Endpoint.Name,
		"inference_component", cfg.Endpoint.InferenceComponent,
		"region", cfg.Endpoint.Region,
		"codec", cfg.Endpoint.Codec,
		"events_provider", cfg.Events.Provider,
	)

	return r, nil
}

// resolveParams layers --param values over the configured parameters.
func (o *Options) resolveParams(base map[string]any) (codec.Params, error) {
	params := codec.Params(maps.Clone(base))
	if params == nil {
		params = codec.Params{}
	}

	for _, kv := range o.params {
		key, value, err := config.ParseParam(kv)
		if err != nil {
			return nil, err
		}
		config.SetParam(params, key, value)
	}
	return params, nil
}

// newLogger writes to stderr so stdout carries only model output. --json-logs
// or log.json select JSON, log.pretty or a terminal select charm output, and
// --log-file adds a JSON copy of every record.
func (r *Runner) newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	debug, _ := cmd.Flags().GetBool("debug")
	jsonLogs, _ := cmd.Flags().GetBool("json-logs")
	logFile, _ := cmd.Flags().GetString("log-file")

	stderr := cmd.ErrOrStderr()
	pretty := r.Config.Log.Pretty || IsTerminal(stderr)
	jsonLogs = jsonLogs || r.Config.Log.JSON

	console := logger.New(
		logger.WithWriter(stderr),
		logger.WithDebug(debug),
		logger.WithJSON(jsonLogs),
		logger.WithPretty(pretty && !jsonLogs),
	)
	if logFile == "" {
		return console, nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	r.closers = append(r.closers, f)

	file := logger.New(
		logger.WithWriter(f),
		logger.WithDebug(true),
		logger.WithJSON(true),
	)
	return logger.Multi(console, file), nil
}

func newPublisher(cfg config.EventsConfig) (eventstream.Publisher, error) {
	switch cfg.Provider {
	case "", config.EventsProviderNone:
		return nop.NewPublisher(), nil
	case config.EventsProviderKafka:
		p, err := kafka.NewPublisher(kafka.Config{
			Brokers: cfg.Brokers,
			Topic:   cfg.Topic,
		})
		if err != nil {
			return nil, fmt.Errorf("creating kafka publisher: %w", err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown events provider %q (available: %s)",
			cfg.Provider, strings.Join(config.EventsProviders(), ", "))
	}
}

// Record publishes the invocation event for one finished call. Publishing
// failures are logged and never fail the command.
func (r *Runner) Record(ctx context.Context, prompt, response string, streaming bool, startedAt time.Time, callErr error) {
	event := eventstream.NewInvocationEvent(eventstream.EventEndpoint{
		Name:               r.Config.Endpoint.Name,
		InferenceComponent: r.Config.Endpoint.InferenceComponent,
		Region:             r.Config.Endpoint.Region,
		Codec:              r.Config.Endpoint.Codec,
	}, startedAt, streaming)

	event.Prompt = prompt
	event.Parameters = r.Params
	event.Response = response
	if callErr != nil {
		event.Error = callErr.Error()
	}
	if streaming && r.lastStats != nil {
		event.Stream = &eventstream.StreamMeta{
			Chunks:    r.lastStats.Chunks,
			Bytes:     r.lastStats.Bytes,
			Records:   r.lastStats.Records,
			Discarded: r.lastStats.Discarded,
		}
	}

	if err := r.Publisher.PublishInvocation(ctx, event); err != nil {
		r.Logger.Warn("publishing invocation event",
			"event_id", event.EventID,
			"prompt", utils.Truncate(prompt, 64),
			"error", err,
		)
	}
}

// LastStats returns the statistics of the most recent stream, if any.
func (r *Runner) LastStats() (endpoint.StreamStats, bool) {
	if r.lastStats == nil {
		return endpoint.StreamStats{}, false
	}
	return *r.lastStats, true
}

// Close releases the publisher and any log file.
func (r *Runner) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		errs = append(errs, r.closers[i].Close())
	}
	r.closers = nil
	return errors.Join(errs...)
}

// ReadPrompt joins args into the prompt, or reads it from in when no args
// were given.
func ReadPrompt(args []string, in io.Reader) (string, error) {
	if len(args) > 0 {
		prompt := strings.TrimSpace(strings.Join(args, " "))
		if prompt == "" {
			return "", ErrNoPrompt
		}
		return prompt, nil
	}

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "", ErrNoPrompt
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("reading prompt from stdin: %w", err)
	}

	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", ErrNoPrompt
	}
	return prompt, nil
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
