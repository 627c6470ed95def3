package cli

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/specialistvlad/reactidoc/internal/app"
	"github.com/spf13/cobra"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Command names.
const (
	CommandRender   = "render"
	CommandVariants = "variants"
	CommandLink     = "link"
)

// Runner executes a command once its flags are parsed into a validated
// configuration.
type Runner func(ctx context.Context, command string, cfg *app.Config) error

// flags collects the raw flag values shared by all commands.
type flags struct {
	logFormat string
	logLevel  string
	variant   int
	seed      string
	digits    int

	display      bool
	includeStale bool
	actions      string

	count   int
	workers int

	host           string
	namespace      string
	insecure       bool
	connectTimeout time.Duration
	healthPort     int
}

// NewRootCommand builds the reactidoc command tree. Usage and help go to
// outW, errors are returned to the caller.
func NewRootCommand(outW io.Writer, run Runner) *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:           "reactidoc",
		Short:         "Resolve interactive, parameterized documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(outW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: 2, Message: err.Error()}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&f.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	pf.StringVar(&f.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	pf.IntVar(&f.variant, "variant", 0, "Variant index, overriding the document's variant block.")
	pf.StringVar(&f.seed, "seed", "", "Variant seed, overriding the document's variant block.")
	pf.IntVar(&f.digits, "display-digits", 10, "Significant digits of displayed numbers.")

	render := &cobra.Command{
		Use:   "render DOCUMENT...",
		Short: "Resolve one variant and print its state as YAML",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return f.execute(cmd, CommandRender, args, run)
		},
	}
	render.Flags().BoolVar(&f.display, "display", false, "Format values for display.")
	render.Flags().BoolVar(&f.includeStale, "include-stale", false, "Print memoized values, including hidden instances, without resolving.")
	render.Flags().StringVarP(&f.actions, "actions", "a", "", "YAML script of actions applied before printing.")

	variants := &cobra.Command{
		Use:   "variants DOCUMENT...",
		Short: "Resolve consecutive variants concurrently and print their random selections",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return f.execute(cmd, CommandVariants, args, run)
		},
	}
	variants.Flags().IntVarP(&f.count, "count", "n", 10, "Number of variants to render.")
	variants.Flags().IntVar(&f.workers, "workers", 4, "Number of variants rendered at the same time.")

	link := &cobra.Command{
		Use:   "link DOCUMENT...",
		Short: "Serve one variant to a socket.io host until interrupted",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return f.execute(cmd, CommandLink, args, run)
		},
	}
	link.Flags().StringVar(&f.host, "host", "", "URL of the socket.io host.")
	link.Flags().StringVar(&f.namespace, "namespace", "/", "socket.io namespace to join.")
	link.Flags().BoolVar(&f.insecure, "insecure-skip-verify", false, "Skip TLS certificate verification.")
	link.Flags().DurationVar(&f.connectTimeout, "connect-timeout", 15*time.Second, "How long to wait for the host.")
	link.Flags().IntVar(&f.healthPort, "healthcheck-port", 0, "Port for the health and metrics server. 0 is disabled.")
	_ = link.MarkFlagRequired("host")

	root.AddCommand(render, variants, link)
	return root
}

func (f *flags) execute(cmd *cobra.Command, command string, args []string, run Runner) error {
	cfg, err := app.NewConfig(app.Config{
		DocumentPaths:      args,
		LogFormat:          strings.ToLower(f.logFormat),
		LogLevel:           strings.ToLower(f.logLevel),
		OverrideVariant:    cmd.Flags().Changed("variant"),
		Variant:            f.variant,
		Seed:               f.seed,
		DisplayDigits:      f.digits,
		ForDisplay:         f.display,
		IncludeStale:       f.includeStale,
		ActionsPath:        f.actions,
		Variants:           f.count,
		Workers:            f.workers,
		HostURL:            f.host,
		Namespace:          f.namespace,
		InsecureSkipVerify: f.insecure,
		ConnectTimeout:     f.connectTimeout,
		HealthcheckPort:    f.healthPort,
	})
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}
	return run(cmd.Context(), command, cfg)
}
