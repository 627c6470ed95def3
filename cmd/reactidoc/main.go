package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/specialistvlad/reactidoc/internal/app"
	"github.com/specialistvlad/reactidoc/internal/cli"
	"github.com/specialistvlad/reactidoc/internal/hcldoc"
)

// main is the entrypoint for the reactidoc application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()
	if err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW, logW io.Writer, args []string) error {
	root := cli.NewRootCommand(outW, func(ctx context.Context, command string, cfg *app.Config) error {
		a, err := app.NewApp(outW, logW, cfg, hcldoc.NewLoader())
		if err != nil {
			return err
		}
		switch command {
		case cli.CommandRender:
			return a.Render(ctx)
		case cli.CommandVariants:
			return a.RenderVariants(ctx)
		case cli.CommandLink:
			return a.Link(ctx)
		}
		return fmt.Errorf("unknown command '%s'", command)
	})
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
