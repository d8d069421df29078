package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newLogger(debug bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if debug {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}

func rootCmd() *cobra.Command {
	cfg := Config{}
	var debug bool

	cmd := &cobra.Command{
		Use:          "imcounter",
		Short:        "Serve a counter with increase, decrease and reset buttons",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(debug)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			srv, err := newServer(cfg, counter{}, counterApp, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.run(ctx)
		},
	}

	cmd.Flags().StringVar(&cfg.Addr, "addr", ":4040", "address to listen on")
	cmd.Flags().IntVar(&cfg.FPS, "fps", 20, "frames per second sent to each browser")
	cmd.Flags().StringVar(&cfg.Title, "title", "Counter", "page title")
	cmd.Flags().BoolVar(&debug, "debug", false, "log at debug level")
	return cmd
}

func main() {
	if err := rootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
