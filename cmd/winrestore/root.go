package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/1broseidon/winrestore/internal/config"
	"github.com/1broseidon/winrestore/internal/daemon"
	"github.com/1broseidon/winrestore/internal/enforcer"
	"github.com/1broseidon/winrestore/internal/geometry"
	"github.com/1broseidon/winrestore/internal/locator"
	"github.com/1broseidon/winrestore/internal/platform"
	"github.com/1broseidon/winrestore/internal/tui"
)

// Swapped out in tests.
var (
	newBackend        = platform.New
	startQuitListener = tui.StartQuitListener
)

type rootOptions struct {
	configPath string
	logFile    string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "winrestore",
		Short: "Restore windows to where you left them",
		Long: "winrestore tracks the windows listed in an INI file by title, records where\n" +
			"they are and moves them back to that position whenever they reappear.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTracker(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default: config.ini in the working directory)")
	cmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", `Log file path, "-" for stderr (default: state dir)`)
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	cmd.AddCommand(newWindowsCmd(opts))
	cmd.AddCommand(newCheckCmd(opts))
	return cmd
}

func (o *rootOptions) loadConfig() (*config.Store, error) {
	path := o.configPath
	if path == "" {
		var err error
		if path, err = config.DefaultConfigPath(); err != nil {
			return nil, err
		}
	}
	return config.LoadFromPath(path)
}

func runTracker(cmd *cobra.Command, opts *rootOptions) error {
	logger, closeLog, err := setupLogging(opts.logFile, opts.logLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := opts.loadConfig()
	if err != nil {
		return err
	}
	cfg := store.Config()

	backend, err := newBackend()
	if err != nil {
		return fmt.Errorf("failed to connect to window system: %w", err)
	}
	defer backend.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	restoreTerminal, err := startQuitListener(ctx, cancel, logger)
	if err != nil {
		return err
	}

	screen := tui.NewScreen(cmd.OutOrStdout(), store.Path())
	validator := geometry.NewValidator(backend, logger)
	reconciler := daemon.NewReconciler(
		daemon.ReconcilerConfig{
			Settings: cfg.Settings,
			Logger:   logger,
			Observer: screen,
		},
		cfg.Windows,
		locator.New(backend, cfg.Settings.LiteralMatch, logger),
		backend,
		enforcer.New(backend, validator, logger),
		validator,
		store,
	)

	logger.Info("winrestore started", "config", store.Path(), "windows", len(cfg.Windows))

	runErr := reconciler.Run(ctx)

	restoreTerminal()
	screen.Close()

	if runErr != nil {
		logger.Error("winrestore stopped with error", "error", runErr)
		return runErr
	}
	logger.Info("winrestore stopped")
	return nil
}
