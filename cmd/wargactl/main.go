package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"warga/internal/cli"
	"warga/internal/config"
	"warga/internal/log"
	"warga/internal/services"
)

var (
	version = "dev"

	// openApp is replaced in tests.
	openApp = cli.OpenApp

	app     *services.App
	logger  *log.Logger
	cleanup func() error
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "wargactl",
		Short: "Administrasi RT: warga, iuran, dan kas",
		Long: `wargactl manages the resident registry, RT/PKK dues and the cash book
of a neighborhood association over the same store as the warga server.`,
		Version:            version,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  openStore,
		PersistentPostRunE: closeStore,
	}
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error); overrides LOG_LEVEL")
	root.PersistentFlags().String("log-format", "", "log format (text, json); overrides LOG_FORMAT")

	root.AddCommand(
		loginCmd(),
		logoutCmd(),
		whoamiCmd(),
		residentsCmd(),
		householdsCmd(),
		arrearsCmd(),
		payCmd(),
		historyCmd(),
		ratesCmd(),
		cashCmd(expenseBook),
		cashCmd(incomeBook),
		recapCmd(),
		exportCmd(),
		publishCmd(),
		listsCmd(),
		seedCmd(),
	)
	return root
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func openStore(cmd *cobra.Command, _ []string) error {
	cli.LoadEnvFile()
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	applyLogFlags(cmd, cfg)
	logger = cli.SetupLogger(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr()).WithComponent(log.ComponentCLI)

	a, c, err := openApp(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	app, cleanup = a, c
	return nil
}

func closeStore(_ *cobra.Command, _ []string) error {
	if cleanup == nil {
		return nil
	}
	err := cleanup()
	cleanup = nil
	if err != nil {
		logger.Error("Failed to close store", log.FieldError, err)
	}
	return err
}

func applyLogFlags(cmd *cobra.Command, cfg *config.Config) {
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v, _ := cmd.Flags().GetString("log-format"); v != "" {
		cfg.LogFormat = v
	}
}
