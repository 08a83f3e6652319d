package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/erpclean/erpclean-go/internal/app"
	"github.com/erpclean/erpclean-go/internal/config"
	"github.com/erpclean/erpclean-go/internal/logger"
	"github.com/erpclean/erpclean-go/pkg/erpclean"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	envFlag   string
	debugFlag bool
)

var rootCmd = &cobra.Command{
	Use:           "erpclean",
	Short:         "Command line client for the ERPClean Easy API",
	Long:          "Runs ERPClean Easy API operations using tokens and environment from configs/.env or ERPCLEAN_* variables.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFlag, "env", "", "environment override (production, local, sandbox, dusk or 1-4)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "attach transport diagnostics to responses")

	rootCmd.AddCommand(operationsCmd)
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(cnpjCmd)
	rootCmd.AddCommand(logoCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := run(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "erpclean: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if fi, err := os.Stdout.Stat(); err != nil || fi.Mode()&os.ModeCharDevice == 0 {
		color.NoColor = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

// withRunner loads config, applies the global flags, and hands a ready
// runner to fn. Everything is released when fn returns.
func withRunner(fn func(r *app.Runner) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if envFlag != "" {
		env, err := erpclean.ParseEnvironment(envFlag)
		if err != nil {
			return fmt.Errorf("--env: %w", err)
		}
		cfg.EnvironmentRaw = envFlag
		cfg.Environment = env
	}
	if debugFlag {
		cfg.Debug = true
		cfg.LogLevel = "debug"
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.DebugObj("erpclean starting", "config", cfg)

	runner, err := app.NewRunner(cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize runner", "error", err.Error())
		return err
	}
	defer func() {
		if err := runner.Close(); err != nil {
			logger.ErrorObj("runner close failed", "error", err.Error())
		}
	}()

	return fn(runner)
}
