package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"loginetl/internal/config"
	"loginetl/internal/constants"
	"loginetl/internal/logger"
	"loginetl/pkg/errors"
	"loginetl/pkg/health"
	"loginetl/pkg/logging"
)

func main() {
	os.Exit(execute(os.Args[1:]))
}

// execute runs the command line and maps the outcome to a process exit code.
func execute(args []string) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	return errors.ToExitCode(rootCmd.Execute())
}

type options struct {
	configFile string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           constants.ServiceName,
		Short:         "Batch ETL for login events",
		Long:          "Pulls one batch of login events from an SQS queue, hashes the IP address and device id, and inserts the rows into user_logins",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Path to config file (or CONFIG_FILE)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		logging.NewEarlyLog().Error("%v", err)
		return err
	})

	run := runCmd(opts)
	rootCmd.RunE = run.RunE
	addQueueFlags(rootCmd.Flags())

	rootCmd.AddCommand(run, migrateCmd(opts), checkCmd(opts))
	return rootCmd
}

func addQueueFlags(fs *pflag.FlagSet) {
	fs.StringP("endpoint-url", "e", "", "Queue endpoint URL, e.g. http://localhost:4566/000000000000")
	fs.StringP("queue-name", "q", "", "Queue name")
	fs.IntP("wait-time", "t", constants.DefaultWaitTimeSeconds, "Long-poll wait time in seconds")
	fs.IntP("max-messages", "m", constants.DefaultMaxMessages, "Maximum number of messages to receive")
}

func runCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process one batch from the queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd, opts, config.Load)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			app := NewApp(cfg, log)
			defer shutdown(ctx, app, log)

			if err := app.Initialize(ctx); err != nil {
				log.ErrorwCtx(ctx, "Failed to initialize application", errors.ToErrorFields(err)...)
				return err
			}

			_, err = app.RunPipeline(ctx)
			return err
		},
	}
	addQueueFlags(cmd.Flags())
	return cmd
}

func migrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the user_logins table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd, opts, config.LoadDatabaseOnly)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			version, err := NewApp(cfg, log).Migrate(ctx)
			if err != nil {
				log.ErrorwCtx(ctx, "Migration failed", errors.ToErrorFields(err)...)
				return err
			}
			log.InfowCtx(ctx, "Migrations applied", "version", version, "driver", cfg.Database.Driver)
			return nil
		},
	}
}

func checkCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify that the queue and the database are reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd, opts, config.Load)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			app := NewApp(cfg, log)
			defer shutdown(ctx, app, log)

			h, err := app.Check(ctx)
			if err != nil {
				log.ErrorwCtx(ctx, "Preflight could not start", errors.ToErrorFields(err)...)
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(h); err != nil {
				return fmt.Errorf("failed to write health report: %w", err)
			}

			if h.Status != health.StatusHealthy {
				return errors.ErrConfig.WithMessage("preflight check failed")
			}
			return nil
		},
	}
	addQueueFlags(cmd.Flags())
	return cmd
}

type loadFunc func(configFile string, flags *pflag.FlagSet) (*config.Config, error)

// setup resolves the config file, loads it once and builds the logger.
func setup(cmd *cobra.Command, opts *options, load loadFunc) (*config.Config, logger.Logger, error) {
	earlyLog := logging.NewEarlyLog()

	configFile := opts.configFile
	if configFile == "" {
		configFile = os.Getenv("CONFIG_FILE")
		if configFile == "" {
			earlyLog.Error("Config file is required. Use --config flag or CONFIG_FILE environment variable")
			return nil, nil, errors.ErrConfig.WithMessage("config file is required")
		}
	}

	cfg, err := load(configFile, cmd.Flags())
	if err != nil {
		earlyLog.Error("Failed to load config: %v", err)
		return nil, nil, errors.ErrConfig.WithCause(err)
	}

	log, err := logger.New(cfg.Logging.Level)
	if err != nil {
		earlyLog.Error("Failed to init logger: %v", err)
		return nil, nil, err
	}
	if sugared, ok := log.(*logger.SugaredLogger); ok {
		sugared.SetServiceName(constants.ServiceName)
	}

	return cfg, log, nil
}

func shutdown(ctx context.Context, app *App, log logger.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.ShutdownTimeout)
	defer cancel()

	if err := app.Shutdown(shutdownCtx); err != nil {
		log.WarnwCtx(shutdownCtx, "Shutdown finished with errors", "error", err)
	}
}
