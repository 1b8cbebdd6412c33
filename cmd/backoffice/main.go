// backoffice serves the backoffice integration API and administers a
// running instance.
//
// Usage:
//
//	backoffice serve                  Start the HTTP server
//	backoffice health                 Check a running server
//	backoffice reset                  Clear all state on a running server
//	backoffice state export           Print a running server's state as JSON
//	backoffice state load <file>      Replace a running server's state
//	backoffice version                Print the version
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wondertwin-ai/backoffice/internal/api"
	"github.com/wondertwin-ai/backoffice/internal/banking"
	"github.com/wondertwin-ai/backoffice/internal/client"
	"github.com/wondertwin-ai/backoffice/internal/config"
	"github.com/wondertwin-ai/backoffice/internal/email"
	"github.com/wondertwin-ai/backoffice/internal/facade"
	"github.com/wondertwin-ai/backoffice/internal/logging"
	"github.com/wondertwin-ai/backoffice/pkg/server"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// serverURL is the base URL used by the client commands.
var serverURL string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "backoffice",
		Short:        "Backoffice integration API",
		Version:      version,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "backoffice server URL for client commands")

	root.AddCommand(newServeCmd(), healthCmd, resetCmd, newStateCmd(), versionCmd)
	return root
}

func newServeCmd() *cobra.Command {
	var (
		addr          string
		verbose       bool
		logFormat     string
		seedFile      string
		webhookSecret string
		demoSeed      bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server. Settings come from BACKOFFICE_* environment
variables; flags given on the command line take precedence.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Parse()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("addr") {
				cfg.Addr = addr
			}
			if flags.Changed("verbose") {
				cfg.Verbose = verbose
			}
			if flags.Changed("log-format") {
				cfg.LogFormat = logFormat
			}
			if flags.Changed("seed-file") {
				cfg.SeedFile = seedFile
			}
			if flags.Changed("webhook-secret") {
				cfg.WebhookSecret = webhookSecret
			}
			if flags.Changed("banking-demo-seed") {
				cfg.BankingDemoSeed = demoSeed
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	f := cmd.Flags()
	f.StringVar(&addr, "addr", ":8080", "HTTP listen address")
	f.BoolVar(&verbose, "verbose", false, "enable debug logging and request headers in the request log")
	f.StringVar(&logFormat, "log-format", "json", "log format: json or console")
	f.StringVar(&seedFile, "seed-file", "", "YAML or JSON fixture of CRUD resources to load at start")
	f.StringVar(&webhookSecret, "webhook-secret", "", "require signed webhook deliveries with this secret")
	f.BoolVar(&demoSeed, "banking-demo-seed", true, "seed demo bank accounts and transactions")
	return cmd
}

func serve(ctx context.Context, cfg config.Config) error {
	logger, err := logging.New(cfg.LogFormat, cfg.Verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	f := facade.New(facade.Config{
		RealtimeBuffer: cfg.RealtimeBuffer,
		Email:          email.Config{Provider: cfg.EmailProvider, DefaultFrom: cfg.EmailFrom},
		Banking:        banking.Config{DemoSeed: cfg.BankingDemoSeed},
	}, logger.Named("facade"))
	defer f.Close()

	if cfg.SeedFile != "" {
		seed, err := config.LoadSeed(cfg.SeedFile)
		if err != nil {
			return err
		}
		if err := f.Seed(seed.Resources); err != nil {
			return fmt.Errorf("applying seed: %w", err)
		}
	}

	srv := server.New(server.Config{
		Addr:         cfg.Addr,
		Verbose:      cfg.Verbose,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		MaxBodyBytes: cfg.MaxBodyBytes,
	}, logger.Named("http"))
	api.Mount(srv, f, api.Options{
		WebhookSecret:    cfg.WebhookSecret,
		ErrorReportRate:  cfg.ErrorReportRate,
		ErrorReportBurst: cfg.ErrorReportBurst,
	})

	logger.Info("backoffice configured",
		zap.String("version", version),
		zap.Bool("banking_demo_seed", cfg.BankingDemoSeed),
		zap.Bool("webhook_signatures", cfg.WebhookSecret != ""),
		zap.Int("realtime_buffer", cfg.RealtimeBuffer),
	)
	return srv.Serve(ctx)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check a running server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := client.New(serverURL).Health(cmd.Context())
		if err != nil {
			return fmt.Errorf("health check failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", h.Status, strings.Join(h.Services, ", "))
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear all state on a running server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := client.New(serverURL).Reset(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "reset")
		return nil
	},
}

func newStateCmd() *cobra.Command {
	state := &cobra.Command{
		Use:   "state",
		Short: "Export or load a running server's state",
	}
	state.AddCommand(
		&cobra.Command{
			Use:   "export",
			Short: "Print the server state as JSON",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return client.New(serverURL).ExportState(cmd.Context(), cmd.OutOrStdout())
			},
		},
		&cobra.Command{
			Use:   "load <file>",
			Short: "Replace the server state with a JSON file produced by export",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := client.New(serverURL).LoadState(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "loaded")
				return nil
			},
		},
	)
	return state
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}
