// Package cmd provides the CLI commands for the adminsync console.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/spss-platform/adminsync/internal/adapter/outbound/audit"
	"github.com/spss-platform/adminsync/internal/adapter/outbound/tokenfile"
	"github.com/spss-platform/adminsync/internal/api"
	"github.com/spss-platform/adminsync/internal/config"
	"github.com/spss-platform/adminsync/internal/domain/filter"
	"github.com/spss-platform/adminsync/internal/domain/session"
	"github.com/spss-platform/adminsync/internal/service"
	"github.com/spss-platform/adminsync/internal/telemetry"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "adminsync",
	Short: "adminsync - admin console sync client",
	Long: `adminsync is the command-line client for the store admin backend.

It authenticates an administrator, keeps the domain collections (users,
products, orders, payments, feedback, visit logs) synchronized with the
backend, and submits moderation actions: ban/unban, delete, confirm or
cancel payments.

Quick start:
  1. Point it at the backend: adminsync.yaml with api.base_url
  2. Log in: adminsync login --email you@example.com
  3. Browse: adminsync users list

Configuration:
  Config is loaded from adminsync.yaml in the current directory or
  $HOME/.adminsync/. Environment variables override config values with
  the ADMINSYNC_ prefix, e.g. ADMINSYNC_API_BASE_URL.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./adminsync.yaml)")
}

func initConfig() {
	config.InitViper(cfgFile)
}

// console bundles everything a command needs, plus its teardown.
type console struct {
	*service.Console
	cfg     *config.Config
	cleanup func()
}

// openConsole loads config, builds the API client and stores, resolves any
// persisted session, and returns the assembled console. Commands fetch
// explicitly rather than relying on the reactive refresh, so a one-shot
// invocation touches only the endpoints it needs.
func openConsole(ctx context.Context) (*console, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	shutdownTrace, err := telemetry.Init(cfg.Trace, version)
	if err != nil {
		return nil, err
	}

	tokens := &session.TokenCell{}
	client := api.NewClient(cfg.API.BaseURL, tokens,
		api.WithTimeout(cfg.RequestTimeout()),
		api.WithLogger(logger),
		api.WithMetrics(api.NewMetrics(prometheus.NewRegistry())),
	)

	var auditLog *audit.Store
	if cfg.AuditDB != "" {
		auditLog, err = audit.Open(cfg.AuditDB)
		if err != nil {
			return nil, err
		}
	}

	c := service.New(service.Options{
		Client: client,
		Vault:  tokenfile.New(cfg.TokenFile, logger),
		Tokens: tokens,
		Logger: logger,
		Audit:  auditLog,
	})

	if err := c.Start(ctx); err != nil {
		// A failed resolve is survivable for login; commands that need a
		// session check for themselves.
		logger.Debug("session init", "error", err)
	}

	return &console{
		Console: c,
		cfg:     cfg,
		cleanup: func() {
			c.Close()
			if auditLog != nil {
				_ = auditLog.Close()
			}
			_ = shutdownTrace(context.Background())
		},
	}, nil
}

// requireSession fails fast when no usable credential exists.
func (c *console) requireSession() error {
	if c.Session.Token() == "" {
		return fmt.Errorf("not logged in: run `adminsync login` first")
	}
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// newTable returns a tabwriter for aligned list output.
func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}

// applyFilter narrows items with a CEL expression when one was given.
func applyFilter[T any](expression string, items []T) ([]T, error) {
	if expression == "" {
		return items, nil
	}
	f, err := filter.Compile(expression)
	if err != nil {
		return nil, err
	}
	return filter.Apply(f, items)
}
