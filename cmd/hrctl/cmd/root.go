package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	hrportal "github.com/MrEthical07/hrportal"
	"github.com/MrEthical07/hrportal/internal/logging"
	"github.com/MrEthical07/hrportal/session"
	"github.com/caarlos0/env/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	serverURL string
	storeDir  string
	logLevel  string
	logFormat string
)

type appKey struct{}

// active is closed by Execute whether or not the command failed.
var active *app

// app is the per-invocation state shared by subcommands.
type app struct {
	portal *hrportal.Portal
	store  *session.FileStore
	logger *zap.Logger
}

func fromContext(ctx context.Context) *app {
	a, ok := ctx.Value(appKey{}).(*app)
	if !ok {
		panic("hrctl: portal not found in context - this is a bug in hrctl")
	}
	return a
}

var rootCmd = &cobra.Command{
	Use:   "hrctl",
	Short: "HR portal command-line client",
	Long: `hrctl signs in to the HR backend, keeps the session in a local credential
file and issues authenticated calls through the same gateway the web shell uses.

Configuration comes from HRPORTAL_* environment variables; --server overrides
HRPORTAL_API_BASE_URL.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		active = a
		cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, a))
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.ExecuteContext(context.Background())
	if active != nil {
		active.portal.Close()
		_ = active.logger.Sync()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, hrportal.ErrorMessage(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "HR API base URL (overrides HRPORTAL_API_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&storeDir, "store-dir", "", "credential directory (default ~/.hrportal)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log encoding: console or json")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(exportCmd)
}

func newApp(cmd *cobra.Command) (*app, error) {
	var logCfg logging.LoggerConfig
	if err := env.ParseWithOptions(&logCfg, env.Options{Prefix: "HRCTL_"}); err != nil {
		return nil, fmt.Errorf("parse logging environment: %w", err)
	}
	if logLevel != "" {
		logCfg.Level = logLevel
	}
	if logFormat != "" {
		logCfg.Encoding = logFormat
	}
	logger := logging.New(logCfg)

	environ := environMap()
	if serverURL != "" {
		environ[hrportal.EnvPrefix+"API_BASE_URL"] = serverURL
	}
	cfg, err := hrportal.ConfigFromMap(environ)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	for _, w := range cfg.Lint() {
		logger.Debug("configuration warning", zap.String("code", w.Code), zap.String("message", w.Message))
	}

	var store *session.FileStore
	if storeDir != "" {
		store, err = session.NewFileStore(storeDir)
	} else {
		store, err = session.DefaultFileStore()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create credential store: %w", err)
	}

	portal, err := hrportal.New().
		WithConfig(cfg).
		WithCredentialStore(store).
		WithLogger(logger).
		WithAuditSink(hrportal.NewZapSink(logger)).
		Build()
	if err != nil {
		return nil, err
	}

	return &app{portal: portal, store: store, logger: logger}, nil
}

func environMap() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			out[k] = v
		}
	}
	return out
}

func requireSession(a *app) (*session.Session, error) {
	s, ok := a.portal.CurrentSession()
	if !ok {
		return nil, fmt.Errorf("not logged in (run hrctl login)")
	}
	return s, nil
}
