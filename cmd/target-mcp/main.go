package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hyp3rd/ewrap"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironsheep/target-tools-mcp/internal/config"
	"github.com/ironsheep/target-tools-mcp/internal/logging"
	"github.com/ironsheep/target-tools-mcp/internal/metrics"
	"github.com/ironsheep/target-tools-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const (
	metricsReadHeaderTimeout = 5 * time.Second
	metricsShutdownTimeout   = 5 * time.Second
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Set up by PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "target-mcp",
	Short: "Shot group analysis for target images",
	Long: `target-mcp measures shot groups on paper targets.

Run without arguments to serve the MCP protocol over stdin/stdout; configure
it in your MCP client. The subcommands run the same analysis from the shell.

Configuration is read from --config (or TARGET_CONFIG) and TARGET_*
environment variables, e.g. TARGET_DISTANCE_YARDS=50.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cmd.Context(), configPath)
		if err != nil {
			return ewrap.Wrap(err, "failed to load config")
		}
		logger, err = logging.New(cfg.LogLevel, verbose)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveMCP(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (default: $TARGET_CONFIG)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(annotateCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(versionCmd)
}

// serveMCP runs the stdio server until stdin closes or the process is
// signalled.
func serveMCP(ctx context.Context) error {
	var m *metrics.Manager
	if cfg.MetricsAddr != "" {
		m = metrics.NewManager(cfg.MetricsOptions()...)
		srv := startMetrics(cfg.MetricsAddr, m)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("metrics server shutdown failed", zap.Error(err))
			}
		}()
	}

	srv, err := server.New(cfg, logger, m)
	if err != nil {
		return err
	}

	logger.Debug("starting MCP server",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("commit", GitCommit))

	return srv.Run(ctx, os.Stdin, os.Stdout)
}

// startMetrics serves /metrics on addr in the background.
func startMetrics(addr string, m *metrics.Manager) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}

	go func() {
		logger.Info("starting metrics server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	return srv
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
