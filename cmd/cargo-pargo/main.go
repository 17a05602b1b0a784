package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pargo/cargo-pargo/internal/cargo"
	"github.com/pargo/cargo-pargo/internal/config"
	"github.com/pargo/cargo-pargo/internal/pargo"
	"github.com/spf13/cobra"
)

var (
	// Set by goreleaser
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(execute(os.Args[1:]))
}

// exitCode carries the exit status of the process cargo-pargo ran
type exitCode int

func (c exitCode) Error() string {
	return fmt.Sprintf("exit status %d", int(c))
}

var rootCmd = &cobra.Command{
	Use:   "cargo-pargo [args...]",
	Short: "Run a project's Rust script, rebuilding it when it changed",
	Long: `cargo-pargo looks for a Pargo.toml at the project root. When one exists it
keeps a nested cargo project under .pargo/pargo in sync with the declared
script and dependencies, rebuilds it when either changed, and runs the
compiled script with all arguments. Without a Pargo.toml every argument is
passed to cargo unchanged.

Configuration is read from $PARGO_CONFIG or ~/.config/pargo/config.yaml.
PARGO_LOG_LEVEL, PARGO_LOG_FORMAT, PARGO_CARGO and PARGO_DRY_RUN override it.`,
	// every argument belongs to the script or to cargo
	DisableFlagParsing: true,
	Args:               cobra.ArbitraryArgs,
	SilenceUsage:       true,
	SilenceErrors:      true,
	RunE:               runPargo,
}

// execute runs the root command and maps its outcome to a process exit code
func execute(args []string) int {
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()

	var code exitCode
	switch {
	case err == nil:
		return 0
	case errors.As(err, &code):
		return int(code)
	default:
		return 1
	}
}

func runPargo(cmd *cobra.Command, args []string) error {
	stop := holdSignals()
	defer stop()
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargo-pargo: failed to load config: %v\n", err)
		return err
	}

	logger := setupLogger(cfg)
	logger.Debug("cargo-pargo", "version", version, "commit", commit, "built", date)

	workdir, err := os.Getwd()
	if err != nil {
		logger.Error("failed to get working directory", "error", err)
		return err
	}

	engine := pargo.NewEngine(cargo.NewClient(cfg.Cargo.Binary), logger, cfg.DryRun)

	code, err := engine.Run(ctx, workdir, args)
	if err != nil {
		logger.Error("pargo failed", "error", err)
		return err
	}
	if code != 0 {
		return exitCode(code)
	}
	return nil
}

// setupLogger logs to stderr; stdout belongs to the script
func setupLogger(cfg *config.Config) *slog.Logger {
	// Parse log level
	var level slog.Level
	switch cfg.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	// Create handler based on format
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}

// loadConfig reads the tool configuration. An explicit $PARGO_CONFIG must
// exist; the default location is optional.
func loadConfig() (*config.Config, error) {
	configPath, err := config.DefaultPath()
	if err != nil {
		return nil, err
	}

	if os.Getenv(config.EnvConfig) != "" {
		return config.Load(configPath)
	}
	return config.LoadOptional(configPath)
}

// holdSignals keeps the wrapper alive on SIGINT and SIGTERM. The child shares
// the terminal's process group, receives the same signal and decides its own
// exit code, which the wrapper then propagates.
func holdSignals() func() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-sigCh:
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}
