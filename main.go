package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"helixcatalog/internal/app"
	"helixcatalog/internal/ctxlog"
)

var (
	verbose         bool
	layoutPath      string
	modelsPath      string
	annotationsPath string
	workers         int

	logger *zap.Logger
)

// ExitError carries a process exit code out of a command.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

var rootCmd = &cobra.Command{
	Use:   "helixcatalog",
	Short: "Decode Helix setlists and presets into a cross-referenced catalog",
	Long: `helixcatalog reads Line 6 Helix setlist (.hls) and preset (.hlx) files,
rebuilds the signal chain of every preset, names the hardware each model is
based on and indexes the presets by hardware, artist, genre and pickup.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&layoutPath, "config", "", "HCL catalog layout (default: embedded factory layout)")
	rootCmd.PersistentFlags().StringVar(&modelsPath, "models", "", "YAML model table (default: embedded)")
	rootCmd.PersistentFlags().StringVar(&annotationsPath, "annotations", "", "YAML preset annotations (default: embedded)")
	rootCmd.PersistentFlags().IntVarP(&workers, "workers", "j", 0, "Parallel decode workers (default: GOMAXPROCS)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(recallCmd)
	rootCmd.AddCommand(mcpCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	os.Exit(exitCode(err, os.Stderr))
}

// exitCode reports err on w and maps it to a process exit code.
func exitCode(err error, w io.Writer) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Message != "" {
			fmt.Fprintln(w, exitErr.Message)
		}
		return exitErr.Code
	}
	fmt.Fprintln(w, "Error:", err)
	return 1
}

// newApp builds the pipeline from the persistent flags.
func newApp() (*app.App, error) {
	l := logger
	if l == nil {
		l = zap.NewNop()
	}
	return app.New(app.Config{
		ModelsPath:      modelsPath,
		AnnotationsPath: annotationsPath,
		LayoutPath:      layoutPath,
		Workers:         workers,
	}, l)
}
