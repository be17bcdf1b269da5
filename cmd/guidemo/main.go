package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/fang"
	"github.com/lmittmann/tint"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"gui/internal/gui"
	"gui/internal/trace"
	"gui/internal/ui"
	"gui/internal/widgets"
)

// Config holds the application configuration
type Config struct {
	Debug         bool
	LogFile       string
	MaxDeliveries int
	NoAltScreen   bool
	Traces        int
	TraceAddr     string
}

func main() {
	var cfg Config

	rootCmd := &cobra.Command{
		Use:   "guidemo",
		Short: "Terminal demo of the gui widget engine",
		Long: `guidemo drives a small widget tree (inputs, a counter and a status
label) through the gui event engine inside a Bubble Tea program.`,
		Example: `  # Run the demo
  guidemo

  # Log debug output to a file and serve traces over HTTP
  guidemo --debug --log-file guidemo.log --trace-addr localhost:7070`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	rootCmd.Flags().BoolVarP(&cfg.Debug, "debug", "d", false, "Enable debug logging")
	rootCmd.Flags().StringVar(&cfg.LogFile, "log-file", "", "Write logs to this file (discarded if not specified)")
	rootCmd.Flags().IntVar(&cfg.MaxDeliveries, "max-deliveries", gui.DefaultMaxDeliveries, "Handler invocations allowed per operation")
	rootCmd.Flags().BoolVar(&cfg.NoAltScreen, "no-alt-screen", false, "Render inline instead of in the alternate screen")
	rootCmd.Flags().IntVar(&cfg.Traces, "traces", 20, "Number of recent operations kept for the trace panel")
	rootCmd.Flags().StringVar(&cfg.TraceAddr, "trace-addr", "", "Serve recent traces as JSON on this address")

	if err := fang.Execute(context.Background(), rootCmd,
		fang.WithVersion("v0.1.0"),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			_, _ = fmt.Fprintln(w, err.Error())
		}),
	); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config) error {
	closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	traces := trace.NewManager(cfg.Traces)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := traces.Shutdown(shutdownCtx); err != nil {
			slog.Warn("trace shutdown failed", "error", err)
		}
	}()

	if cfg.TraceAddr != "" {
		srv := trace.NewServer(traces, cfg.TraceAddr)
		if err := srv.Start(); err != nil {
			return errors.Wrap(err, "start trace server")
		}
		slog.Info("serving traces", "addr", srv.Addr())
		defer func() {
			if err := srv.Stop(context.Background()); err != nil {
				slog.Warn("trace server stop failed", "error", err)
			}
		}()
	}

	demo, err := widgets.NewDemo(
		gui.WithLogger(slog.Default().With("component", "gui")),
		gui.WithObserver(trace.NewRecorder(traces)),
		gui.WithMaxDeliveries(cfg.MaxDeliveries),
	)
	if err != nil {
		return err
	}
	defer func() {
		if err := demo.UI.Close(); err != nil {
			slog.Warn("close ui failed", "error", err)
		}
	}()

	var opts []tea.ProgramOption
	opts = append(opts, tea.WithContext(ctx))
	if !cfg.NoAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	model := ui.NewAppModel(demo, traces).AsTeaModel()
	if _, err := tea.NewProgram(model, opts...).Run(); err != nil {
		return errors.Wrap(err, "run program")
	}
	return nil
}

// setupLogging installs a tint handler as the default logger. The terminal
// belongs to Bubble Tea, so logs go to a file or nowhere.
func setupLogging(cfg Config) (func(), error) {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	var w io.Writer = io.Discard
	closeFn := func() {}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, errors.Wrapf(err, "open log file %s", cfg.LogFile)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	}

	slog.SetDefault(slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    true,
	})))
	return closeFn, nil
}
