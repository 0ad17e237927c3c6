package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"paramload/internal/banner"
	"paramload/internal/cli"
	"paramload/internal/config"
	"paramload/internal/param"
	"paramload/internal/report"
	"paramload/internal/runner"
	"paramload/internal/scenario"
	"paramload/internal/storage"
	"paramload/internal/tui/app"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "paramload",
	Short: "paramload - random parameter load test for /print-param",
	Long: `
paramload simulates users that each wait a random interval and then call
GET /print-param?param=<10 random lowercase letters> on the target host.
Every request is reported under the name /print-param?param={val}.

It runs in three ways:
1. Standalone (default): built-in users with a live dashboard, or --headless
2. Worker: attach to a locust master and let it drive the users
3. Serve: run the sample /print-param application to aim at`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		headless, _ := cmd.Flags().GetBool("headless")
		return runLoad(cmd.Context(), cfg, headless, cmd.OutOrStdout())
	},
}

func Execute() {
	// Custom Help with Banner
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		fmt.Println(banner.GetString())
		cmd.Usage()
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

func init() {
	godotenv.Load()
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(serveCmd, workerCmd, historyCmd)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.paramload.yaml)")
	pf.String("env", "development", "Environment: development or production (log format)")
	pf.StringP("host", "H", "http://localhost:8080", "Target base URL")
	pf.Duration("timeout", 10*time.Second, "Request timeout")
	pf.Int("param-length", param.Length, "Length of the random param value")
	pf.Duration("min-wait", scenario.DefaultMinWait, "Minimum wait between a user's requests")
	pf.Duration("max-wait", scenario.DefaultMaxWait, "Maximum wait between a user's requests")
	pf.Bool("insecure", false, "Skip TLS certificate verification")
	pf.String("history", "", "Run history database (default is $HOME/.paramload/history.db)")

	f := rootCmd.Flags()
	f.IntP("users", "u", 10, "Number of concurrent users")
	f.Float64P("spawn-rate", "r", 1, "Users started per second (0 = all at once)")
	f.DurationP("run-time", "t", time.Minute, "Stop after this long (0 = until interrupted)")
	f.StringP("out", "o", "", "Output filename prefix for reports")
	f.Bool("headless", false, "Disable the dashboard and print progress instead")

	bindFlags(pf, "env", "host", "timeout", "param-length", "min-wait", "max-wait", "insecure", "history")
	bindFlags(f, "users", "spawn-rate", "run-time", "out")
}

func initConfig() {
	v := viper.GetViper()
	config.SetDefaults(v)
	config.BindEnv(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home)
			v.SetConfigType("yaml")
			v.SetConfigName(".paramload")
		}
	}
	if err := v.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", v.ConfigFileUsed())
	}
}

func runLoad(ctx context.Context, cfg config.Config, headless bool, out io.Writer) error {
	logger := newLogger(cfg.Env, os.Stderr)

	updates := make(runner.StatsUpdateChan, 100)
	r := runner.NewRunner(cfg.Load, updates)

	started := time.Now()
	var err error
	if headless {
		cli.Start(ctx, out, r)
	} else {
		err = runTUI(ctx, r)
	}
	elapsed := time.Since(started)

	finish(logger, cfg, r, started, elapsed)
	return err
}

func runTUI(ctx context.Context, r *runner.Runner) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		r.Run(runCtx)
		close(done)
	}()

	p := tea.NewProgram(app.NewModel(r, done, cancel), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()

	// Quitting the UI also ends the run
	cancel()
	<-done

	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

// finish writes reports and records the run in the history store. Failures
// here are logged rather than returned; the run itself already happened.
func finish(logger *slog.Logger, cfg config.Config, r *runner.Runner, started time.Time, elapsed time.Duration) {
	sum := report.Summarize(r.Stats)

	if cfg.Load.OutPrefix != "" {
		written, err := report.WriteAll(cfg.Load.OutPrefix, r.ResultsCopy(), sum)
		if err != nil {
			logger.Error("write reports", slog.Any("error", err))
		}
		for _, path := range written {
			logger.Info("report written", slog.String("path", path))
		}
		if r.Dropped > 0 {
			logger.Warn("results log full, reports are partial",
				slog.Int("kept", r.MaxResults),
				slog.Uint64("dropped", r.Dropped),
			)
		}
	}

	store, err := storage.NewStore(cfg.HistoryPath)
	if err != nil {
		logger.Warn("history unavailable", slog.Any("error", err))
		return
	}
	defer store.Close()

	rec := storage.RunRecord{
		ID:        storage.NewID(),
		StartedAt: started,
		Duration:  elapsed,
		Config:    cfg.Load,
		Summary:   sum,
	}
	if err := store.Save(rec); err != nil {
		logger.Warn("save run", slog.Any("error", err))
		return
	}
	logger.Info("run saved", slog.String("id", rec.ID))
}

func newLogger(env string, w io.Writer) *slog.Logger {
	switch env {
	case "production":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

func bindFlags(fs *pflag.FlagSet, names ...string) {
	for _, name := range names {
		bindFlag(fs, name, name)
	}
}

func bindFlag(fs *pflag.FlagSet, key, name string) {
	if err := viper.BindPFlag(key, fs.Lookup(name)); err != nil {
		panic(err)
	}
}
