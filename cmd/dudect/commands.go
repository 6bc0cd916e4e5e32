package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"github.com/BTBurke/dudect"
	"github.com/BTBurke/dudect/pkg/metric"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var errLeakDetected = errors.New("timing leakage detected")

type runFlags struct {
	reportEvery  int
	metricsAddr  string
	rollbarToken string
	rollbarEnv   string
	logLevel     string
	logJSON      bool
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "dudect",
		Short:        "Detect timing leakage with Welch's t-test on fixed and random inputs",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newRunCmd(), newSpecimensCmd())
	return rootCmd
}

func newSpecimensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "specimens",
		Short: "List the built-in specimens",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, b := range builtins {
				fmt.Fprintf(cmd.OutOrStdout(), "%-18s %s\n", b.name, b.desc)
			}
		},
	}
}

func newRunCmd() *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run <specimen>",
		Short: "Run a session on a built-in specimen until it converges or exhausts its budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, args[0], f)
		},
	}
	cmd.Flags().AddFlagSet(dudect.FlagSet())
	cmd.Flags().IntVar(&f.reportEvery, "report-every", 10, "Print progress every n rounds, 0 for none")
	cmd.Flags().StringVar(&f.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	cmd.Flags().StringVar(&f.rollbarToken, "rollbar-token", "", "Report aborted sessions to Rollbar with this token")
	cmd.Flags().StringVar(&f.rollbarEnv, "rollbar-env", "production", "Rollbar environment")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	cmd.Flags().BoolVar(&f.logJSON, "log-json", false, "Log as JSON")
	return cmd
}

func runSession(cmd *cobra.Command, name string, f *runFlags) error {
	b, ok := lookup(name)
	if !ok {
		return fmt.Errorf("unknown specimen %q, see dudect specimens", name)
	}
	opts, err := dudect.OptionsFromFlags(cmd.Flags())
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd.ErrOrStderr(), f.logLevel, f.logJSON)
	if err != nil {
		return err
	}
	// block length and seed may come from flags or a config file
	cfg, err := dudect.ResolveConfig(opts...)
	if err != nil {
		return err
	}
	sp, err := b.build(cfg.BlockLen, cfg.Seed)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	opts = append(opts, dudect.WithLogger(logger), dudect.WithObserver(progress(out, f.reportEvery)))

	if f.metricsAddr != "" {
		collector := metric.NewCollector(prometheus.DefaultRegisterer)
		opts = append(opts, dudect.WithObserver(observeMetrics(collector)))
		go serveMetrics(f.metricsAddr, logger)
	}
	if f.rollbarToken != "" {
		reporter, err := dudect.NewRollbarReporter(f.rollbarToken, f.rollbarEnv)
		if err != nil {
			return err
		}
		defer reporter.Wait()
		opts = append(opts, dudect.WithErrorReporter(reporter))
	}

	s, err := dudect.New(sp, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt)
	defer stop()

	v, err := s.Run(ctx)
	if err != nil {
		return err
	}
	if err := dudect.WriteVerdict(out, *v); err != nil {
		return err
	}
	if v.Leaky() {
		return errLeakDetected
	}
	return nil
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// progress prints a logfmt line every n rounds while the session runs
func progress(w io.Writer, n int) dudect.Observer {
	return func(v dudect.Verdict) {
		if n <= 0 || v.State != dudect.Running || v.Rounds%n != 0 {
			return
		}
		_ = dudect.WriteProgress(w, v)
	}
}

func observeMetrics(c *metric.Collector) dudect.Observer {
	return func(v dudect.Verdict) {
		if v.State != dudect.Aborted {
			c.ObserveRound(v.SessionID, v.MaxAbsT, v.Samples)
		}
		if v.State != dudect.Running {
			c.ObserveFinished(string(v.State))
		}
	}
}

func serveMetrics(addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server stopped", slog.Any("error", err))
	}
}

func newLogger(w io.Writer, level string, json bool) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
