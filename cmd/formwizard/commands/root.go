package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	formwizard "github.com/goliatone/go-formwizard"
	"github.com/goliatone/go-formwizard/internal/config"
	"github.com/goliatone/go-formwizard/internal/logger"
	"github.com/goliatone/go-formwizard/pkg/definition"
	"github.com/goliatone/go-formwizard/pkg/payload"
	"github.com/goliatone/go-formwizard/pkg/submission"
	"github.com/goliatone/go-formwizard/pkg/transport"
)

// app carries the dependencies shared by subcommands.
type app struct {
	cfg      config.Config
	format   payload.Format
	log      *zap.Logger
	registry *prometheus.Registry
	recorder submission.Recorder
}

var (
	cfg    config.Config
	appCtx *app
)

// Execute builds the command tree and runs it.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "formwizard",
		Short:         "Multi-step care request wizard",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			applyFlagOverrides(cmd, &loaded)
			a, err := newApp(loaded)
			if err != nil {
				return err
			}
			appCtx = a
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if appCtx != nil {
				_ = appCtx.log.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfg.Definition, "definition", "", "wizard definition file (default: embedded care intake)")
	flags.StringVar(&cfg.Endpoint, "endpoint", "", "submission endpoint URL (default: simulated transport)")
	flags.StringVar(&cfg.Format, "format", "form", "payload format: form, json or pretty")
	flags.DurationVar(&cfg.Timeout, "timeout", 30*time.Second, "submission timeout")
	flags.BoolVar(&cfg.Demo, "demo", false, "prefill demo contact and location values")
	flags.StringVar(&cfg.LogMode, "log-mode", "dev", "log mode: dev, prod or off")
	flags.StringVar(&cfg.LogLevel, "log-level", "warn", "log level")
	flags.StringVar(&cfg.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	flags.StringVar(&cfg.Theme, "theme", "care", "HTML theme name")
	flags.StringVar(&cfg.Variant, "variant", "light", "HTML theme variant")

	root.AddCommand(runCmd(), renderCmd(), checkCmd())
	return root
}

// applyFlagOverrides copies explicitly set flags over the env configuration.
func applyFlagOverrides(cmd *cobra.Command, target *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("definition") {
		target.Definition = cfg.Definition
	}
	if flags.Changed("endpoint") {
		target.Endpoint = cfg.Endpoint
	}
	if flags.Changed("format") {
		target.Format = cfg.Format
	}
	if flags.Changed("timeout") {
		target.Timeout = cfg.Timeout
	}
	if flags.Changed("demo") {
		target.Demo = cfg.Demo
	}
	if flags.Changed("log-mode") {
		target.LogMode = cfg.LogMode
	}
	if flags.Changed("log-level") {
		target.LogLevel = cfg.LogLevel
	}
	if flags.Changed("metrics-addr") {
		target.MetricsAddr = cfg.MetricsAddr
	}
	if flags.Changed("theme") {
		target.Theme = cfg.Theme
	}
	if flags.Changed("variant") {
		target.Variant = cfg.Variant
	}
}

func newApp(c config.Config) (*app, error) {
	format, err := payload.ParseFormat(c.Format)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(c.LogMode, c.LogLevel)
	if err != nil {
		return nil, err
	}
	registry := prometheus.NewRegistry()
	return &app{
		cfg:      c,
		format:   format,
		log:      log,
		registry: registry,
		recorder: submission.NewPrometheusRecorder(registry),
	}, nil
}

// transport returns the HTTP transport when an endpoint is configured and the
// simulated one otherwise.
func (a *app) transport() (submission.Transport, error) {
	if a.cfg.Endpoint != "" {
		return transport.NewHTTP(a.cfg.Endpoint,
			transport.WithFormat(a.format),
			transport.WithHTTPLogger(a.log.Named("http")),
		)
	}
	a.log.Info("no endpoint configured, using simulated transport",
		zap.Duration("delay", a.cfg.SimDelay),
		zap.Float64("success_rate", a.cfg.SuccessRate),
	)
	return transport.NewSimulated(
		transport.WithDelay(a.cfg.SimDelay),
		transport.WithDecider(transport.RandomDecider(a.cfg.SuccessRate, nil)),
	), nil
}

func (a *app) session(extra ...formwizard.Option) (*formwizard.Session, error) {
	def, err := definition.Load(a.cfg.Definition)
	if err != nil {
		return nil, err
	}
	t, err := a.transport()
	if err != nil {
		return nil, err
	}
	opts := []formwizard.Option{
		formwizard.WithLogger(a.log),
		formwizard.WithSubmissionOptions(
			submission.WithTimeout(a.cfg.Timeout),
			submission.WithRecorder(a.recorder),
		),
	}
	if a.cfg.Demo {
		opts = append(opts, formwizard.WithDemoPrefill())
	}
	return formwizard.NewSession(def, t, append(opts, extra...)...)
}

// serveMetrics exposes the registry until ctx ends. It is a no-op without a
// metrics address.
func (a *app) serveMetrics(ctx context.Context) {
	if a.cfg.MetricsAddr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: a.cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Warn("metrics server stopped", zap.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	a.log.Info("serving metrics", zap.String("addr", fmt.Sprintf("http://%s/metrics", a.cfg.MetricsAddr)))
}
