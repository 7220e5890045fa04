package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/automaxprocs/maxprocs"

	handler "github.com/bruteforce-framework/bruteforce/internal/adapter/http"
	"github.com/bruteforce-framework/bruteforce/internal/adapter/routes"
	"github.com/bruteforce-framework/bruteforce/internal/config"
	"github.com/bruteforce-framework/bruteforce/internal/core/hashing"
	"github.com/bruteforce-framework/bruteforce/internal/core/service"
	"github.com/bruteforce-framework/bruteforce/internal/pkg/logging"
	"github.com/bruteforce-framework/bruteforce/internal/pkg/metrics"
	"github.com/bruteforce-framework/bruteforce/internal/platform/shell"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := config.NewViper()
	var (
		configPath  string
		interactive bool
		noColor     bool
	)

	cmd := &cobra.Command{
		Use:           "bruteforce",
		Short:         "Parallel hash brute-force and dictionary tool",
		Version:       shell.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(v, configPath)
			if err != nil {
				return err
			}
			return run(cmd.Context(), settings, interactive, !noColor, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "Configuration file (yaml, json or toml)")
	flags.BoolVarP(&interactive, "interactive", "i", false, "Start interactive shell")
	flags.BoolVar(&noColor, "no-color", false, "Disable colored output")
	flags.StringP("mode", "m", "", "Attack mode: bruteforce or dictionary")
	flags.StringP("target", "t", "", "Target hash (hex)")
	flags.StringP("charset", "c", "", "Characters for bruteforce mode")
	flags.Int("min", 0, "Minimum candidate length")
	flags.Int("max", 0, "Maximum candidate length")
	flags.IntP("threads", "T", 0, "Number of workers")
	flags.StringP("wordlist", "w", "", "Wordlist for dictionary mode")
	flags.StringP("algorithm", "a", "", "Hash algorithm; inferred from the target length when empty")
	flags.String("encoding", "", "Wordlist encoding, e.g. latin1 or utf-16")
	flags.Int("queue", 0, "Work queue capacity; 0 means unbounded")
	flags.StringP("output", "o", "", "Append a JSON report of each search to this file")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.Bool("log-json", false, "Write logs as JSON")
	flags.String("metrics-addr", "", "Serve the status API and Prometheus metrics on this address")

	for _, name := range []string{
		"mode", "target", "charset", "min", "max", "threads", "wordlist", "algorithm",
		"encoding", "queue", "output", "log-level", "log-json", "metrics-addr",
	} {
		bindFlag(v, cmd, name)
	}

	return cmd
}

// bindFlag lets an explicitly set flag override file and environment values
// while keeping the viper defaults when the flag is absent.
func bindFlag(v *viper.Viper, cmd *cobra.Command, name string) {
	if err := v.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
		panic(fmt.Sprintf("binding flag %s: %v", name, err))
	}
}

func run(ctx context.Context, settings *config.Settings, interactive, colored bool, in io.Reader, out, errOut io.Writer) error {
	logger, err := logging.New(errOut, settings.LogLevel, settings.LogJSON)
	if err != nil {
		return err
	}
	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, a ...interface{}) {
		logger.Debug().Msgf(format, a...)
	})); err != nil {
		logger.Warn().Err(err).Msg("failed to set GOMAXPROCS")
	}

	printer := shell.NewPrinter(out, colored)
	if !interactive {
		printer.Banner()
		if settings.Target == "" {
			printer.Println("Use -i for interactive mode")
			return nil
		}
	}

	opts := []service.Option{service.WithLogger(logger), service.WithProgressOutput(errOut)}
	var reg *prometheus.Registry
	if settings.MetricsAddr != "" {
		reg = prometheus.NewRegistry()
		opts = append(opts, service.WithMetrics(metrics.NewSearchMetrics(reg, "bruteforce")))
	}
	// The shell writes its own report per run so "set output" takes effect.
	if !interactive && settings.Output != "" {
		reporter, err := metrics.NewReporter(settings.Output)
		if err != nil {
			return err
		}
		defer func() {
			if err := reporter.Close(); err != nil {
				logger.Warn().Err(err).Msg("failed to close report")
			}
		}()
		opts = append(opts, service.WithResultSink(reporter))
	}
	search := service.NewSearchService(hashing.NewService(), opts...)

	if reg != nil {
		go serveAPI(settings.MetricsAddr, search, reg, logger)
	}

	if interactive {
		interrupts := make(chan os.Signal, 1)
		signal.Notify(interrupts, os.Interrupt)
		defer signal.Stop(interrupts)

		sh := shell.New(search, settings, printer, shell.WithInterrupts(interrupts), shell.WithLogger(logger))
		return sh.Run(ctx, in)
	}
	return runOnce(ctx, search, settings, printer)
}

// serveAPI exposes search status, remote stop and Prometheus metrics.
func serveAPI(addr string, search *service.SearchService, reg *prometheus.Registry, logger zerolog.Logger) {
	r := routes.NewEngine()
	routes.SetupRoutes(r, handler.NewSearchHandler(search), metrics.Handler(reg))

	logger.Info().Str("addr", addr).Msg("serving status API")
	if err := r.Run(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Str("addr", addr).Msg("status API stopped")
	}
}

// runOnce runs a single search from flags, stopping it on SIGINT or SIGTERM.
func runOnce(ctx context.Context, search *service.SearchService, settings *config.Settings, printer *shell.Printer) error {
	cfg, err := settings.SearchConfig()
	if err != nil {
		printer.Error(err)
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	printer.Infof("[*] Starting attack...")
	res, err := search.Run(ctx, cfg)
	if err != nil {
		printer.Error(err)
		return err
	}
	printer.Result(res)
	return nil
}
