package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moolen/casa/internal/apiserver"
	"github.com/moolen/casa/internal/cache"
	"github.com/moolen/casa/internal/config"
	"github.com/moolen/casa/internal/lifecycle"
	"github.com/moolen/casa/internal/logging"
	"github.com/moolen/casa/internal/metrics"
	"github.com/moolen/casa/internal/records"
	"github.com/moolen/casa/internal/service"
	"github.com/moolen/casa/internal/tracing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var (
	apiPort            int
	dataDir            string
	settingsPath       string
	watchSettings      bool
	cacheSize          int
	cacheTTL           time.Duration
	maxParallelPeriods int
	shutdownTimeout    time.Duration
	tracingEnabled     bool
	tracingEndpoint    string
	tracingTLSCAPath   string
	tracingTLSInsecure bool
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the casa API server",
	Long: `Start the HTTP API serving period analyses, historic trends and systemic cases
for the records in --data-dir. Every flag can also be set through a CASA_* environment
variable, e.g. CASA_API_PORT=9090.`,
	RunE: runServer,
}

func init() {
	serverCmd.Flags().IntVar(&apiPort, "api-port", 8080, "Port the API server listens on")
	serverCmd.Flags().StringVar(&dataDir, "data-dir", "data", "Directory searched for case and volume files")
	serverCmd.Flags().StringVar(&settingsPath, "config", "", "Analysis settings YAML file; POST /v1/config writes it back")
	serverCmd.Flags().BoolVar(&watchSettings, "watch-config", false, "Reload --config when it changes on disk")
	serverCmd.Flags().IntVar(&cacheSize, "cache-size", 128, "Maximum number of cached period results")
	serverCmd.Flags().DurationVar(&cacheTTL, "cache-ttl", time.Hour, "Lifetime of a cached period result")
	serverCmd.Flags().IntVar(&maxParallelPeriods, "max-parallel-periods", 4, "Periods analysed concurrently in historic and systemic requests")
	serverCmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 30*time.Second, "Grace period per component on shutdown")
	serverCmd.Flags().BoolVar(&tracingEnabled, "tracing-enabled", false, "Enable OpenTelemetry tracing")
	serverCmd.Flags().StringVar(&tracingEndpoint, "tracing-endpoint", "", "OTLP gRPC endpoint for traces (e.g., otel-collector:4317)")
	serverCmd.Flags().StringVar(&tracingTLSCAPath, "tracing-tls-ca", "", "Path to CA certificate for TLS verification (optional)")
	serverCmd.Flags().BoolVar(&tracingTLSInsecure, "tracing-tls-insecure", false, "Skip TLS certificate verification (insecure, use only for testing)")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg := config.Config{
		DataDir:            dataDir,
		ConfigPath:         settingsPath,
		APIPort:            apiPort,
		CacheSize:          cacheSize,
		CacheTTL:           cacheTTL,
		MaxParallelPeriods: maxParallelPeriods,
		WatchConfig:        watchSettings,
		TracingEnabled:     tracingEnabled,
		TracingEndpoint:    tracingEndpoint,
		TracingTLSCAPath:   tracingTLSCAPath,
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := logging.GetLogger("server")
	logger.Info("Starting casa v%s", Version)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracingProvider, err := tracing.NewProvider(tracing.Config{
		Enabled:        cfg.TracingEnabled,
		Endpoint:       cfg.TracingEndpoint,
		TLSCAPath:      cfg.TracingTLSCAPath,
		TLSInsecure:    tracingTLSInsecure,
		ServiceVersion: Version,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	resultCache, err := cache.New(cache.Config{MaxEntries: cfg.CacheSize, TTL: cfg.CacheTTL})
	if err != nil {
		return err
	}

	settings := config.DefaultSettings()
	if cfg.ConfigPath != "" {
		if settings, err = config.LoadSettingsFile(cfg.ConfigPath); err != nil {
			return err
		}
	}

	svc, err := service.New(settings, service.Options{
		Loader: func(opts records.LoadOptions) (*records.Dataset, error) {
			return records.LoadDir(cfg.DataDir, opts)
		},
		SettingsPath: cfg.ConfigPath,
		Cache:        resultCache,
		Metrics:      metrics.New(registry),
		Tracer:       tracing.Tracer("casa/service"),
		Parallelism:  cfg.MaxParallelPeriods,
	})
	if err != nil {
		return err
	}
	if err := svc.Reload(ctx); err != nil {
		// The API stays up so the data can be fixed and reloaded via POST /v1/datasets/reload
		logger.Error("Initial dataset load failed: %v", err)
	}

	manager := lifecycle.NewManager()
	manager.SetShutdownTimeout(shutdownTimeout)
	if err := manager.Register(tracingProvider); err != nil {
		return err
	}

	deps := []lifecycle.Component{tracingProvider}
	if cfg.WatchConfig {
		watcher, err := config.NewWatcher(config.WatcherConfig{FilePath: cfg.ConfigPath},
			func(s *config.Settings) error {
				return svc.ApplySettings(context.Background(), s)
			})
		if err != nil {
			return err
		}
		if err := manager.Register(watcher, tracingProvider); err != nil {
			return err
		}
		deps = append(deps, watcher)
	}

	server := apiserver.New(cfg.APIPort, svc, registry)
	if err := manager.Register(server, deps...); err != nil {
		return err
	}

	return manager.Run(ctx)
}
