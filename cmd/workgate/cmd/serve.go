package cmd

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/psantana5/workgate/pkg/api"
	"github.com/psantana5/workgate/pkg/auth"
	"github.com/psantana5/workgate/pkg/logging"
	"github.com/psantana5/workgate/pkg/metrics"
	"github.com/psantana5/workgate/pkg/models"
	"github.com/psantana5/workgate/pkg/ratelimit"
	"github.com/psantana5/workgate/pkg/shutdown"
	"github.com/psantana5/workgate/pkg/store"
	"github.com/psantana5/workgate/pkg/tracing"
)

var (
	serveListen        string
	serveMetricsListen string
	serveDBType        string
	serveDBDSN         string
	serveDBPath        string
	serveWindowsFile   string
	serveRateLimit     float64
	serveRateBurst     int
	serveAPIKey        string
	serveLogLevel      string
	serveLogJSON       bool
	serveTracing       bool
	serveOTLPEndpoint  string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the workgate API server",
	Long: `Run the HTTP server exposing gate checks, window management, the
decision log and Prometheus metrics.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveListen, "listen", ":8080", "API listen address")
	serveCmd.Flags().StringVar(&serveMetricsListen, "metrics-listen", ":9090", "metrics listen address (empty to disable)")
	serveCmd.Flags().StringVar(&serveDBType, "db-type", "sqlite", "store backend: memory, sqlite or postgres")
	serveCmd.Flags().StringVar(&serveDBDSN, "db-dsn", "", "database connection string (postgres)")
	serveCmd.Flags().StringVar(&serveDBPath, "db-path", "workgate.db", "database file path (sqlite)")
	serveCmd.Flags().StringVar(&serveWindowsFile, "windows-file", "", "YAML file with windows to load at startup")
	serveCmd.Flags().Float64Var(&serveRateLimit, "rate-limit", 10, "requests per second per client")
	serveCmd.Flags().IntVar(&serveRateBurst, "rate-burst", 20, "burst size per client")
	serveCmd.Flags().StringVar(&serveAPIKey, "api-key", "", "API key for authentication (or WORKGATE_API_KEY)")
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "info", "log level: debug, info, warn, error")
	serveCmd.Flags().BoolVar(&serveLogJSON, "log-json", false, "log in JSON format")
	serveCmd.Flags().BoolVar(&serveTracing, "tracing", false, "enable OpenTelemetry tracing")
	serveCmd.Flags().StringVar(&serveOTLPEndpoint, "otlp-endpoint", "localhost:4318", "OTLP HTTP endpoint for traces")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := logging.NewLogger(logging.ParseLevel(serveLogLevel), serveLogJSON)

	logger.Info("Starting workgate server", map[string]interface{}{
		"listen": serveListen,
		"store":  serveDBType,
	})

	// Store
	dataStore, err := store.NewStore(store.Config{
		Type: serveDBType,
		DSN:  serveDBDSN,
		Path: serveDBPath,
	})
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}

	if err := seedWindows(dataStore, logger); err != nil {
		dataStore.Close()
		return err
	}

	// Tracing
	tracerProvider, err := tracing.InitTracer(tracing.Config{
		ServiceName:    "workgate",
		ServiceVersion: "1.0.0",
		Environment:    "production",
		OTLPEndpoint:   serveOTLPEndpoint,
		Enabled:        serveTracing,
	})
	if err != nil {
		dataStore.Close()
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	if serveTracing {
		logger.Info("Tracing enabled", map[string]interface{}{"endpoint": serveOTLPEndpoint})
	}

	// Metrics
	exporter := metrics.NewExporter(dataStore)

	// API handler
	handler := api.NewHandler(dataStore, logger)
	handler.SetMetricsRecorder(exporter)

	router := mux.NewRouter()
	handler.RegisterRoutes(router)

	// Middleware chain: tracing outermost, then rate limiting, then auth
	var chained http.Handler = router

	keyManager := auth.NewAPIKeyManager()
	key := serveAPIKey
	if key == "" {
		key = os.Getenv("WORKGATE_API_KEY")
	}
	if key != "" {
		if err := keyManager.AddKey("default", key); err != nil {
			dataStore.Close()
			return fmt.Errorf("failed to register API key: %w", err)
		}
		logger.Info("API authentication enabled")
	} else {
		logger.Warn("No API key configured, authentication disabled")
	}
	chained = auth.Middleware(keyManager, "/health")(chained)

	limiter := ratelimit.NewLimiter(serveRateLimit, serveRateBurst)
	chained = limiter.Middleware(ratelimit.IPKeyFunc)(chained)

	chained = tracing.HTTPMiddleware(tracerProvider)(chained)

	srv := &http.Server{
		Addr:         serveListen,
		Handler:      chained,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Shutdown order: HTTP servers first, then tracer, then the store
	mgr := shutdown.New(30 * time.Second)
	mgr.Register(shutdown.CloseResource(dataStore, "store"))
	mgr.Register(tracerProvider.Shutdown)
	mgr.Register(shutdown.StopHTTPServer(srv, "api"))

	if serveMetricsListen != "" {
		metricsRouter := mux.NewRouter()
		metricsRouter.Handle("/metrics", exporter).Methods("GET")

		metricsSrv := &http.Server{
			Addr:         serveMetricsListen,
			Handler:      metricsRouter,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		mgr.Register(shutdown.StopHTTPServer(metricsSrv, "metrics"))

		go func() {
			logger.Info("Metrics listening", map[string]interface{}{"addr": serveMetricsListen})
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("Metrics server failed", map[string]interface{}{"error": err.Error()})
			}
		}()
	}

	go func() {
		logger.Info("API listening", map[string]interface{}{"addr": serveListen})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("API server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	mgr.Wait()
	logger.Info("Shutting down")
	mgr.Shutdown()
	return nil
}

// seedWindows ensures the default window exists and loads any windows file
func seedWindows(s store.Store, logger *logging.Logger) error {
	if _, err := s.GetWindow(models.DefaultWindowName); err == store.ErrWindowNotFound {
		def := models.DefaultWindow()
		if err := s.SaveWindow(&def); err != nil {
			return fmt.Errorf("failed to seed default window: %w", err)
		}
		logger.Info("Seeded default window", map[string]interface{}{
			"open":  def.Open,
			"close": def.Close,
		})
	} else if err != nil {
		return fmt.Errorf("failed to check default window: %w", err)
	}

	if serveWindowsFile == "" {
		return nil
	}

	data, err := os.ReadFile(serveWindowsFile)
	if err != nil {
		return fmt.Errorf("failed to read windows file: %w", err)
	}

	var file models.WindowFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse windows file: %w", err)
	}

	for i := range file.Windows {
		w := file.Windows[i]
		if w.Name == "" {
			return fmt.Errorf("windows file entry %d has no name", i)
		}
		if err := s.SaveWindow(&w); err != nil {
			return fmt.Errorf("failed to save window %q: %w", w.Name, err)
		}
	}
	logger.Info("Loaded windows file", map[string]interface{}{
		"file":  serveWindowsFile,
		"count": len(file.Windows),
	})
	return nil
}
