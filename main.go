package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"product-media/internal/database"
	"product-media/internal/handlers"
	"product-media/internal/logging"
	"product-media/internal/memory"
	"product-media/internal/metrics"
	"product-media/internal/middleware"
	"product-media/internal/pipeline"
	"product-media/internal/raster"
	"product-media/internal/startup"
)

func main() {
	startTime := time.Now()

	// Runs before any significant allocation so GOMEMLIMIT applies to
	// the whole process lifetime.
	memory.ConfigureFromEnv()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbStart := time.Now()
	db, err := database.New(ctx, config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	defer db.Close()
	startup.LogDatabaseInit(time.Since(dbStart))

	// Clean up expired sessions periodically
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := db.CleanExpiredSessions(ctx); err != nil {
					logging.Warn("session cleanup failed: %v", err)
				}
			}
		}
	}()

	startup.LogVideoToolsInit()
	if err := raster.InitVips(); err != nil {
		logging.Warn("libvips unavailable, WebP encoding falls back to JPEG: %v", err)
	}
	defer raster.ShutdownVips()

	metrics.InitializeMetrics()

	memMonitor := memory.NewMonitor(memory.DefaultConfig())
	memMonitor.Start()
	defer memMonitor.Stop()

	pipe := pipeline.New(config.UploadDir, pipeline.DefaultSizes())
	h := handlers.New(db, pipe, memMonitor, config)

	router := setupRouter(h, config)
	startup.LogHTTPRoutes(router)

	authedRouter := h.AuthMiddleware(router)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogVariantFetch = config.LogVariantFetch
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	loggedHandler := middleware.Logger(loggingConfig)(authedRouter)

	handler := middleware.Compression(middleware.DefaultCompressionConfig())(loggedHandler)
	handler = middleware.Metrics(middleware.DefaultMetricsConfig())(handler)

	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  5 * time.Minute, // large uploads come in slowly
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:         ":" + config.MetricsPort,
			Handler:      metricsMux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	go handleShutdown(srv, metricsSrv, cancel)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers, config *startup.Config) *mux.Router {
	r := mux.NewRouter()

	// Health check and version routes (no auth required)
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	// Auth routes
	auth := r.PathPrefix("/api/auth").Subrouter()
	auth.HandleFunc("/setup-required", h.CheckSetupRequired).Methods("GET")
	auth.HandleFunc("/setup", h.Setup).Methods("POST")
	auth.HandleFunc("/login", h.Login).Methods("POST")
	auth.HandleFunc("/logout", h.Logout).Methods("POST")
	auth.HandleFunc("/check", h.CheckAuth).Methods("GET")

	// Media API
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/products/{productId}/media", h.UploadMedia).Methods("POST")
	api.HandleFunc("/products/{productId}/media/batch", h.UploadMediaBatch).Methods("POST")
	api.HandleFunc("/products/{productId}/media", h.ListProductMedia).Methods("GET")
	api.HandleFunc("/media/{id}", h.GetMedia).Methods("GET")
	api.HandleFunc("/media/{id}", h.UpdateMedia).Methods("PATCH")
	api.HandleFunc("/media/{id}", h.DeleteMedia).Methods("DELETE")
	api.HandleFunc("/media/{id}/move", h.MoveMedia).Methods("POST")

	// Stored variants, served directly off the flat upload directory
	r.PathPrefix("/files/").Handler(
		http.StripPrefix("/files/", http.FileServer(http.Dir(config.UploadDir))))

	return r
}

func handleShutdown(srv, metricsSrv *http.Server, cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())
	cancel()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownComplete()
}
