package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/mkraev/finflow/internal/config"
	"github.com/mkraev/finflow/internal/forecast"
	"github.com/mkraev/finflow/internal/handler"
	"github.com/mkraev/finflow/internal/jobs"
	"github.com/mkraev/finflow/internal/metrics"
	"github.com/mkraev/finflow/internal/middleware"
	"github.com/mkraev/finflow/internal/repository"
	"github.com/mkraev/finflow/internal/service"
	"github.com/mkraev/finflow/internal/utils/email"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	registry := prometheus.NewRegistry()
	repo := repository.NewRepository(db)
	forecastSvc := forecast.NewService(repo, repo, repo, forecast.NewMemoryCache(), metrics.NewPrometheus(registry), logger)
	svc := service.NewService(repo, forecastSvc, logger, cfg)
	h := handler.NewHandler(svc, logger)
	mailer := email.NewSender(cfg, logger)

	// Schedule the daily risk alert sweep
	notifier := jobs.NewRiskNotifier(repo, forecastSvc, mailer, logger)
	if cfg.AlertSchedule != "" {
		if err := notifier.Start(cfg.AlertSchedule); err != nil {
			logger.Fatalf("Failed to schedule risk alerts: %v", err)
		}
		defer notifier.Stop()
	}

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(logger))
	// Public routes
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{})).Methods("GET")
	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/workspaces", h.CreateWorkspace).Methods("POST")
	authRouter.HandleFunc("/workspaces/{workspaceID}/accounts", h.CreateAccount).Methods("POST")
	authRouter.HandleFunc("/workspaces/{workspaceID}/accounts/{accountID}/transactions", h.CreateTransaction).Methods("POST")
	authRouter.HandleFunc("/workspaces/{workspaceID}/transactions/{transactionID}", h.UpdateTransaction).Methods("PUT")
	authRouter.HandleFunc("/workspaces/{workspaceID}/transactions/{transactionID}", h.DeleteTransaction).Methods("DELETE")
	authRouter.HandleFunc("/workspaces/{workspaceID}/settings", h.GetSettings).Methods("GET")
	authRouter.HandleFunc("/workspaces/{workspaceID}/settings", h.UpdateSettings).Methods("PUT")
	authRouter.HandleFunc("/workspaces/{workspaceID}/accounts/{accountID}/forecast", h.GetForecast).Methods("GET")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
