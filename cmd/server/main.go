package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"google.golang.org/grpc/health"

	api "fleet-booking-backend/internal/api/grpc"
	httpapi "fleet-booking-backend/internal/api/http"
	"fleet-booking-backend/internal/config"
	"fleet-booking-backend/internal/logger"
	"fleet-booking-backend/internal/messaging/kafka"
	"fleet-booking-backend/internal/metrics"
	"fleet-booking-backend/internal/repository/postgres"
	"fleet-booking-backend/internal/security"
	"fleet-booking-backend/internal/service"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Local secrets live in .env; a missing file is fine.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Failed to load .env: %v", err)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Fleet Booking Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "http_address", cfg.GetHTTPAddress(), "grpc_address", cfg.GetGRPCAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	location, err := cfg.Booking.Location()
	if err != nil {
		log.Fatalf("Invalid booking time zone: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Database
	db, err := postgres.Open(ctx, cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	store := postgres.NewStore(db)
	bookingMetrics := metrics.NewBookingMetrics()

	// Asset effects go to Kafka when brokers are configured
	var signaler service.AssetSignaler
	if cfg.Kafka.Enabled() {
		producer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.ClientID)
		if err != nil {
			logger.Error("Failed to create Kafka producer", "error", err, "brokers", cfg.Kafka.Brokers)
			log.Fatalf("Failed to create Kafka producer: %v", err)
		}
		defer producer.Close()
		signaler = service.NewKafkaAssetSignaler(producer, cfg.Kafka.Topic)
		logger.Info("Publishing asset effects to Kafka", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	} else {
		signaler = service.NewLoggingAssetSignaler()
		logger.Warn("No Kafka brokers configured, asset effects are only logged")
	}

	// Initialize Email Service
	var emailSvc service.EmailService
	if cfg.SendGrid.APIKey != "" {
		emailSvc = service.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	} else {
		emailSvc = service.NewLogEmailService()
		logger.Warn("No SendGrid API key configured, emails are only logged")
	}

	reservationSvc := service.NewReservationService(
		store.Reservations,
		store.Assets,
		store.Users,
		store,
		signaler,
		emailSvc,
		bookingMetrics,
		location,
	)

	tokenManager := security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)

	// HTTP API
	httpServer := &http.Server{
		Addr: cfg.GetHTTPAddress(),
		Handler: httpapi.NewRouter(httpapi.RouterConfig{
			Reservations: reservationSvc,
			TokenManager: tokenManager,
			Health:       store,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// gRPC reservation API, health and reflection
	healthServer := health.NewServer()
	grpcServer := api.NewServer(tokenManager, healthServer, api.NewReservationHandler(reservationSvc))
	go api.NewHealthReporter(healthServer, store, 15*time.Second).Run(ctx)

	lis, err := net.Listen("tcp", cfg.GetGRPCAddress())
	if err != nil {
		logger.Error("Failed to listen", "error", err, "address", cfg.GetGRPCAddress())
		log.Fatalf("Failed to listen: %v", err)
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("gRPC server listening", "address", cfg.GetGRPCAddress())
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- err
		}
	}()
	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetHTTPAddress())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errCh:
		logger.Error("Server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	grpcServer.GracefulStop()
	logger.Info("Fleet Booking Backend stopped")
}
