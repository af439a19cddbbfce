package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"equipment-reservation-backend/config"
	"equipment-reservation-backend/internal/api"
	"equipment-reservation-backend/internal/booking"
	"equipment-reservation-backend/internal/calendar"
	"equipment-reservation-backend/internal/db"
	"equipment-reservation-backend/internal/notification"
	"equipment-reservation-backend/internal/sheet"
	"equipment-reservation-backend/internal/store"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "reservation-backend ", log.LstdFlags)

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	opts := []booking.Option{booking.WithLocation(cfg.Reservation.Location)}

	// Push notifications are optional; without VAPID keys the board runs silently.
	var webpushOptions *webpush.Options
	if cfg.Push.Enabled() {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		workerPool := notification.NewWorkerPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize, appStore, webpushOptions)
		workerPool.Start(ctx)
		opts = append(opts, booking.WithNotifier(workerPool))
	} else {
		logger.Println("VAPID keys not configured, push notifications disabled")
	}

	svc := booking.NewService(appStore, booking.RealClock{}, opts...)

	// Seed an empty store from the published sheet before serving.
	sheet.NewImporter(cfg.Sheet, appStore).Run(ctx)

	handler := api.NewHandler(svc, appStore, calendar.NewPalette(cfg.Reservation.PrivilegedApplicant), webpushOptions)
	router := api.NewRouter(cfg, handler)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
