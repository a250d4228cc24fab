package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campus_shuttle/internal/config"
	"campus_shuttle/internal/controllers"
	"campus_shuttle/internal/logger"
	"campus_shuttle/internal/middleware"
	"campus_shuttle/internal/notify"
	"campus_shuttle/internal/routes"
	"campus_shuttle/internal/scheduler"
	"campus_shuttle/internal/services"
)

func main() {
	// Initialize structured logging to file
	logger.Setup()

	// Connect to the database
	config.InitDB()

	// Rider notifications (no-op when TEAMS_WEBHOOK_URL is unset)
	controllers.Notifier = notify.NewFromEnv()

	// Setup Gin router
	r := routes.SetupRouter()

	// Wrap with CORS
	handler := middleware.EnableCORS(r)

	addr := config.GetEnv("APP_ADDR", ":8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Departure reminder sweep
	interval, err := time.ParseDuration(config.GetEnv("REMINDER_INTERVAL", "60s"))
	if err != nil {
		interval = time.Minute
	}
	worker := &scheduler.ReminderWorker{
		DB:       config.DB,
		Trips:    services.TripService{DB: config.DB},
		Notifier: controllers.Notifier,
		Interval: interval,
	}
	go worker.Run(ctx)

	go func() {
		log.Printf("🚀 Server running at %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown failed: %v", err)
	}

	log.Println("Server stopped.")
}
