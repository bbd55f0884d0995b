package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"cnote/api"
	"cnote/config"
	"cnote/database"
	"cnote/events"
	"cnote/repository"
	"cnote/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting cnote service...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize event bus and unit of work factory
	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services
	accountService := service.NewAccountService(uowFactory)
	accrualService := service.NewAccrualService(uowFactory)
	settlementService := service.NewSettlementService(uowFactory)
	inquiryService := service.NewInquiryService(uowFactory)

	// Initialize HTTP server
	handler := api.NewHandler(accountService, accrualService, settlementService, inquiryService)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewRouter(handler),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on :%s in %s mode", cfg.Port, cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for context cancellation or server failure
	select {
	case err := <-serverErr:
		db.Close()
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
	}

	// Cleanup resources
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}

	log.Println("Closing database connection...")
	db.Close()

	log.Println("Shutdown completed")
	return nil
}
