package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soundry/Royalty-Ledger-Backend/internal/api"
	custommiddleware "github.com/soundry/Royalty-Ledger-Backend/internal/api/middleware"
	"github.com/soundry/Royalty-Ledger-Backend/internal/config"
	"github.com/soundry/Royalty-Ledger-Backend/internal/database"
	"github.com/soundry/Royalty-Ledger-Backend/internal/repository"
	"github.com/soundry/Royalty-Ledger-Backend/internal/scheduler"
	"github.com/soundry/Royalty-Ledger-Backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Apply pending schema migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Create repositories
	ledgerRepo := repository.NewLedgerRepository(db)

	// Create services
	systemService := service.NewSystemService(db)
	ledgerService := service.NewLedgerService(ledgerRepo, service.LedgerDefaults{
		Currency:        cfg.Ledger.DefaultCurrency,
		PayoutThreshold: cfg.Ledger.DefaultPayoutThreshold,
	})

	// Guard the internal routes when credentials are configured
	var internalAuth *custommiddleware.APIKeyAuth
	if cfg.Auth.APIKey != "" && cfg.Auth.FernetKey != "" {
		internalAuth, err = custommiddleware.NewAPIKeyAuth(cfg.Auth.APIKey, cfg.Auth.FernetKey)
		if err != nil {
			log.Fatalf("Failed to configure internal auth: %v", err)
		}
	} else {
		log.Println("INTERNAL_API_KEY/FERNET_KEY not set; internal routes are unprotected")
	}

	// Create router
	router := api.NewRouter(systemService, ledgerService, internalAuth, cfg)

	// Start the earnings maturation scheduler
	jobs, err := scheduler.New(ledgerService, cfg.Ledger.MaturationSchedule)
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}
	jobs.Start()
	defer jobs.Stop()

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
