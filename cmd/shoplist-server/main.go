package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shoplist/internal/config"
	"shoplist/internal/database"
	"shoplist/internal/server"
	"shoplist/internal/shopping"
	"shoplist/internal/shoppingapi"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Open the database the API serves
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	var key *shoppingapi.Key
	if cfg.APIKey != "" {
		k, err := shoppingapi.ParseKey(cfg.APIKey)
		if err != nil {
			log.Fatalf("Invalid SHOPLIST_API_KEY: %v", err)
		}
		key = &k
	} else {
		log.Println("⚠️ SHOPLIST_API_KEY not set, the API accepts unauthenticated requests")
	}

	api := server.New(shopping.NewRepository(db.SQL), key)

	// 3. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Shopping list API listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
