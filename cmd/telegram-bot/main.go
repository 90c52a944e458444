package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shoplist/internal/app"
	"shoplist/internal/categorizer"
	"shoplist/internal/clipper"
	"shoplist/internal/config"
	"shoplist/internal/database"
	"shoplist/internal/llm"
	"shoplist/internal/metrics"
	"shoplist/internal/telegram"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.RequireTelegram(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	ctx := context.Background()

	// 2. Initialize Infrastructure
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	backend, err := app.NewBackend(cfg, db.SQL)
	if err != nil {
		log.Fatalf("Failed to initialize backend: %v", err)
	}

	metricsStore := metrics.NewStore(db.SQL)

	textGen, err := llm.NewFromConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize text generator: %v", err)
	}
	var suggester app.CategorySuggester
	if textGen != nil {
		defer textGen.Close()
		suggester = categorizer.New(textGen, metricsStore)
	} else {
		log.Println("⚠️ No LLM key set, /add needs an explicit category")
	}

	// 3. Initialize Services
	application := app.NewApp(backend, nil, clipper.NewClipper(), suggester, metricsStore, io.Discard)

	// 4. Initialize Telegram Bot
	bot, err := telegram.NewBot(cfg, application, metricsStore)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram Bot: %v", err)
	}

	// 5. Start Server with Graceful Shutdown
	mux := http.NewServeMux()
	bot.RegisterHandlers(mux)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Telegram Bot Server listening on port %s", cfg.Port)
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
