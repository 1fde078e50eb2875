package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-fbauto-automation/internal/api"
	"go-fbauto-automation/internal/auth"
	"go-fbauto-automation/internal/automation"
	"go-fbauto-automation/internal/config"
	"go-fbauto-automation/internal/database"
	"go-fbauto-automation/internal/reporter"
	"go-fbauto-automation/internal/scheduler"
	"go-fbauto-automation/internal/webhook"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	repo, err := database.ConnectDB(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer repo.Close()
	log.Println("✅ Database connected")

	rep, err := reporter.NewTelegramReporter(cfg.TelegramToken, cfg.TelegramChatID)
	if err != nil {
		log.Fatalf("Failed to initialize telegram reporter: %v", err)
	}

	mode := automation.NewMode(cfg.Headless, cfg.Manual2FA)
	service := automation.NewService(cfg, repo, rep, mode)

	sched := scheduler.New(service, service)
	if err := sched.Start(cfg.CronSchedule); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	tokens := auth.NewManager(cfg.JWTSecret, 30*24*time.Hour)
	server := api.NewServer(cfg, repo, sched, mode, tokens)
	wh := webhook.NewHandler(cfg.FacebookVerifyToken, cfg.N8NWebhookURL, repo)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: api.NewRouter(server, wh),
	}

	go func() {
		log.Printf("🌐 Server listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ Server shutdown error: %v", err)
	}
	log.Println("👋 Bye")
}
