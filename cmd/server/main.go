package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"gwi.com/verification-bot/internal/api"
	"gwi.com/verification-bot/internal/config"
	"gwi.com/verification-bot/internal/core"
	"gwi.com/verification-bot/internal/logging"
	"gwi.com/verification-bot/internal/store"
	"gwi.com/verification-bot/internal/telegram"
)

func main() {
	// Command line flag for a one-shot ledger export
	exportFlag := flag.String("export", "", "Write the verified-user ledger to this path and exit")
	flag.Parse()

	// Load configuration; invalid settings abort before serving anything
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	references, err := store.NewReferenceStore(cfg.ReferenceDir, logger)
	if err != nil {
		logger.Fatal("Failed to initialize reference store", zap.Error(err))
	}
	ledger := store.NewLedger(cfg.LedgerPath, logger)

	if *exportFlag != "" {
		if err := ledger.Export(*exportFlag); err != nil {
			logger.Fatal("Ledger export failed", zap.Error(err))
		}
		logger.Info("Ledger exported", zap.String("path", *exportFlag), zap.Int("rows", len(ledger.Load())))
		return
	}

	client, err := telegram.NewClient(cfg.TelegramBotToken, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Telegram client", zap.Error(err))
	}

	verification := core.NewVerificationService(references, ledger, logger)
	admin := core.NewAdminService(cfg.AdminID, cfg.ExportPath, references, ledger, client, logger)
	dispatcher := core.NewDispatcher(verification, admin, client, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// All updates are handled by one goroutine, in arrival order.
	events := make(chan core.Inbound, 100)
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		dispatcher.Run(ctx, events)
	}()

	var srv *http.Server
	if cfg.HTTPPort != "" {
		var webhookEvents chan<- core.Inbound
		if cfg.WebhookURL != "" {
			webhookEvents = events
		}
		router := api.NewRouter(api.NewAPIHandler(webhookEvents, cfg.WebhookSecret, logger))
		srv = &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		}
		go func() {
			logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Fatal("Could not listen", zap.String("addr", srv.Addr), zap.Error(err))
			}
		}()
	}

	if cfg.WebhookURL != "" {
		if err := client.SetWebhook(cfg.WebhookURL, cfg.WebhookSecret); err != nil {
			logger.Fatal("Failed to register webhook", zap.Error(err))
		}
		logger.Info("Bot is running in webhook mode. Press Ctrl+C to quit.")
		<-ctx.Done()
	} else {
		logger.Info("Bot is running. Press Ctrl+C to quit.")
		if err := telegram.NewPoller(client, logger).Run(ctx, events); err != nil {
			logger.Fatal("Polling failed", zap.Error(err))
		}
	}

	stop()
	logger.Info("Shutting down...")
	if srv != nil {
		// Give in-flight webhook calls time to finish.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server forced to shutdown", zap.Error(err))
		}
	}
	<-loopDone
	logger.Info("Bot exited gracefully")
}
