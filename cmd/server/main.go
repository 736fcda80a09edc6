package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nekogravitycat/stay-booking-backend/internal/app"
	"github.com/nekogravitycat/stay-booking-backend/internal/config"
	"github.com/nekogravitycat/stay-booking-backend/internal/db"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/logger"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	log := logger.New(cfg.LogLevel, cfg.IsProduction)

	// Connect DB
	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to db")
	}
	defer pool.Close()

	if err := db.ApplySchema(ctx, pool); err != nil {
		log.WithError(err).Fatal("failed to apply database schema")
	}

	// Init components
	container, err := app.NewContainer(ctx, cfg, pool, log)
	if err != nil {
		log.WithError(err).Fatal("failed to init application")
	}
	defer func() {
		if err := container.Close(); err != nil {
			log.WithError(err).Warn("failed to close container resources")
		}
	}()

	if cfg.AdminEmail != "" {
		admin, created, err := container.UserService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			log.WithError(err).Fatal("failed to bootstrap admin account")
		}
		log.WithFields(logrus.Fields{"user_id": admin.ID, "created": created}).Info("admin account ready")
	}

	// Background completion of finished stays
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		container.CompletionWorker.Start(ctx)
	}()

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           container.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server in separate goroutine
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("server running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	log.Info("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("server forced to shutdown")
	}

	wg.Wait()
	log.Info("server exited gracefully")
}
