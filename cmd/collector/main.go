package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/setorid/collector/internal/app"
	"github.com/setorid/collector/internal/app/httpapi"
	"github.com/setorid/collector/internal/app/services/submissions"
	"github.com/setorid/collector/internal/config"
	"github.com/setorid/collector/internal/syncstore"
	"github.com/setorid/collector/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	log := logger.NewDefault("collector")

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var syncer submissions.Syncer
	if cfg.SyncEnabled() {
		client, err := syncstore.New(syncstore.Config{
			BaseURL:   cfg.SyncBaseURL,
			BinID:     cfg.SyncBinID,
			MasterKey: cfg.SyncMasterKey,
		})
		if err != nil {
			log.Fatalf("Failed to build sync client: %v", err)
		}
		syncer = client
	} else {
		log.Warn("SYNC_BIN_ID not set; running without remote sync")
	}

	application, err := app.New(app.Stores{}, syncer, log)
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}
	if err := application.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	handler := httpapi.NewHandler(application, httpapi.Config{
		AdminPassword: cfg.AdminPassword,
		TokenSecret:   cfg.TokenSecret,
		StaticDir:     cfg.StaticDir,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: handler,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("API server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to run API server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown")
	}
	if err := application.Stop(shutdownCtx); err != nil {
		log.WithError(err).Warn("sync pushes still in flight at shutdown")
	}
}
