/*
Package main is the entry point for the Fade Chat Relay.

It loads configuration, initializes logging, constructs the room store and
relay, wires the HTTP server, optionally starts the expiry sweeper, and
handles operating system interrupt signals (SIGINT, SIGTERM) for a clean
shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fadechat/internal/app/relay"
	"fadechat/internal/app/room"
	"fadechat/internal/app/storage"
	"fadechat/internal/configs"
	"fadechat/internal/handler"
	"fadechat/internal/pkg/logx"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Dur("room_ttl", cfg.RoomTTL).
		Bool("attachments", cfg.AttachmentsEnabled()).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Construct the relay core: the store owns every room, the relay owns
	// connection identity and fanout.
	store := room.NewStore(cfg.RoomTTL)
	rly := relay.New(store)

	var storageService storage.StorageService
	if cfg.AttachmentsEnabled() {
		storageService, err = storage.NewStorageService(storage.ServiceConfig{
			S3BucketName:      cfg.S3BucketName,
			S3Endpoint:        cfg.S3Endpoint,
			S3AccessKeyID:     cfg.S3AccessKeyID,
			S3SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			logx.Fatal(err, "Failed to initialize attachment storage")
		}
	}

	if cfg.SweepInterval > 0 {
		onExpire := rly.ExpireRoom
		if storageService != nil {
			// An expired room takes its attachments with it.
			onExpire = func(roomID string) {
				rly.ExpireRoom(roomID)
				if n, err := storageService.PurgeRoom(ctx, roomID); err != nil {
					logx.Error(err, "Failed to purge attachments for expired room", "room_id", roomID)
				} else if n > 0 {
					logx.Info("Purged attachments for expired room", "room_id", roomID, "deleted", n)
				}
			}
		}

		sweeper := room.NewSweeper(store, cfg.SweepInterval, onExpire)
		go sweeper.Run(ctx)
	}

	deps := &handler.AppDeps{
		Relay:          rly,
		Store:          store,
		Config:         cfg,
		StorageService: storageService,
	}

	router := handler.Router(deps)

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Fade Chat Relay starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Server forced to shutdown")
	}

	logx.Info("Server gracefully stopped.")
}
