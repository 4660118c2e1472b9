package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"garminbridge/internal/adapters/identity"
	"garminbridge/internal/adapters/mongodb"
	"garminbridge/internal/api"
	"garminbridge/internal/config"
	"garminbridge/internal/garmin"

	"go.uber.org/zap"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger, _ := zap.NewProduction()
	log := logger.Sugar()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	mongoDB, err := mongodb.NewMongoDB(ctx, cfg.MongoDBURI, cfg.MongoDBName)
	if err != nil {
		log.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	if err := mongodb.EnsureSessionsCollection(ctx, mongoDB.Database); err != nil {
		log.Warnw("could not ensure sessions collection", "error", err)
	}

	sessionRepository := mongodb.NewSessionRepository(mongoDB)

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	garminClient := garmin.NewClient(log, garmin.Options{
		BaseURL:    cfg.GarminBaseURL,
		HTTPClient: httpClient,
	})
	provider := garmin.NewProvider(log, garminClient)
	verifier := identity.NewVerifier(cfg.IdentityVerifyURL, httpClient)

	mainAPI := api.NewAPI(log, sessionRepository, verifier, provider)

	// Start server with context-aware logic
	server := &http.Server{
		Addr:    cfg.ServerPort,
		Handler: mainAPI.Routes(),
	}

	// Listen for syscall signals for process to interrupt/quit
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		// Shutdown signal with grace period of 30 seconds
		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit")
			}
		}()

		// Trigger graceful shutdown
		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.Fatal(err)
		}
		cancel()
	}()

	// Run the server
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}

	// Wait for server context to be stopped
	<-ctx.Done()
}
