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

	"github.com/bobarin/voicegate/internal/api"
	"github.com/bobarin/voicegate/internal/config"
	"github.com/bobarin/voicegate/internal/logging"
	"github.com/bobarin/voicegate/internal/models"
	"github.com/bobarin/voicegate/internal/services"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logCloser := logging.Setup(logging.Options{
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	defer logCloser.Close()

	log.Println("Starting voicegate...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Build the configured TTS backend
	backend, err := services.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize TTS backend %q: %v", cfg.Backend, err)
	}
	info := backend.Describe()
	log.Printf("TTS backend: %s (default language %s, voices %v, reference required: %v)",
		info.Name, info.DefaultLanguage, info.Styles, info.RequiresReference)

	encoding, _ := models.ParseResponseEncoding(cfg.ResponseEncoding)

	handler := api.NewHandler(services.NewSynthesizer(backend), api.HandlerConfig{
		MaxLanguageLength: cfg.MaxLanguageLength,
		MaxUploadBytes:    cfg.MaxUploadBytes,
		DefaultEncoding:   encoding,
		Secrets:           cfg.Secrets(),
	})
	router := api.NewRouter(handler, api.RouterConfig{
		CorsAllowedOrigins: cfg.CorsAllowedOrigins,
		MaxUploadBytes:     cfg.MaxUploadBytes,
	})

	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("API server listening on :%s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Printf("Server error: %v", err)
		logCloser.Close()
		os.Exit(1)
	}

	log.Println("Server exited")
}
