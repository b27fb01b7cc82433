package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Aashish23092/ocr-idcard-extraction/config"
	"github.com/Aashish23092/ocr-idcard-extraction/handler"
	"github.com/Aashish23092/ocr-idcard-extraction/logger"
	"github.com/Aashish23092/ocr-idcard-extraction/service"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	log := logger.New("idcard-api")

	// Initialize configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	// Initialize service layer
	idcardService, err := service.NewIDCardServiceFromConfig(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize identity card service")
	}

	// Initialize handler layer
	idcardHandler := handler.NewIDCardHandler(idcardService, cfg.MaxFileSize, log)

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handler.NewRouter(idcardHandler, log)

	httpServer := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.OCRTimeout + 15*time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go func() {
		log.Info().
			Str("port", cfg.ServerPort).
			Str("engine", idcardService.Engine()).
			Msg("starting OCR ID card extraction service")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
}
