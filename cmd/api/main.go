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

	"oralscan-backend/internal/config"
	"oralscan-backend/internal/diagnosis"
	"oralscan-backend/internal/handlers"
	"oralscan-backend/internal/middleware"
	"oralscan-backend/internal/notify"
	"oralscan-backend/internal/repository"
	"oralscan-backend/internal/routes"
	"oralscan-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	db, err := config.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("database handle: %v", err)
	}
	defer sqlDB.Close()

	logger := log.New(os.Stdout, "", log.LstdFlags)

	users := repository.NewUserRepository(db)
	patients := repository.NewPatientRepository(db)
	scans := repository.NewScanRepository(db)

	var recorder diagnosis.Recorder = scans
	if cfg.ScanPersistence == config.PersistNone {
		recorder = repository.NoopRecorder{}
		log.Println("[Analyze] scan persistence disabled, results are not stored")
	}

	model := diagnosis.NewClaudeClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.AnthropicBaseURL)
	service := diagnosis.NewService(model, recorder, logger)

	var sender notify.Sender = notify.NoopSender{}
	if cfg.FirebaseCredentials != "" {
		fcm, err := notify.NewFCMSender(context.Background(), cfg.FirebaseCredentials, logger)
		if err != nil {
			log.Printf("[FCM] disabled: %v", err)
		} else {
			sender = fcm
		}
	}
	async := diagnosis.NewAsyncAnalyzer(service, scans, notify.NewScanNotifier(users, sender, logger), cfg.AnalysisTimeout, logger)

	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	globalLimiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	defer globalLimiter.Stop()
	// Model calls are slow and billed; allow a fifth of the global rate.
	modelLimiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimitRPS/5), max(cfg.RateLimitBurst/5, 1))
	defer modelLimiter.Stop()

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	routes.SetupRoutes(r, routes.Dependencies{
		Auth:          handlers.NewAuthHandler(users, tokens),
		Analyze:       handlers.NewAnalyzeHandler(service, patients),
		Scans:         handlers.NewScanHandler(scans, async, patients),
		Patients:      handlers.NewPatientHandler(patients, scans),
		Health:        handlers.NewHealthHandler(sqlDB),
		Tokens:        tokens,
		Users:         users,
		CORSOrigins:   cfg.CORSOrigins,
		MaxBodyBytes:  cfg.MaxBodyBytes,
		GlobalLimiter: globalLimiter,
		ModelLimiter:  modelLimiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.AnalysisTimeout+15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	if err := async.Shutdown(ctx); err != nil {
		log.Printf("[Scan] %v", err)
	}
	log.Println("Server stopped")
}
