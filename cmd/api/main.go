package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"car-price-api/internal/config"
	"car-price-api/internal/dataset"
	"car-price-api/internal/db"
	apihttp "car-price-api/internal/http"
	"car-price-api/internal/ml"
	"car-price-api/internal/repository"
	"car-price-api/internal/service"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	predictionRepo := repository.NewPgPredictionRepository(pool)

	var accessor dataset.Accessor
	switch cfg.DatasetSource {
	case "postgres":
		accessor = repository.NewPgListingRepository(pool)
	default:
		if cfg.DataPath == "" {
			logger.Fatal("DATA_PATH required when DATASET_SOURCE=csv")
		}
		accessor = dataset.NewCSV(cfg.DataPath)
	}

	var (
		tokenStore   service.RefreshTokenStore
		guestLimiter service.GuestRateLimiter
		redisClient  *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
			guestLimiter = service.NewRedisGuestRateLimiter(redisClient, cfg.GuestRateWindow, cfg.GuestRateMax)
		}
		cancel()
	}
	if guestLimiter == nil {
		guestLimiter = service.NewGuestRateLimiter(cfg.GuestRateWindow, cfg.GuestRateMax)
	}

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	inferenceSvc := service.NewInferenceService(logger, func() (ml.Model, error) {
		return ml.Load(cfg.ModelPath)
	})
	predictionSvc := service.NewPredictionService(logger, inferenceSvc, predictionRepo)
	metadataSvc := service.NewMetadataService(logger, accessor, cfg.DropdownTTL, cfg.BrandModelTTL)
	userSvc := service.NewUserService(logger, userRepo)

	authHandler := apihttp.NewAuthHandler(logger, userSvc, jwtSvc)
	predictionHandler := apihttp.NewPredictionHandler(logger, predictionSvc, guestLimiter)
	metadataHandler := apihttp.NewMetadataHandler(logger, metadataSvc)
	router := apihttp.NewRouter(logger, jwtSvc, authHandler, predictionHandler, metadataHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
