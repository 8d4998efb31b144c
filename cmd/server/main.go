package main

import (
	"context"
	"os"
	"time"

	"foodgram/internal/config"
	"foodgram/internal/db"
	"foodgram/internal/logging"
	"foodgram/internal/middleware"
	"foodgram/internal/router"
	"foodgram/internal/services"
	"foodgram/internal/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, found := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if !found {
		logging.Info().Msg("No .env file found, finding env vars from system")
	}
	if err := cfg.EnsureSecrets(); err != nil {
		logging.Fatal().Err(err).Msg("Refusing to start")
	}

	conn, err := db.Init(cfg.DatabaseURL)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	images, err := services.NewImageStore(ctx, cfg.Media)
	if err != nil {
		logging.Fatal().Err(err).Str("backend", cfg.Media.Backend).Msg("Failed to initialize image store")
	}

	var revocations services.RevocationStore
	if cfg.RedisURL != "" {
		rr, err := services.NewRedisRevocations(ctx, cfg.RedisURL)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to connect redis")
		}
		defer rr.Close()
		revocations = rr
	} else {
		mr, err := services.NewMemoryRevocations(10000)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to create revocation list")
		}
		revocations = mr
	}
	tokens := services.NewTokenService(cfg.JWTSecret, cfg.TokenTTL, revocations)

	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	r.Use(middleware.Sessions(cfg.SessionSecret, cfg.SessionSecure, cfg.TokenTTL))

	// 本地存储时直接提供媒体文件
	if local, ok := images.(*services.LocalImageStore); ok {
		r.Static(cfg.Media.URL, local.Root())
	}

	router.RegisterRoutes(r, router.Deps{
		DB:       conn,
		Images:   images,
		Tokens:   tokens,
		Cache:    utils.GetCache(),
		PageSize: cfg.PageSize,
	})

	logging.Info().Str("port", cfg.Port).Str("media", cfg.Media.Backend).Msg("Foodgram server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		logging.Fatal().Err(err).Msg("Server stopped")
	}
}
